package feed

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strikebook/pkg/messaging"
)

func runFeed(t *testing.T, input string, cfg PipelineConfig) []string {
	t.Helper()

	var out bytes.Buffer
	p := NewPipeline(NewRouter(), &out, cfg)
	require.NoError(t, p.Run(context.Background(), strings.NewReader(input)))

	if out.Len() == 0 {
		return nil
	}
	return strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
}

func TestPipelineBalancedScenario(t *testing.T) {
	input := strings.Join([]string{
		"N, 1, IBM, 10, 100, B, 1",
		"N, 1, IBM, 12, 100, S, 2",
		"N, 2, IBM, 9, 100, B, 101",
		"N, 2, IBM, 11, 100, S, 102",
		"N, 1, IBM, 11, 100, B, 3",
		"N, 2, IBM, 10, 100, S, 103",
		"F",
	}, "\n")

	lines := runFeed(t, input, PipelineConfig{})

	assert.Equal(t, []string{
		"A, 1, 1",
		"B, B, 10, 100",
		"A, 1, 2",
		"B, S, 12, 100",
		"A, 2, 101",
		"A, 2, 102",
		"B, S, 11, 100",
		"A, 1, 3",
		"T, 1, 3, 2, 102, 11, 100",
		"B, S, 12, 100",
		"A, 2, 103",
		"T, 1, 1, 2, 103, 10, 100",
		"B, B, 9, 100",
	}, lines)
}

func TestPipelineCancelLines(t *testing.T) {
	input := strings.Join([]string{
		"N, 1, IBM, 10, 100, B, 1",
		"N, 1, IBM, 9, 50, B, 2",
		"C, 1, 2",
		"C, 1, 1",
	}, "\n")

	lines := runFeed(t, input, PipelineConfig{})

	assert.Equal(t, []string{
		"A, 1, 1",
		"B, B, 10, 100",
		"A, 1, 2",
		// Canceling away from the top acknowledges without a B line.
		"A, 1, 2",
		"A, 1, 1",
		"B, B, -, -",
	}, lines)
}

func TestPipelineRejectsCrossingOrder(t *testing.T) {
	input := strings.Join([]string{
		"N, 1, VAL, 10, 100, B, 1",
		"N, 2, VAL, 9, 50, S, 2",
	}, "\n")

	lines := runFeed(t, input, PipelineConfig{})

	assert.Equal(t, []string{
		"A, 1, 1",
		"B, B, 10, 100",
		"R, 2, 2",
	}, lines)
}

func TestPipelineFlushSeparatesSessions(t *testing.T) {
	input := strings.Join([]string{
		"N, 1, IBM, 10, 100, B, 1",
		"F",
		"N, 1, IBM, 11, 100, B, 1",
	}, "\n")

	lines := runFeed(t, input, PipelineConfig{})

	// The flush itself prints nothing and the order id is usable again.
	assert.Equal(t, []string{
		"A, 1, 1",
		"B, B, 10, 100",
		"A, 1, 1",
		"B, B, 11, 100",
	}, lines)
}

func TestPipelineSkipsCommentsAndBlanks(t *testing.T) {
	input := strings.Join([]string{
		"# scenario: single resting order",
		"",
		"N, 1, IBM, 10, 100, B, 1",
		"",
		"# end",
	}, "\n")

	lines := runFeed(t, input, PipelineConfig{})

	assert.Equal(t, []string{
		"A, 1, 1",
		"B, B, 10, 100",
	}, lines)
}

func TestPipelinePublishesOutcomes(t *testing.T) {
	sender := messaging.NewMockSender()
	input := strings.Join([]string{
		"N, 1, IBM, 10, 100, B, 1",
		"N, 2, IBM, 10, 100, S, 2",
		"F",
	}, "\n")

	runFeed(t, input, PipelineConfig{Sender: sender})

	sent := sender.Sent()
	require.Len(t, sent, 2)

	assert.Equal(t, "TOP_OF_BOOK", sent[0].Kind)
	assert.Equal(t, "IBM", sent[0].Symbol)

	trade := sent[1]
	assert.Equal(t, "TRADED", trade.Kind)
	assert.Equal(t, uint64(1), trade.BuyerUserID)
	assert.Equal(t, uint64(1), trade.BuyerOrderID)
	assert.Equal(t, uint64(2), trade.SellerUserID)
	assert.Equal(t, uint64(2), trade.SellerOrderID)
	assert.Equal(t, "10.000", trade.Price)
	assert.Equal(t, "100.000", trade.Quantity)
	require.NotNil(t, trade.Top)
	assert.Equal(t, "B", trade.Top.Side)
	assert.True(t, trade.Top.Empty)
}

func TestPipelinePublishFailureKeepsRunning(t *testing.T) {
	sender := messaging.NewMockSender()
	sender.FailWith(errors.New("broker unreachable"))

	lines := runFeed(t, "N, 1, IBM, 10, 100, B, 1", PipelineConfig{Sender: sender})

	// The outcome still reaches the output even though publishing failed.
	assert.Equal(t, []string{
		"A, 1, 1",
		"B, B, 10, 100",
	}, lines)
}

func TestPipelineBadRecordFailsRun(t *testing.T) {
	var out bytes.Buffer
	p := NewPipeline(NewRouter(), &out, PipelineConfig{})

	err := p.Run(context.Background(), strings.NewReader("X, 1, 2"))
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestPipelineBadFieldFailsRun(t *testing.T) {
	var out bytes.Buffer
	p := NewPipeline(NewRouter(), &out, PipelineConfig{})

	input := "N, 1, IBM, 10, 100, B, 1\nN, oops, IBM, 10, 100, B, 2"
	err := p.Run(context.Background(), strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user id")
}
