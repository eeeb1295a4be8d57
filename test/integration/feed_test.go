package integration

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"strikebook/pkg/feed"
	"strikebook/pkg/loadgen"
	"strikebook/pkg/messaging"
)

// runFeed pushes a full instruction stream through a fresh pipeline and
// returns the emitted output lines plus the sender that saw every outcome.
func runFeed(t *testing.T, input io.Reader) ([]string, *messaging.MockSender) {
	t.Helper()

	sender := messaging.NewMockSender()
	var out bytes.Buffer
	pipeline := feed.NewPipeline(feed.NewRouter(), &out, feed.PipelineConfig{Sender: sender})
	require.NoError(t, pipeline.Run(context.Background(), input))
	return splitLines(out.String()), sender
}

func splitLines(s string) []string {
	trimmed := strings.TrimSuffix(s, "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

// TestFeedSessionGolden replays a three-scenario session fixture and compares
// the full output stream against the recorded expectation, line for line.
func TestFeedSessionGolden(t *testing.T) {
	input, err := os.Open(filepath.Join("testdata", "session.csv"))
	require.NoError(t, err)
	defer input.Close()

	expected, err := os.ReadFile(filepath.Join("testdata", "session.expected"))
	require.NoError(t, err)

	lines, sender := runFeed(t, input)
	require.Equal(t, splitLines(string(expected)), lines)

	// One published message per instruction that touched a book; the two
	// flushes publish nothing.
	require.Len(t, sender.Sent(), 20)
}

// TestGeneratedFeedPipeline runs a synthesized feed end to end. The generator
// promises well-formed feeds, so the stream must produce trades and cancels
// without a single rejection, and the same seed must reproduce byte-identical
// output.
func TestGeneratedFeedPipeline(t *testing.T) {
	cfg := &loadgen.Config{
		Symbols:       []string{"IBM", "AAPL"},
		Users:         5,
		Levels:        4,
		MidPrice:      100,
		TickSize:      1,
		OrderSize:     10,
		Instructions:  400,
		Seed:          11,
		TradePercent:  30,
		CancelPercent: 20,
		FlushEvery:    75,
	}

	var csv bytes.Buffer
	written, err := loadgen.NewGenerator(cfg).WriteCSV(&csv)
	require.NoError(t, err)
	require.Equal(t, cfg.Instructions, written)

	lines, sender := runFeed(t, bytes.NewReader(csv.Bytes()))

	trades := 0
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "A, "):
		case strings.HasPrefix(line, "B, "):
		case strings.HasPrefix(line, "T, "):
			trades++
		default:
			t.Fatalf("unexpected output line %q", line)
		}
	}
	require.Positive(t, trades, "generated feed should trade")

	for _, msg := range sender.Sent() {
		require.NotEqual(t, "REJECTED", msg.Kind, "generated feeds must not reject")
	}

	// Same seed, same feed
	var rerun bytes.Buffer
	_, err = loadgen.NewGenerator(cfg).WriteCSV(&rerun)
	require.NoError(t, err)
	require.Equal(t, csv.String(), rerun.String())

	secondLines, _ := runFeed(t, &rerun)
	require.Equal(t, lines, secondLines)
}
