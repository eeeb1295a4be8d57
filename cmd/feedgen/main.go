// Command feedgen writes a synthetic instruction feed to a file or stdout.
// The same settings and seed always produce the same feed, so a saved file
// and a regenerated one are interchangeable.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"strikebook/pkg/loadgen"
	"strikebook/pkg/logging"
)

func main() {
	outPath := flag.String("out", "", "output file (defaults to stdout)")
	logLevel := flag.String("log_level", "info", "logging level")
	flag.Parse()

	logging.Setup(logging.Config{Level: *logLevel, Pretty: true})
	logger := logging.Component("feedgen")

	cfg, err := loadgen.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load generator configuration")
	}

	out, err := openOutput(*outPath)
	if err != nil {
		logger.Fatal().Err(err).Str("out", *outPath).Msg("Failed to open output")
	}
	defer out.Close()

	runID := uuid.NewString()
	writeHeader(out, runID, cfg)

	start := time.Now()
	n, err := loadgen.NewGenerator(cfg).WriteCSV(out)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to write feed")
	}

	logger.Info().
		Str("run_id", runID).
		Int("instructions", n).
		Int64("seed", cfg.Seed).
		Dur("elapsed", time.Since(start)).
		Msg("Feed written")
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return os.Stdout, nil
	}
	return os.Create(path)
}

// writeHeader records the generator settings as feed comments so a saved
// file carries its own provenance. The feed reader skips comment lines.
func writeHeader(w io.Writer, runID string, cfg *loadgen.Config) {
	fmt.Fprintf(w, "# strikebook feed run=%s\n", runID)
	fmt.Fprintf(w, "# symbols=%s users=%d levels=%d instructions=%d seed=%d trade=%d%% cancel=%d%%\n",
		strings.Join(cfg.Symbols, ","), cfg.Users, cfg.Levels,
		cfg.Instructions, cfg.Seed, cfg.TradePercent, cfg.CancelPercent)
}
