package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-omnichord/preset"
	"github.com/cwbudde/algo-omnichord/synth"
)

var (
	logLevel   string
	presetPath string
	sampleRate int
	logger     = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:           "omnichord",
	Short:         "Chord-strumming tone synthesizer",
	Long:          `Renders, plays and exports performances of an omnichord-style instrument: an 84-chord button grid, held chord pads and a strum strip.`,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
			return fmt.Errorf("invalid --log-level %q", logLevel)
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&presetPath, "preset", "", "Voice preset JSON file (optional)")
	rootCmd.PersistentFlags().IntVar(&sampleRate, "sample-rate", 48000, "Sample rate in Hz")
}

func loadParams() (*synth.Params, error) {
	if presetPath == "" {
		return synth.NewDefaultParams(), nil
	}
	p, err := preset.LoadJSON(presetPath)
	if err != nil {
		return nil, fmt.Errorf("loading preset %q: %w", presetPath, err)
	}
	logger.Debug("preset loaded", "path", presetPath)
	return p, nil
}

func newScheduler() (*synth.Scheduler, error) {
	p, err := loadParams()
	if err != nil {
		return nil, err
	}
	return synth.NewScheduler(sampleRate, p)
}
