package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-omnichord/internal/wavio"
	"github.com/cwbudde/algo-omnichord/session"
)

var (
	renderOutput   string
	renderChord    string
	renderDuration float64
)

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "output.wav", "Output WAV file path")
	renderCmd.Flags().StringVar(&renderChord, "chord", "", "Render a single held and arpeggiated chord instead of a session")
	renderCmd.Flags().Float64Var(&renderDuration, "duration", 2.0, "Hold time in seconds for --chord")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render [session.yaml]",
	Short: "Renders a session (or one chord) to a WAV file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := sessionFromArgs(args)
		if err != nil {
			return err
		}
		sched, err := newScheduler()
		if err != nil {
			return err
		}

		fmt.Printf("Rendering %q (%.2f s at %d Hz)...\n", s.Name, s.Duration(), sampleRate)
		start := time.Now()
		samples, err := session.Render(s, sched, logger)
		if err != nil {
			return err
		}
		if err := wavio.WriteStereoInterleaved(renderOutput, samples, sampleRate); err != nil {
			return fmt.Errorf("writing %s: %w", renderOutput, err)
		}
		fmt.Printf("Wrote %s (%d frames) in %v\n", renderOutput, len(samples)/2, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

// sessionFromArgs loads the session named by args, or builds one from --chord.
func sessionFromArgs(args []string) (*session.Session, error) {
	if len(args) == 1 {
		return session.Load(args[0])
	}
	if renderChord == "" {
		return nil, fmt.Errorf("need a session file or --chord")
	}
	if renderDuration <= 0 {
		return nil, fmt.Errorf("--duration must be > 0")
	}
	return session.Single(renderChord, renderDuration)
}
