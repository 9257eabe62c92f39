package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-omnichord/output"
	"github.com/cwbudde/algo-omnichord/session"
)

func init() {
	playCmd.Flags().StringVar(&renderChord, "chord", "", "Play a single held and arpeggiated chord instead of a session")
	playCmd.Flags().Float64Var(&renderDuration, "duration", 2.0, "Hold time in seconds for --chord")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play [session.yaml]",
	Short: "Plays a session on the audio output",
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
		dev := output.NewDevice(sampleRate, sched, logger)
		defer dev.Close()
		sched.SetDevice(dev)
		if err := sched.EnsureReady(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		fmt.Printf("Playing %q (%.2f s)...\n", s.Name, s.Duration())
		if err := session.Perform(ctx, s, sched, logger); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}
