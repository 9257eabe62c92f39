package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-omnichord/fit"
	"github.com/cwbudde/algo-omnichord/internal/wavio"
	"github.com/cwbudde/algo-omnichord/preset"
)

var (
	fitOutput     string
	fitKnobs      []string
	fitVariant    string
	fitPopulation int
	fitMaxEvals   int
	fitWorkers    int
	fitSeed       int64
	fitBudget     time.Duration
	fitFrequency  float64
)

func init() {
	fitCmd.Flags().StringVarP(&fitOutput, "output", "o", "fitted.json", "Output preset JSON path")
	fitCmd.Flags().StringSliceVar(&fitKnobs, "knobs", nil, "Parameters to fit (default: all)")
	fitCmd.Flags().StringVar(&fitVariant, "variant", "ma", "Mayfly variant: ma, desma, olce, eobbma, gsasma, mpma, aoblmoa")
	fitCmd.Flags().IntVar(&fitPopulation, "population", 12, "Swarm population per round")
	fitCmd.Flags().IntVar(&fitMaxEvals, "max-evals", 400, "Maximum candidate evaluations")
	fitCmd.Flags().IntVar(&fitWorkers, "workers", 0, "Parallel workers (0 = GOMAXPROCS)")
	fitCmd.Flags().Int64Var(&fitSeed, "seed", 1, "Random seed")
	fitCmd.Flags().DurationVar(&fitBudget, "time-budget", time.Minute, "Wall-clock limit")
	fitCmd.Flags().Float64Var(&fitFrequency, "frequency", 0, "Note frequency in Hz (0 = detect)")
	rootCmd.AddCommand(fitCmd)
}

var fitCmd = &cobra.Command{
	Use:   "fit <reference.wav>",
	Short: "Fits the one-shot voice to a recorded note and writes a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := loadParams()
		if err != nil {
			return err
		}
		ref, sr, err := wavio.ReadMono(args[0])
		if err != nil {
			return err
		}
		if ref, err = wavio.ResampleIfNeeded(ref, sr, sampleRate); err != nil {
			return err
		}

		knobs := fit.DefaultKnobs()
		if len(fitKnobs) > 0 {
			var unknown []string
			if knobs, unknown = fit.KnobsByName(fitKnobs); len(unknown) > 0 {
				return fmt.Errorf("unknown knobs: %v", unknown)
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		res, err := fit.Run(ctx, fit.Config{
			Reference:  ref,
			SampleRate: sampleRate,
			Base:       base,
			Knobs:      knobs,
			Frequency:  fitFrequency,
			Variant:    fitVariant,
			Population: fitPopulation,
			MaxEvals:   fitMaxEvals,
			Workers:    fitWorkers,
			Seed:       fitSeed,
			TimeBudget: fitBudget,
			Logger:     logger,
		})
		if err != nil {
			return err
		}
		if err := preset.WriteJSON(fitOutput, res.Params); err != nil {
			return err
		}

		fmt.Printf("Fitted %.2f Hz in %d evals (%v): score %.4f -> %.4f, similarity %.2f%%\n",
			res.Frequency, res.Evals, res.Elapsed.Round(time.Millisecond), res.Start.Score, res.Best.Score, res.Best.Similarity*100)
		vals := fit.Values(res.Params, knobs)
		names := make([]string, 0, len(vals))
		for k := range vals {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			fmt.Printf("  %-14s %.4f\n", k, vals[k])
		}
		fmt.Printf("Wrote %s\n", fitOutput)
		return nil
	},
}
