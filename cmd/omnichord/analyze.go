package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-omnichord/analysis"
	"github.com/cwbudde/algo-omnichord/internal/wavio"
	"github.com/cwbudde/algo-omnichord/tuning"
)

var analyzeResample bool

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeResample, "resample", false, "Resample to --sample-rate before analysis")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.wav>",
	Short: "Reports level and dominant pitch of a WAV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, sr, err := wavio.ReadMono(args[0])
		if err != nil {
			return err
		}
		if analyzeResample && sr != sampleRate {
			if x, err = wavio.ResampleIfNeeded(x, sr, sampleRate); err != nil {
				return err
			}
			logger.Debug("resampled", "from", sr, "to", sampleRate)
			sr = sampleRate
		}

		fmt.Printf("File:     %s\n", args[0])
		fmt.Printf("Length:   %.3f s at %d Hz\n", float64(len(x))/float64(sr), sr)
		fmt.Printf("Peak:     %.1f dBFS\n", analysis.LinToDB(analysis.Peak(x)))
		fmt.Printf("RMS:      %.1f dBFS\n", analysis.LinToDB(analysis.RMS(x)))

		f, err := analysis.DominantFrequency(x, sr)
		if err != nil {
			return err
		}
		if note, cents, ok := tuning.NearestMIDINote(f); ok {
			fmt.Printf("Dominant: %.2f Hz (%s %+.1f cents)\n", f, tuning.NoteName(note), cents)
		} else {
			fmt.Printf("Dominant: none (silent)\n")
		}
		return nil
	},
}
