package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-omnichord/session"
)

var midiOutput string

func init() {
	midiCmd.Flags().StringVarP(&midiOutput, "output", "o", "output.mid", "Output MIDI file path")
	rootCmd.AddCommand(midiCmd)
}

var midiCmd = &cobra.Command{
	Use:   "midi <session.yaml>",
	Short: "Exports a session as a standard MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session.Load(args[0])
		if err != nil {
			return err
		}
		p, err := loadParams()
		if err != nil {
			return err
		}
		if err := session.ExportMIDI(s, p, midiOutput); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d notes, %.0f bpm)\n", midiOutput, len(s.Notes(p)), s.Tempo)
		return nil
	},
}
