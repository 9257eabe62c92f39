package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-omnichord/chord"
	"github.com/cwbudde/algo-omnichord/tuning"
)

var chordsOctave int

func init() {
	chordsCmd.Flags().IntVar(&chordsOctave, "octave", 4, "Octave used for the listed notes")
	rootCmd.AddCommand(chordsCmd)
}

var chordsCmd = &cobra.Command{
	Use:   "chords",
	Short: "Lists the chord button grid",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ROW\tCOL\tNAME\tTYPE\tCOLOR\tROOT HZ\tNOTES")
		for _, c := range chord.Grid() {
			names := ""
			for i, n := range c.MIDINotes(chordsOctave) {
				if i > 0 {
					names += " "
				}
				names += tuning.NoteName(n)
			}
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t#%06x\t%.2f\t%s\n",
				c.Row, c.Col, c.Name, c.TypeName, c.Color, c.RootFrequency(chordsOctave), names)
		}
		return w.Flush()
	},
}
