package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var kbmOutFile string

func init() {
	var kf keyMapFlags
	kbmCmd := &cobra.Command{
		Use:   "kbm",
		Short: "Emit a Scala .kbm keyboard mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			refKey, refHz, err := parseRef(kf.ref)
			if err != nil {
				return err
			}
			rootKey := refKey
			if kf.root != "" {
				var perr error
				rootKey, perr = parseUint(kf.root)
				if perr != nil {
					return perr
				}
			}
			return writeKbmOutput(rootKey, refKey, refHz)
		},
	}
	kf.register(kbmCmd)
	kbmCmd.Flags().StringVarP(&kbmOutFile, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(kbmCmd)
}

// writeKbmOutput emits a 1:1 linear keyboard mapping (every MIDI key maps
// to the scale degree of the same number) anchored at rootKey/refKey.
func writeKbmOutput(rootKey, refKey int, refHz float64) error {
	out := os.Stdout
	if kbmOutFile != "" {
		f, err := os.Create(kbmOutFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	fmt.Fprintf(out, "! Size of map (0 means linear, every key maps to its own degree)\n0\n")
	fmt.Fprintf(out, "! First MIDI note number to retune\n0\n")
	fmt.Fprintf(out, "! Last MIDI note number to retune\n127\n")
	fmt.Fprintf(out, "! Middle note (scale degree 0)\n%d\n", rootKey)
	fmt.Fprintf(out, "! Reference note\n%d\n", refKey)
	fmt.Fprintf(out, "! Reference frequency (Hz)\n%.6f\n", refHz)
	fmt.Fprintf(out, "! Scale degree for formal octave\n0\n")
	return nil
}
