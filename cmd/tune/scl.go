package main

import (
	"fmt"
	"os"

	"github.com/cbegin/magnetron/internal/pitch"
	"github.com/spf13/cobra"
)

var sclOutFile string

func init() {
	sclCmd := &cobra.Command{
		Use:   "scl",
		Short: "Emit a Scala .scl scale file",
	}
	addScaleSubcommands(sclCmd, func(scale pitch.Scale) error {
		return writeSclOutput(scale)
	})
	sclCmd.PersistentFlags().StringVarP(&sclOutFile, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(sclCmd)
}

func writeSclOutput(scale pitch.Scale) error {
	out := os.Stdout
	if sclOutFile != "" {
		f, err := os.Create(sclOutFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	name := scale.Name
	if name == "" {
		name = "Untitled scale"
	}
	fmt.Fprintf(out, "! %s\n!\n%s\n %d\n!\n", name, name, len(scale.Ratios))
	for _, r := range scale.Ratios {
		fmt.Fprintf(out, "%.6f\n", r.Cents())
	}
	return nil
}
