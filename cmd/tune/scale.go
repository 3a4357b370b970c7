package main

import (
	"fmt"
	"math"
	"sort"

	"github.com/cbegin/magnetron/internal/pitch"
	"github.com/spf13/cobra"
)

// addScaleSubcommands attaches the four scale-construction subcommands
// (equal, rank2, harm, cust) to parent; whichever is invoked builds a
// pitch.Scale and hands it to run.
func addScaleSubcommands(parent *cobra.Command, run func(scale pitch.Scale) error) {
	parent.AddCommand(&cobra.Command{
		Use:   "equal <step>",
		Short: "Equal temperament",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			step, err := parseRatio(args[0])
			if err != nil {
				return err
			}
			return run(equalTemperamentScale(step))
		},
	})

	rank2Cmd := &cobra.Command{
		Use:   "rank2 <generator> <pos> [neg]",
		Short: "Rank-2 temperament",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			generator, err := parseRatio(args[0])
			if err != nil {
				return err
			}
			pos, err := parseUint(args[1])
			if err != nil {
				return err
			}
			var neg int
			if len(args) == 3 {
				if neg, err = parseUint(args[2]); err != nil {
					return err
				}
			}
			period, err := parseRatio(periodFlag)
			if err != nil {
				return err
			}
			return run(rank2TemperamentScale(generator, pos, neg, period))
		},
	}
	rank2Cmd.Flags().StringVarP(&periodFlag, "period", "p", "2", "second, infinite generator")
	parent.AddCommand(rank2Cmd)

	harmCmd := &cobra.Command{
		Use:   "harm <lowest>",
		Short: "Harmonic series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lowest, err := parseUint(args[0])
			if err != nil {
				return err
			}
			n := lowest
			if numNotesFlag > 0 {
				n = numNotesFlag
			}
			return run(harmonicSeriesScale(lowest, n, subharmonicsFlag))
		},
	}
	harmCmd.Flags().IntVarP(&numNotesFlag, "notes", "n", 0, "number of notes")
	harmCmd.Flags().BoolVarP(&subharmonicsFlag, "sub", "s", false, "build subharmonic series")
	parent.AddCommand(harmCmd)

	custCmd := &cobra.Command{
		Use:   "cust <items...>",
		Short: "Custom scale",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ratios := make([]pitch.Ratio, len(args))
			for i, a := range args {
				r, err := parseRatio(a)
				if err != nil {
					return err
				}
				ratios[i] = r
			}
			name := customNameFlag
			if name == "" {
				name = "Custom scale"
			}
			return run(pitch.Scale{Name: name, Ratios: ratios})
		},
	}
	custCmd.Flags().StringVarP(&customNameFlag, "name", "n", "", "name of the scale")
	parent.AddCommand(custCmd)
}

// Flags shared across scale subcommand invocations. cobra re-parses
// these fresh for every command instance built by addScaleSubcommands,
// so package-level storage is safe despite being reused across the
// scl/dump/jdump/mts/live command trees.
var (
	periodFlag       string
	numNotesFlag     int
	subharmonicsFlag bool
	customNameFlag   string
)

func parseUint(s string) (int, error) {
	var v int
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return v, nil
}

// equalTemperamentScale infers the number of equal divisions of the
// octave from step's size (e.g. step="1:12:2" is 100c, so 1200/100=12
// divisions), rather than threading the step's own denominator through
// as a separate field the way the original ratio type could.
func equalTemperamentScale(step pitch.Ratio) pitch.Scale {
	divisions := int(1200/step.Cents() + 0.5)
	if divisions < 1 {
		divisions = 1
	}
	return pitch.EqualScale(divisions)
}

// rank2TemperamentScale stacks generator up to pos times and down to neg
// times, folding each stack position into [0, period) cents, and
// returns the sorted, deduplicated scale degrees with period itself as
// the final (closing) ratio.
func rank2TemperamentScale(generator pitch.Ratio, pos, neg int, period pitch.Ratio) pitch.Scale {
	periodCents := period.Cents()
	degrees := map[int64]bool{}
	const resolution = 1000 // dedupe at sub-millicent granularity
	add := func(cents float64) {
		c := mod(cents, periodCents)
		degrees[int64(c*resolution+0.5)] = true
	}
	for k := 1; k <= pos; k++ {
		add(float64(k) * generator.Cents())
	}
	for k := 1; k <= neg; k++ {
		add(float64(-k) * generator.Cents())
	}

	sorted := make([]float64, 0, len(degrees))
	for d := range degrees {
		c := float64(d) / resolution
		if c > 0 {
			sorted = append(sorted, c)
		}
	}
	sort.Float64s(sorted)

	ratios := make([]pitch.Ratio, len(sorted)+1)
	for i, c := range sorted {
		ratios[i] = pitch.Ratio(c)
	}
	ratios[len(sorted)] = pitch.Ratio(periodCents)
	return pitch.Scale{Name: "Rank-2 temperament", Ratios: ratios}
}

// harmonicSeriesScale builds a scale from n consecutive (sub)harmonics
// starting at lowest: harmonic (lowest+i)/lowest for the ascending series, or
// lowest/(lowest-i) (ascending toward 2/1) for subharmonics.
func harmonicSeriesScale(lowest, n int, subharmonics bool) pitch.Scale {
	ratios := make([]pitch.Ratio, 0, n)
	for i := 1; i <= n; i++ {
		var ratio float64
		if subharmonics {
			den := lowest - i
			if den <= 0 {
				continue
			}
			ratio = float64(lowest) / float64(den)
		} else {
			ratio = float64(lowest+i) / float64(lowest)
		}
		ratios = append(ratios, pitch.Ratio(1200*math.Log2(ratio)))
	}
	name := "Harmonic series"
	if subharmonics {
		name = "Subharmonic series"
	}
	return pitch.Scale{Name: name, Ratios: ratios}
}

func mod(a, m float64) float64 {
	r := a
	for r < 0 {
		r += m
	}
	for r >= m {
		r -= m
	}
	return r
}
