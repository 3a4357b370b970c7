package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cbegin/magnetron/internal/pitch"
)

// parseRatio accepts the three ratio notations the original CLI's scale
// subcommands take: a just-intonation fraction ("3/2"), an n-th root of
// a period ("1:12:2" = the 1st step of a 12-division of the octave,
// i.e. 2^(1/12)), or a bare cents value ("701.955c").
func parseRatio(s string) (pitch.Ratio, error) {
	switch {
	case strings.HasSuffix(s, "c"):
		cents, err := strconv.ParseFloat(strings.TrimSuffix(s, "c"), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid cents value %q: %w", s, err)
		}
		return pitch.Ratio(cents), nil

	case strings.Contains(s, ":"):
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			return 0, fmt.Errorf("invalid step ratio %q, expected `step:divisions:period`", s)
		}
		step, err1 := strconv.ParseFloat(parts[0], 64)
		divisions, err2 := strconv.ParseFloat(parts[1], 64)
		period, err3 := strconv.ParseFloat(parts[2], 64)
		if err1 != nil || err2 != nil || err3 != nil || divisions == 0 {
			return 0, fmt.Errorf("invalid step ratio %q, expected `step:divisions:period`", s)
		}
		periodCents := 1200 * math.Log2(period)
		return pitch.Ratio(periodCents * step / divisions), nil

	case strings.Contains(s, "/"):
		parts := strings.SplitN(s, "/", 2)
		num, err1 := strconv.ParseFloat(parts[0], 64)
		den, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil || den == 0 {
			return 0, fmt.Errorf("invalid fraction %q, expected `num/den`", s)
		}
		return pitch.Ratio(1200 * math.Log2(num/den)), nil

	default:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("unrecognized ratio %q, expected a fraction, a `step:divisions:period` or a cents value", s)
		}
		return pitch.Ratio(1200 * math.Log2(v)), nil
	}
}

// nearestFraction approximates cents as a just-intonation fraction with
// numerator and denominator (ignoring powers of two) no larger than
// limit, for dump's rightmost column.
func nearestFraction(cents float64, limit uint16) string {
	// Fold cents into a single octave [0, 1200) the same way a scale
	// degree is represented, so target always lands in [1, 2).
	octaves := math.Floor(cents / 1200)
	target := math.Exp2(cents/1200 - octaves)

	const tieEpsilon = 1e-9
	best := struct {
		num, den int
		err      float64
	}{num: 1, den: 1, err: math.Abs(target - 1)}

	for den := 1; den <= int(limit); den++ {
		for num := den; num < 2*den; num++ {
			if num > int(limit) {
				break
			}
			ratio := float64(num) / float64(den)
			err := math.Abs(ratio - target)
			// prefer the simplest (smallest num*den) fraction among near-ties.
			better := err < best.err-tieEpsilon
			tie := math.Abs(err-best.err) <= tieEpsilon && num*den < best.num*best.den
			if better || tie {
				best.num, best.den, best.err = num, den, err
			}
		}
	}
	return fmt.Sprintf("%d/%d", best.num, best.den)
}
