package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cbegin/magnetron/internal/pitch"
	"github.com/spf13/cobra"
)

// dumpRow is one key's worth of dump/jdump output, and also the shape read
// back from stdin under dump's -p (piped) mode.
type dumpRow struct {
	Key         int     `json:"key"`
	Hz          float64 `json:"hz"`
	NearestMIDI int     `json:"nearest_midi"`
	NoteName    string  `json:"note_name"`
	DeviationC  float64 `json:"deviation_cents"`
	Fraction    string  `json:"fraction"`
}

var (
	dumpPiped bool
	dumpLimit uint16
)

func init() {
	var kf keyMapFlags

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print a key -> pitch table",
	}
	addScaleSubcommands(dumpCmd, func(scale pitch.Scale) error {
		km, err := kf.keyMap(scale)
		if err != nil {
			return err
		}
		rows, err := buildDumpRows(pitch.NewTuning(scale, km))
		if err != nil {
			return err
		}
		return printDumpTable(rows)
	})
	kf.register(dumpCmd)
	dumpCmd.PersistentFlags().BoolVarP(&dumpPiped, "piped", "p", false, "look up approximations against a prior jdump piped on stdin")
	dumpCmd.PersistentFlags().Uint16VarP(&dumpLimit, "limit", "l", 11, "largest numerator/denominator to search for a nearest fraction")
	rootCmd.AddCommand(dumpCmd)

	jdumpCmd := &cobra.Command{
		Use:   "jdump",
		Short: "Print a key -> pitch table as JSON",
	}
	addScaleSubcommands(jdumpCmd, func(scale pitch.Scale) error {
		km, err := kf.keyMap(scale)
		if err != nil {
			return err
		}
		rows, err := buildDumpRows(pitch.NewTuning(scale, km))
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	})
	kf.register(jdumpCmd)
	jdumpCmd.PersistentFlags().Uint16VarP(&dumpLimit, "limit", "l", 11, "largest numerator/denominator to search for a nearest fraction")
	rootCmd.AddCommand(jdumpCmd)
}

func buildDumpRows(tuning pitch.Tuning) ([]dumpRow, error) {
	var piped []dumpRow
	if dumpPiped {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading piped dump: %w", err)
		}
		if err := json.Unmarshal(data, &piped); err != nil {
			return nil, fmt.Errorf("parsing piped dump: %w", err)
		}
	}

	rows := make([]dumpRow, 0, 128)
	for key := 0; key < 128; key++ {
		hz := float64(tuning.PitchOf(key))
		nearest := nearestMIDINote(hz)
		et := float64(pitch.EqualTemperament(nearest))
		cents := 1200 * math.Log2(hz/et)

		var fraction string
		if dumpPiped {
			fraction = nearestFromPiped(hz, piped)
		} else {
			fraction = nearestFraction(1200*math.Log2(hz/pitch.ReferencePitch), dumpLimit)
		}

		rows = append(rows, dumpRow{
			Key:         key,
			Hz:          hz,
			NearestMIDI: nearest,
			NoteName:    midiNoteName(nearest),
			DeviationC:  cents,
			Fraction:    fraction,
		})
	}
	return rows, nil
}

func printDumpTable(rows []dumpRow) error {
	for _, r := range rows {
		fmt.Printf("%3d | %9.3f Hz | MIDI %3d | %8s | %+8.3f¢ | %s\n",
			r.Key, r.Hz, r.NearestMIDI, r.NoteName, r.DeviationC, r.Fraction)
	}
	return nil
}

// nearestFromPiped finds the piped row whose frequency is closest to hz,
// a cheap stand-in for the original tool's closest-approximation search
// against a previously dumped reference tuning.
func nearestFromPiped(hz float64, piped []dumpRow) string {
	if len(piped) == 0 {
		return ""
	}
	best := piped[0]
	bestDiff := math.Abs(piped[0].Hz - hz)
	for _, r := range piped[1:] {
		if d := math.Abs(r.Hz - hz); d < bestDiff {
			best, bestDiff = r, d
		}
	}
	return best.Fraction
}

func nearestMIDINote(hz float64) int {
	n := int(12*math.Log2(hz/pitch.ReferencePitch) + float64(pitch.ReferenceKey) + 0.5)
	if n < 0 {
		n = 0
	} else if n > 127 {
		n = 127
	}
	return n
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func midiNoteName(n int) string {
	octave := n/12 - 1
	return fmt.Sprintf("%s%d", noteNames[n%12], octave)
}
