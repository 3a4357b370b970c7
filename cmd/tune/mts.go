package main

import (
	"fmt"
	"math"

	"github.com/cbegin/magnetron/internal/midi"
	"github.com/cbegin/magnetron/internal/pitch"
	"github.com/spf13/cobra"
)

func init() {
	var kf keyMapFlags
	mtsCmd := &cobra.Command{
		Use:   "mts",
		Short: "Emit a Single Note Tuning Change sysex for all 128 keys",
	}
	addScaleSubcommands(mtsCmd, func(scale pitch.Scale) error {
		km, err := kf.keyMap(scale)
		if err != nil {
			return err
		}
		return dumpMTS(pitch.NewTuning(scale, km))
	})
	kf.register(mtsCmd)
	rootCmd.AddCommand(mtsCmd)
}

func dumpMTS(tuning pitch.Tuning) error {
	var tunings []midi.NoteTuning
	retuned, outOfRange := 0, 0

	for key := 0; key < 128; key++ {
		hz := float64(tuning.PitchOf(key))
		note := nearestMIDINote(hz)
		if note < 0 || note > 127 {
			outOfRange++
			continue
		}
		et := float64(pitch.EqualTemperament(note))
		cents := 1200 * math.Log2(hz/et)
		below := note
		if cents < 0 && below > 0 {
			below--
		}
		tunings = append(tunings, midi.NoteTuning{
			Key:           midi.Key(key),
			SemitoneBelow: uint8(below),
			FractionCents: math.Mod(cents+10000, 100),
		})
		retuned++
	}

	msg := midi.SingleNoteTuningChange(0x7F, 0, tunings)
	for _, b := range msg {
		fmt.Printf("0x%02x\n", b)
	}
	fmt.Printf("retuned: %d, out of range: %d\n", retuned, outOfRange)
	return nil
}
