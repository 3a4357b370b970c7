// Package midi builds the MIDI wire messages the tuning dispatcher and the
// input listener need: plain channel messages plus the Single Note Tuning
// Change and Scale/Octave Tuning sysex used to retune an external 12-TET
// synthesizer. Messages are built as gitlab.com/gomidi/midi/v2 Message
// values so callers send them the same way regardless of origin (channel
// message vs. sysex), and a physical port write is one midi/v2 sender call.
package midi

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// Message is a single wire-ready MIDI message, the same type
// gitlab.com/gomidi/midi/v2 senders and listeners pass around.
type Message = midi.Message

// Channel is a 0-based MIDI channel number (0-15).
type Channel uint8

// Key is a MIDI note/key number (0-127).
type Key uint8

// NoteOn builds a Note On channel message.
func NoteOn(ch Channel, key Key, velocity uint8) midi.Message {
	return midi.NoteOn(uint8(ch), uint8(key), velocity)
}

// NoteOff builds a Note Off channel message.
func NoteOff(ch Channel, key Key) midi.Message {
	return midi.NoteOff(uint8(ch), uint8(key))
}

// ControlChange builds a Control Change channel message.
func ControlChange(ch Channel, controller, value uint8) midi.Message {
	return midi.ControlChange(uint8(ch), controller, value)
}

// ProgramChange builds a Program Change channel message, used to select a
// device's tuning program before a Single Note Tuning Change sysex takes
// effect (RP-012's "tuning program change" step).
func ProgramChange(ch Channel, program uint8) midi.Message {
	return midi.ProgramChange(uint8(ch), program)
}

// PitchBendChange builds a Pitch Bend Change channel message from a 14-bit
// signed value, center (no bend) at 0, full range ±8192.
func PitchBendChange(ch Channel, value int16) midi.Message {
	return midi.Pitchbend(uint8(ch), value)
}

// PitchBendForRatio converts a detuning ratio (in cents, via
// pitch.Ratio.Cents) to a 14-bit pitch bend value under a ±2 semitone bend
// range, matching the tuning dispatcher's pitch-bend tuning method:
// round(detuning_semitones / 2 * 8192).
func PitchBendForRatio(detuningCents float64) int16 {
	semitones := detuningCents / 100
	v := semitones / 2 * 8192
	if v > 8191 {
		v = 8191
	} else if v < -8192 {
		v = -8192
	}
	return int16(v + sign(v)*0.5) // round half away from zero
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// ValidateChannel returns an error if ch is outside the legal 0-15 range,
// the same bound every channel message's low nibble enforces.
func ValidateChannel(ch Channel) error {
	if ch > 15 {
		return fmt.Errorf("midi: channel %d out of range 0-15", ch)
	}
	return nil
}
