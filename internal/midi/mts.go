package midi

import "gitlab.com/gomidi/midi/v2"

// deviceIDAll addresses every device on the bus, matching a bare device_id:
// 0x7F in MTS sysex (the common default when retuning a single attached
// synth rather than selecting one device out of several on a shared bus).
const deviceIDAll = 0x7F

// NoteTuning is one key's entry in an RP-012 realtime Single Note Tuning
// Change sysex message. FractionCents is expressed relative to
// SemitoneBelow, and the pair is sent as a coarse semitone byte and a
// 14-bit fractional byte pair the same way RP-012 specifies (100 cents ==
// one semitone step, the fraction resolved to 1/16384 of a semitone).
type NoteTuning struct {
	Key           Key
	SemitoneBelow uint8 // MIDI note number of the nearest equal-tempered semitone at or below the target pitch
	FractionCents float64
}

// SingleNoteTuningChange builds the RP-012 sysex retargeting every entry in
// tunings under tuningProgram (0-127).
func SingleNoteTuningChange(deviceID uint8, tuningProgram uint8, tunings []NoteTuning) midi.Message {
	data := []byte{0x7F, deviceID, 0x08, 0x02, tuningProgram, byte(len(tunings))}
	for _, t := range tunings {
		frac14 := fractionTo14Bit(t.FractionCents)
		data = append(data,
			byte(t.Key),
			t.SemitoneBelow&0x7F,
			byte(frac14>>7)&0x7F,
			byte(frac14)&0x7F,
		)
	}
	return midi.SysEx(data)
}

func fractionTo14Bit(cents float64) uint16 {
	frac := cents / 100
	if frac < 0 {
		frac = 0
	} else if frac >= 1 {
		frac = 0.999939 // largest representable fraction below one semitone
	}
	return uint16(frac * 16384)
}

// ScaleOctaveFormat selects the 1-byte (CA-020) or 2-byte (CA-021)
// per-degree resolution of a Scale/Octave Tuning message.
type ScaleOctaveFormat int

const (
	// ScaleOctaveOneByte encodes each of the 12 degree offsets as a single
	// byte (0x00-0x7F, 0x40 = center), ±64 cents range.
	ScaleOctaveOneByte ScaleOctaveFormat = iota
	// ScaleOctaveTwoByte encodes each offset as a 14-bit MSB/LSB pair,
	// ±100 cents range at much finer resolution.
	ScaleOctaveTwoByte
)

// ScaleOctaveTuning builds a CA-020/CA-021 Scale/Octave Tuning sysex
// message applying the same 12 per-semitone-class cents offsets to every
// channel set in channels (bit i = MIDI channel i is affected).
func ScaleOctaveTuning(deviceID uint8, channels uint16, format ScaleOctaveFormat, offsetsCents [12]float64) midi.Message {
	sub2 := byte(0x08)
	if format == ScaleOctaveTwoByte {
		sub2 = 0x09
	}
	data := []byte{0x7F, deviceID, 0x08, sub2,
		byte(channels & 0x7F),
		byte((channels >> 7) & 0x7F),
		byte((channels >> 14) & 0x7F),
	}
	for _, c := range offsetsCents {
		if format == ScaleOctaveOneByte {
			data = append(data, centsToByte(c))
		} else {
			v := centsTo14Bit(c)
			data = append(data, byte(v>>7)&0x7F, byte(v)&0x7F)
		}
	}
	return midi.SysEx(data)
}

func centsToByte(cents float64) byte {
	v := cents + 64
	if v < 0 {
		v = 0
	} else if v > 127 {
		v = 127
	}
	return byte(v)
}

func centsTo14Bit(cents float64) uint16 {
	v := (cents + 100) / 200 * 16384
	if v < 0 {
		v = 0
	} else if v > 16383 {
		v = 16383
	}
	return uint16(v)
}

// ChannelFineTuning builds the RP-020 Channel Fine Tuning RPN sequence
// (RPN 00 01, Data Entry MSB/LSB) for one channel's detuning, the
// coarse-resolution fallback tuning method when a device supports RPN
// but not Scale/Octave Tuning or Single Note Tuning Change.
func ChannelFineTuning(ch Channel, detuningCents float64) []midi.Message {
	v := centsTo14Bit(detuningCents) // reuse the ±100 cents 14-bit mapping
	msb := byte(v>>7) & 0x7F
	lsb := byte(v) & 0x7F
	return []midi.Message{
		ControlChange(ch, 101, 0), // RPN MSB
		ControlChange(ch, 100, 1), // RPN LSB: fine tuning
		ControlChange(ch, 6, msb), // Data Entry MSB
		ControlChange(ch, 38, lsb),
		ControlChange(ch, 101, 0x7F), // null RPN, guards against stray Data Entry
		ControlChange(ch, 100, 0x7F),
	}
}
