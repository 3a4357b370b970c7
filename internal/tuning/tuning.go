// Package tuning implements the polyphonic MIDI-output tuner: it maps
// pressed logical keys to a bounded pool of output MIDI channels and emits
// MTS tuning messages so each sounding note reaches its correct pitch on an
// external 12-TET synthesizer. Two dispatch strategies are supported: AOT
// (ahead-of-time, a fixed key-to-channel map computed once at startup) and
// JIT (just-in-time, a dynamic map built as notes are pressed and released).
package tuning

import (
	"fmt"

	"github.com/cbegin/magnetron/internal/midi"
)

// Method selects which MIDI tuning mechanism carries each channel's
// detuning to the receiving device.
type Method int

const (
	// FullKeyboard uses Single Note Tuning Change: each channel can carry
	// one detuning per simultaneously sounding note.
	FullKeyboard Method = iota
	// Octave uses Scale/Octave Tuning: each channel can carry one detuning
	// per note letter (so two notes sharing a letter across octaves must
	// share the same detuning on one channel).
	Octave
	// ChannelFineTuning uses the RPN Channel Fine Tuning message: a
	// channel can carry at most one detuning at a time.
	ChannelFineTuning
	// PitchBend uses Pitch Bend Change: like ChannelFineTuning, a channel
	// carries at most one detuning at a time, via the cheapest possible
	// message.
	PitchBend
)

// PoolingMode selects what a JIT tuner does when a new note needs a channel
// but every channel already carries an incompatible detuning.
type PoolingMode int

const (
	// PoolingBlock silently drops the new note; it never sounds.
	PoolingBlock PoolingMode = iota
	// PoolingStop stops the oldest conflicting note on a channel and
	// reassigns that channel to the new note.
	PoolingStop
	// PoolingIgnore takes over the first channel of the window: the note
	// sounding there gets a Note Off and its key loses its channel, then
	// the channel is retuned for the new note. The displaced note does
	// not keep sounding.
	PoolingIgnore
)

// TooManyChannelsRequired is returned by NewAotTuner when the tuning can't
// be realized within the channel budget the caller offered: dispatching
// requires at least Required channels, but only Available were given.
type TooManyChannelsRequired struct {
	Required  int
	Available int
}

func (e *TooManyChannelsRequired) Error() string {
	return fmt.Sprintf("tuning: %d channels required, only %d available", e.Required, e.Available)
}

// firstChannel/numChannels describe the contiguous block of MIDI channels
// (wrapping at 16) a dispatcher is allowed to use, mirroring the live CLI's
// --out-chan/--out-chans flags.
type channelWindow struct {
	first int
	n     int
}

func (w channelWindow) midiChannel(tunerChannel int) midi.Channel {
	return midi.Channel((w.first + tunerChannel) % 16)
}
