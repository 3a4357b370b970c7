package tuning

import (
	"math"

	"github.com/cbegin/magnetron/internal/midi"
	"github.com/cbegin/magnetron/internal/pitch"
)

type jitChannel struct {
	key      *int // logical key currently occupying this channel, nil if free
	note     uint8
	assignAt int64 // monotonic age at the time of assignment, for PoolingStop eviction
}

// JitTuner builds its key-to-channel map on the fly as notes are pressed
// and released, retuning each channel only when the note it carries
// changes. PoolingMode governs what happens when a note needs a channel
// but none is free.
type JitTuner struct {
	method     Method
	window     channelWindow
	pooling    PoolingMode
	channels   []jitChannel
	keyChannel map[int]int
	clock      int64
}

// NewJitTuner creates a tuner dispatching over numChannels channels
// starting at firstChannel (wrapping at 16).
func NewJitTuner(method Method, pooling PoolingMode, firstChannel, numChannels int) *JitTuner {
	return &JitTuner{
		method:     method,
		window:     channelWindow{first: firstChannel, n: numChannels},
		pooling:    pooling,
		channels:   make([]jitChannel, numChannels),
		keyChannel: map[int]int{},
	}
}

// NoteOn assigns key a channel for pitch p and returns the MIDI messages to
// send (a tuning update followed by Note On), the channel and note number
// used, and whether the note was accepted. A false ok under PoolingBlock
// means the note must stay silent.
func (t *JitTuner) NoteOn(key int, p pitch.Pitch, velocity uint8) ([]midi.Message, midi.Channel, uint8, bool) {
	t.clock++
	note := clampNote(nearestNote(p))
	et := pitch.EqualTemperament(int(note))
	cents := float64(pitch.RatioOf(et, p))

	idx, ok := t.freeChannel()
	var evictedKey *int
	if !ok {
		switch t.pooling {
		case PoolingBlock:
			return nil, 0, 0, false
		case PoolingStop:
			idx = t.oldestAssignedChannel()
			evictedKey = t.channels[idx].key
		case PoolingIgnore:
			idx = 0
			evictedKey = t.channels[idx].key
		}
	}

	var msgs []midi.Message
	if evictedKey != nil {
		msgs = append(msgs, midi.NoteOff(t.window.midiChannel(idx), midi.Key(t.channels[idx].note)))
		delete(t.keyChannel, *evictedKey)
	}

	ch := t.window.midiChannel(idx)
	msgs = append(msgs, tuningMessage(t.method, ch, note, cents)...)
	msgs = append(msgs, midi.NoteOn(ch, midi.Key(note), velocity))

	t.channels[idx] = jitChannel{key: &key, note: note, assignAt: t.clock}
	t.keyChannel[key] = idx

	return msgs, ch, note, true
}

// NoteOff releases key's channel and returns the Note Off message to send,
// or ok=false if key was never assigned a channel (e.g. it was dropped
// under PoolingBlock).
func (t *JitTuner) NoteOff(key int, velocity uint8) (midi.Message, midi.Channel, bool) {
	idx, ok := t.keyChannel[key]
	if !ok {
		return nil, 0, false
	}
	note := t.channels[idx].note
	ch := t.window.midiChannel(idx)
	t.channels[idx] = jitChannel{}
	delete(t.keyChannel, key)
	return midi.NoteOff(ch, midi.Key(note)), ch, true
}

func (t *JitTuner) freeChannel() (int, bool) {
	for i := range t.channels {
		if t.channels[i].key == nil {
			return i, true
		}
	}
	return 0, false
}

func (t *JitTuner) oldestAssignedChannel() int {
	oldest := 0
	for i := range t.channels {
		if t.channels[i].assignAt < t.channels[oldest].assignAt {
			oldest = i
		}
	}
	return oldest
}

func tuningMessage(method Method, ch midi.Channel, note uint8, cents float64) []midi.Message {
	switch method {
	case FullKeyboard:
		below := note
		if cents < 0 && below > 0 {
			below--
		}
		tuning := midi.NoteTuning{Key: midi.Key(note), SemitoneBelow: below, FractionCents: math.Mod(cents+10000, 100)}
		return []midi.Message{midi.SingleNoteTuningChange(0x7F, uint8(ch), []midi.NoteTuning{tuning})}
	case Octave:
		var offsets [12]float64
		offsets[note%12] = cents
		return []midi.Message{midi.ScaleOctaveTuning(0x7F, uint16(1)<<uint(ch), midi.ScaleOctaveOneByte, offsets)}
	case ChannelFineTuning:
		return midi.ChannelFineTuning(ch, cents)
	case PitchBend:
		return []midi.Message{midi.PitchBendChange(ch, midi.PitchBendForRatio(cents))}
	}
	return nil
}
