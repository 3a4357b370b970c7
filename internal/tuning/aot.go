package tuning

import (
	"math"
	"sort"

	"github.com/cbegin/magnetron/internal/midi"
	"github.com/cbegin/magnetron/internal/pitch"
)

// AotTuner holds a fixed key-to-channel map computed once at startup: every
// key the caller supplies up front gets a channel assignment that never
// changes, eliminating runtime tuning clashes at the cost of needing as
// many channels as the tuning's most crowded resource class requires.
type AotTuner struct {
	channel map[int]midi.Channel // logical key -> assigned channel
	note    map[int]uint8        // logical key -> MIDI note number sent for NoteOn/NoteOff
}

// resourceClass groups keys that share one channel-level tuning resource:
// Single Note Tuning Change can carry an independent detuning per note
// number per channel, so FullKeyboard's class is the note number; Scale/
// Octave Tuning carries one detuning per note letter, so Octave's class is
// note number mod 12; Channel Fine Tuning and Pitch Bend carry exactly one
// detuning for the whole channel, so their class is constant.
func resourceClass(method Method, note uint8) int {
	switch method {
	case FullKeyboard:
		return int(note)
	case Octave:
		return int(note) % 12
	default:
		return 0
	}
}

// roundCents quantizes a cents value so two detunings that should be
// identical dedupe into the same slot despite float noise.
func roundCents(c float64) int64 {
	return int64(math.Round(c * 100))
}

type slotKey struct {
	class int
	cents int64
}

// keyAssignment is the per-key bookkeeping NewAotTuner threads through slot
// assignment and message construction.
type keyAssignment struct {
	key     int
	note    uint8
	cents   float64
	channel midi.Channel
}

// NewAotTuner computes the fixed key-to-channel assignment for tuning over
// keys, using method and a channel budget of numChannels channels starting
// at firstChannel (wrapping at 16, matching the CLI's --out-chan/--out-chans
// flags). It returns *TooManyChannelsRequired if the tuning's busiest
// resource class needs more channels than the budget allows.
func NewAotTuner(tuning pitch.Tuning, keys []int, method Method, firstChannel, numChannels int) (*AotTuner, []midi.Message, error) {
	window := channelWindow{first: firstChannel, n: numChannels}

	sortedKeys := append([]int(nil), keys...)
	sort.Ints(sortedKeys)

	assignments := make([]keyAssignment, 0, len(sortedKeys))
	slotsPerClass := map[int]int{}
	slotOf := map[slotKey]int{}

	for _, k := range sortedKeys {
		p := tuning.PitchOf(k)
		note := clampNote(nearestNote(p))
		et := pitch.EqualTemperament(int(note))
		cents := float64(pitch.RatioOf(et, p))

		sk := slotKey{class: resourceClass(method, note), cents: roundCents(cents)}
		slot, ok := slotOf[sk]
		if !ok {
			slot = slotsPerClass[sk.class]
			slotOf[sk] = slot
			slotsPerClass[sk.class] = slot + 1
		}

		assignments = append(assignments, keyAssignment{key: k, note: note, cents: cents, channel: window.midiChannel(slot)})
	}

	required := 0
	for _, n := range slotsPerClass {
		if n > required {
			required = n
		}
	}
	if required > numChannels {
		return nil, nil, &TooManyChannelsRequired{Required: required, Available: numChannels}
	}

	channelOf := map[int]midi.Channel{}
	noteOf := map[int]uint8{}
	for _, a := range assignments {
		channelOf[a.key] = a.channel
		noteOf[a.key] = a.note
	}

	return &AotTuner{channel: channelOf, note: noteOf}, buildAotTuningMessages(method, assignments), nil
}

func buildAotTuningMessages(method Method, assignments []keyAssignment) []midi.Message {
	var out []midi.Message

	switch method {
	case FullKeyboard:
		perChannel := map[midi.Channel][]midi.NoteTuning{}
		for _, a := range assignments {
			below := a.note
			if a.cents < 0 && below > 0 {
				below--
			}
			perChannel[a.channel] = append(perChannel[a.channel], midi.NoteTuning{
				Key:           midi.Key(a.note),
				SemitoneBelow: below,
				FractionCents: math.Mod(a.cents+10000, 100),
			})
		}
		for ch, tunings := range perChannel {
			out = append(out, midi.ProgramChange(ch, uint8(ch)))
			out = append(out, midi.SingleNoteTuningChange(0x7F, uint8(ch), tunings))
		}
	case Octave:
		perChannel := map[midi.Channel][12]float64{}
		for _, a := range assignments {
			offsets := perChannel[a.channel]
			offsets[a.note%12] = a.cents
			perChannel[a.channel] = offsets
		}
		for ch, offsets := range perChannel {
			out = append(out, midi.ScaleOctaveTuning(0x7F, uint16(1)<<uint(ch), midi.ScaleOctaveOneByte, offsets))
		}
	case ChannelFineTuning:
		for _, a := range assignments {
			out = append(out, midi.ChannelFineTuning(a.channel, a.cents)...)
		}
	case PitchBend:
		for _, a := range assignments {
			out = append(out, midi.PitchBendChange(a.channel, midi.PitchBendForRatio(a.cents)))
		}
	}
	return out
}

// ChannelAndNote returns the fixed MIDI channel and note number to send for
// key, as computed by NewAotTuner.
func (t *AotTuner) ChannelAndNote(key int) (midi.Channel, uint8, bool) {
	ch, ok := t.channel[key]
	if !ok {
		return 0, 0, false
	}
	return ch, t.note[key], true
}

func nearestNote(p pitch.Pitch) int {
	return int(math.Round(float64(pitch.ReferenceKey) + 12*math.Log2(float64(p)/pitch.ReferencePitch)))
}

func clampNote(n int) uint8 {
	if n < 0 {
		return 0
	}
	if n > 127 {
		return 127
	}
	return uint8(n)
}
