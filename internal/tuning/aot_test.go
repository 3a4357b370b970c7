package tuning

import (
	"errors"
	"testing"

	"github.com/cbegin/magnetron/internal/pitch"
)

func equalTemperamentTuning() pitch.Tuning {
	return pitch.NewTuning(pitch.EqualScale(12), pitch.KeyMap{RootKey: 69, RefPitch: 440})
}

func TestNewAotTunerFullKeyboardNeverClashesOnEqualTemperament(t *testing.T) {
	keys := []int{60, 61, 62, 63, 64}
	tuner, msgs, err := NewAotTuner(equalTemperamentTuning(), keys, FullKeyboard, 0, 16)
	if err != nil {
		t.Fatalf("NewAotTuner: %v", err)
	}
	if len(msgs) == 0 {
		t.Error("expected at least one tuning message")
	}
	seen := map[int]bool{}
	for _, k := range keys {
		ch, _, ok := tuner.ChannelAndNote(k)
		if !ok {
			t.Fatalf("key %d has no channel assignment", k)
		}
		_ = ch
		seen[k] = true
	}
	if len(seen) != len(keys) {
		t.Errorf("expected every key assigned, got %d of %d", len(seen), len(keys))
	}
}

func TestNewAotTunerFullKeyboardFitsOnOneChannelWhenNoNoteCollides(t *testing.T) {
	// Distinct equal-tempered note numbers never collide under FullKeyboard,
	// so a single channel suffices regardless of key count.
	keys := []int{60, 61, 62, 63, 64, 65, 66, 67}
	_, _, err := NewAotTuner(equalTemperamentTuning(), keys, FullKeyboard, 0, 1)
	if err != nil {
		t.Errorf("expected a single channel to suffice, got error: %v", err)
	}
}

func TestNewAotTunerChannelFineTuningNeedsOneChannelPerDistinctDetuning(t *testing.T) {
	// Under a rank-2/non-12-TET tuning, many keys will need distinct
	// detunings relative to their nearest equal-tempered semitone, and
	// ChannelFineTuning can only carry one detuning per channel.
	tuning := pitch.NewTuning(pitch.EqualScale(19), pitch.KeyMap{RootKey: 69, RefPitch: 440})
	keys := []int{60, 61, 62, 63, 64, 65, 66, 67, 68, 69, 70, 71, 72}
	_, _, err := NewAotTuner(tuning, keys, ChannelFineTuning, 0, 1)
	var tooMany *TooManyChannelsRequired
	if !errors.As(err, &tooMany) {
		t.Fatalf("expected TooManyChannelsRequired with a 1-channel budget, got %v", err)
	}
	if tooMany.Available != 1 {
		t.Errorf("Available = %d, want 1", tooMany.Available)
	}
}

func TestNewAotTunerOctaveGroupsByNoteLetter(t *testing.T) {
	// Two keys an octave apart share a note letter, so Octave tuning can
	// put them on the same channel even under a non-12-TET scale, as long
	// as their cents-from-nearest-semitone values agree.
	tuning := equalTemperamentTuning()
	keys := []int{60, 72} // same letter, one octave apart, identical 12-TET detuning (zero)
	aot, _, err := NewAotTuner(tuning, keys, Octave, 0, 16)
	if err != nil {
		t.Fatalf("NewAotTuner: %v", err)
	}
	ch60, _, _ := aot.ChannelAndNote(60)
	ch72, _, _ := aot.ChannelAndNote(72)
	if ch60 != ch72 {
		t.Errorf("expected same-letter keys to share a channel under Octave tuning, got %v and %v", ch60, ch72)
	}
}
