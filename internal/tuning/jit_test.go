package tuning

import "testing"

func TestJitTunerAssignsDistinctChannelsUntilExhausted(t *testing.T) {
	jt := NewJitTuner(ChannelFineTuning, PoolingBlock, 0, 2)

	_, ch1, _, ok1 := jt.NoteOn(1, 440, 100)
	_, ch2, _, ok2 := jt.NoteOn(2, 466.16, 100)
	if !ok1 || !ok2 {
		t.Fatal("expected both notes accepted within channel budget")
	}
	if ch1 == ch2 {
		t.Error("expected distinct channels for two simultaneous notes")
	}

	_, _, _, ok3 := jt.NoteOn(3, 493.88, 100)
	if ok3 {
		t.Error("expected PoolingBlock to reject a third note beyond the channel budget")
	}
}

func TestJitTunerFreesChannelOnNoteOff(t *testing.T) {
	jt := NewJitTuner(ChannelFineTuning, PoolingBlock, 0, 1)

	_, _, _, ok := jt.NoteOn(1, 440, 100)
	if !ok {
		t.Fatal("expected first note accepted")
	}
	if _, _, ok := jt.NoteOff(1, 0); !ok {
		t.Fatal("expected NoteOff to find the assigned channel")
	}

	_, _, _, ok = jt.NoteOn(2, 466.16, 100)
	if !ok {
		t.Error("expected the freed channel to be available for a new note")
	}
}

func TestJitTunerPoolingStopEvictsOldestNote(t *testing.T) {
	jt := NewJitTuner(ChannelFineTuning, PoolingStop, 0, 1)

	_, _, _, ok1 := jt.NoteOn(1, 440, 100)
	if !ok1 {
		t.Fatal("expected first note accepted")
	}
	msgs, _, _, ok2 := jt.NoteOn(2, 466.16, 100)
	if !ok2 {
		t.Fatal("expected PoolingStop to accept a note beyond the channel budget by evicting")
	}
	if len(msgs) == 0 {
		t.Fatal("expected at least a Note Off for the evicted note plus tuning/Note On for the new one")
	}
	if _, _, ok := jt.NoteOff(1, 0); ok {
		t.Error("expected the evicted note's key to no longer hold a channel")
	}
}

func TestJitTunerPoolingIgnoreStealsChannelZero(t *testing.T) {
	jt := NewJitTuner(ChannelFineTuning, PoolingIgnore, 0, 1)

	_, _, _, ok1 := jt.NoteOn(1, 440, 100)
	if !ok1 {
		t.Fatal("expected first note accepted")
	}
	msgs, _, _, ok2 := jt.NoteOn(2, 466.16, 100)
	if !ok2 {
		t.Fatal("expected PoolingIgnore to accept a note beyond the channel budget by stealing")
	}
	if len(msgs) == 0 {
		t.Fatal("expected at least a Note Off for the stolen note plus tuning/Note On for the new one")
	}
	if _, _, ok := jt.NoteOff(1, 0); ok {
		t.Error("expected the stolen note's key to no longer hold a channel, so its later NoteOff cannot kill the new note")
	}
	if _, _, ok := jt.NoteOff(2, 0); !ok {
		t.Error("expected the new note's key to still hold the stolen channel")
	}
}

func TestJitTunerNoteOffUnknownKeyIsNotOk(t *testing.T) {
	jt := NewJitTuner(ChannelFineTuning, PoolingBlock, 0, 1)
	if _, _, ok := jt.NoteOff(99, 0); ok {
		t.Error("expected NoteOff on an unassigned key to report not-ok")
	}
}
