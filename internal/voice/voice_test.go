package voice

import (
	"testing"

	"github.com/cbegin/magnetron/internal/lfsource"
	"github.com/cbegin/magnetron/internal/stage"
)

func TestNoteOnFillsFreeSlotsBeforeStealing(t *testing.T) {
	a := NewAllocator(2)
	p1 := &lfsource.Properties{}
	p2 := &lfsource.Properties{}
	id1 := a.NoteOn(1, p1, []stage.Stage{})
	id2 := a.NoteOn(2, p2, []stage.Stage{})
	if id1 == id2 {
		t.Fatal("expected distinct voice IDs")
	}
	active := 0
	for _, v := range a.Voices() {
		if v.Active {
			active++
		}
	}
	if active != 2 {
		t.Fatalf("active voices = %d, want 2", active)
	}
}

func TestNoteOnStealsOldestVoiceOnOverflow(t *testing.T) {
	a := NewAllocator(2)
	p1 := &lfsource.Properties{}
	p2 := &lfsource.Properties{}
	p3 := &lfsource.Properties{}
	id1 := a.NoteOn(1, p1, []stage.Stage{})
	a.NoteOn(2, p2, []stage.Stage{})
	id3 := a.NoteOn(3, p3, []stage.Stage{})

	found1, found3 := false, false
	for _, v := range a.Voices() {
		if v.ID == id1 {
			found1 = true
		}
		if v.ID == id3 {
			found3 = true
		}
	}
	if found1 {
		t.Error("oldest voice should have been evicted on overflow")
	}
	if !found3 {
		t.Error("newest voice should occupy a slot after overflow")
	}
}

func TestNoteOffSetsReleaseOnlyOnce(t *testing.T) {
	a := NewAllocator(1)
	p := &lfsource.Properties{}
	a.NoteOn(5, p, []stage.Stage{})
	a.NoteOff(5, 1.0)
	if p.SecsSinceReleased == nil || *p.SecsSinceReleased != 1.0 {
		t.Fatalf("expected SecsSinceReleased = 1.0, got %v", p.SecsSinceReleased)
	}
	a.NoteOff(5, 2.0)
	if *p.SecsSinceReleased != 1.0 {
		t.Errorf("a second NoteOff must not overwrite an already-released voice, got %v", *p.SecsSinceReleased)
	}
}

func TestStealStartsForcedFadeout(t *testing.T) {
	a := NewAllocator(1)
	p := &lfsource.Properties{}
	a.NoteOn(1, p, []stage.Stage{})
	a.Steal(0)
	if p.SecsSinceStolen == nil || *p.SecsSinceStolen != 0 {
		t.Fatalf("expected SecsSinceStolen = 0 after Steal, got %v", p.SecsSinceStolen)
	}
}

func TestRetireFreesSlotForReuse(t *testing.T) {
	a := NewAllocator(1)
	p1 := &lfsource.Properties{}
	a.NoteOn(1, p1, []stage.Stage{})
	a.Retire(0)
	if a.Voices()[0].Active {
		t.Fatal("expected slot to be inactive after Retire")
	}
	p2 := &lfsource.Properties{}
	a.NoteOn(2, p2, []stage.Stage{})
	if !a.Voices()[0].Active {
		t.Fatal("expected the freed slot to be reused by a subsequent NoteOn")
	}
}
