// Package voice implements the Magnetron engine's fixed-size polyphony
// pool: which logical key maps to which voice slot, and which voice
// gets stolen when every slot is already sounding.
package voice

import (
	"github.com/cbegin/magnetron/internal/lfsource"
	"github.com/cbegin/magnetron/internal/stage"
)

// Voice is one sounding note: its mutable automation properties and its
// already-compiled stage chain. A voice's stages are compiled fresh on
// every NoteOn, since each stage closure captures per-voice mutable
// state (oscillator phase, filter/waveguide history) at compile time.
type Voice struct {
	Active     bool
	ID         int
	KeyID      int
	Properties *lfsource.Properties
	Stages     []stage.Stage
	age        int
}

// Allocator owns a fixed-size pool of voices. On overflow it steals the
// oldest voice's slot immediately (the "steal" policy a fixed-size
// pool permits, as opposed to waiting for the stolen voice's own
// fadeout to finish before reusing its slot) the same array-scan
// eviction shape the teacher's FM engine used for stealVoice, with the
// selection metric changed from quietest-envelope to oldest-voice to
// match this engine's per-voice (not per-operator) envelope tracking.
// Steal is still exposed separately for callers that want a graceful
// fade without an immediate replacement, e.g. a sustain-pedal release
// or panic-stop.
type Allocator struct {
	voices   []Voice
	nextID   int
	nextAge  int
	keyIndex map[int]int // logical key ID -> voice slot, most recent NoteOn wins
}

// NewAllocator allocates a pool of the given polyphony, every slot
// starting idle.
func NewAllocator(polyphony int) *Allocator {
	voices := make([]Voice, polyphony)
	for i := range voices {
		voices[i].KeyID = -1
	}
	return &Allocator{voices: voices, keyIndex: make(map[int]int)}
}

// NoteOn assigns stages and props to a free or stolen voice slot and
// returns its ID. keyID identifies the logical key (for tuning
// dispatch and NoteOff lookup) and need not be unique across the pool
// at any instant stolen voices are still fading.
func (a *Allocator) NoteOn(keyID int, props *lfsource.Properties, stages []stage.Stage) int {
	slot := a.freeSlot()
	if slot < 0 {
		slot = a.oldestActiveSlot()
	}
	id := a.nextID
	a.nextID++
	a.voices[slot] = Voice{
		Active:     true,
		ID:         id,
		KeyID:      keyID,
		Properties: props,
		Stages:     stages,
		age:        a.nextAge,
	}
	a.nextAge++
	a.keyIndex[keyID] = slot
	return id
}

// NoteOff starts the release ramp on keyID's current voice, found via
// the key-ID-to-slot index; it also sweeps every other active voice
// still holding keyID, covering the brief window where a stolen voice
// for the same key is still fading out alongside its replacement.
func (a *Allocator) NoteOff(keyID int, secsSinceReleased float64) {
	if slot, ok := a.keyIndex[keyID]; ok {
		a.release(slot, keyID, secsSinceReleased)
	}
	for i := range a.voices {
		a.release(i, keyID, secsSinceReleased)
	}
}

func (a *Allocator) release(i, keyID int, secsSinceReleased float64) {
	v := &a.voices[i]
	if v.Active && v.KeyID == keyID && v.Properties.SecsSinceReleased == nil {
		released := secsSinceReleased
		v.Properties.SecsSinceReleased = &released
	}
}

// Voices returns the live backing slice for the engine's render loop to
// iterate; inactive slots are skipped by callers checking Active.
func (a *Allocator) Voices() []Voice { return a.voices }

// Retire deactivates the voice at index i, freeing its slot for reuse.
func (a *Allocator) Retire(i int) {
	a.voices[i] = Voice{KeyID: -1}
}

func (a *Allocator) freeSlot() int {
	for i := range a.voices {
		if !a.voices[i].Active {
			return i
		}
	}
	return -1
}

// oldestActiveSlot returns the index of the longest-sounding active
// voice, the pool's eviction target once every slot is occupied.
func (a *Allocator) oldestActiveSlot() int {
	oldest := 0
	min := a.voices[0].age
	for i := 1; i < len(a.voices); i++ {
		if a.voices[i].age < min {
			min = a.voices[i].age
			oldest = i
		}
	}
	return oldest
}

// Steal begins a forced fadeout on the voice at index i without
// replacing it, freezing the moment of the steal as t=0 for the
// Envelope stage's forced-fadeout override path. The engine retires
// the voice once its envelope amplitude (Properties.CurrAmplitude) is
// at or below stage.EnvelopeSilenceThreshold.
func (a *Allocator) Steal(i int) {
	zero := 0.0
	a.voices[i].Properties.SecsSinceStolen = &zero
}
