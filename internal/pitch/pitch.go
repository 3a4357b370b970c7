// Package pitch implements the minimal frequency/ratio/scale data model the
// tuning dispatcher and CLI consume: a Pitch in Hz, a Ratio expressed in
// cents, and a Scale+KeyMap pair that together form a Tuning — a partial
// function from integer MIDI key to Pitch. Scale-construction helpers
// (parsing rank-2 generators, harmonic-series subsets, custom scale files)
// are out of scope; callers build a Scale's Ratios directly or via cmd/tune's
// own parsing.
package pitch

import "math"

// ReferencePitch is A4, matching every engine in the pack's
// midiToFreq(note) = 440 * 2^((note-69)/12) convention.
const ReferencePitch = 440.0

// ReferenceKey is the MIDI key number of A4 under 12-tone equal temperament.
const ReferenceKey = 69

// Pitch is a positive frequency in Hz.
type Pitch float64

// Ratio is a frequency ratio expressed in cents (1200 cents = one octave).
type Ratio float64

// RatioOf returns the ratio between two pitches, b relative to a.
func RatioOf(a, b Pitch) Ratio {
	return Ratio(1200 * math.Log2(float64(b)/float64(a)))
}

// Applied returns the pitch obtained by applying r to p.
func (r Ratio) Applied(p Pitch) Pitch {
	return Pitch(float64(p) * math.Pow(2, float64(r)/1200))
}

// Cents is the ratio's size in cents.
func (r Ratio) Cents() float64 { return float64(r) }

// Semitones converts a 12-TET semitone offset to a Ratio.
func Semitones(n float64) Ratio { return Ratio(n * 100) }

// EqualTemperament returns the semitone-equal-tempered pitch for a plain
// MIDI note number, matching the teacher engines' midiToFreq helper
// (440 * 2^((note-69)/12)).
func EqualTemperament(note int) Pitch {
	return Pitch(ReferencePitch * math.Pow(2, float64(note-ReferenceKey)/12))
}

// KeyMap anchors a Scale to absolute pitch: RootKey is the scale degree 0
// key, and RefPitch is the pitch that key sounds at.
type KeyMap struct {
	RootKey  int
	RefPitch Pitch
}

// Scale is an ordered list of pitch ratios relative to its KeyMap's root,
// one octave's worth of degrees repeating at Ratios' last entry (normally
// 1200 cents, i.e. the octave).
type Scale struct {
	Name   string
	Ratios []Ratio
}

// EqualScale builds an n-tone equal division of the octave, e.g.
// EqualScale(12) reproduces 12-tone equal temperament, EqualScale(19) a
// 19-tone equal division.
func EqualScale(divisions int) Scale {
	ratios := make([]Ratio, divisions)
	step := 1200.0 / float64(divisions)
	for i := range ratios {
		ratios[i] = Ratio(step * float64(i+1))
	}
	return Scale{Ratios: ratios}
}

// Tuning is a partial function from integer MIDI key to Pitch.
type Tuning struct {
	scale  Scale
	keyMap KeyMap
}

// NewTuning combines a Scale with a KeyMap.
func NewTuning(scale Scale, keyMap KeyMap) Tuning {
	return Tuning{scale: scale, keyMap: keyMap}
}

// PitchOf maps key to a Pitch. Every integer key is in-domain: keys below
// the root wrap through negative degree counts the same way keys above it
// wrap through positive ones.
func (t Tuning) PitchOf(key int) Pitch {
	degree := key - t.keyMap.RootKey
	size := len(t.scale.Ratios)
	if size == 0 {
		return t.keyMap.RefPitch
	}
	octaveSpan := t.scale.Ratios[size-1]

	octave := floorDiv(degree, size)
	index := degree - octave*size

	var ratio Ratio
	if index > 0 {
		ratio = t.scale.Ratios[index-1]
	}
	ratio += Ratio(float64(octave)) * octaveSpan
	return ratio.Applied(t.keyMap.RefPitch)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
