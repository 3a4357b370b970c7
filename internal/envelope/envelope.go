// Package envelope implements the named attack/decay/release curves that
// the LfSource `Envelope{name, from, to}` expression blends between, and
// the registry waveform files declare them in.
//
// This is distinct from the audio-rate Envelope *stage* in package stage,
// whose attack/decay/release/fadeout parameters are themselves LfSource
// expressions recompiled per voice. A named curve here is a plain
// constant-parameter function of elapsed time, matching how the source
// format declares its `envelopes:` catalog.
package envelope

import "math"

// Spec is one named envelope's constant parameters, as loaded from a
// waveform file's `envelopes:` list.
type Spec struct {
	Name        string  `yaml:"name"`
	AttackTime  float64 `yaml:"attack_time"`
	ReleaseTime float64 `yaml:"release_time"`
	DecayRate   float64 `yaml:"decay_rate"`
	Fadeout     float64 `yaml:"fadeout"`
}

// Curve evaluates a Spec into a pure function of elapsed time.
type Curve struct{ spec Spec }

// New compiles spec into a Curve.
func New(spec Spec) Curve { return Curve{spec: spec} }

// GetValue returns the envelope's value in [0, 1] at secsSincePressed
// seconds after the key went down, and, once secsSinceReleased is
// non-nil, ramping to 0 over ReleaseTime seconds from whatever value the
// attack/decay phase had reached at the moment of release.
func (c Curve) GetValue(secsSincePressed float64, secsSinceReleased *float64) float64 {
	held := heldValue(c.spec, secsSincePressed)
	if secsSinceReleased == nil {
		return held
	}
	if c.spec.ReleaseTime <= 0 {
		return 0
	}
	fraction := *secsSinceReleased / c.spec.ReleaseTime
	if fraction >= 1 {
		return 0
	}
	return held * (1 - fraction)
}

// heldValue is the curve's value while the key is still down: a linear
// ramp to 1 over AttackTime, then a multiplicative decay at DecayRate per
// second.
func heldValue(spec Spec, t float64) float64 {
	if spec.AttackTime > 0 && t < spec.AttackTime {
		return t / spec.AttackTime
	}
	held := t - spec.AttackTime
	if held < 0 {
		held = 0
	}
	return math.Exp(-spec.DecayRate * held)
}

// Registry looks named envelopes up by name.
type Registry map[string]Curve

// NewRegistry compiles a list of Specs into a Registry.
func NewRegistry(specs []Spec) Registry {
	r := make(Registry, len(specs))
	for _, s := range specs {
		r[s.Name] = New(s)
	}
	return r
}

// Lookup returns the named Curve, or false if no envelope with that name
// was declared.
func (r Registry) Lookup(name string) (Curve, bool) {
	c, ok := r[name]
	return c, ok
}
