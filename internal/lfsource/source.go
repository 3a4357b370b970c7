// Package lfsource implements the LF-source expression language: a small
// applicative language compiled once per waveform voice into a closure
// that is then evaluated once per control block. Every numeric knob in a
// compiled waveform graph is an LfSource, so the audio-rate stages never
// see the expression tree itself, only the scalar it produced this block.
package lfsource

import (
	"fmt"

	"github.com/cbegin/magnetron/internal/envelope"
)

// Properties is the per-voice mutable state an Automation reads from.
type Properties struct {
	PitchHz           float64
	Velocity          float64
	KeyPressure       *float64
	OffVelocity       *float64
	SecsSincePressed  float64
	SecsSinceReleased *float64
	// SecsSinceStolen is non-nil once the voice allocator has marked this
	// voice for forced retirement (polyphony overflow); the Envelope
	// stage overrides its normal attack/decay/release shape with a
	// straight-line fade to zero over its Fadeout time once this is set.
	SecsSinceStolen *float64
	// CurrAmplitude mirrors the Envelope stage's last computed amplitude
	// so the engine can read it without reaching into stage internals
	// when deciding whether a released or stolen voice can be retired.
	CurrAmplitude float64
}

// AutomationContext is passed to every compiled Automation once per
// control block.
type AutomationContext struct {
	Properties       *Properties
	PitchBend        float64
	RenderWindowSecs float64
	Envelopes        envelope.Registry
	Controller       func(Controller) float64
}

// Read evaluates an Automation against this context. It exists (rather
// than calling a.Eval directly) to mirror the original engine's
// context.read(&mut automation) call sites, keeping every evaluation site
// textually uniform.
func (ctx *AutomationContext) Read(a *Automation) float64 { return a.Eval(ctx) }

// Automation is a compiled LfSource: a closure over its nested
// automations and any per-voice mutable state (oscillator phase), built
// once and then evaluated with no further allocation.
type Automation struct {
	fn func(ctx *AutomationContext) float64
}

// NewAutomation wraps fn as an Automation.
func NewAutomation(fn func(ctx *AutomationContext) float64) *Automation {
	return &Automation{fn: fn}
}

// Eval calls the compiled closure.
func (a *Automation) Eval(ctx *AutomationContext) float64 { return a.fn(ctx) }

// Constant returns an Automation that always evaluates to v, useful for
// tests and for stage defaults.
func Constant(v float64) *Automation {
	return NewAutomation(func(*AutomationContext) float64 { return v })
}

// Unit names the two dimensionless LfSource unit expressions.
type Unit int

const (
	WaveformPitch Unit = iota
	Wavelength
)

func (u Unit) String() string {
	if u == Wavelength {
		return "Wavelength"
	}
	return "WaveformPitch"
}

func parseUnit(s string) (Unit, bool) {
	switch s {
	case "WaveformPitch":
		return WaveformPitch, true
	case "Wavelength":
		return Wavelength, true
	default:
		return 0, false
	}
}

// PropertyKind names the two per-voice properties LfSource Property can
// scale between.
type PropertyKind int

const (
	Velocity PropertyKind = iota
	KeyPressure
)

// kind tags which variant of the untagged LfSource union a value holds.
type kind int

const (
	kindValue kind = iota
	kindUnit
	kindAdd
	kindMul
	kindOscillator
	kindEnvelope
	kindTime
	kindProperty
	kindControl
)

// LfSource is the expression tree described in the waveform file format:
// a float, a unit keyword, or one of the tagged expression shapes. It is
// represented as a single flat struct (rather than an interface
// hierarchy) so that YAML decoding can populate it directly and Compile
// can switch on kind; this mirrors the source format's single untagged
// enum more closely than a Go interface tree would.
type LfSource struct {
	k kind

	value float64
	unit  Unit

	a, b *LfSource // Add, Mul

	oscKind               OscillatorKind // Oscillator
	phase                 float64
	frequency, baseline, amplitude *LfSource

	envelopeName string // Envelope
	from, to     *LfSource

	start, end *LfSource // Time

	propertyKind PropertyKind // Property

	controller Controller // Control
}

// Val constructs a constant LfSource.
func Val(v float64) *LfSource { return &LfSource{k: kindValue, value: v} }

// UnitSource constructs a WaveformPitch/Wavelength LfSource.
func UnitSource(u Unit) *LfSource { return &LfSource{k: kindUnit, unit: u} }

// AddOf constructs an Add expression.
func AddOf(a, b *LfSource) *LfSource { return &LfSource{k: kindAdd, a: a, b: b} }

// MulOf constructs a Mul expression.
func MulOf(a, b *LfSource) *LfSource { return &LfSource{k: kindMul, a: a, b: b} }

// OscillatorOf constructs an Oscillator expression.
func OscillatorOf(kind OscillatorKind, phase0 float64, frequency, baseline, amplitude *LfSource) *LfSource {
	return &LfSource{k: kindOscillator, oscKind: kind, phase: phase0, frequency: frequency, baseline: baseline, amplitude: amplitude}
}

// EnvelopeOf constructs a named-envelope blend expression.
func EnvelopeOf(name string, from, to *LfSource) *LfSource {
	return &LfSource{k: kindEnvelope, envelopeName: name, from: from, to: to}
}

// TimeOf constructs a linear time-ramp expression.
func TimeOf(start, end, from, to *LfSource) *LfSource {
	return &LfSource{k: kindTime, start: start, end: end, from: from, to: to}
}

// PropertyOf constructs a velocity/key-pressure scaled expression.
func PropertyOf(p PropertyKind, from, to *LfSource) *LfSource {
	return &LfSource{k: kindProperty, propertyKind: p, from: from, to: to}
}

// ControlOf constructs a MIDI-controller scaled expression.
func ControlOf(c Controller, from, to *LfSource) *LfSource {
	return &LfSource{k: kindControl, controller: c, from: from, to: to}
}

// Creator compiles LfSource trees into Automations, resolving named
// envelope references against a registry built from a waveform file's
// `envelopes:` list. SampleRate is exposed for stages (oscillator,
// waveguide, filter) that need it at compile time to size delay lines
// or derive per-sample increments.
type Creator struct {
	Envelopes  envelope.Registry
	SampleRate float64
}

// NewCreator builds a Creator over the given envelope registry and
// engine sample rate.
func NewCreator(envelopes envelope.Registry, sampleRate float64) *Creator {
	return &Creator{Envelopes: envelopes, SampleRate: sampleRate}
}

// Create compiles src into an Automation. It never returns nil; a nil src
// compiles to the zero constant, matching how optional LfSource fields in
// the waveform file default when omitted.
func (c *Creator) Create(src *LfSource) *Automation {
	if src == nil {
		return Constant(0)
	}
	return src.compile(c)
}

// CreateEnvelope resolves name against the Creator's registry. The
// waveform compiler calls this eagerly so a missing envelope name is
// caught (and warned about) at compile time rather than first-render
// time.
func (c *Creator) CreateEnvelope(name string) (envelope.Curve, error) {
	curve, ok := c.Envelopes.Lookup(name)
	if !ok {
		return envelope.Curve{}, fmt.Errorf("lfsource: unknown envelope %q", name)
	}
	return curve, nil
}

func (s *LfSource) compile(c *Creator) *Automation {
	switch s.k {
	case kindValue:
		v := s.value
		return NewAutomation(func(*AutomationContext) float64 { return v })

	case kindUnit:
		switch s.unit {
		case WaveformPitch:
			return NewAutomation(func(ctx *AutomationContext) float64 {
				return ctx.Properties.PitchHz * ctx.PitchBend
			})
		default: // Wavelength
			return NewAutomation(func(ctx *AutomationContext) float64 {
				return 1.0 / (ctx.Properties.PitchHz * ctx.PitchBend)
			})
		}

	case kindAdd:
		a, b := c.Create(s.a), c.Create(s.b)
		return NewAutomation(func(ctx *AutomationContext) float64 {
			return ctx.Read(a) + ctx.Read(b)
		})

	case kindMul:
		a, b := c.Create(s.a), c.Create(s.b)
		return NewAutomation(func(ctx *AutomationContext) float64 {
			return ctx.Read(a) * ctx.Read(b)
		})

	case kindOscillator:
		return compileOscillator(c, s)

	case kindEnvelope:
		return compileEnvelope(c, s)

	case kindTime:
		startEnd := pairOf(c, s.start, s.end)
		fromTo := pairOf(c, s.from, s.to)
		return NewAutomation(func(ctx *AutomationContext) float64 {
			start, end := ctx.Read(startEnd.a), ctx.Read(startEnd.b)
			from, to := ctx.Read(fromTo.a), ctx.Read(fromTo.b)
			t := ctx.Properties.SecsSincePressed
			switch {
			case t <= start && t <= end:
				return from
			case t >= start && t >= end:
				return to
			default:
				return from + (to-from)*(t-start)/(end-start)
			}
		})

	case kindProperty:
		switch s.propertyKind {
		case Velocity:
			return scaledValueAutomation(c, s.from, s.to, func(ctx *AutomationContext) float64 {
				return ctx.Properties.Velocity
			})
		default: // KeyPressure
			return scaledValueAutomation(c, s.from, s.to, func(ctx *AutomationContext) float64 {
				if ctx.Properties.KeyPressure == nil {
					return 0
				}
				return *ctx.Properties.KeyPressure
			})
		}

	case kindControl:
		controller := s.controller
		return scaledValueAutomation(c, s.from, s.to, func(ctx *AutomationContext) float64 {
			if ctx.Controller == nil {
				return 0
			}
			return ctx.Controller(controller)
		})

	default:
		panic(fmt.Sprintf("lfsource: unhandled kind %d", s.k))
	}
}

// pair is a compiled (a, b) automation tuple, mirroring the source's
// creator.create((a, b)) tuple helper.
type pair struct{ a, b *Automation }

func pairOf(c *Creator, a, b *LfSource) pair {
	return pair{a: c.Create(a), b: c.Create(b)}
}

func scaledValueAutomation(c *Creator, from, to *LfSource, valueFn func(ctx *AutomationContext) float64) *Automation {
	ft := pairOf(c, from, to)
	return NewAutomation(func(ctx *AutomationContext) float64 {
		f, t := ctx.Read(ft.a), ctx.Read(ft.b)
		return f + valueFn(ctx)*(t-f)
	})
}

func compileOscillator(c *Creator, s *LfSource) *Automation {
	fba := struct{ freq, base, amp *Automation }{
		freq: c.Create(s.frequency),
		base: c.Create(s.baseline),
		amp:  c.Create(s.amplitude),
	}
	phase := s.phase
	waveFn := s.oscKind.waveFn()
	return NewAutomation(func(ctx *AutomationContext) float64 {
		frequency := ctx.Read(fba.freq)
		baseline := ctx.Read(fba.base)
		amplitude := ctx.Read(fba.amp)

		signal := waveFn(phase)
		phase = wrapPhase(phase + frequency*ctx.RenderWindowSecs)
		return baseline + signal*amplitude
	})
}

func wrapPhase(p float64) float64 {
	p -= float64(int64(p))
	if p < 0 {
		p += 1
	}
	return p
}

func compileEnvelope(c *Creator, s *LfSource) *Automation {
	curve, err := c.CreateEnvelope(s.envelopeName)
	if err != nil {
		// A named envelope used inside an expression (as opposed to the
		// waveform's own top-level envelope stage, which merely warns on a
		// miss) is a hard configuration error: there is no sensible
		// fallback value for an undefined blend target.
		panic(err)
	}
	fromTo := pairOf(c, s.from, s.to)
	return NewAutomation(func(ctx *AutomationContext) float64 {
		from, to := ctx.Read(fromTo.a), ctx.Read(fromTo.b)
		value := curve.GetValue(ctx.Properties.SecsSincePressed, ctx.Properties.SecsSinceReleased)
		return from + value*(to-from)
	})
}
