// Package magnetron is the top-level facade wrapping internal/magnetron's
// render loop with waveform-catalog lookup, key-to-pitch tuning, and
// audio-out/offline-render wiring, mirroring the functional-options
// Player the teacher exposed at its module root.
package magnetron

import (
	"fmt"

	"github.com/cbegin/magnetron/internal/audio"
	"github.com/cbegin/magnetron/internal/effects"
	"github.com/cbegin/magnetron/internal/envelope"
	intmag "github.com/cbegin/magnetron/internal/magnetron"
	"github.com/cbegin/magnetron/internal/pitch"
	"github.com/cbegin/magnetron/internal/waveform"
	"github.com/cbegin/magnetron/internal/waveform/catalog"
)

// Option configures NewEngine.
type Option func(*config)

type config struct {
	polyphony    int
	tuning       pitch.Tuning
	catalog      catalog.File
	effectChains map[string]*effects.Chain
	controller   intmag.ControllerFunc
}

func defaultConfig() config {
	return config{
		polyphony: intmag.DefaultPolyphony,
		tuning:    pitch.NewTuning(pitch.EqualScale(12), pitch.KeyMap{RootKey: pitch.ReferenceKey, RefPitch: pitch.ReferencePitch}),
		catalog:   catalog.Default(),
	}
}

// WithPolyphony caps the number of simultaneously sounding voices.
func WithPolyphony(n int) Option {
	return func(c *config) { c.polyphony = n }
}

// WithTuning installs the key-to-pitch mapping NoteOn consults, in
// place of 12-tone equal temperament.
func WithTuning(t pitch.Tuning) Option {
	return func(c *config) { c.tuning = t }
}

// WithCatalog replaces the embedded default waveform catalog with a
// caller-supplied one, e.g. one parsed from a user's own waveform file.
func WithCatalog(f catalog.File) Option {
	return func(c *config) { c.catalog = f }
}

// WithEffectChains replaces the default named effect chains (see
// catalog.DefaultEffectChains) an Effect stage may reference by name,
// e.g. when a caller supplies its own waveform catalog with different
// chain names.
func WithEffectChains(chains map[string]*effects.Chain) Option {
	return func(c *config) { c.effectChains = chains }
}

// WithController installs the callback used to resolve
// LfSourceExpr::Control reads against live MIDI controller state.
func WithController(f intmag.ControllerFunc) Option {
	return func(c *config) { c.controller = f }
}

// Engine is the synthesis session: a tuning, a waveform catalog, and
// the internal/magnetron render loop they drive. It implements
// internal/audio's SampleSource, so it can be handed directly to
// audio.NewPlayer or audio.NewRecorder.
type Engine struct {
	cfg        config
	sampleRate float64
	inner      *intmag.Engine
	specs      map[string]waveform.Spec
}

// NewEngine creates a session rendering at sampleRate Hz.
func NewEngine(sampleRate int, opts ...Option) (*Engine, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("magnetron: sampleRate must be positive, got %d", sampleRate)
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.effectChains == nil {
		cfg.effectChains = catalog.DefaultEffectChains(sampleRate)
	}

	inner := intmag.NewEngine(float64(sampleRate), cfg.polyphony, envelope.NewRegistry(nil))
	if cfg.controller != nil {
		inner.SetController(cfg.controller)
	}

	return &Engine{
		cfg:        cfg,
		sampleRate: float64(sampleRate),
		inner:      inner,
		specs:      cfg.catalog.ByName(),
	}, nil
}

// NoteOn compiles waveformName's stage graph for the pitch key maps to
// under the session's tuning and assigns it a voice. It returns an
// error if waveformName is not in the catalog; an unknown envelope
// name within the waveform itself is not fatal (compile logs and
// continues, matching waveform.Compile's own policy).
func (e *Engine) NoteOn(key int, waveformName string, velocity float64) error {
	spec, ok := e.specs[waveformName]
	if !ok {
		return fmt.Errorf("magnetron: unknown waveform %q", waveformName)
	}
	p := e.cfg.tuning.PitchOf(key)
	creator := e.inner.Creator()
	stages := waveform.Compile(spec, e.cfg.catalog.Envelopes, e.cfg.effectChains, creator)
	e.inner.NoteOnCompiled(key, float64(p), velocity, stages)
	return nil
}

// NoteOff starts key's current voice releasing.
func (e *Engine) NoteOff(key int) { e.inner.NoteOff(key) }

// SetMasterGain scales every voice's mixed output.
func (e *Engine) SetMasterGain(g float32) { e.inner.SetMasterGain(g) }

// SetPitchBend applies a global pitch-bend multiplier (1 = no bend).
func (e *Engine) SetPitchBend(bend float64) { e.inner.SetPitchBend(bend) }

// Process implements audio.SampleSource.
func (e *Engine) Process(dst []float32) { e.inner.Process(dst) }

// Finished implements audio.FinishingSource: a live session never ends
// on its own.
func (e *Engine) Finished() bool { return false }

// Play starts e rendering to the shared audio output device.
func (e *Engine) Play() (*audio.Player, error) {
	p, err := audio.NewPlayer(int(e.sampleRate), e)
	if err != nil {
		return nil, err
	}
	p.Play()
	return p, nil
}

// RenderSeconds runs e's current voices through seconds worth of audio
// and returns the interleaved stereo result, for offline bounces (e.g.
// previewing a waveform outside a live session).
func (e *Engine) RenderSeconds(seconds float64) []float32 {
	frames := int(seconds * e.sampleRate)
	out := make([]float32, frames*2)
	e.inner.Process(out)
	return out
}

// WaveformNames lists the catalog's waveforms in file order.
func (e *Engine) WaveformNames() []string {
	names := make([]string, 0, len(e.cfg.catalog.Waveforms))
	for _, w := range e.cfg.catalog.Waveforms {
		names = append(names, w.Name)
	}
	return names
}
