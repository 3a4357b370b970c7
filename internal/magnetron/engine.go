// Package magnetron implements the engine's per-audio-callback render
// loop: it owns the buffer pool and voice pool, runs every active
// voice's compiled stage chain each control block, and mixes the
// result into an interleaved stereo sample stream. It implements
// internal/audio's SampleSource so it can be handed straight to an
// audio.Player.
package magnetron

import (
	"github.com/cbegin/magnetron/internal/buffer"
	"github.com/cbegin/magnetron/internal/envelope"
	"github.com/cbegin/magnetron/internal/lfsource"
	"github.com/cbegin/magnetron/internal/stage"
	"github.com/cbegin/magnetron/internal/voice"
)

// DefaultPolyphony is the voice pool size the engine allocates absent
// an explicit override, matching the teacher FM engine's default.
const DefaultPolyphony = 16

// ControllerFunc reads the current value of a MIDI controller (CC7,
// mod wheel, sustain pedal, ...) for LfSourceExpr::Control lookups.
type ControllerFunc func(c lfsource.Controller) float64

// Engine owns the voice pool and scratch buffer pool for one
// synthesis session, rendering in fixed-size control blocks.
type Engine struct {
	sampleRate float64
	pool       *buffer.Pool
	voices     *voice.Allocator
	envelopes  envelope.Registry
	controller ControllerFunc
	masterGain float32
	pitchBend  float64
}

// NewEngine creates an engine with the given sample rate, polyphony
// cap, and named-envelope registry (used by LfSourceExpr::Envelope,
// not by a waveform's own EnvelopeSpec).
func NewEngine(sampleRate float64, polyphony int, envelopes envelope.Registry) *Engine {
	if polyphony <= 0 {
		polyphony = DefaultPolyphony
	}
	return &Engine{
		sampleRate: sampleRate,
		pool:       buffer.NewPool(),
		voices:     voice.NewAllocator(polyphony),
		envelopes:  envelopes,
		masterGain: 1,
		pitchBend:  1,
	}
}

// SetController installs the callback used to resolve
// LfSourceExpr::Control reads against the live MIDI controller state.
func (e *Engine) SetController(f ControllerFunc) { e.controller = f }

// SetMasterGain scales every voice's mixed output.
func (e *Engine) SetMasterGain(g float32) { e.masterGain = g }

// SetPitchBend applies a global pitch-bend multiplier (1 = no bend) to
// every voice's Unit(WaveformPitch|Wavelength) LF-sources.
func (e *Engine) SetPitchBend(bend float64) { e.pitchBend = bend }

// Creator returns a fresh lfsource.Creator bound to this engine's
// sample rate and envelope registry, for compiling one voice's
// waveform graph at NoteOn time.
func (e *Engine) Creator() *lfsource.Creator {
	return lfsource.NewCreator(e.envelopes, e.sampleRate)
}

// NoteOnCompiled assigns an already-compiled stage chain (built via
// waveform.Compile against e.Creator()) to a voice slot and returns the
// new voice's ID. Compiling is the caller's responsibility because
// waveform.Compile needs the effect-chain registry alongside the
// envelope registry, and the engine itself is agnostic to where either
// comes from.
func (e *Engine) NoteOnCompiled(keyID int, pitchHz, velocity float64, stages []stage.Stage) int {
	props := &lfsource.Properties{PitchHz: pitchHz, Velocity: velocity}
	return e.voices.NoteOn(keyID, props, stages)
}

// NoteOff starts the release ramp on keyID's current voice.
func (e *Engine) NoteOff(keyID int) {
	e.voices.NoteOff(keyID, 0)
}

// Process implements audio.SampleSource: dst is an interleaved stereo
// float32 buffer (len(dst) samples = 2 * frames). It prepares one
// control block, runs every active voice's stage chain into it,
// advances per-voice clocks, retires voices that have fully faded, and
// writes the mixed stereo result (scaled by masterGain) into dst.
func (e *Engine) Process(dst []float32) {
	frames := len(dst) / 2
	if frames == 0 {
		return
	}
	payload := e.pool.Prepare(frames, true)
	renderWindowSecs := float64(frames) / e.sampleRate

	voices := e.voices.Voices()
	for i := range voices {
		v := &voices[i]
		if !v.Active {
			continue
		}

		ctx := &lfsource.AutomationContext{
			Properties:       v.Properties,
			PitchBend:        e.pitchBend,
			RenderWindowSecs: renderWindowSecs,
			Envelopes:        e.envelopes,
			Controller:       e.controller,
		}
		nested := e.pool.PrepareNested(payload)
		nested.ClearInternal()
		stage.Process(nested, ctx, v.Stages)

		v.Properties.SecsSincePressed += renderWindowSecs
		if v.Properties.SecsSinceReleased != nil {
			*v.Properties.SecsSinceReleased += renderWindowSecs
		}
		if v.Properties.SecsSinceStolen != nil {
			*v.Properties.SecsSinceStolen += renderWindowSecs
		}

		// Retirement is gated on the envelope's own reported amplitude
		// rather than the stage chain's combined StageActivity: an
		// upstream Oscillator keeps writing nonzero samples to its own
		// scratch buffer for as long as a voice exists, independent of
		// the envelope's amplitude, so combined activity alone would
		// never go idle.
		released := v.Properties.SecsSinceReleased != nil || v.Properties.SecsSinceStolen != nil
		if released && v.Properties.CurrAmplitude <= stage.EnvelopeSilenceThreshold {
			e.voices.Retire(i)
		}
	}

	left := payload.At(buffer.AudioOutLeft())
	right := payload.At(buffer.AudioOutRight())
	for i := 0; i < frames; i++ {
		dst[2*i] = left[i] * e.masterGain
		dst[2*i+1] = right[i] * e.masterGain
	}
}

// Finished never ends a live synthesis session; the engine is a
// FinishingSource of one (a live session runs until the process exits,
// unlike an offline render which has a fixed end).
func (e *Engine) Finished() bool { return false }
