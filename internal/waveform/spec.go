// Package waveform parses the declarative waveform file format into
// compiled per-voice stage chains. A waveform names an ordered signal
// graph (the Magnetron stage repertoire from internal/stage) and the
// envelope that closes it; Compile turns both into the []stage.Stage a
// voice renders through.
package waveform

import (
	"github.com/cbegin/magnetron/internal/buffer"
	"github.com/cbegin/magnetron/internal/lfsource"
	"github.com/cbegin/magnetron/internal/stage"
)

// EnvelopeSpec is a waveform's per-voice amplitude envelope. Unlike the
// fixed-curve envelope.Spec an LfSourceExpr::Envelope variant names by
// reference, every parameter here is itself an LfSource expression, so
// a waveform's attack/release/decay/fadeout can vary with velocity,
// pitch, or a MIDI controller.
type EnvelopeSpec struct {
	AttackTime  *lfsource.LfSource `yaml:"attack_time"`
	ReleaseTime *lfsource.LfSource `yaml:"release_time"`
	DecayRate   *lfsource.LfSource `yaml:"decay_rate"`
	Fadeout     *lfsource.LfSource `yaml:"fadeout"`
	InBuffer    buffer.Index       `yaml:"in_buffer"`
	OutLeft     stage.OutSpec      `yaml:"out_left"`
	OutRight    stage.OutSpec      `yaml:"out_right"`
}

func (e EnvelopeSpec) toStage() stage.Envelope {
	return stage.Envelope{
		InBuffer:    e.InBuffer,
		AttackTime:  e.AttackTime,
		ReleaseTime: e.ReleaseTime,
		DecayRate:   e.DecayRate,
		Fadeout:     e.Fadeout,
		OutLeft:     e.OutLeft,
		OutRight:    e.OutRight,
	}
}

// Spec is one parsed waveform: its name, the ordered stage graph, and
// the name of the EnvelopeSpec that closes it.
type Spec struct {
	Name         string      `yaml:"name"`
	EnvelopeName string      `yaml:"envelope"`
	Stages       []StageSpec `yaml:"stages"`
}

// StageSpec is one tagged entry of a waveform's ordered stage list. The
// tagged-map shape (one of Oscillator, Filter, RingModulator, Waveguide,
// Signal, Envelope, Copy, Load, Effect) is resolved by yaml.go's
// UnmarshalYAML; exactly one of the fields below is set after decode.
type StageSpec struct {
	Oscillator    *stage.Oscillator
	Filter        *stage.Filter
	RingModulator *stage.RingModulator
	Waveguide     *stage.Waveguide
	Signal        *stage.Signal
	Envelope      *stage.Envelope
	Copy          *stage.Copy
	Load          *stage.Load
	Effect        *effectSpec
}

// effectSpec holds an Effect stage's decoded fields before its named
// chain is resolved against the registry Compile is given; Effect is
// the one stage kind whose parameter (an effects.Chain) is a runtime
// object a waveform file can only reference by name, the same pattern
// an LfSourceExpr::Envelope variant uses for named envelope curves.
type effectSpec struct {
	InBuffer   buffer.Index
	ChainName  string
	Out        stage.OutSpec
}
