package waveform

import (
	"log/slog"

	"github.com/cbegin/magnetron/internal/effects"
	"github.com/cbegin/magnetron/internal/lfsource"
	"github.com/cbegin/magnetron/internal/stage"
)

// Compile builds a voice's ordered stage chain from spec: each StageSpec
// is compiled in file order against creator, then the named envelope
// closes the chain. A miss on either the envelope name or an Effect
// stage's chain name is not fatal — slog.Warn and omit that one stage —
// since a voice missing its amplitude envelope or one effect still
// renders something audible, and a waveform file shouldn't be rejected
// wholesale for one bad cross-reference.
func Compile(spec Spec, envelopes map[string]EnvelopeSpec, effectChains map[string]*effects.Chain, creator *lfsource.Creator) []stage.Stage {
	stages := make([]stage.Stage, 0, len(spec.Stages)+1)

	for _, ss := range spec.Stages {
		compiled, ok := ss.compile(creator, effectChains)
		if !ok {
			continue
		}
		stages = append(stages, compiled)
	}

	if env, ok := envelopes[spec.EnvelopeName]; ok {
		stages = append(stages, env.toStage().Compile(creator))
	} else {
		slog.Warn("waveform: unknown envelope, voice will not fade", "waveform", spec.Name, "envelope", spec.EnvelopeName)
	}

	return stages
}

func (s StageSpec) compile(creator *lfsource.Creator, effectChains map[string]*effects.Chain) (stage.Stage, bool) {
	switch {
	case s.Oscillator != nil:
		return s.Oscillator.Compile(creator), true
	case s.Filter != nil:
		return s.Filter.Compile(creator), true
	case s.RingModulator != nil:
		return s.RingModulator.Compile(creator), true
	case s.Waveguide != nil:
		return s.Waveguide.Compile(creator), true
	case s.Signal != nil:
		return s.Signal.Compile(creator), true
	case s.Envelope != nil:
		return s.Envelope.Compile(creator), true
	case s.Copy != nil:
		return s.Copy.Compile(creator), true
	case s.Load != nil:
		return s.Load.Compile(creator), true
	case s.Effect != nil:
		chain, ok := effectChains[s.Effect.ChainName]
		if !ok {
			slog.Warn("waveform: unknown effect chain, stage omitted", "chain", s.Effect.ChainName)
			return nil, false
		}
		eff := stage.Effect{InBuffer: s.Effect.InBuffer, Chain: chain, Out: s.Effect.Out}
		return eff.Compile(creator), true
	default:
		return nil, false
	}
}
