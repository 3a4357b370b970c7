package catalog

import "github.com/cbegin/magnetron/internal/effects"

// DefaultEffectChains builds the named effects.Chain registry the
// embedded catalog's Effect stages (chorus_pad, echo_pluck,
// distorted_lead) resolve by name. Chain parameters depend on the
// sample rate, so this is built per-engine rather than embedded
// alongside default.yaml.
func DefaultEffectChains(sampleRate int) map[string]*effects.Chain {
	return map[string]*effects.Chain{
		"chorus_pad": effects.NewChain(
			effects.NewChorus(sampleRate, 15, 0.3, 4, 0.8, 0.5),
			effects.NewReverb(sampleRate, 0.4, 0.6, 0.25),
		),
		"echo_pluck": effects.NewChain(
			effects.NewDelay(sampleRate, 180, 0.35, 0.2, 0.4),
			effects.NewEQ5Band(sampleRate),
		),
		"distorted_lead": effects.NewChain(
			effects.NewDistortion(sampleRate, 4, 0.6, 6000),
			effects.NewCompressor(sampleRate, -18, 4, 5, 80, 6),
			effects.NewEQ3Band(sampleRate, 0.8, 1.1, 1.0, 200, 3000),
		),
	}
}
