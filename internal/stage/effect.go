package stage

import (
	"github.com/cbegin/magnetron/internal/buffer"
	"github.com/cbegin/magnetron/internal/effects"
	"github.com/cbegin/magnetron/internal/lfsource"
)

// Effect is the audio-rate Effect stage: it runs its mono input through
// a stereo effects.Chain (reverb, delay, chorus, distortion, EQ) and
// writes the averaged stereo result back to a mono output buffer. It
// exists so a waveform spec's signal graph can reach the same
// production-quality per-sample effects processing used for a session's
// overall output bus, as a single graph node instead of a whole
// separate post-processing pass.
type Effect struct {
	InBuffer buffer.Index
	Chain    *effects.Chain
	Out      OutSpec
}

func (e Effect) Compile(creator *lfsource.Creator) Stage {
	out := e.Out.compile(creator)
	in := e.InBuffer
	chain := e.Chain
	return func(payload buffer.Payload, ctx *lfsource.AutomationContext) buffer.StageActivity {
		src := payload.At(in)
		dst := payload.At(out.buf)
		level := levelFn(ctx, out.level)
		activity := buffer.Idle
		for i, x := range src {
			l, r := chain.Process(x, x)
			v := level(i) * ((l + r) / 2)
			dst[i] += v
			if v != 0 {
				activity = buffer.Max(activity, outActivity(out.buf))
			}
		}
		return activity
	}
}
