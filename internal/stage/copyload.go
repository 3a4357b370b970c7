package stage

import (
	"github.com/cbegin/magnetron/internal/buffer"
	"github.com/cbegin/magnetron/internal/lfsource"
)

// Copy is the audio-rate Copy stage: it reads one buffer (typically an
// External buffer fed by the engine, or an earlier Internal buffer) and
// accumulates a leveled copy of it into its output buffer, the same
// accumulate-don't-overwrite convention every other stage follows so
// stage order composes freely.
type Copy struct {
	InBuffer buffer.Index
	Out      OutSpec
}

func (c Copy) Compile(creator *lfsource.Creator) Stage {
	out := c.Out.compile(creator)
	in := c.InBuffer
	return func(payload buffer.Payload, ctx *lfsource.AutomationContext) buffer.StageActivity {
		src := payload.At(in)
		dst := payload.At(out.buf)
		level := levelFn(ctx, out.level)
		activity := buffer.Idle
		for i, x := range src {
			v := level(i) * x
			dst[i] += v
			if v != 0 {
				activity = buffer.Max(activity, outActivity(out.buf))
			}
		}
		return activity
	}
}

// Load is the audio-rate Load stage: unlike every other stage, it
// overwrites its output buffer with a constant per-block value rather
// than accumulating, so a waveform spec can reset a scratch buffer to a
// known baseline (typically 0, or a DC bias) before later stages read
// and accumulate into it.
type Load struct {
	Value *lfsource.LfSource
	Out   buffer.Index
}

func (l Load) Compile(creator *lfsource.Creator) Stage {
	value := creator.Create(l.Value)
	out := l.Out
	return func(payload buffer.Payload, ctx *lfsource.AutomationContext) buffer.StageActivity {
		v := float32(ctx.Read(value))
		dst := payload.At(out)
		for i := range dst {
			dst[i] = v
		}
		if v != 0 {
			return outActivity(out)
		}
		return buffer.Idle
	}
}
