package stage

import (
	"math/rand"

	"github.com/cbegin/magnetron/internal/buffer"
	"github.com/cbegin/magnetron/internal/lfsource"
)

// SignalKind selects a Signal stage's generator.
type SignalKind int

const (
	Noise SignalKind = iota
	ConstantSignal
)

// Signal is the audio-rate Signal stage: it has no input buffer and
// instead generates either uniform white noise in [-1, 1] or a constant
// value into its output buffer.
type Signal struct {
	Kind  SignalKind
	Value *lfsource.LfSource // ConstantSignal only
	Out   OutSpec
}

func (s Signal) Compile(creator *lfsource.Creator) Stage {
	out := s.Out.compile(creator)

	if s.Kind == ConstantSignal {
		value := creator.Create(s.Value)
		return func(payload buffer.Payload, ctx *lfsource.AutomationContext) buffer.StageActivity {
			v := float32(ctx.Read(value))
			dst := payload.At(out.buf)
			level := levelFn(ctx, out.level)
			activity := buffer.Idle
			for i := range dst {
				x := level(i) * v
				dst[i] += x
				if x != 0 {
					activity = buffer.Max(activity, outActivity(out.buf))
				}
			}
			return activity
		}
	}

	rng := rand.New(rand.NewSource(0x5eed))
	return func(payload buffer.Payload, ctx *lfsource.AutomationContext) buffer.StageActivity {
		dst := payload.At(out.buf)
		level := levelFn(ctx, out.level)
		for i := range dst {
			dst[i] += level(i) * (rng.Float32()*2 - 1)
		}
		return outActivity(out.buf)
	}
}
