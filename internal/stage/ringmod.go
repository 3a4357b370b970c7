package stage

import (
	"github.com/cbegin/magnetron/internal/buffer"
	"github.com/cbegin/magnetron/internal/lfsource"
)

// RingModulator is the audio-rate ring-modulator stage:
// out[i] += level * in1[i] * in2[i]. Multiplication being commutative,
// swapping In1 and In2 is guaranteed to produce bit-identical output.
type RingModulator struct {
	In1 buffer.Index
	In2 buffer.Index
	Out OutSpec
}

func (r RingModulator) Compile(creator *lfsource.Creator) Stage {
	out := r.Out.compile(creator)
	in1, in2 := r.In1, r.In2
	return func(payload buffer.Payload, ctx *lfsource.AutomationContext) buffer.StageActivity {
		a := payload.At(in1)
		b := payload.At(in2)
		dst := payload.At(out.buf)
		level := levelFn(ctx, out.level)

		activity := buffer.Idle
		n := len(a)
		if len(b) < n {
			n = len(b)
		}
		for i := 0; i < n; i++ {
			v := level(i) * (a[i] * b[i])
			dst[i] += v
			if v != 0 {
				activity = buffer.Max(activity, outActivity(out.buf))
			}
		}
		return activity
	}
}
