package stage

import (
	"testing"

	"github.com/cbegin/magnetron/internal/buffer"
	"github.com/cbegin/magnetron/internal/effects"
	"github.com/cbegin/magnetron/internal/lfsource"
)

// gainEffector scales both channels by a fixed factor, used to verify
// the Effect stage routes its mono input through the chain and averages
// the stereo result back down rather than, say, dropping one channel.
type gainEffector struct{ gain float32 }

func (g gainEffector) Process(l, r float32) (float32, float32) {
	return l * g.gain, r * g.gain
}
func (g gainEffector) Reset() {}

func TestEffectRunsMonoInputThroughChain(t *testing.T) {
	creator := lfsource.NewCreator(nil, 44100)
	chain := effects.NewChain(gainEffector{gain: 0.5})
	e := Effect{
		InBuffer: buffer.Internal(0),
		Chain:    chain,
		Out:      OutSpec{OutBuffer: buffer.Internal(1), OutLevel: lfsource.Val(1)},
	}
	s := e.Compile(creator)

	pool := buffer.NewPool()
	payload := pool.Prepare(4, true)
	src := payload.At(buffer.Internal(0))
	src[0], src[1], src[2], src[3] = 1, -1, 0.5, 0

	activity := s(payload, newCtx(44100))

	out := payload.At(buffer.Internal(1))
	want := []float32{0.5, -0.5, 0.25, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
	if activity != buffer.Internal {
		t.Errorf("activity = %v, want Internal with nonzero output present", activity)
	}
}

func TestEffectIdleWhenChainProducesSilence(t *testing.T) {
	creator := lfsource.NewCreator(nil, 44100)
	chain := effects.NewChain(gainEffector{gain: 0})
	e := Effect{
		InBuffer: buffer.Internal(0),
		Chain:    chain,
		Out:      OutSpec{OutBuffer: buffer.Internal(1), OutLevel: lfsource.Val(1)},
	}
	s := e.Compile(creator)
	pool := buffer.NewPool()
	payload := pool.Prepare(4, true)
	src := payload.At(buffer.Internal(0))
	src[0], src[1], src[2], src[3] = 1, -1, 0.5, 0.2

	activity := s(payload, newCtx(44100))
	if activity != buffer.Idle {
		t.Errorf("activity = %v, want Idle when chain silences all input", activity)
	}
}
