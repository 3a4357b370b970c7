package stage

import (
	"math/rand"
	"testing"

	"github.com/cbegin/magnetron/internal/buffer"
	"github.com/cbegin/magnetron/internal/lfsource"
)

func TestRingModulationIsCommutative(t *testing.T) {
	creator := lfsource.NewCreator(nil, 44100)

	fwd := RingModulator{
		In1: buffer.Internal(0),
		In2: buffer.Internal(1),
		Out: OutSpec{OutBuffer: buffer.Internal(2), OutLevel: lfsource.Val(1)},
	}
	swapped := RingModulator{
		In1: buffer.Internal(1),
		In2: buffer.Internal(0),
		Out: OutSpec{OutBuffer: buffer.Internal(3), OutLevel: lfsource.Val(1)},
	}
	sFwd := fwd.Compile(creator)
	sSwapped := swapped.Compile(creator)

	pool := buffer.NewPool()
	payload := pool.Prepare(256, true)
	rng := rand.New(rand.NewSource(42))
	a := payload.At(buffer.Internal(0))
	b := payload.At(buffer.Internal(1))
	for i := range a {
		a[i] = rng.Float32()*2 - 1
		b[i] = rng.Float32()*2 - 1
	}
	ctx := newCtx(44100)

	sFwd(payload, ctx)
	sSwapped(payload, ctx)

	out1 := payload.At(buffer.Internal(2))
	out2 := payload.At(buffer.Internal(3))
	for i := range out1 {
		if out1[i] != out2[i] {
			t.Fatalf("sample %d: forward=%v swapped=%v, want bit-identical", i, out1[i], out2[i])
		}
	}
}
