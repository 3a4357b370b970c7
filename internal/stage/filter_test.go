package stage

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cbegin/magnetron/internal/buffer"
	"github.com/cbegin/magnetron/internal/lfsource"
)

func runFilterOnNoise(t *testing.T, f Filter, sampleRate float64, n int) []float32 {
	t.Helper()
	creator := lfsource.NewCreator(nil, sampleRate)
	f.Out = OutSpec{OutBuffer: buffer.Internal(1), OutLevel: lfsource.Val(1)}
	f.InBuffer = buffer.Internal(0)
	s := f.Compile(creator)

	pool := buffer.NewPool()
	payload := pool.Prepare(n, true)
	src := payload.At(buffer.Internal(0))
	rng := rand.New(rand.NewSource(1))
	for i := range src {
		src[i] = rng.Float32()*2 - 1
	}
	s(payload, newCtx(sampleRate))
	out := payload.At(buffer.Internal(1))
	cp := make([]float32, len(out))
	copy(cp, out)
	return cp
}

func TestLowPassStaysBounded(t *testing.T) {
	out := runFilterOnNoise(t, Filter{Kind: LowPass, Cutoff: lfsource.Val(1000)}, 44100, 2000)
	for i, v := range out {
		if math.IsNaN(float64(v)) || math.Abs(float64(v)) > 2 {
			t.Fatalf("sample %d unbounded: %v", i, v)
		}
	}
}

func TestHighPassStaysBounded(t *testing.T) {
	out := runFilterOnNoise(t, Filter{Kind: HighPass, Cutoff: lfsource.Val(1000)}, 44100, 2000)
	for i, v := range out {
		if math.IsNaN(float64(v)) || math.Abs(float64(v)) > 2 {
			t.Fatalf("sample %d unbounded: %v", i, v)
		}
	}
}

func TestLowPass2StaysBoundedAtModerateQ(t *testing.T) {
	out := runFilterOnNoise(t, Filter{Kind: LowPass2, Cutoff: lfsource.Val(800), Resonance: lfsource.Val(50)}, 44100, 2000)
	for i, v := range out {
		if math.IsNaN(float64(v)) || math.Abs(float64(v)) > 10 {
			t.Fatalf("sample %d unbounded: %v", i, v)
		}
	}
}

func TestClipLimitsOutput(t *testing.T) {
	creator := lfsource.NewCreator(nil, 44100)
	f := Filter{
		Kind:     Clip,
		InBuffer: buffer.Internal(0),
		Limit:    lfsource.Val(0.5),
		Out:      OutSpec{OutBuffer: buffer.Internal(1), OutLevel: lfsource.Val(1)},
	}
	s := f.Compile(creator)
	pool := buffer.NewPool()
	payload := pool.Prepare(4, true)
	src := payload.At(buffer.Internal(0))
	src[0], src[1], src[2], src[3] = 1, -1, 0.1, -0.1
	s(payload, newCtx(44100))
	out := payload.At(buffer.Internal(1))
	want := []float32{0.5, -0.5, 0.1, -0.1}
	for i := range want {
		if math.Abs(float64(out[i]-want[i])) > 1e-6 {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestPow3CubesInput(t *testing.T) {
	creator := lfsource.NewCreator(nil, 44100)
	f := Filter{
		Kind:     Pow3,
		InBuffer: buffer.Internal(0),
		Out:      OutSpec{OutBuffer: buffer.Internal(1), OutLevel: lfsource.Val(1)},
	}
	s := f.Compile(creator)
	pool := buffer.NewPool()
	payload := pool.Prepare(2, true)
	src := payload.At(buffer.Internal(0))
	src[0], src[1] = 0.5, -0.5
	s(payload, newCtx(44100))
	out := payload.At(buffer.Internal(1))
	if math.Abs(float64(out[0]-0.125)) > 1e-6 || math.Abs(float64(out[1]+0.125)) > 1e-6 {
		t.Errorf("got %v, want [0.125, -0.125]", out[:2])
	}
}
