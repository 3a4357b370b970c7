package stage

import (
	"testing"

	"github.com/cbegin/magnetron/internal/buffer"
	"github.com/cbegin/magnetron/internal/lfsource"
)

func TestCopyAccumulatesLeveledInput(t *testing.T) {
	creator := lfsource.NewCreator(nil, 44100)
	c := Copy{
		InBuffer: buffer.Internal(0),
		Out:      OutSpec{OutBuffer: buffer.Internal(1), OutLevel: lfsource.Val(0.5)},
	}
	s := c.Compile(creator)

	pool := buffer.NewPool()
	payload := pool.Prepare(4, true)
	src := payload.At(buffer.Internal(0))
	src[0], src[1], src[2], src[3] = 1, 2, -1, 0
	dst := payload.At(buffer.Internal(1))
	dst[0] = 10 // preexisting content must be accumulated into, not overwritten

	s(payload, newCtx(44100))

	want := []float32{10.5, 1, -0.5, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestLoadOverwritesRatherThanAccumulates(t *testing.T) {
	creator := lfsource.NewCreator(nil, 44100)
	l := Load{Value: lfsource.Val(0.25), Out: buffer.Internal(0)}
	s := l.Compile(creator)

	pool := buffer.NewPool()
	payload := pool.Prepare(4, true)
	dst := payload.At(buffer.Internal(0))
	dst[0], dst[1], dst[2], dst[3] = 9, 9, 9, 9

	activity := s(payload, newCtx(44100))

	for i, v := range dst {
		if v != 0.25 {
			t.Errorf("dst[%d] = %v, want overwritten to 0.25", i, v)
		}
	}
	if activity != buffer.Internal {
		t.Errorf("activity = %v, want Internal for nonzero load value", activity)
	}
}

func TestLoadZeroValueIsIdle(t *testing.T) {
	creator := lfsource.NewCreator(nil, 44100)
	l := Load{Value: lfsource.Val(0), Out: buffer.Internal(0)}
	s := l.Compile(creator)
	pool := buffer.NewPool()
	payload := pool.Prepare(4, true)
	activity := s(payload, newCtx(44100))
	if activity != buffer.Idle {
		t.Errorf("activity = %v, want Idle for zero load value", activity)
	}
}
