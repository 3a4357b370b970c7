// Package buffer implements the fixed-size scratch-buffer pool the
// Magnetron engine renders through: audio-rate stages read and write
// indexed mono buffers instead of passing slices around, so a voice's
// entire working set is a handful of integers.
package buffer

import "fmt"

// StageActivity reports what a stage did to its output buffers during one
// control block. The values are ordered so that combining the activity of
// several stages is a plain integer max.
type StageActivity int

const (
	// Idle means the stage produced no non-silent output this block.
	Idle StageActivity = iota
	// Internal means the stage wrote only to internal scratch buffers.
	Internal
	// External means the stage wrote to an audio-out buffer.
	External
)

// Index identifies a buffer slot. Internal buffers are addressed 0..N-1;
// AudioOutLeft/AudioOutRight are the two fixed stereo output slots; a
// nested payload's External(k) addresses its parent's buffer k.
type Index struct {
	kind indexKind
	n    int
}

type indexKind int

const (
	kindInternal indexKind = iota
	kindExternal
	kindAudioOutLeft
	kindAudioOutRight
)

func Internal(n int) Index       { return Index{kind: kindInternal, n: n} }
func External(n int) Index       { return Index{kind: kindExternal, n: n} }
func AudioOutLeft() Index        { return Index{kind: kindAudioOutLeft} }
func AudioOutRight() Index       { return Index{kind: kindAudioOutRight} }
func (i Index) IsAudioOut() bool { return i.kind == kindAudioOutLeft || i.kind == kindAudioOutRight }

func (i Index) String() string {
	switch i.kind {
	case kindInternal:
		return fmt.Sprintf("Internal(%d)", i.n)
	case kindExternal:
		return fmt.Sprintf("External(%d)", i.n)
	case kindAudioOutLeft:
		return "AudioOut(L)"
	default:
		return "AudioOut(R)"
	}
}

// NumInternal is the default number of mono internal scratch buffers the
// pool maintains, mirroring the original engine's fixed small buffer count.
const NumInternal = 8

// MaxLength bounds the per-buffer sample capacity a Pool will ever be
// asked to Prepare, large enough for roughly two seconds at 48kHz.
const MaxLength = 100_000

// Pool owns NumInternal mono scratch buffers plus the two stereo
// audio-out buffers, all pre-allocated to MaxLength so the audio thread
// never allocates once rendering starts.
type Pool struct {
	internal  [NumInternal][]float32
	audioOutL []float32
	audioOutR []float32
	length    int
	parent    *Payload
}

// NewPool allocates a pool with buffers pre-sized to MaxLength.
func NewPool() *Pool {
	p := &Pool{}
	for i := range p.internal {
		p.internal[i] = make([]float32, MaxLength)
	}
	p.audioOutL = make([]float32, MaxLength)
	p.audioOutR = make([]float32, MaxLength)
	return p
}

// Payload is a borrow of a Pool sized to the current control block, used
// by stages to read and write buffers by Index. A nested Payload shares
// storage with its parent: its External(k) reads hit the parent's
// Internal(k) buffer, so a voice can read the Magnetron engine's
// already-rendered mix-in buffers without copying.
type Payload struct {
	pool   *Pool
	parent *Payload
	n      int
}

// Prepare resizes the pool's view to numSamples and, if zeroInit, zeroes
// every internal and audio-out buffer. It must be called once per audio
// callback before any voice renders into the returned Payload.
func (p *Pool) Prepare(numSamples int, zeroInit bool) Payload {
	if numSamples > MaxLength {
		numSamples = MaxLength
	}
	p.length = numSamples
	if zeroInit {
		for i := range p.internal {
			clear(p.internal[i][:numSamples])
		}
		clear(p.audioOutL[:numSamples])
		clear(p.audioOutR[:numSamples])
	}
	return Payload{pool: p, n: numSamples}
}

// PrepareNested returns a sub-payload for one voice's render, sharing
// buffer storage with parent. External(k) reads within the nested payload
// address the parent's Internal(k) buffer, letting a voice read audio-in
// fed by the engine without an extra copy.
func (p *Pool) PrepareNested(parent Payload) Payload {
	return Payload{pool: p, parent: &parent, n: parent.n}
}

// Len is the number of samples the current payload was prepared for.
func (pl Payload) Len() int { return pl.n }

// ClearInternal zeroes every internal scratch buffer for this payload's
// length, without touching AudioOut or reaching into a parent payload.
// The Magnetron engine calls this on each voice's nested payload before
// running that voice's stage chain: internal buffers are shared
// physical storage across every PrepareNested call within one control
// block (only AudioOut and a true engine-level pre-render are meant to
// persist across voices), so one voice's intra-graph scratch writes
// must never bleed into the next voice's render within the same block.
func (pl Payload) ClearInternal() {
	for i := range pl.pool.internal {
		clear(pl.pool.internal[i][:pl.n])
	}
}

func (pl Payload) resolve(idx Index) []float32 {
	switch idx.kind {
	case kindAudioOutLeft:
		return pl.pool.audioOutL[:pl.n]
	case kindAudioOutRight:
		return pl.pool.audioOutR[:pl.n]
	case kindExternal:
		if pl.parent == nil {
			panic(fmt.Sprintf("buffer: %s has no parent payload", idx))
		}
		return pl.parent.resolve(Internal(idx.n))
	default:
		if idx.n < 0 || idx.n >= NumInternal {
			panic(fmt.Sprintf("buffer: internal index %d out of range", idx.n))
		}
		return pl.pool.internal[idx.n][:pl.n]
	}
}

// At returns the live slice for idx, sized to the current control block.
// Writers may mutate it directly; it aliases pool storage.
func (pl Payload) At(idx Index) []float32 { return pl.resolve(idx) }

// Level is a per-sample scalar reader used by the buffer-combining
// primitives below. Most stages pass a closure that returns a single
// control-block value for every index.
type Level func(i int) float32

// Read1Write1 implements the single-input accumulation primitive used by
// oscillator, filter and envelope stages: out[i] += level(i) * f(in[i]).
func Read1Write1(in, out []float32, level Level, f func(float32) float32) {
	for i, x := range in {
		out[i] += level(i) * f(x)
	}
}

// Read2Write1 implements the ring-modulator primitive:
// out[i] += level(i) * f(in1[i], in2[i]).
func Read2Write1(in1, in2, out []float32, level Level, f func(a, b float32) float32) {
	n := len(in1)
	if len(in2) < n {
		n = len(in2)
	}
	for i := 0; i < n; i++ {
		out[i] += level(i) * f(in1[i], in2[i])
	}
}

// Max combines two activity levels, keeping the louder. Package stage
// uses this to fold the per-stage activity of a voice's compiled chain
// into the single StageActivity the engine uses to decide retirement.
func Max(a, b StageActivity) StageActivity {
	if a > b {
		return a
	}
	return b
}
