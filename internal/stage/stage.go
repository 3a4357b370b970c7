// Package stage implements the Magnetron engine's fixed stage
// repertoire: oscillator, filter, waveguide, ring modulator, signal,
// envelope, copy, load, and effect. Each Spec compiles its parameters
// (LfSource expressions) and any per-voice mutable state (oscillator
// phase, delay line, biquad history) into a Stage closure once, at
// voice-creation time; the audio-thread render loop then only ever
// calls the compiled closures, once per control block.
package stage

import (
	"github.com/cbegin/magnetron/internal/buffer"
	"github.com/cbegin/magnetron/internal/lfsource"
)

// Stage is one compiled node of a voice's signal graph. It is called
// once per control block with that block's buffer payload and
// automation context; it evaluates its LfSource parameters for the
// block, runs its sample-rate inner loop over payload, advances its own
// mutable state (phase, delay line, envelope amplitude), and reports
// the loudest activity it produced.
type Stage func(payload buffer.Payload, ctx *lfsource.AutomationContext) buffer.StageActivity

// Process runs every stage in order against payload and ctx, returning
// the maximum activity any of them reported. Stage order is
// caller-defined and is never reordered: later stages may read what
// earlier ones wrote.
func Process(payload buffer.Payload, ctx *lfsource.AutomationContext, stages []Stage) buffer.StageActivity {
	max := buffer.Idle
	for _, s := range stages {
		max = buffer.Max(max, s(payload, ctx))
	}
	return max
}

// OutSpec is the output buffer and level every non-envelope stage
// writes through.
type OutSpec struct {
	OutBuffer buffer.Index       `yaml:"out_buffer"`
	OutLevel  *lfsource.LfSource `yaml:"out_level"`
}

// compiledOut is an OutSpec with its level LfSource already compiled to
// an Automation.
type compiledOut struct {
	buf   buffer.Index
	level *lfsource.Automation
}

func (o OutSpec) compile(c *lfsource.Creator) compiledOut {
	return compiledOut{buf: o.OutBuffer, level: c.Create(o.OutLevel)}
}

// levelFn freezes an Automation's value for the current control block
// into the buffer package's per-sample Level callback: LF-sources
// evaluate once per block, so every sample index sees the same scalar.
func levelFn(ctx *lfsource.AutomationContext, a *lfsource.Automation) buffer.Level {
	v := float32(ctx.Read(a))
	return func(int) float32 { return v }
}

// Spec is the common interface every tagged stage-spec variant
// implements: compile its parameters and mutable state against creator,
// once, at voice-creation time, returning the runtime Stage.
type Spec interface {
	Compile(creator *lfsource.Creator) Stage
}
