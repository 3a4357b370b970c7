package waveform

import (
	"fmt"

	"github.com/cbegin/magnetron/internal/buffer"
	"github.com/cbegin/magnetron/internal/lfsource"
	"github.com/cbegin/magnetron/internal/stage"
	"gopkg.in/yaml.v3"
)

// UnmarshalYAML decodes one tagged StageSpec entry, mirroring the
// single-key-map dispatch internal/lfsource uses for LfSourceExpr.
func (s *StageSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("invalid type: expected a single-key tagged stage (line %d, column %d)", node.Line, node.Column)
	}
	key := node.Content[0].Value
	val := node.Content[1]

	switch key {
	case "Oscillator":
		var aux struct {
			Kind       string          `yaml:"kind"`
			Phase      float64         `yaml:"phase"`
			Frequency  *lfsource.LfSource `yaml:"frequency"`
			InBuffer   buffer.Index    `yaml:"in_buffer"`
			Modulation string          `yaml:"modulation"`
			Out        stage.OutSpec   `yaml:"out"`
		}
		if err := val.Decode(&aux); err != nil {
			return err
		}
		kind, ok := lfsource.ParseOscillatorKind(aux.Kind)
		if !ok {
			return fmt.Errorf("unknown variant `%s`, expected one of `Sin`, `Sin3`, `Triangle`, `Square`, `Sawtooth` (line %d, column %d)", aux.Kind, val.Line, val.Column)
		}
		mod, ok := parseModulationKind(aux.Modulation)
		if !ok {
			return fmt.Errorf("unknown variant `%s`, expected one of `None`, `ByFrequency`, `ByPhase` (line %d, column %d)", aux.Modulation, val.Line, val.Column)
		}
		s.Oscillator = &stage.Oscillator{
			Kind: kind, Phase: aux.Phase, Frequency: aux.Frequency,
			InBuffer: aux.InBuffer, Modulation: mod, Out: aux.Out,
		}
		return nil

	case "Filter":
		var aux struct {
			Kind      string          `yaml:"kind"`
			InBuffer  buffer.Index    `yaml:"in_buffer"`
			Cutoff    *lfsource.LfSource `yaml:"cutoff"`
			Resonance *lfsource.LfSource `yaml:"resonance"`
			Limit     *lfsource.LfSource `yaml:"limit"`
			Out       stage.OutSpec   `yaml:"out"`
		}
		if err := val.Decode(&aux); err != nil {
			return err
		}
		kind, ok := parseFilterKind(aux.Kind)
		if !ok {
			return fmt.Errorf("unknown variant `%s`, expected one of `LowPass`, `HighPass`, `LowPass2`, `HighPass2`, `Clip`, `Pow3` (line %d, column %d)", aux.Kind, val.Line, val.Column)
		}
		s.Filter = &stage.Filter{
			Kind: kind, InBuffer: aux.InBuffer, Cutoff: aux.Cutoff,
			Resonance: aux.Resonance, Limit: aux.Limit, Out: aux.Out,
		}
		return nil

	case "RingModulator":
		var aux struct {
			In1 buffer.Index  `yaml:"in1"`
			In2 buffer.Index  `yaml:"in2"`
			Out stage.OutSpec `yaml:"out"`
		}
		if err := val.Decode(&aux); err != nil {
			return err
		}
		s.RingModulator = &stage.RingModulator{In1: aux.In1, In2: aux.In2, Out: aux.Out}
		return nil

	case "Waveguide":
		var aux struct {
			InBuffer       buffer.Index    `yaml:"in_buffer"`
			Frequency      *lfsource.LfSource `yaml:"frequency"`
			Cutoff         *lfsource.LfSource `yaml:"cutoff"`
			Feedback       *lfsource.LfSource `yaml:"feedback"`
			Reflectance    string          `yaml:"reflectance"`
			BufferSizeSecs float64         `yaml:"buffer_size_secs"`
			Out            stage.OutSpec   `yaml:"out"`
		}
		if err := val.Decode(&aux); err != nil {
			return err
		}
		reflectance, ok := parseReflectance(aux.Reflectance)
		if !ok {
			return fmt.Errorf("unknown variant `%s`, expected `Positive` or `Negative` (line %d, column %d)", aux.Reflectance, val.Line, val.Column)
		}
		s.Waveguide = &stage.Waveguide{
			InBuffer: aux.InBuffer, Frequency: aux.Frequency, Cutoff: aux.Cutoff,
			Feedback: aux.Feedback, Reflectance: reflectance,
			BufferSizeSecs: aux.BufferSizeSecs, Out: aux.Out,
		}
		return nil

	case "Signal":
		var aux struct {
			Kind  string          `yaml:"kind"`
			Value *lfsource.LfSource `yaml:"value"`
			Out   stage.OutSpec   `yaml:"out"`
		}
		if err := val.Decode(&aux); err != nil {
			return err
		}
		kind, ok := parseSignalKind(aux.Kind)
		if !ok {
			return fmt.Errorf("unknown variant `%s`, expected `Noise` or `Constant` (line %d, column %d)", aux.Kind, val.Line, val.Column)
		}
		s.Signal = &stage.Signal{Kind: kind, Value: aux.Value, Out: aux.Out}
		return nil

	case "Envelope":
		var aux struct {
			InBuffer    buffer.Index    `yaml:"in_buffer"`
			AttackTime  *lfsource.LfSource `yaml:"attack_time"`
			ReleaseTime *lfsource.LfSource `yaml:"release_time"`
			DecayRate   *lfsource.LfSource `yaml:"decay_rate"`
			Fadeout     *lfsource.LfSource `yaml:"fadeout"`
			OutLeft     stage.OutSpec   `yaml:"out_left"`
			OutRight    stage.OutSpec   `yaml:"out_right"`
		}
		if err := val.Decode(&aux); err != nil {
			return err
		}
		s.Envelope = &stage.Envelope{
			InBuffer: aux.InBuffer, AttackTime: aux.AttackTime, ReleaseTime: aux.ReleaseTime,
			DecayRate: aux.DecayRate, Fadeout: aux.Fadeout, OutLeft: aux.OutLeft, OutRight: aux.OutRight,
		}
		return nil

	case "Copy":
		var aux struct {
			InBuffer buffer.Index  `yaml:"in_buffer"`
			Out      stage.OutSpec `yaml:"out"`
		}
		if err := val.Decode(&aux); err != nil {
			return err
		}
		s.Copy = &stage.Copy{InBuffer: aux.InBuffer, Out: aux.Out}
		return nil

	case "Load":
		var aux struct {
			Value *lfsource.LfSource `yaml:"value"`
			Out   buffer.Index    `yaml:"out"`
		}
		if err := val.Decode(&aux); err != nil {
			return err
		}
		s.Load = &stage.Load{Value: aux.Value, Out: aux.Out}
		return nil

	case "Effect":
		var aux struct {
			InBuffer  buffer.Index  `yaml:"in_buffer"`
			ChainName string        `yaml:"chain"`
			Out       stage.OutSpec `yaml:"out"`
		}
		if err := val.Decode(&aux); err != nil {
			return err
		}
		s.Effect = &effectSpec{InBuffer: aux.InBuffer, ChainName: aux.ChainName, Out: aux.Out}
		return nil

	default:
		return fmt.Errorf("unknown variant `%s`, expected one of `Oscillator`, `Filter`, `RingModulator`, `Waveguide`, `Signal`, `Envelope`, `Copy`, `Load`, `Effect` (line %d, column %d)", key, node.Line, node.Column)
	}
}

func parseModulationKind(s string) (stage.ModulationKind, bool) {
	switch s {
	case "", "None":
		return stage.NoModulation, true
	case "ByFrequency":
		return stage.ByFrequency, true
	case "ByPhase":
		return stage.ByPhase, true
	default:
		return 0, false
	}
}

func parseFilterKind(s string) (stage.FilterKind, bool) {
	switch s {
	case "LowPass":
		return stage.LowPass, true
	case "HighPass":
		return stage.HighPass, true
	case "LowPass2":
		return stage.LowPass2, true
	case "HighPass2":
		return stage.HighPass2, true
	case "Clip":
		return stage.Clip, true
	case "Pow3":
		return stage.Pow3, true
	default:
		return 0, false
	}
}

func parseReflectance(s string) (stage.Reflectance, bool) {
	switch s {
	case "Positive":
		return stage.ReflectancePositive, true
	case "Negative":
		return stage.ReflectanceNegative, true
	default:
		return 0, false
	}
}

func parseSignalKind(s string) (stage.SignalKind, bool) {
	switch s {
	case "Noise":
		return stage.Noise, true
	case "Constant":
		return stage.ConstantSignal, true
	default:
		return 0, false
	}
}
