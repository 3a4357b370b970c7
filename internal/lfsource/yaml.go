package lfsource

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML implements the three-way float / unit-string / tagged-map
// decode the waveform file format requires for every LfSource field. It
// exists because yaml.v3's default behavior for an ad-hoc union gives
// unhelpful "cannot unmarshal" errors with no indication of which of the
// three shapes was expected; this reproduces the original visitor's
// diagnostic intent (expected-shape, actual-kind, line:column) even
// though the exact text differs from the upstream implementation's own
// error library.
func (s *LfSource) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return s.unmarshalScalar(node)
	case yaml.MappingNode:
		return s.unmarshalExpr(node)
	default:
		return fmt.Errorf("invalid type: unit value, expected float value, unit expression or nested LF source expression (line %d, column %d)", node.Line, node.Column)
	}
}

func (s *LfSource) unmarshalScalar(node *yaml.Node) error {
	switch node.Tag {
	case "!!float":
		var v float64
		if err := node.Decode(&v); err != nil {
			return err
		}
		*s = *Val(v)
		return nil
	case "!!int":
		return fmt.Errorf("invalid type: integer `%s`, expected float value, unit expression or nested LF source expression (line %d, column %d)", node.Value, node.Line, node.Column)
	case "!!null":
		return fmt.Errorf("invalid type: unit value, expected float value, unit expression or nested LF source expression (line %d, column %d)", node.Line, node.Column)
	default:
		u, ok := parseUnit(node.Value)
		if !ok {
			return fmt.Errorf("unknown variant `%s`, expected `WaveformPitch` or `Wavelength` (line %d, column %d)", node.Value, node.Line, node.Column)
		}
		*s = *UnitSource(u)
		return nil
	}
}

func (s *LfSource) unmarshalExpr(node *yaml.Node) error {
	if len(node.Content) != 2 {
		return fmt.Errorf("invalid type: map, expected a single-key tagged expression (line %d, column %d)", node.Line, node.Column)
	}
	key := node.Content[0].Value
	val := node.Content[1]

	switch key {
	case "Add", "Mul":
		if val.Kind != yaml.SequenceNode || len(val.Content) != 2 {
			return fmt.Errorf("invalid type: expected a two-element sequence for `%s` (line %d, column %d)", key, val.Line, val.Column)
		}
		var a, b LfSource
		if err := val.Content[0].Decode(&a); err != nil {
			return err
		}
		if err := val.Content[1].Decode(&b); err != nil {
			return err
		}
		if key == "Add" {
			*s = *AddOf(&a, &b)
		} else {
			*s = *MulOf(&a, &b)
		}
		return nil

	case "Oscillator":
		var aux struct {
			Kind      string    `yaml:"kind"`
			Phase     float64   `yaml:"phase"`
			Frequency *LfSource `yaml:"frequency"`
			Baseline  *LfSource `yaml:"baseline"`
			Amplitude *LfSource `yaml:"amplitude"`
		}
		if err := val.Decode(&aux); err != nil {
			return err
		}
		kind, ok := parseOscillatorKind(aux.Kind)
		if !ok {
			return fmt.Errorf("unknown variant `%s`, expected one of `Sin`, `Sin3`, `Triangle`, `Square`, `Sawtooth` (line %d, column %d)", aux.Kind, val.Line, val.Column)
		}
		*s = *OscillatorOf(kind, aux.Phase, aux.Frequency, aux.Baseline, aux.Amplitude)
		return nil

	case "Envelope":
		var aux struct {
			Name string    `yaml:"name"`
			From *LfSource `yaml:"from"`
			To   *LfSource `yaml:"to"`
		}
		if err := val.Decode(&aux); err != nil {
			return err
		}
		*s = *EnvelopeOf(aux.Name, aux.From, aux.To)
		return nil

	case "Time":
		var aux struct {
			Start *LfSource `yaml:"start"`
			End   *LfSource `yaml:"end"`
			From  *LfSource `yaml:"from"`
			To    *LfSource `yaml:"to"`
		}
		if err := val.Decode(&aux); err != nil {
			return err
		}
		*s = *TimeOf(aux.Start, aux.End, aux.From, aux.To)
		return nil

	case "Property":
		var aux struct {
			Kind string    `yaml:"kind"`
			From *LfSource `yaml:"from"`
			To   *LfSource `yaml:"to"`
		}
		if err := val.Decode(&aux); err != nil {
			return err
		}
		var pk PropertyKind
		switch aux.Kind {
		case "Velocity":
			pk = Velocity
		case "KeyPressure":
			pk = KeyPressure
		default:
			return fmt.Errorf("unknown variant `%s`, expected `Velocity` or `KeyPressure` (line %d, column %d)", aux.Kind, val.Line, val.Column)
		}
		*s = *PropertyOf(pk, aux.From, aux.To)
		return nil

	case "Control":
		var aux struct {
			Controller string    `yaml:"controller"`
			From       *LfSource `yaml:"from"`
			To         *LfSource `yaml:"to"`
		}
		if err := val.Decode(&aux); err != nil {
			return err
		}
		*s = *ControlOf(Controller(aux.Controller), aux.From, aux.To)
		return nil

	default:
		return fmt.Errorf("unknown variant `%s`, expected one of `Add`, `Mul`, `Oscillator`, `Envelope`, `Time`, `Property`, `Control` (line %d, column %d)", key, node.Line, node.Column)
	}
}
