package lfsource

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func decodeLfSource(t *testing.T, doc string) (*LfSource, error) {
	t.Helper()
	var s LfSource
	err := yaml.Unmarshal([]byte(doc), &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func TestDecodeFloatValue(t *testing.T) {
	s, err := decodeLfSource(t, "440.0")
	if err != nil {
		t.Fatal(err)
	}
	if s.k != kindValue || s.value != 440.0 {
		t.Errorf("got %+v, want Value(440)", s)
	}
}

func TestDecodeUnitString(t *testing.T) {
	s, err := decodeLfSource(t, "WaveformPitch")
	if err != nil {
		t.Fatal(err)
	}
	if s.k != kindUnit || s.unit != WaveformPitch {
		t.Errorf("got %+v, want Unit(WaveformPitch)", s)
	}
}

func TestDecodeIntegerIsRejected(t *testing.T) {
	_, err := decodeLfSource(t, "10000")
	if err == nil {
		t.Fatal("expected an error decoding an integer LfSource")
	}
	if !strings.Contains(err.Error(), "invalid type: integer `10000`") {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestDecodeMissingValueIsRejected(t *testing.T) {
	_, err := decodeLfSource(t, "")
	if err == nil {
		t.Fatal("expected an error decoding a missing LfSource")
	}
	if !strings.Contains(err.Error(), "invalid type: unit value") {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestDecodeInvalidUnitStringIsRejected(t *testing.T) {
	_, err := decodeLfSource(t, "InvalidUnit")
	if err == nil {
		t.Fatal("expected an error decoding an invalid unit string")
	}
	if !strings.Contains(err.Error(), "unknown variant `InvalidUnit`") {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestDecodeInvalidExprVariantIsRejected(t *testing.T) {
	_, err := decodeLfSource(t, "InvalidExpr: {}")
	if err == nil {
		t.Fatal("expected an error decoding an invalid expression variant")
	}
	if !strings.Contains(err.Error(), "unknown variant `InvalidExpr`") ||
		!strings.Contains(err.Error(), "`Add`, `Mul`, `Oscillator`, `Envelope`, `Time`, `Property`, `Control`") {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestDecodeControlExpression(t *testing.T) {
	doc := `
Control:
  controller: Modulation
  from: 0.0
  to: 1.0
`
	s, err := decodeLfSource(t, doc)
	if err != nil {
		t.Fatal(err)
	}
	if s.k != kindControl || s.controller != ControllerModulation {
		t.Errorf("got %+v, want Control(Modulation)", s)
	}
}
