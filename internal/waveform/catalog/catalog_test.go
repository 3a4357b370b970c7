package catalog

import (
	"testing"

	"github.com/cbegin/magnetron/internal/stage"
	"github.com/cbegin/magnetron/internal/waveform"
)

func TestDefaultParsesWithoutError(t *testing.T) {
	f := Default()
	if len(f.Waveforms) == 0 {
		t.Fatal("expected at least one waveform in the default catalog")
	}
	if len(f.Envelopes) == 0 {
		t.Fatal("expected at least one envelope in the default catalog")
	}
}

func TestDefaultEveryWaveformReferencesAKnownEnvelope(t *testing.T) {
	f := Default()
	for _, w := range f.Waveforms {
		if _, ok := f.Envelopes[w.EnvelopeName]; !ok {
			t.Errorf("waveform %q references unknown envelope %q", w.Name, w.EnvelopeName)
		}
	}
}

func TestDefaultPreservesBothBlownBottleVariants(t *testing.T) {
	f := Default()
	byName := f.ByName()

	neg, ok := byName["Blown Bottle (Breath for color, reflectance -)"]
	if !ok {
		t.Fatal("expected the negative-reflectance Blown Bottle entry")
	}
	pos, ok := byName["Blown Bottle (Breath for color, reflectance +)"]
	if !ok {
		t.Fatal("expected the positive-reflectance Blown Bottle entry")
	}

	negWG := waveguideOf(t, neg)
	posWG := waveguideOf(t, pos)
	if negWG.Reflectance == posWG.Reflectance {
		t.Error("expected the two Blown Bottle entries to differ only by reflectance")
	}
	if negWG.Reflectance != stage.ReflectanceNegative {
		t.Errorf("negative entry: Reflectance = %v, want ReflectanceNegative", negWG.Reflectance)
	}
	if posWG.Reflectance != stage.ReflectancePositive {
		t.Errorf("positive entry: Reflectance = %v, want ReflectancePositive", posWG.Reflectance)
	}
}

func TestDefaultEveryEffectStageReferencesAProvidedChain(t *testing.T) {
	f := Default()
	chains := DefaultEffectChains(44100)
	found := false
	for _, w := range f.Waveforms {
		for _, s := range w.Stages {
			if s.Effect == nil {
				continue
			}
			found = true
			if _, ok := chains[s.Effect.ChainName]; !ok {
				t.Errorf("waveform %q references unknown effect chain %q", w.Name, s.Effect.ChainName)
			}
		}
	}
	if !found {
		t.Fatal("expected at least one waveform with an Effect stage")
	}
}

func waveguideOf(t *testing.T, spec waveform.Spec) *stage.Waveguide {
	t.Helper()
	for _, s := range spec.Stages {
		if s.Waveguide != nil {
			return s.Waveguide
		}
	}
	t.Fatalf("waveform %q has no Waveguide stage", spec.Name)
	return nil
}
