package magnetron

import "testing"

func TestNewEngineRejectsNonPositiveSampleRate(t *testing.T) {
	if _, err := NewEngine(0); err == nil {
		t.Error("expected an error for a zero sample rate")
	}
	if _, err := NewEngine(-1); err == nil {
		t.Error("expected an error for a negative sample rate")
	}
}

func TestNoteOnRejectsUnknownWaveform(t *testing.T) {
	e, err := NewEngine(44100)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := e.NoteOn(60, "Not A Real Waveform", 1.0); err == nil {
		t.Error("expected an error for an unknown waveform name")
	}
}

func TestNoteOnSineProducesNonSilentOutput(t *testing.T) {
	e, err := NewEngine(44100)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := e.NoteOn(69, "Sine", 1.0); err != nil {
		t.Fatalf("NoteOn: %v", err)
	}

	out := e.RenderSeconds(0.1)
	silent := true
	for _, s := range out {
		if s != 0 {
			silent = false
			break
		}
	}
	if silent {
		t.Error("expected a sounding Sine voice to produce nonzero samples")
	}
}

func TestNoteOnEffectChainWaveformProducesNonSilentOutput(t *testing.T) {
	e, err := NewEngine(44100)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	for _, name := range []string{"Chorus Pad", "Echo Pluck", "Distorted Lead"} {
		if err := e.NoteOn(69, name, 1.0); err != nil {
			t.Fatalf("NoteOn(%q): %v", name, err)
		}
		out := e.RenderSeconds(0.1)
		silent := true
		for _, s := range out {
			if s != 0 {
				silent = false
				break
			}
		}
		if silent {
			t.Errorf("expected %q, routed through its default effect chain, to produce nonzero samples", name)
		}
		e.NoteOff(69)
	}
}

func TestWaveformNamesListsCatalogEntries(t *testing.T) {
	e, err := NewEngine(44100)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	names := e.WaveformNames()
	if len(names) == 0 {
		t.Fatal("expected at least one waveform name from the default catalog")
	}
}
