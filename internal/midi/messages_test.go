package midi

import "testing"

func TestValidateChannelRejectsOutOfRange(t *testing.T) {
	if err := ValidateChannel(15); err != nil {
		t.Errorf("ValidateChannel(15) = %v, want nil", err)
	}
	if err := ValidateChannel(16); err == nil {
		t.Error("ValidateChannel(16) = nil, want error")
	}
}

func TestPitchBendForRatioIsZeroAtCenter(t *testing.T) {
	if got := PitchBendForRatio(0); got != 0 {
		t.Errorf("PitchBendForRatio(0) = %v, want 0", got)
	}
}

func TestPitchBendForRatioClampsToRange(t *testing.T) {
	if got := PitchBendForRatio(1000); got != 8191 {
		t.Errorf("PitchBendForRatio(1000) = %v, want clamped to 8191", got)
	}
	if got := PitchBendForRatio(-1000); got != -8192 {
		t.Errorf("PitchBendForRatio(-1000) = %v, want clamped to -8192", got)
	}
}

func TestNoteOnEncodesChannelAndKey(t *testing.T) {
	msg := NoteOn(2, 60, 100)
	if len(msg) != 3 {
		t.Fatalf("NoteOn message length = %d, want 3", len(msg))
	}
	if msg[0]&0x0F != 2 {
		t.Errorf("channel nibble = %d, want 2", msg[0]&0x0F)
	}
	if msg[1] != 60 || msg[2] != 100 {
		t.Errorf("NoteOn data = %v, want [60 100]", msg[1:])
	}
}
