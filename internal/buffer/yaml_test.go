package buffer

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func decodeIndex(t *testing.T, src string) (Index, error) {
	t.Helper()
	var idx Index
	err := yaml.Unmarshal([]byte(src), &idx)
	return idx, err
}

func TestParseIndexVariants(t *testing.T) {
	cases := []struct {
		src  string
		want Index
	}{
		{"Internal(3)", Internal(3)},
		{"External(0)", External(0)},
		{"AudioOut(L)", AudioOutLeft()},
		{"AudioOut(R)", AudioOutRight()},
	}
	for _, c := range cases {
		got, err := decodeIndex(t, c.src)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.src, err)
		}
		if got != c.want {
			t.Errorf("%s: got %s, want %s", c.src, got, c.want)
		}
	}
}

func TestParseIndexRejectsUnknownForm(t *testing.T) {
	_, err := decodeIndex(t, "Bogus(1)")
	if err == nil {
		t.Fatal("expected an error for an unknown index form")
	}
}
