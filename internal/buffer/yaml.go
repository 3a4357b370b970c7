package buffer

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML decodes a buffer index from its tagged textual form:
// "Internal(<n>)", "External(<n>)", "AudioOut(L)", or "AudioOut(R)".
// Waveform files reference buffers this way rather than as bare
// integers, since External and Internal indices share the same
// numbering space but mean different things.
func (i *Index) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("invalid type: expected a buffer index string (line %d, column %d)", node.Line, node.Column)
	}
	parsed, err := ParseIndex(node.Value)
	if err != nil {
		return fmt.Errorf("%s (line %d, column %d)", err, node.Line, node.Column)
	}
	*i = parsed
	return nil
}

// ParseIndex parses the textual buffer index form UnmarshalYAML accepts,
// exposed standalone so the waveform catalog loader can validate indices
// outside of a YAML decode path too.
func ParseIndex(s string) (Index, error) {
	switch s {
	case "AudioOut(L)":
		return AudioOutLeft(), nil
	case "AudioOut(R)":
		return AudioOutRight(), nil
	}
	for _, prefix := range []struct {
		name string
		ctor func(int) Index
	}{
		{"Internal(", Internal},
		{"External(", External},
	} {
		if strings.HasPrefix(s, prefix.name) && strings.HasSuffix(s, ")") {
			n, err := strconv.Atoi(s[len(prefix.name) : len(s)-1])
			if err != nil {
				return Index{}, fmt.Errorf("invalid buffer index `%s`: %w", s, err)
			}
			return prefix.ctor(n), nil
		}
	}
	return Index{}, fmt.Errorf("unknown buffer index `%s`, expected `Internal(n)`, `External(n)`, `AudioOut(L)` or `AudioOut(R)`", s)
}
