// Package catalog embeds the default waveform and envelope library so a
// running engine always has something to render without requiring the
// user to supply their own waveform file first. default.yaml is parsed
// with the same waveform.Spec/EnvelopeSpec decode path a user-supplied
// file goes through; nothing here is special-cased.
package catalog

import (
	_ "embed"
	"fmt"

	"github.com/cbegin/magnetron/internal/waveform"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// File is the top-level shape of a waveform catalog document: a named
// envelope library and an ordered list of waveforms that reference it.
type File struct {
	Envelopes map[string]waveform.EnvelopeSpec `yaml:"envelopes"`
	Waveforms []waveform.Spec                  `yaml:"waveforms"`
}

// Parse decodes raw catalog YAML into a File.
func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("catalog: %w", err)
	}
	return f, nil
}

// Default returns the embedded default waveform catalog. It panics on
// decode failure: default.yaml ships with the binary, so a failure here
// means the embedded asset itself is broken, not a user input error.
func Default() File {
	f, err := Parse(defaultYAML)
	if err != nil {
		panic(err)
	}
	return f
}

// ByName indexes a File's waveforms by name for Compile's waveform
// lookup, mirroring how its Envelopes map is already keyed.
func (f File) ByName() map[string]waveform.Spec {
	m := make(map[string]waveform.Spec, len(f.Waveforms))
	for _, w := range f.Waveforms {
		m[w.Name] = w
	}
	return m
}
