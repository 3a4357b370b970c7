package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cbegin/magnetron/internal/pitch"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tune",
	Short: "Build and dispatch microtonal scales",
	Long: `tune builds just-intonation and equal-division scales, emits them in
Scala .scl/.kbm form or as MTS sysex, and dispatches live retuned MIDI
from a pool of output channels.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

// keyMapFlags are the root-key/reference-pitch flags every scale-consuming
// command (dump, jdump, mts, live) shares. ref anchors a key to an
// absolute frequency; root, when it names a different key, is resolved
// against the scale so the root also sounds at its correct, scale-derived
// pitch rather than ref's.
type keyMapFlags struct {
	root string
	ref  string
}

func (f *keyMapFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&f.root, "root", "r", "", "root key (MIDI note number), default ref's key")
	cmd.PersistentFlags().StringVar(&f.ref, "ref", "69@440Hz", "reference key@frequency, e.g. 69@440Hz")
}

// keyMap parses the accumulated root/ref flags into a pitch.KeyMap anchored
// against scale: if root differs from ref's key, the root's pitch is
// derived by walking scale from the reference.
func (f *keyMapFlags) keyMap(scale pitch.Scale) (pitch.KeyMap, error) {
	refKey, refHz, err := parseRef(f.ref)
	if err != nil {
		return pitch.KeyMap{}, err
	}
	rootKey := refKey
	if f.root != "" {
		rootKey, err = strconv.Atoi(f.root)
		if err != nil {
			return pitch.KeyMap{}, fmt.Errorf("invalid --root %q: %w", f.root, err)
		}
	}
	if rootKey == refKey {
		return pitch.KeyMap{RootKey: rootKey, RefPitch: pitch.Pitch(refHz)}, nil
	}
	anchored := pitch.NewTuning(scale, pitch.KeyMap{RootKey: refKey, RefPitch: pitch.Pitch(refHz)})
	return pitch.KeyMap{RootKey: rootKey, RefPitch: anchored.PitchOf(rootKey)}, nil
}

func parseRef(s string) (key int, hz float64, err error) {
	parts := strings.SplitN(s, "@", 2)
	if len(parts) != 2 || !strings.HasSuffix(strings.ToLower(parts[1]), "hz") {
		return 0, 0, fmt.Errorf("invalid --ref %q, expected `<key>@<hz>Hz`", s)
	}
	key, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --ref key in %q: %w", s, err)
	}
	hzStr := parts[1][:len(parts[1])-2]
	hz, err = strconv.ParseFloat(hzStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --ref frequency in %q: %w", s, err)
	}
	return key, hz, nil
}
