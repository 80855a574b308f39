package seed

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yml
var builtinPresets []byte

type presetFile struct {
	Presets map[string]Options `yaml:"presets"`
}

// ParsePresets decodes a presets document.
func ParsePresets(raw []byte) (map[string]Options, error) {
	var pf presetFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	for name, p := range pf.Presets {
		if p.Users < 0 || p.Messages < 0 || p.FollowsPerUser < 0 || p.LikesPerUser < 0 {
			return nil, fmt.Errorf("preset %q: counts must not be negative", name)
		}
	}
	return pf.Presets, nil
}

// BuiltinPresets returns the presets shipped with the binary.
func BuiltinPresets() map[string]Options {
	presets, err := ParsePresets(builtinPresets)
	if err != nil {
		panic(err)
	}
	return presets
}

// LoadPreset looks name up in path, or in the built-in presets when path is empty.
func LoadPreset(path, name string) (Options, error) {
	presets := BuiltinPresets()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Options{}, fmt.Errorf("read preset file: %w", err)
		}
		if presets, err = ParsePresets(raw); err != nil {
			return Options{}, err
		}
	}

	opts, ok := presets[name]
	if !ok {
		names := make([]string, 0, len(presets))
		for n := range presets {
			names = append(names, n)
		}
		sort.Strings(names)
		return Options{}, fmt.Errorf("unknown preset %q (available: %v)", name, names)
	}
	return opts, nil
}
