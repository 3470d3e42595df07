// apps/go-server/internal/puzzle/presets.go
//
// Difficulty preset management.
//
// Responsibilities:
//   - Load the preset table from an environment-provided file or fall
//     back to the embedded defaults.
//   - Maintain a name-keyed lookup for quick access.
//   - Supply Preset, Presets, and PresetNames accessors.
//
// Initialization behavior (InitPresets):
//   1. If PRESETS_FILE is set, parse that YAML file.
//   2. Otherwise, parse the embedded presets.yaml.
//
// Every loaded preset is validated; initialization fails on the first
// invalid entry. Initialization runs once (sync.Once).

package puzzle

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var embeddedPresets []byte

var (
	presetOnce   sync.Once
	presetList   []DifficultySettings
	presetByName map[string]DifficultySettings
	presetErr    error
)

type presetFile struct {
	Presets []DifficultySettings `yaml:"presets"`
}

// InitPresets loads the difficulty preset table exactly once.
func InitPresets() error {
	presetOnce.Do(func() {
		data := embeddedPresets
		if path := os.Getenv("PRESETS_FILE"); path != "" {
			b, err := os.ReadFile(path)
			if err != nil {
				presetErr = fmt.Errorf("read presets file: %w", err)
				return
			}
			data = b
		}

		var pf presetFile
		if err := yaml.Unmarshal(data, &pf); err != nil {
			presetErr = fmt.Errorf("parse presets: %w", err)
			return
		}
		if len(pf.Presets) == 0 {
			presetErr = fmt.Errorf("presets: empty table")
			return
		}

		byName := make(map[string]DifficultySettings, len(pf.Presets))
		for _, p := range pf.Presets {
			if err := p.Validate(); err != nil {
				presetErr = err
				return
			}
			if _, dup := byName[p.Name]; dup {
				presetErr = fmt.Errorf("presets: duplicate name %q", p.Name)
				return
			}
			byName[p.Name] = p
		}
		presetList = pf.Presets
		presetByName = byName
	})
	return presetErr
}

// Preset returns the named preset. The boolean is false when the name
// is unknown or presets were never initialized.
func Preset(name string) (DifficultySettings, bool) {
	p, ok := presetByName[name]
	return p, ok
}

// Presets returns all presets in file order.
func Presets() []DifficultySettings { return presetList }
