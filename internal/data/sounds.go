package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SoundData describes a synthesized sound effect.
type SoundData struct {
	Name      string  `yaml:"name"`
	Wave      string  `yaml:"wave"` // sine, square, saw, noise
	Frequency float64 `yaml:"frequency"`
	Duration  float64 `yaml:"duration"` // seconds; ignored when Loop is set
	Volume    float64 `yaml:"volume"`   // 0..1
	Loop      bool    `yaml:"loop"`
	Frequent  bool    `yaml:"frequent"` // subject to the concurrent instance cap
}

type soundListFile struct {
	Sounds []SoundData `yaml:"sounds"`
}

// SoundTable holds sound effects indexed by name.
type SoundTable struct {
	sounds map[string]*SoundData
}

// LoadSoundTable loads sound effects from a YAML file.
func LoadSoundTable(path string) (*SoundTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sound_list: %w", err)
	}
	var f soundListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse sound_list: %w", err)
	}
	t := &SoundTable{sounds: make(map[string]*SoundData, len(f.Sounds))}
	for i := range f.Sounds {
		s := &f.Sounds[i]
		if s.Volume == 0 {
			s.Volume = 1
		}
		t.sounds[s.Name] = s
	}
	return t, nil
}

// Get returns a sound by name, or nil if not found.
func (t *SoundTable) Get(name string) *SoundData {
	return t.sounds[name]
}

// Count returns the number of loaded sounds.
func (t *SoundTable) Count() int {
	return len(t.sounds)
}
