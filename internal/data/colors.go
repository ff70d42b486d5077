package data

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/trijam/forcerun/internal/obstacle"
	"gopkg.in/yaml.v3"
)

type colorListFile struct {
	Thresholds struct {
		Easy        *float64 `yaml:"easy"`
		Medium      *float64 `yaml:"medium"`
		Challenging *float64 `yaml:"challenging"`
	} `yaml:"thresholds"`
	Colors map[string]string `yaml:"colors"` // tier name -> "#rrggbb"
}

// ColorTable holds the tier thresholds and the tier palette.
type ColorTable struct {
	Thresholds obstacle.Thresholds
	Palette    obstacle.Palette
}

// LoadColorTable loads tier thresholds and colors from a YAML file. Entries
// missing from the file keep their defaults.
func LoadColorTable(path string) (*ColorTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read color_list: %w", err)
	}
	var f colorListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse color_list: %w", err)
	}

	t := &ColorTable{
		Thresholds: obstacle.DefaultThresholds(),
		Palette:    obstacle.DefaultPalette(),
	}
	if v := f.Thresholds.Easy; v != nil {
		t.Thresholds.Easy = *v
	}
	if v := f.Thresholds.Medium; v != nil {
		t.Thresholds.Medium = *v
	}
	if v := f.Thresholds.Challenging; v != nil {
		t.Thresholds.Challenging = *v
	}
	th := t.Thresholds
	if !(th.Easy <= th.Medium && th.Medium <= th.Challenging) {
		return nil, fmt.Errorf("parse color_list: thresholds not ascending: %v %v %v", th.Easy, th.Medium, th.Challenging)
	}

	for name, hex := range f.Colors {
		tier, ok := tierByName(name)
		if !ok {
			return nil, fmt.Errorf("parse color_list: unknown tier %q", name)
		}
		c, err := parseHexColor(hex)
		if err != nil {
			return nil, fmt.Errorf("parse color_list: tier %s: %w", name, err)
		}
		t.Palette[tier] = c
	}
	return t, nil
}

// Classifier builds a classifier over the loaded thresholds and palette.
func (t *ColorTable) Classifier() *obstacle.Classifier {
	return obstacle.NewClassifier(t.Thresholds, t.Palette)
}

// Count returns the number of tier colors.
func (t *ColorTable) Count() int {
	return len(t.Palette)
}

func tierByName(name string) (obstacle.Tier, bool) {
	for tier := obstacle.TierEasy; tier <= obstacle.TierFinish; tier++ {
		if strings.EqualFold(tier.String(), name) {
			return tier, true
		}
	}
	return 0, false
}

func parseHexColor(s string) (obstacle.RGB, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return obstacle.RGB{}, fmt.Errorf("bad color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return obstacle.RGB{}, fmt.Errorf("bad color %q: %w", s, err)
	}
	return obstacle.RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}
