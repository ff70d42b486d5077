package data

import (
	"fmt"
	"os"
	"strings"

	"github.com/trijam/forcerun/internal/obstacle"
	"gopkg.in/yaml.v3"
)

// Difficulty is the coarse difficulty tier of a level.
type Difficulty uint8

const (
	Easy Difficulty = iota
	Medium
	Hard
	Expert
	Nightmare
)

var difficultyNames = [...]string{"easy", "medium", "hard", "expert", "nightmare"}

func (d Difficulty) String() string {
	if int(d) >= len(difficultyNames) {
		return "unknown"
	}
	return difficultyNames[d]
}

// ParseDifficulty maps a case-insensitive tier name to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	for i, name := range difficultyNames {
		if strings.EqualFold(s, name) {
			return Difficulty(i), nil
		}
	}
	return Easy, fmt.Errorf("unknown difficulty %q", s)
}

func (d *Difficulty) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := ParseDifficulty(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// PlayerData holds the tuning values of the runner for one level.
type PlayerData struct {
	BaseForce          float64 `yaml:"base_force"`
	AddedForce         float64 `yaml:"added_force"`
	AddForceFactor     float64 `yaml:"add_force_factor"` // 0..1
	MaxHealth          float64 `yaml:"max_health"`
	HealthToPowerRatio float64 `yaml:"health_to_power_ratio"`
	MovementSpeed      float64 `yaml:"movement_speed"`
	PushbackDistance   float64 `yaml:"pushback_distance"`
	BoostDuration      float64 `yaml:"boost_duration"`    // seconds
	ForceDecaySpeed    float64 `yaml:"force_decay_speed"` // force per second
}

func DefaultPlayerData() PlayerData {
	return PlayerData{
		BaseForce:          10,
		AddForceFactor:     0.1,
		MaxHealth:          100,
		HealthToPowerRatio: 2,
		MovementSpeed:      5,
		PushbackDistance:   2,
		BoostDuration:      1,
		ForceDecaySpeed:    5,
	}
}

// FormulaParams are the coefficients of the level generation formula.
type FormulaParams struct {
	BaseDifficulty         float64 `yaml:"base_difficulty"`
	DifficultyMultiplier   float64 `yaml:"difficulty_multiplier"`
	MaxDifficulty          float64 `yaml:"max_difficulty"`
	BaseDensity            float64 `yaml:"base_density"`
	DensityGrowthRate      float64 `yaml:"density_growth_rate"`
	MaxDensity             float64 `yaml:"max_density"`
	BaseDestructionValue   float64 `yaml:"base_destruction_value"`
	DestructionGrowthRate  float64 `yaml:"destruction_growth_rate"`
	DestructionVariance    float64 `yaml:"destruction_variance"`
	RecommendedHealthUsage float64 `yaml:"recommended_health_usage"`
}

func DefaultFormula() FormulaParams {
	return FormulaParams{
		BaseDifficulty:         1,
		DifficultyMultiplier:   0.3,
		MaxDifficulty:          10,
		BaseDensity:            0.1,
		DensityGrowthRate:      0.05,
		MaxDensity:             0.9,
		BaseDestructionValue:   5,
		DestructionGrowthRate:  1.5,
		DestructionVariance:    0.3,
		RecommendedHealthUsage: 0.3,
	}
}

// PatternObstacle is one authored obstacle of a pattern, positioned relative
// to the pattern start.
type PatternObstacle struct {
	Type             string  `yaml:"type"`
	X                float64 `yaml:"x"`
	Y                float64 `yaml:"y"`
	Z                float64 `yaml:"z"`
	DestructionValue float64 `yaml:"destruction_value"`
	Width            float64 `yaml:"width"`
	Height           float64 `yaml:"height"`
	Destructible     bool    `yaml:"destructible"`
}

// Pattern is a pre-authored group of obstacles.
type Pattern struct {
	Name             string            `yaml:"name"`
	Obstacles        []PatternObstacle `yaml:"obstacles"`
	Length           float64           `yaml:"length"`
	SpawnProbability float64           `yaml:"spawn_probability"`
	MinLevelRequired int               `yaml:"min_level_required"`

	Specs []obstacle.Spec `yaml:"-"`
}

func (p *Pattern) resolve() error {
	p.Specs = make([]obstacle.Spec, 0, len(p.Obstacles))
	for i := range p.Obstacles {
		o := &p.Obstacles[i]
		t, err := obstacle.ParseType(o.Type)
		if err != nil {
			return fmt.Errorf("pattern %s obstacle %d: %w", p.Name, i, err)
		}
		p.Specs = append(p.Specs, obstacle.Spec{
			Type:             t,
			Position:         obstacle.Vec3{X: o.X, Y: o.Y, Z: o.Z},
			DestructionValue: o.DestructionValue,
			Width:            o.Width,
			Height:           o.Height,
			Destructible:     o.Destructible,
		})
	}
	return nil
}

// LevelData is the configuration of a single level. Patterns are referenced
// by name in the YAML file and resolved against the pattern library on load.
type LevelData struct {
	LevelNumber          int            `yaml:"level_number"`
	Name                 string         `yaml:"name"`
	LevelLength          float64        `yaml:"level_length"`
	Difficulty           Difficulty     `yaml:"difficulty"`
	Player               PlayerData     `yaml:"player"`
	PatternNames         []string       `yaml:"patterns"`
	UseDynamicGeneration bool           `yaml:"use_dynamic_generation"`
	Formula              *FormulaParams `yaml:"formula"`
	BaseObstacleWidth    float64        `yaml:"base_obstacle_width"`

	Patterns []Pattern `yaml:"-"`
}

// Clone returns a copy that shares no slices or pointers with d.
func (d LevelData) Clone() LevelData {
	out := d
	out.PatternNames = append([]string(nil), d.PatternNames...)
	out.Patterns = append([]Pattern(nil), d.Patterns...)
	if d.Formula != nil {
		f := *d.Formula
		out.Formula = &f
	}
	return out
}

func defaultLevelData() LevelData {
	f := DefaultFormula()
	return LevelData{
		LevelNumber:          1,
		Name:                 "Level 1",
		LevelLength:          100,
		Difficulty:           Easy,
		Player:               DefaultPlayerData(),
		UseDynamicGeneration: true,
		Formula:              &f,
		BaseObstacleWidth:    1.5,
	}
}

// Level entries are decoded over a copy of the default entry, so a level only
// lists the fields it overrides.
type levelListFile struct {
	Patterns []Pattern   `yaml:"patterns"`
	Default  *LevelData  `yaml:"default"`
	Levels   []yaml.Node `yaml:"levels"`
}

// LevelTable holds the default level configuration and the per-level overrides.
type LevelTable struct {
	def      LevelData
	levels   map[int]*LevelData
	patterns map[string]*Pattern
}

// LoadLevelTable loads levels and the pattern library from a YAML file.
func LoadLevelTable(path string) (*LevelTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level_list: %w", err)
	}
	return ParseLevelTable(raw)
}

// ParseLevelTable builds a LevelTable from YAML bytes.
func ParseLevelTable(raw []byte) (*LevelTable, error) {
	def := defaultLevelData()
	f := levelListFile{Default: &def}
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse level_list: %w", err)
	}
	t := &LevelTable{
		def:      def,
		levels:   make(map[int]*LevelData, len(f.Levels)),
		patterns: make(map[string]*Pattern, len(f.Patterns)),
	}
	for i := range f.Patterns {
		p := &f.Patterns[i]
		if err := p.resolve(); err != nil {
			return nil, fmt.Errorf("parse level_list: %w", err)
		}
		t.patterns[p.Name] = p
	}
	if f.Default != nil {
		t.def = *f.Default
	}
	if err := t.resolve(&t.def); err != nil {
		return nil, err
	}
	for i := range f.Levels {
		l := t.def.Clone()
		if err := f.Levels[i].Decode(&l); err != nil {
			return nil, fmt.Errorf("parse level_list: level entry %d: %w", i, err)
		}
		if err := t.resolve(&l); err != nil {
			return nil, err
		}
		t.levels[l.LevelNumber] = &l
	}
	return t, nil
}

func (t *LevelTable) resolve(l *LevelData) error {
	l.Patterns = nil
	for _, name := range l.PatternNames {
		p, ok := t.patterns[name]
		if !ok {
			return fmt.Errorf("level %d: unknown pattern %q", l.LevelNumber, name)
		}
		l.Patterns = append(l.Patterns, *p)
	}
	return nil
}

// Get returns the configuration authored for level n, or nil if none exists.
func (t *LevelTable) Get(n int) *LevelData {
	return t.levels[n]
}

// Default returns a copy of the default level configuration.
func (t *LevelTable) Default() LevelData {
	return t.def.Clone()
}

// Pattern returns a library pattern by name, or nil if not found.
func (t *LevelTable) Pattern(name string) *Pattern {
	return t.patterns[name]
}

// Count returns the number of authored levels.
func (t *LevelTable) Count() int {
	return len(t.levels)
}

// PatternCount returns the size of the pattern library.
func (t *LevelTable) PatternCount() int {
	return len(t.patterns)
}
