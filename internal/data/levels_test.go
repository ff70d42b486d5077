package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/trijam/forcerun/internal/obstacle"
)

const testLevels = `
patterns:
  - name: pair
    length: 6
    spawn_probability: 2
    min_level_required: 3
    obstacles:
      - { type: wall, x: -1, z: 0, destruction_value: 8, width: 2, height: 1, destructible: true }
      - { type: spike, x: 1, z: 3, width: 1, height: 0.5 }
default:
  name: Run
  level_length: 120
  base_obstacle_width: 2
  formula:
    base_density: 0.2
levels:
  - level_number: 4
    name: Four
    difficulty: Hard
    patterns: [pair]
    player:
      base_force: 15
`

// TestParseLevelTableInheritsDefault verifies level entries override the default field by field
func TestParseLevelTableInheritsDefault(t *testing.T) {
	tbl, err := ParseLevelTable([]byte(testLevels))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tbl.Count() != 1 || tbl.PatternCount() != 1 {
		t.Fatalf("counts: levels=%d patterns=%d", tbl.Count(), tbl.PatternCount())
	}

	def := tbl.Default()
	if def.LevelLength != 120 || def.BaseObstacleWidth != 2 {
		t.Errorf("default not decoded: %+v", def)
	}
	if def.Formula == nil || def.Formula.BaseDensity != 0.2 || def.Formula.DensityGrowthRate != 0.05 {
		t.Errorf("default formula should merge over built-in defaults: %+v", def.Formula)
	}

	l := tbl.Get(4)
	if l == nil {
		t.Fatal("level 4 missing")
	}
	if l.Name != "Four" || l.Difficulty != Hard || l.LevelLength != 120 {
		t.Errorf("level 4 fields: %+v", l)
	}
	if l.Player.BaseForce != 15 || l.Player.MaxHealth != 100 {
		t.Errorf("player should override base force only: %+v", l.Player)
	}
	if len(l.Patterns) != 1 || len(l.Patterns[0].Specs) != 2 {
		t.Fatalf("pattern not resolved: %+v", l.Patterns)
	}
	if got := l.Patterns[0].Specs[1]; got.Type != obstacle.Spike || got.Position.Z != 3 {
		t.Errorf("unexpected resolved spec %+v", got)
	}
	if tbl.Get(7) != nil {
		t.Error("unlisted level should not be authored")
	}
}

// TestLevelDataCloneIsDeep verifies clones do not share the formula
func TestLevelDataCloneIsDeep(t *testing.T) {
	tbl, err := ParseLevelTable([]byte(testLevels))
	if err != nil {
		t.Fatal(err)
	}
	a := tbl.Default()
	a.Formula.BaseDensity = 0.9
	a.PatternNames = append(a.PatternNames, "x")
	if b := tbl.Default(); b.Formula.BaseDensity != 0.2 || len(b.PatternNames) != 0 {
		t.Error("Default leaked a mutation")
	}
}

// TestParseLevelTableErrors verifies bad references and tags are rejected
func TestParseLevelTableErrors(t *testing.T) {
	cases := map[string]string{
		"unknown pattern": "levels:\n  - { level_number: 2, patterns: [nope] }\n",
		"unknown type":    "patterns:\n  - { name: p, obstacles: [{ type: lava }] }\n",
		"bad difficulty":  "default:\n  difficulty: impossible\n",
	}
	for name, src := range cases {
		if _, err := ParseLevelTable([]byte(src)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

// TestLoadLevelTableShipped verifies the bundled level file loads
func TestLoadLevelTableShipped(t *testing.T) {
	tbl, err := LoadLevelTable(filepath.Join("..", "..", "data", "yaml", "level_list.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl.Count() == 0 || tbl.PatternCount() == 0 {
		t.Errorf("empty table: levels=%d patterns=%d", tbl.Count(), tbl.PatternCount())
	}
	if l := tbl.Get(10); l == nil || l.UseDynamicGeneration {
		t.Error("level 10 should use static patterns")
	}
}

// TestLoadColorTable verifies overrides and defaults of the color file
func TestLoadColorTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colors.yaml")
	src := "thresholds:\n  easy: 0.4\ncolors:\n  hard: \"#102030\"\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := LoadColorTable(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl.Thresholds.Easy != 0.4 || tbl.Thresholds.Medium != 0.8 {
		t.Errorf("thresholds: %+v", tbl.Thresholds)
	}
	if got := tbl.Palette[obstacle.TierHard]; got != (obstacle.RGB{R: 0x10, G: 0x20, B: 0x30}) {
		t.Errorf("hard color: %+v", got)
	}
	if got := tbl.Palette[obstacle.TierEasy]; got != obstacle.DefaultPalette()[obstacle.TierEasy] {
		t.Errorf("easy color should keep default, got %+v", got)
	}
	if tier := tbl.Classifier().Classify(18, 40); tier != obstacle.TierMedium {
		t.Errorf("classifier ignores loaded thresholds: %v", tier)
	}
}

// TestLoadColorTableRejectsBadInput verifies malformed colors and thresholds fail
func TestLoadColorTableRejectsBadInput(t *testing.T) {
	for _, src := range []string{
		"colors:\n  hard: \"#12\"\n",
		"colors:\n  purple: \"#000000\"\n",
		"thresholds:\n  easy: 0.9\n  medium: 0.5\n",
	} {
		path := filepath.Join(t.TempDir(), "colors.yaml")
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadColorTable(path); err == nil {
			t.Errorf("expected error for %q", src)
		}
	}
}

// TestLoadSoundTableShipped verifies the bundled sound file loads
func TestLoadSoundTableShipped(t *testing.T) {
	tbl, err := LoadSoundTable(filepath.Join("..", "..", "data", "yaml", "sound_list.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	smash := tbl.Get("smash")
	if smash == nil || !smash.Frequent {
		t.Fatalf("smash should be a frequent sound: %+v", smash)
	}
	if music := tbl.Get("music"); music == nil || !music.Loop {
		t.Error("music should loop")
	}
	if tbl.Get("missing") != nil {
		t.Error("unknown sound should be nil")
	}
}
