package gen

import (
	"math"
	"sort"
	"testing"

	"github.com/trijam/forcerun/internal/data"
	"github.com/trijam/forcerun/internal/obstacle"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func dynamicLevel(length float64) data.LevelData {
	f := data.DefaultFormula()
	return data.LevelData{
		LevelLength:          length,
		Player:               data.DefaultPlayerData(),
		UseDynamicGeneration: true,
		Formula:              &f,
		BaseObstacleWidth:    1.5,
	}
}

func rowZs(specs []obstacle.Spec) []float64 {
	seen := map[float64]bool{}
	var zs []float64
	for _, s := range specs {
		if s.IsFinishLine() || seen[s.Position.Z] {
			continue
		}
		seen[s.Position.Z] = true
		zs = append(zs, s.Position.Z)
	}
	sort.Float64s(zs)
	return zs
}

func assertFinishLine(t *testing.T, specs []obstacle.Spec, length float64) {
	t.Helper()
	n := 0
	for _, s := range specs {
		if !s.IsFinishLine() {
			continue
		}
		n++
		if s.Position.Z != length-2 || s.DestructionValue != 0 || s.Destructible {
			t.Errorf("bad finish line %+v", s)
		}
		if s.Width != 8 || s.Height != 3 {
			t.Errorf("finish line size %vx%v", s.Width, s.Height)
		}
	}
	if n != 1 {
		t.Fatalf("expected exactly one finish line, got %d", n)
	}
	if !specs[len(specs)-1].IsFinishLine() {
		t.Error("finish line should be the last spec")
	}
}

// TestScenarioLevelFiveForcedRows verifies only the opening segments spawn when every density draw fails
func TestScenarioLevelFiveForcedRows(t *testing.T) {
	g := NewGenerator(DefaultLayout(), nil, constant(0.99), zap.NewNop())
	specs := g.GenerateObstacles(5, dynamicLevel(100))

	assertFinishLine(t, specs, 100)
	zs := rowZs(specs)
	want := []float64{2, 10, 18, 26}
	if len(zs) != len(want) {
		t.Fatalf("row z = %v, want %v", zs, want)
	}
	for i := range want {
		if zs[i] != want[i] {
			t.Fatalf("row z = %v, want %v", zs, want)
		}
	}
	// 7 obstacles of width 1.5 tile a play area of 10
	if got := len(specs) - 1; got != 4*7 {
		t.Errorf("expected 28 row obstacles, got %d", got)
	}
}

// TestScenarioLevelFiveAllSegments verifies every segment spawns when every density draw passes
func TestScenarioLevelFiveAllSegments(t *testing.T) {
	g := NewGenerator(DefaultLayout(), nil, constant(0), zap.NewNop())
	bp := g.Blueprint(5, dynamicLevel(100))

	if !approx(bp.Density, 0.35) {
		t.Errorf("density = %v, want 0.35", bp.Density)
	}
	assertFinishLine(t, bp.Specs, 100)
	if zs := rowZs(bp.Specs); len(zs) != 13 || zs[len(zs)-1] != 98 {
		t.Errorf("expected 13 rows ending at 98, got %v", zs)
	}
	for _, s := range bp.Specs[:len(bp.Specs)-1] {
		if s.Type != obstacle.Wall || !s.Destructible || s.DestructionValue != 5 || s.Height != 1 {
			t.Fatalf("unexpected row obstacle %+v", s)
		}
	}
}

// TestRowTilesPlayArea verifies the row covers the play area without gaps
func TestRowTilesPlayArea(t *testing.T) {
	ld := dynamicLevel(40)
	ld.BaseObstacleWidth = 2
	g := NewGenerator(DefaultLayout(), nil, constant(0.99), zap.NewNop())
	specs := g.GenerateObstacles(1, ld)

	var row []obstacle.Spec
	for _, s := range specs {
		if s.Position.Z == 2 {
			row = append(row, s)
		}
	}
	if len(row) != 5 {
		t.Fatalf("expected 5 obstacles, got %d", len(row))
	}
	for i, s := range row {
		if want := -4 + float64(i)*2; s.Position.X != want || s.Width != 2 {
			t.Errorf("obstacle %d at x=%v width=%v, want x=%v", i, s.Position.X, s.Width, want)
		}
	}
}

// TestPassabilityInvariant verifies every row has an obstacle within budget
func TestPassabilityInvariant(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		g := NewGenerator(DefaultLayout(), nil, NewRandom(seed), zap.NewNop())
		for level := 0; level <= 30; level += 3 {
			bp := g.Blueprint(level, dynamicLevel(200))
			assertFinishLine(t, bp.Specs, 200)

			minByRow := map[float64]float64{}
			for _, s := range bp.Specs {
				if s.IsFinishLine() {
					continue
				}
				if v, ok := minByRow[s.Position.Z]; !ok || s.DestructionValue < v {
					minByRow[s.Position.Z] = s.DestructionValue
				}
			}
			limit := 0.9 * bp.RecommendedForce
			for z, v := range minByRow {
				if v > limit+1e-9 {
					t.Fatalf("seed %d level %d: row at z=%v has min %v > %v", seed, level, z, v, limit)
				}
			}
		}
	}
}

// TestPassabilityRedrawReclassifies verifies the redrawn obstacle gets a new tier
func TestPassabilityRedrawReclassifies(t *testing.T) {
	g := NewGenerator(DefaultLayout(), nil, constant(0.99), zap.NewNop())
	specs := g.GenerateObstacles(1, dynamicLevel(40))

	c := obstacle.DefaultClassifier()
	var lowered int
	for _, s := range specs {
		if s.IsFinishLine() {
			continue
		}
		if s.Tier != c.Classify(s.DestructionValue, 70) {
			t.Errorf("tier %v does not match value %v", s.Tier, s.DestructionValue)
		}
		if s.DestructionValue <= 63 {
			lowered++
		}
	}
	// one redrawn obstacle per row, four forced rows
	if lowered != 4 {
		t.Errorf("expected 4 redrawn obstacles, got %d", lowered)
	}
}

func pattern(name string, weight float64, minLevel int, length float64, specs ...obstacle.Spec) data.Pattern {
	return data.Pattern{Name: name, SpawnProbability: weight, MinLevelRequired: minLevel, Length: length, Specs: specs}
}

func marker(x float64) obstacle.Spec {
	return obstacle.Spec{Type: obstacle.Barrier, Position: obstacle.Vec3{X: x, Z: 1}, Width: 1, Height: 1}
}

// TestWeightedPatternTieGoesToFirst verifies a draw on the boundary picks the earlier pattern
func TestWeightedPatternTieGoesToFirst(t *testing.T) {
	layout := DefaultLayout()
	layout.MinLevelLength = 0
	ld := dynamicLevel(8)
	ld.Patterns = []data.Pattern{
		pattern("locked", 100, 10, 5, marker(9)),
		pattern("a", 1, 0, 5, marker(1)),
		pattern("b", 1, 1, 5, marker(2)),
	}

	tests := []struct {
		draw float64
		want float64
	}{
		{0.25, 1},
		{0.5, 1}, // draw 1.0 equals a's running weight
		{0.75, 2},
	}
	for _, tt := range tests {
		g := NewGenerator(layout, nil, &sequence{vals: []float64{tt.draw}}, zap.NewNop())
		specs := g.GenerateObstacles(1, ld)
		if len(specs) != 2 {
			t.Fatalf("draw %v: expected pattern + finish, got %d specs", tt.draw, len(specs))
		}
		if got := specs[0]; got.Position.X != tt.want || got.Position.Z != 3 {
			t.Errorf("draw %v: got %+v, want marker %v at z=3", tt.draw, got.Position, tt.want)
		}
	}
}

// TestPatternsLockedByLevelFallBackToRows verifies locked patterns are ignored
func TestPatternsLockedByLevelFallBackToRows(t *testing.T) {
	ld := dynamicLevel(40)
	ld.Patterns = []data.Pattern{pattern("late", 1, 50, 5, marker(0))}
	g := NewGenerator(DefaultLayout(), nil, constant(0.99), zap.NewNop())
	for _, s := range g.GenerateObstacles(3, ld) {
		if s.Type == obstacle.Barrier && s.Height == 1 && s.Position.X == 0 {
			t.Fatal("locked pattern was placed")
		}
	}
}

// TestPatternFillsMissingDestructionValue verifies authored zero values come from the formula
func TestPatternFillsMissingDestructionValue(t *testing.T) {
	layout := DefaultLayout()
	layout.MinLevelLength = 0
	ld := dynamicLevel(8)
	ld.Patterns = []data.Pattern{pattern("p", 1, 0, 5,
		obstacle.Spec{Type: obstacle.Wall, Destructible: true, Width: 1, Height: 1},
		obstacle.Spec{Type: obstacle.HealthOrb, Destructible: true, Width: 1, Height: 1},
	)}
	g := NewGenerator(layout, nil, constant(0.5), zap.NewNop())
	specs := g.GenerateObstacles(2, ld)

	// level 2: (5 + 2*1.5) * difficulty 1.6 = 12.8
	if got := specs[0].DestructionValue; !approx(got, 12.8) {
		t.Errorf("wall value = %v, want 12.8", got)
	}
	if specs[1].DestructionValue != 0 {
		t.Error("health orb should stay free")
	}
}

func wallAt(x, value float64) obstacle.Spec {
	return obstacle.Spec{Type: obstacle.Wall, Position: obstacle.Vec3{X: x}, DestructionValue: value, Destructible: true, Width: 2, Height: 2}
}

func rowsByZ(specs []obstacle.Spec) map[float64][]obstacle.Spec {
	rows := map[float64][]obstacle.Spec{}
	for _, s := range specs {
		if !s.IsFinishLine() {
			rows[s.Position.Z] = append(rows[s.Position.Z], s)
		}
	}
	return rows
}

// TestPatternRowsStayPassable verifies formula-filled pattern rows keep one obstacle within budget at high levels
func TestPatternRowsStayPassable(t *testing.T) {
	ld := dynamicLevel(40)
	ld.UseDynamicGeneration = false
	ld.Patterns = []data.Pattern{pattern("pair", 1, 0, 10, wallAt(-2, 0), wallAt(2, 0))}
	c := obstacle.DefaultClassifier()

	for seed := int64(1); seed <= 10; seed++ {
		g := NewGenerator(DefaultLayout(), nil, NewRandom(seed), zap.NewNop())
		bp := g.Blueprint(20, ld)
		limit := 0.9 * bp.RecommendedForce

		rows := rowsByZ(bp.Specs)
		if len(rows) != 4 {
			t.Fatalf("seed %d: expected 4 pattern rows, got %d", seed, len(rows))
		}
		for z, row := range rows {
			lo, hi := math.Inf(1), 0.0
			for _, s := range row {
				lo, hi = math.Min(lo, s.DestructionValue), math.Max(hi, s.DestructionValue)
				if s.Tier != c.Classify(s.DestructionValue, bp.RecommendedForce) {
					t.Errorf("seed %d z=%v: tier %v does not match value %v", seed, z, s.Tier, s.DestructionValue)
				}
			}
			if lo > limit+1e-9 {
				t.Fatalf("seed %d z=%v: row min %v > %v", seed, z, lo, limit)
			}
			if hi <= limit {
				t.Errorf("seed %d z=%v: only the easiest wall should be lowered, max %v", seed, z, hi)
			}
		}
	}
}

// TestPatternAuthoredValuesUntouched verifies rows without formula-filled obstacles keep their authored values
func TestPatternAuthoredValuesUntouched(t *testing.T) {
	ld := dynamicLevel(40)
	ld.UseDynamicGeneration = false
	ld.Patterns = []data.Pattern{pattern("fortress", 1, 0, 10, wallAt(-2, 500), wallAt(2, 500))}

	g := NewGenerator(DefaultLayout(), nil, NewRandom(4), zap.NewNop())
	for _, s := range g.GenerateObstacles(20, ld) {
		if !s.IsFinishLine() && s.DestructionValue != 500 {
			t.Fatalf("authored wall changed to %v", s.DestructionValue)
		}
	}
}

// TestBarrierRowsKeepBreakableObstacle verifies rows rolled as barriers still hold a breakable obstacle within budget
func TestBarrierRowsKeepBreakableObstacle(t *testing.T) {
	// 0.3 picks the barrier slot for every tile
	g := NewGenerator(DefaultLayout(), nil, constant(0.3), zap.NewNop())
	bp := g.Blueprint(1, dynamicLevel(40))
	limit := 0.9 * bp.RecommendedForce

	rows := rowsByZ(bp.Specs)
	if len(rows) == 0 {
		t.Fatal("no rows generated")
	}
	for z, row := range rows {
		breakable := 0
		for _, s := range row {
			if s.Type == obstacle.Barrier && s.Destructible {
				t.Errorf("z=%v: barrier marked destructible", z)
			}
			if s.Type != obstacle.Barrier && s.Destructible && s.DestructionValue <= limit {
				breakable++
			}
		}
		if breakable != 1 {
			t.Errorf("z=%v: expected one breakable obstacle, got %d", z, breakable)
		}
	}
}

// TestStaticTiling verifies patterns are laid end to end by their length
func TestStaticTiling(t *testing.T) {
	ld := dynamicLevel(40)
	ld.UseDynamicGeneration = false
	ld.Patterns = []data.Pattern{pattern("p", 1, 0, 15, marker(0))}

	g := NewGenerator(DefaultLayout(), nil, constant(0), zap.NewNop())
	specs := g.GenerateObstacles(1, ld)
	assertFinishLine(t, specs, 40)

	zs := rowZs(specs)
	want := []float64{3, 18, 33}
	if len(zs) != len(want) {
		t.Fatalf("placements at %v, want %v", zs, want)
	}
	for i := range want {
		if zs[i] != want[i] {
			t.Fatalf("placements at %v, want %v", zs, want)
		}
	}
}

// TestStaticZeroLengthPatternUsesGap verifies a lengthless pattern advances by the default gap
func TestStaticZeroLengthPatternUsesGap(t *testing.T) {
	ld := dynamicLevel(40)
	ld.UseDynamicGeneration = false
	ld.Patterns = []data.Pattern{pattern("p", 1, 0, 0, marker(0))}

	g := NewGenerator(DefaultLayout(), nil, constant(0), zap.NewNop())
	if zs := rowZs(g.GenerateObstacles(1, ld)); len(zs) != 4 || zs[3] != 33 {
		t.Errorf("placements at %v, want 3 13 23 33", zs)
	}
}

// TestStaticWithoutPatterns verifies an empty level still ends in a finish line
func TestStaticWithoutPatterns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ld := dynamicLevel(60)
	ld.UseDynamicGeneration = false

	g := NewGenerator(DefaultLayout(), nil, constant(0), zap.New(core))
	specs := g.GenerateObstacles(1, ld)
	if len(specs) != 1 {
		t.Fatalf("expected only the finish line, got %d specs", len(specs))
	}
	assertFinishLine(t, specs, 60)
	if logs.FilterMessage("static level has no patterns, leaving it empty").Len() != 1 {
		t.Error("expected a diagnostic for the empty pattern list")
	}
}

// TestConfigurationGapsFallBack verifies missing values degrade with diagnostics
func TestConfigurationGapsFallBack(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ld := dynamicLevel(5)
	ld.Formula = nil
	ld.BaseObstacleWidth = 0

	g := NewGenerator(DefaultLayout(), nil, constant(0.99), zap.New(core))
	bp := g.Blueprint(1, ld)

	if bp.LevelLength != 20 {
		t.Errorf("length should clamp to 20, got %v", bp.LevelLength)
	}
	assertFinishLine(t, bp.Specs, 20)
	if !approx(bp.RecommendedForce, 70) {
		t.Errorf("default formula not applied, recommended force %v", bp.RecommendedForce)
	}
	for _, s := range bp.Specs {
		if !s.IsFinishLine() && s.Width != 1.5 {
			t.Fatalf("width should fall back to 1.5, got %v", s.Width)
		}
	}
	for _, msg := range []string{
		"level has no generation formula, using defaults",
		"non-positive obstacle width, using base width",
		"level length out of bounds, clamping",
	} {
		if logs.FilterMessage(msg).Len() != 1 {
			t.Errorf("missing diagnostic %q", msg)
		}
	}
}

// TestGenerationIsDeterministicPerSeed verifies equal seeds give equal layouts
func TestGenerationIsDeterministicPerSeed(t *testing.T) {
	a := NewGenerator(DefaultLayout(), nil, NewRandom(42), nil).GenerateObstacles(7, dynamicLevel(150))
	b := NewGenerator(DefaultLayout(), nil, NewRandom(42), nil).GenerateObstacles(7, dynamicLevel(150))
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("spec %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
	for i := 1; i < len(a); i++ {
		if a[i].Position.Z < a[i-1].Position.Z && !a[i].IsFinishLine() {
			t.Fatalf("generation went backwards at %d", i)
		}
	}
	if math.IsNaN(a[0].DestructionValue) {
		t.Fatal("NaN destruction value")
	}
}
