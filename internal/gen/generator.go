package gen

import (
	"math"
	"slices"

	"github.com/trijam/forcerun/internal/data"
	"github.com/trijam/forcerun/internal/obstacle"
	"go.uber.org/zap"
)

// Layout holds the geometry of generated levels. Lengths are in world units
// along the forward (z) axis; widths along x.
type Layout struct {
	SegmentLength       float64
	RowSpacing          float64
	PlayAreaWidth       float64
	StartOffset         float64 // keeps the first obstacles off the spawn point
	ForcedSpawnDistance float64 // segments starting before this always spawn
	DefaultGapStep      float64
	BaseObstacleWidth   float64
	FinishOffset        float64
	FinishWidth         float64
	FinishHeight        float64
	MinLevelLength      float64
	MaxLevelLength      float64 // 0 means unbounded
}

func DefaultLayout() Layout {
	return Layout{
		SegmentLength:       8,
		RowSpacing:          20,
		PlayAreaWidth:       10,
		StartOffset:         2,
		ForcedSpawnDistance: 30,
		DefaultGapStep:      10,
		BaseObstacleWidth:   1.5,
		FinishOffset:        2,
		FinishWidth:         8,
		FinishHeight:        3,
		MinLevelLength:      20,
		MaxLevelLength:      1000,
	}
}

// rowTypes are the obstacle types procedural rows pick from.
var rowTypes = [...]obstacle.Type{obstacle.Wall, obstacle.Barrier, obstacle.Explosive, obstacle.MovingBlock}

// Blueprint is one generated level attempt.
type Blueprint struct {
	LevelNumber      int
	LevelLength      float64
	Difficulty       data.Difficulty
	DifficultyScore  float64
	Density          float64
	RecommendedForce float64
	Specs            []obstacle.Spec
}

// Clone copies the blueprint and its spec slice.
func (b *Blueprint) Clone() *Blueprint {
	out := *b
	out.Specs = append([]obstacle.Spec(nil), b.Specs...)
	return &out
}

// FinishLine returns the finish line spec and whether there is one.
func (b *Blueprint) FinishLine() (obstacle.Spec, bool) {
	for _, s := range b.Specs {
		if s.IsFinishLine() {
			return s, true
		}
	}
	return obstacle.Spec{}, false
}

// Generator turns a level number and its configuration into an ordered list
// of obstacle specs. All randomness comes from the injected Random.
type Generator struct {
	layout     Layout
	classifier *obstacle.Classifier
	rnd        Random
	curve      Curve
	log        *zap.Logger
}

func NewGenerator(layout Layout, classifier *obstacle.Classifier, rnd Random, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	if classifier == nil {
		classifier = obstacle.DefaultClassifier()
	}
	return &Generator{layout: layout, classifier: classifier, rnd: rnd, log: log}
}

// SetCurve installs a difficulty/density override used by every formula the
// generator builds. nil restores the built-in curve.
func (g *Generator) SetCurve(c Curve) { g.curve = c }

func (g *Generator) Layout() Layout { return g.layout }

// params is a level configuration with every gap filled.
type params struct {
	level   int
	data    data.LevelData
	formula *Formula
	length  float64
	width   float64
	rec     float64
}

func (g *Generator) prepare(level int, ld data.LevelData) params {
	fp := data.DefaultFormula()
	if ld.Formula != nil {
		fp = *ld.Formula
	} else {
		g.log.Warn("level has no generation formula, using defaults", zap.Int("level", level))
	}

	width := ld.BaseObstacleWidth
	if width <= 0 {
		g.log.Warn("non-positive obstacle width, using base width",
			zap.Int("level", level), zap.Float64("width", width), zap.Float64("base", g.layout.BaseObstacleWidth))
		width = g.layout.BaseObstacleWidth
	}

	length := ld.LevelLength
	if length < g.layout.MinLevelLength || (g.layout.MaxLevelLength > 0 && length > g.layout.MaxLevelLength) {
		clamped := math.Max(length, g.layout.MinLevelLength)
		if g.layout.MaxLevelLength > 0 {
			clamped = math.Min(clamped, g.layout.MaxLevelLength)
		}
		g.log.Warn("level length out of bounds, clamping",
			zap.Int("level", level), zap.Float64("length", length), zap.Float64("clamped", clamped))
		length = clamped
	}

	f := NewFormula(fp, g.curve)
	return params{
		level:   max(level, 0),
		data:    ld,
		formula: f,
		length:  length,
		width:   width,
		rec:     f.RecommendedForce(ld.Player),
	}
}

// Blueprint generates a level and wraps it with its derived figures.
func (g *Generator) Blueprint(level int, ld data.LevelData) *Blueprint {
	p := g.prepare(level, ld)
	specs := g.generate(p)
	bp := &Blueprint{
		LevelNumber:      level,
		LevelLength:      p.length,
		Difficulty:       p.formula.Tier(p.level),
		DifficultyScore:  p.formula.Difficulty(p.level),
		Density:          p.formula.ObstacleDensity(p.level),
		RecommendedForce: p.rec,
		Specs:            specs,
	}
	g.log.Debug("level generated",
		zap.Int("level", level),
		zap.Int("obstacles", len(specs)),
		zap.Float64("difficulty", bp.DifficultyScore),
		zap.Float64("density", bp.Density),
		zap.Float64("recommended_force", bp.RecommendedForce),
	)
	return bp
}

// GenerateObstacles returns the ordered specs for a level. The last spec is
// always the finish line.
func (g *Generator) GenerateObstacles(level int, ld data.LevelData) []obstacle.Spec {
	return g.generate(g.prepare(level, ld))
}

func (g *Generator) generate(p params) []obstacle.Spec {
	var specs []obstacle.Spec
	if p.data.UseDynamicGeneration {
		specs = g.dynamic(p)
	} else {
		specs = g.static(p)
	}
	return append(specs, g.finishLine(p.length))
}

func (g *Generator) dynamic(p params) []obstacle.Spec {
	var specs []obstacle.Spec
	difficulty := p.formula.Difficulty(p.level)
	density := p.formula.ObstacleDensity(p.level)
	seg := g.layout.SegmentLength
	if seg <= 0 {
		seg = DefaultLayout().SegmentLength
	}

	for z := g.layout.StartOffset; z < p.length; z += seg {
		forced := z < g.layout.ForcedSpawnDistance
		if !forced && g.rnd.Float64() >= density {
			continue
		}
		if pat := g.selectPattern(p); pat != nil {
			specs = g.placePattern(specs, p, pat, z, difficulty)
			continue
		}
		specs = g.rows(specs, p, z, seg)
	}
	return specs
}

// selectPattern picks by cumulative weight among the patterns unlocked at the
// level. The first pattern whose running weight reaches the draw wins.
func (g *Generator) selectPattern(p params) *data.Pattern {
	var avail []*data.Pattern
	total := 0.0
	for i := range p.data.Patterns {
		pat := &p.data.Patterns[i]
		if pat.MinLevelRequired <= p.level {
			avail = append(avail, pat)
			total += pat.SpawnProbability
		}
	}
	if len(avail) == 0 {
		return nil
	}
	draw := g.rnd.Float64() * total
	cum := 0.0
	for _, pat := range avail {
		cum += pat.SpawnProbability
		if draw <= cum {
			return pat
		}
	}
	return avail[0]
}

func (g *Generator) rows(specs []obstacle.Spec, p params, startZ, length float64) []obstacle.Spec {
	spacing := g.layout.RowSpacing
	count := 1
	if spacing > 0 {
		count = max(1, int(math.Round(length/spacing)))
	}
	for r := 0; r < count; r++ {
		z := startZ + float64(r)*spacing
		if r > 0 && z >= startZ+length {
			break
		}
		specs = g.row(specs, p, z)
	}
	return specs
}

// row tiles the play area at z and enforces passability: the weakest obstacle
// must be clearable with 90% of the recommended force.
func (g *Generator) row(specs []obstacle.Spec, p params, z float64) []obstacle.Spec {
	w := p.width
	count := max(1, int(math.Round(g.layout.PlayAreaWidth/w)))
	startX := -g.layout.PlayAreaWidth/2 + w/2
	first := len(specs)

	base := p.data.Player.BaseForce
	for i := 0; i < count; i++ {
		t := rowTypes[intn(g.rnd, len(rowTypes))]
		value := g.bandValue(base, p.rec)
		height := rangef(g.rnd, 1, 3)
		specs = append(specs, obstacle.Spec{
			Type:             t,
			Position:         obstacle.Vec3{X: startX + float64(i)*w, Z: z},
			DestructionValue: value,
			Width:            w,
			Height:           height,
			Destructible:     t != obstacle.Barrier,
			Tier:             g.classifier.Classify(value, p.rec),
		})
	}

	row := specs[first:]
	if !slices.ContainsFunc(row, clearable) {
		row[0].Type = obstacle.Wall
		row[0].Destructible = true
	}
	g.ensurePassable(row, p, func(int) bool { return true })
	return specs
}

// clearable reports whether the runner can break s in play. Barriers are
// indestructible whatever the data says.
func clearable(s obstacle.Spec) bool {
	return s.Destructible && s.Type != obstacle.Barrier && !s.IsFinishLine()
}

// ensurePassable keeps a row beatable: when no clearable obstacle is within
// 90% of the recommended force, the easiest one that adjustable accepts is
// redrawn into [0.7*base, 0.9*rec] and reclassified.
func (g *Generator) ensurePassable(row []obstacle.Spec, p params, adjustable func(i int) bool) {
	limit := 0.9 * p.rec
	easiest := -1
	for i, s := range row {
		if !clearable(s) {
			continue
		}
		if s.DestructionValue <= limit {
			return
		}
		if adjustable(i) && (easiest < 0 || s.DestructionValue < row[easiest].DestructionValue) {
			easiest = i
		}
	}
	if easiest < 0 {
		return
	}
	base := p.data.Player.BaseForce
	v := math.Min(rangef(g.rnd, 0.7*base, limit), limit)
	row[easiest].DestructionValue = math.Max(v, 0)
	row[easiest].Tier = g.classifier.Classify(row[easiest].DestructionValue, p.rec)
}

// bandValue draws a destruction value from the four weighted difficulty bands.
func (g *Generator) bandValue(base, rec float64) float64 {
	roll := g.rnd.Float64()
	switch {
	case roll < 0.3:
		return rangef(g.rnd, 0.5*base, 0.9*base)
	case roll < 0.6:
		return rangef(g.rnd, base, 0.7*rec)
	case roll < 0.85:
		return rangef(g.rnd, 0.7*rec, 1.1*rec)
	default:
		return rangef(g.rnd, 1.1*rec, 1.5*rec)
	}
}

// static tiles patterns end to end. With no patterns, or a pattern without a
// length, the cursor advances by the default gap.
func (g *Generator) static(p params) []obstacle.Spec {
	var specs []obstacle.Spec
	pats := p.data.Patterns
	if len(pats) == 0 {
		g.log.Warn("static level has no patterns, leaving it empty", zap.Int("level", p.level))
	}
	gap := g.layout.DefaultGapStep
	if gap <= 0 {
		gap = DefaultLayout().DefaultGapStep
	}
	difficulty := p.formula.Difficulty(p.level)

	for z := g.layout.StartOffset; z < p.length; {
		if len(pats) == 0 {
			z += gap
			continue
		}
		pat := &pats[intn(g.rnd, len(pats))]
		specs = g.placePattern(specs, p, pat, z, difficulty)
		if pat.Length > 0 {
			z += pat.Length
		} else {
			z += gap
		}
	}
	return specs
}

// placePattern appends a pattern's specs shifted to startZ. Solid destructible
// obstacles authored without a destruction value get one from the formula,
// and every row holding such an obstacle is kept passable. Authored values
// are never changed.
func (g *Generator) placePattern(specs []obstacle.Spec, p params, pat *data.Pattern, startZ, difficulty float64) []obstacle.Spec {
	first := len(specs)
	var filled []bool
	for _, s := range pat.Specs {
		if s.IsFinishLine() {
			g.log.Warn("pattern contains a finish line, skipping it", zap.String("pattern", pat.Name))
			continue
		}
		s.Position.Z += startZ
		fill := s.Destructible && s.DestructionValue == 0 && scaledByFormula(s.Type)
		if fill {
			s.DestructionValue = p.formula.DestructionValue(p.level, difficulty, g.rnd)
		}
		s.Tier = g.classifier.Classify(s.DestructionValue, p.rec)
		specs = append(specs, s)
		filled = append(filled, fill)
	}

	placed := specs[first:]
	var zs []float64
	byZ := make(map[float64][]int)
	for i, s := range placed {
		z := s.Position.Z
		if _, ok := byZ[z]; !ok {
			zs = append(zs, z)
		}
		byZ[z] = append(byZ[z], i)
	}
	for _, z := range zs {
		idx := byZ[z]
		if !slices.ContainsFunc(idx, func(i int) bool { return filled[i] }) {
			continue
		}
		row := make([]obstacle.Spec, len(idx))
		for j, i := range idx {
			row[j] = placed[i]
		}
		g.ensurePassable(row, p, func(j int) bool { return filled[idx[j]] })
		for j, i := range idx {
			placed[i] = row[j]
		}
	}
	return specs
}

func scaledByFormula(t obstacle.Type) bool {
	switch t {
	case obstacle.Wall, obstacle.Explosive, obstacle.MovingBlock:
		return true
	}
	return false
}

func (g *Generator) finishLine(length float64) obstacle.Spec {
	return obstacle.Spec{
		Type:             obstacle.FinishLine,
		Position:         obstacle.Vec3{Z: length - g.layout.FinishOffset},
		DestructionValue: 0,
		Width:            g.layout.FinishWidth,
		Height:           g.layout.FinishHeight,
		Destructible:     false,
		Tier:             obstacle.TierFinish,
	}
}
