package gen

import (
	"math"

	"github.com/trijam/forcerun/internal/data"
)

// Curve overrides the per-level difficulty and density. It receives the
// built-in value and returns the one to use.
type Curve interface {
	Difficulty(level int, builtin float64) float64
	ObstacleDensity(level int, builtin float64) float64
}

// Formula maps a level index to difficulty, density and destruction values.
// Results are clamped to the configured envelopes and always finite.
type Formula struct {
	p     data.FormulaParams
	curve Curve
}

func NewFormula(p data.FormulaParams, curve Curve) *Formula {
	return &Formula{p: p, curve: curve}
}

// Difficulty is min(base + level*multiplier, max), clamped to [0, max].
func (f *Formula) Difficulty(level int) float64 {
	l := float64(max(level, 0))
	v := math.Min(f.p.BaseDifficulty+l*f.p.DifficultyMultiplier, f.p.MaxDifficulty)
	if f.curve != nil {
		v = f.curve.Difficulty(level, v)
	}
	return clampFinite(v, 0, f.p.MaxDifficulty)
}

// ObstacleDensity is the per-segment spawn probability, clamped to
// [0, maxDensity].
func (f *Formula) ObstacleDensity(level int) float64 {
	l := float64(max(level, 0))
	v := math.Min(f.p.BaseDensity+l*f.p.DensityGrowthRate, f.p.MaxDensity)
	if f.curve != nil {
		v = f.curve.ObstacleDensity(level, v)
	}
	return clampFinite(v, 0, math.Min(f.p.MaxDensity, 1))
}

// DestructionValue scales the base destruction value by level and difficulty
// with a symmetric random variance.
func (f *Formula) DestructionValue(level int, difficulty float64, rnd Random) float64 {
	l := float64(max(level, 0))
	base := f.p.BaseDestructionValue + l*f.p.DestructionGrowthRate
	variance := rangef(rnd, -f.p.DestructionVariance, f.p.DestructionVariance)
	return clampFinite(base*difficulty*(1+variance), 0, math.MaxFloat64)
}

// RecommendedForce is the force a player has when spending the recommended
// share of their health.
func (f *Formula) RecommendedForce(p data.PlayerData) float64 {
	bonus := p.MaxHealth * f.p.RecommendedHealthUsage * p.HealthToPowerRatio
	return clampFinite(p.BaseForce+bonus, 0, math.MaxFloat64)
}

// Tier buckets the level difficulty into five equal bands of [0, max].
func (f *Formula) Tier(level int) data.Difficulty {
	if f.p.MaxDifficulty <= 0 {
		return data.Easy
	}
	frac := f.Difficulty(level) / f.p.MaxDifficulty
	t := int(frac * 5)
	return data.Difficulty(min(max(t, 0), int(data.Nightmare)))
}

func clampFinite(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(v, hi))
}
