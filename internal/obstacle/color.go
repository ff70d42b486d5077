package obstacle

// Tier is the display tier of an obstacle, derived from how its destruction
// value compares to the recommended force. It is cosmetic only.
type Tier uint8

const (
	TierEasy Tier = iota
	TierMedium
	TierChallenging
	TierHard
	TierFinish

	tierCount
)

var tierNames = [tierCount]string{"easy", "medium", "challenging", "hard", "finish"}

func (t Tier) String() string {
	if t >= tierCount {
		return "unknown"
	}
	return tierNames[t]
}

// RGB is an 8-bit color.
type RGB struct {
	R, G, B uint8
}

// Thresholds are upper bounds on destructionValue/recommendedForce.
type Thresholds struct {
	Easy        float64
	Medium      float64
	Challenging float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Easy: 0.5, Medium: 0.8, Challenging: 1.1}
}

// Palette holds one color per tier.
type Palette [tierCount]RGB

func DefaultPalette() Palette {
	return Palette{
		TierEasy:        {0, 255, 0},
		TierMedium:      {255, 235, 4},
		TierChallenging: {255, 0, 255},
		TierHard:        {255, 0, 0},
		TierFinish:      {0, 0, 0},
	}
}

// Classifier maps destruction ratios to display tiers.
type Classifier struct {
	th      Thresholds
	palette Palette
}

func NewClassifier(th Thresholds, p Palette) *Classifier {
	return &Classifier{th: th, palette: p}
}

func DefaultClassifier() *Classifier {
	return NewClassifier(DefaultThresholds(), DefaultPalette())
}

// Classify returns the tier for an obstacle of the given destruction value.
// A non-positive recommended force classifies everything as hard.
func (c *Classifier) Classify(destructionValue, recommendedForce float64) Tier {
	if recommendedForce <= 0 {
		return TierHard
	}
	ratio := destructionValue / recommendedForce
	switch {
	case ratio < c.th.Easy:
		return TierEasy
	case ratio < c.th.Medium:
		return TierMedium
	case ratio < c.th.Challenging:
		return TierChallenging
	default:
		return TierHard
	}
}

func (c *Classifier) Color(t Tier) RGB {
	if t >= tierCount {
		return c.palette[TierHard]
	}
	return c.palette[t]
}
