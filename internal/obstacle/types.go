package obstacle

import (
	"fmt"
	"strings"
)

// Type tags an obstacle instance. It selects the instance's pool and its
// behavior strategy.
type Type uint8

const (
	Wall Type = iota
	Barrier
	Explosive
	MovingBlock
	Spike
	PowerUp
	HealthOrb
	FinishLine

	typeCount
)

// TypeCount is the number of obstacle types.
const TypeCount = int(typeCount)

var typeNames = [typeCount]string{
	"wall", "barrier", "explosive", "moving_block", "spike", "power_up", "health_orb", "finish_line",
}

func (t Type) String() string {
	if t >= typeCount {
		return fmt.Sprintf("type(%d)", t)
	}
	return typeNames[t]
}

func (t Type) Valid() bool { return t < typeCount }

// ParseType accepts the snake_case names used in data files.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range typeNames {
		if n == s {
			return Type(i), nil
		}
	}
	return Wall, fmt.Errorf("unknown obstacle type %q", s)
}

// Types lists every obstacle type in declaration order.
func Types() []Type {
	out := make([]Type, typeCount)
	for i := range out {
		out[i] = Type(i)
	}
	return out
}

// Vec3 is a position or scale in level space. Z runs forward along the track.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Spec describes one obstacle placement produced by the generator.
type Spec struct {
	Type             Type
	Position         Vec3
	DestructionValue float64
	Width            float64
	Height           float64
	Destructible     bool
	Tier             Tier
}

func (s Spec) IsFinishLine() bool { return s.Type == FinishLine }
