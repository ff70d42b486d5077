package obstacle

import (
	"time"

	"github.com/trijam/forcerun/internal/core/ecs"
)

// Instance is a pooled obstacle. Spec fields are copied onto it on creation;
// the remaining fields are behavior state reset whenever it returns to its pool.
type Instance struct {
	Type    Type
	Variant int
	Handle  ecs.Handle
	Active  bool

	Position         Vec3 // spawn position in level space
	Offset           Vec3 // displacement applied by behaviors
	Scale            Vec3
	DestructionValue float64
	Destructible     bool
	HealthReduction  float64
	Tier             Tier

	elapsed   time.Duration
	cooldown  time.Duration
	waypoint  int
	reverse   bool
	retracted bool
	power     PowerUpKind
}

// WorldPosition is the spawn position plus any behavior displacement.
func (i *Instance) WorldPosition() Vec3 { return i.Position.Add(i.Offset) }

// Width is the lateral extent used by colliders.
func (i *Instance) Width() float64 { return i.Scale.X }

// Power reports the power-up an instance grants; meaningful for PowerUp only.
func (i *Instance) Power() PowerUpKind { return i.power }

// Retracted reports whether a spike currently deals no damage.
func (i *Instance) Retracted() bool { return i.retracted }

func (i *Instance) apply(spec Spec, position Vec3) {
	i.Position = position
	i.Offset = Vec3{}
	i.Scale = Vec3{X: spec.Width, Y: spec.Height, Z: 1}
	i.DestructionValue = spec.DestructionValue
	i.Destructible = spec.Destructible
	i.HealthReduction = 0
	i.Tier = spec.Tier
}

func (i *Instance) reset() {
	i.Active = false
	i.Handle = 0
	i.Offset = Vec3{}
	i.elapsed = 0
	i.cooldown = 0
	i.waypoint = 0
	i.reverse = false
	i.retracted = false
	i.power = 0
}
