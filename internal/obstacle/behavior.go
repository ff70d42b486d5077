package obstacle

import (
	"math"
	"time"
)

// PowerUpKind selects the effect a PowerUp obstacle grants.
type PowerUpKind uint8

const (
	SpeedBoost PowerUpKind = iota
	StrengthBoost
	Shield
	DoubleScore

	powerUpKindCount
)

func (k PowerUpKind) String() string {
	switch k {
	case SpeedBoost:
		return "speed_boost"
	case StrengthBoost:
		return "strength_boost"
	case Shield:
		return "shield"
	case DoubleScore:
		return "double_score"
	}
	return "unknown"
}

// Target is the player as seen by obstacle behaviors.
type Target interface {
	Heal(amount float64)
	TakeDamage(amount float64)
	ApplyPowerUp(kind PowerUpKind, value float64, d time.Duration)
}

// Outcome tells the caller how a contact resolves.
type Outcome struct {
	Solid           bool // compare force against DestructionValue
	Consumed        bool // release the instance
	CompleteLevel   bool
	ExplosionRadius float64
}

// Behavior is the per-type strategy. Implementations are stateless; all state
// lives on the Instance.
type Behavior interface {
	OnInit(inst *Instance)
	OnPlayerContact(inst *Instance, target Target) Outcome
	OnTick(inst *Instance, dt time.Duration)
}

const (
	pushbackDamage  = 10.0 // health lost when a solid obstacle holds
	explosionRadius = 3.0

	spikeDamage   = 20.0
	spikeInterval = time.Second
	spikeRetract  = 2 * time.Second

	healAmount = 25.0
	bobSpeed   = 2.0
	bobHeight  = 0.5

	powerUpValue    = 10.0
	powerUpDuration = 5 * time.Second

	moveSpeed     = 2.0
	waypointReach = 0.1
)

var movingWaypoints = []Vec3{{}, {X: 5}}

var behaviors = [typeCount]Behavior{
	Wall:        wallBehavior{},
	Barrier:     barrierBehavior{},
	Explosive:   explosiveBehavior{},
	MovingBlock: movingBlockBehavior{},
	Spike:       spikeBehavior{},
	PowerUp:     powerUpBehavior{},
	HealthOrb:   healthOrbBehavior{},
	FinishLine:  finishLineBehavior{},
}

// BehaviorFor returns the strategy for t, falling back to the wall behavior
// for unknown types.
func BehaviorFor(t Type) Behavior {
	if !t.Valid() {
		return wallBehavior{}
	}
	return behaviors[t]
}

type wallBehavior struct{}

func (wallBehavior) OnInit(inst *Instance) { inst.HealthReduction = pushbackDamage }
func (wallBehavior) OnPlayerContact(*Instance, Target) Outcome {
	return Outcome{Solid: true}
}
func (wallBehavior) OnTick(*Instance, time.Duration) {}

type barrierBehavior struct{}

func (barrierBehavior) OnInit(inst *Instance) {
	inst.Destructible = false
	inst.HealthReduction = pushbackDamage
}
func (barrierBehavior) OnPlayerContact(*Instance, Target) Outcome {
	return Outcome{Solid: true}
}
func (barrierBehavior) OnTick(*Instance, time.Duration) {}

type explosiveBehavior struct{}

func (explosiveBehavior) OnInit(inst *Instance) { inst.Destructible = true }
func (explosiveBehavior) OnPlayerContact(*Instance, Target) Outcome {
	return Outcome{Consumed: true, ExplosionRadius: explosionRadius}
}
func (explosiveBehavior) OnTick(*Instance, time.Duration) {}

// movingBlockBehavior walks the instance between waypoints relative to its
// spawn position. Odd variants ping-pong, even variants loop.
type movingBlockBehavior struct{}

func (movingBlockBehavior) OnInit(inst *Instance) {
	inst.HealthReduction = pushbackDamage
	inst.waypoint = 0
	inst.reverse = false
}

func (movingBlockBehavior) OnPlayerContact(*Instance, Target) Outcome {
	return Outcome{Solid: true}
}

func (movingBlockBehavior) OnTick(inst *Instance, dt time.Duration) {
	target := movingWaypoints[inst.waypoint]
	inst.Offset = moveTowards(inst.Offset, target, moveSpeed*dt.Seconds())
	if distance(inst.Offset, target) >= waypointReach {
		return
	}
	n := len(movingWaypoints)
	if inst.Variant%2 == 0 {
		inst.waypoint = (inst.waypoint + 1) % n
		return
	}
	if !inst.reverse {
		inst.waypoint++
		if inst.waypoint >= n {
			inst.waypoint = n - 2
			inst.reverse = true
		}
		return
	}
	inst.waypoint--
	if inst.waypoint < 0 {
		inst.waypoint = 1
		inst.reverse = false
	}
}

// spikeBehavior damages on contact at most once per interval. Odd variants
// retract their spikes every other period.
type spikeBehavior struct{}

func (spikeBehavior) OnInit(inst *Instance) {
	inst.Destructible = false
	inst.HealthReduction = spikeDamage
}

func (spikeBehavior) OnPlayerContact(inst *Instance, target Target) Outcome {
	if inst.retracted || inst.cooldown > 0 {
		return Outcome{}
	}
	target.TakeDamage(inst.HealthReduction)
	inst.cooldown = spikeInterval
	return Outcome{}
}

func (spikeBehavior) OnTick(inst *Instance, dt time.Duration) {
	inst.elapsed += dt
	if inst.cooldown > 0 {
		inst.cooldown -= dt
	}
	if inst.Variant%2 == 1 {
		inst.retracted = inst.elapsed%(2*spikeRetract) >= spikeRetract
	}
}

type powerUpBehavior struct{}

func (powerUpBehavior) OnInit(inst *Instance) {
	inst.Destructible = true
	inst.DestructionValue = 0
	inst.power = PowerUpKind(inst.Variant % int(powerUpKindCount))
}

func (powerUpBehavior) OnPlayerContact(inst *Instance, target Target) Outcome {
	value := powerUpValue
	if inst.power == DoubleScore {
		value = 2
	}
	target.ApplyPowerUp(inst.power, value, powerUpDuration)
	return Outcome{Consumed: true}
}

func (powerUpBehavior) OnTick(inst *Instance, dt time.Duration) { inst.elapsed += dt }

type healthOrbBehavior struct{}

func (healthOrbBehavior) OnInit(inst *Instance) {
	inst.Destructible = true
	inst.DestructionValue = 0
}

func (healthOrbBehavior) OnPlayerContact(_ *Instance, target Target) Outcome {
	target.Heal(healAmount)
	return Outcome{Consumed: true}
}

func (healthOrbBehavior) OnTick(inst *Instance, dt time.Duration) {
	inst.elapsed += dt
	inst.Offset.Y = math.Sin(inst.elapsed.Seconds()*bobSpeed) * bobHeight
}

type finishLineBehavior struct{}

func (finishLineBehavior) OnInit(inst *Instance) {
	inst.Destructible = false
	inst.DestructionValue = 0
	inst.Tier = TierFinish
}

func (finishLineBehavior) OnPlayerContact(*Instance, Target) Outcome {
	return Outcome{CompleteLevel: true}
}

func (finishLineBehavior) OnTick(*Instance, time.Duration) {}

func moveTowards(from, to Vec3, maxStep float64) Vec3 {
	d := distance(from, to)
	if d <= maxStep || d == 0 {
		return to
	}
	k := maxStep / d
	return Vec3{
		X: from.X + (to.X-from.X)*k,
		Y: from.Y + (to.Y-from.Y)*k,
		Z: from.Z + (to.Z-from.Z)*k,
	}
}

func distance(a, b Vec3) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
