// Package player holds the runner's force and health state machine. It is
// driven by Advance from the tick loop; there are no goroutines.
package player

import (
	"time"

	"github.com/trijam/forcerun/internal/core/event"
	"github.com/trijam/forcerun/internal/data"
	"github.com/trijam/forcerun/internal/obstacle"
	"go.uber.org/zap"
)

type State uint8

const (
	Idle State = iota
	Moving
	Pushback
	Dead
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Moving:
		return "moving"
	case Pushback:
		return "pushback"
	case Dead:
		return "dead"
	}
	return "unknown"
}

const (
	maxAddValue      = 1.0
	minBoostHealth   = 10.0 // boosting is refused at or below this health
	deathHealth      = 1.0
	pushbackDuration = time.Second
)

type power struct {
	value     float64
	remaining time.Duration
}

// Controller tracks force, health, boost and power-ups of the runner.
type Controller struct {
	data  data.PlayerData
	bus   *event.Bus
	log   *zap.Logger
	level int

	state    State
	health   float64
	distance float64
	score    float64

	held        bool
	addValue    float64
	boost       float64
	boostActive bool

	decaying  bool
	decayWait time.Duration
	regen     bool
	pushback  time.Duration

	powers [4]power
}

func NewController(d data.PlayerData, bus *event.Bus, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{bus: bus, log: log}
	c.Reset(d, 0)
	return c
}

// Reset restores full health, drops boost and power-ups, and returns to Idle.
func (c *Controller) Reset(d data.PlayerData, level int) {
	*c = Controller{
		data:   d,
		bus:    c.bus,
		log:    c.log,
		level:  level,
		state:  Idle,
		health: d.MaxHealth,
	}
}

// Start begins the forward run.
func (c *Controller) Start() {
	if c.state == Dead {
		return
	}
	c.setState(Moving)
}

// Force is the force applied to obstacles on contact.
func (c *Controller) Force() float64 {
	return c.data.BaseForce + c.data.AddedForce + c.boost + c.powerValue(obstacle.StrengthBoost)
}

func (c *Controller) Health() float64    { return c.health }
func (c *Controller) MaxHealth() float64 { return c.data.MaxHealth }
func (c *Controller) State() State       { return c.state }
func (c *Controller) Level() int         { return c.level }
func (c *Controller) Boost() float64     { return c.boost }
func (c *Controller) Score() float64     { return c.score }

// Distance is how far the runner has travelled along z.
func (c *Controller) Distance() float64 { return c.distance }

// Speed is the forward speed including any speed boost.
func (c *Controller) Speed() float64 {
	return c.data.MovementSpeed + c.powerValue(obstacle.SpeedBoost)
}

// Shielded reports whether damage is currently absorbed.
func (c *Controller) Shielded() bool { return c.powers[obstacle.Shield].remaining > 0 }

// BoostPressed starts holding the boost. Pending decay is cancelled.
func (c *Controller) BoostPressed() {
	if c.held {
		return
	}
	c.held = true
	c.stopDecay()
}

// BoostReleased stops holding the boost. The boost force is kept for the
// boost duration and then decays.
func (c *Controller) BoostReleased() {
	if !c.held {
		return
	}
	c.held = false
	c.addValue = 0
	if c.boostActive && c.boost > 0 {
		c.startDecay()
	}
}

// AddForce converts health into boost force. It is called every frame while
// the boost is held; each call adds a little more than the last, up to one
// unit per call. It reports false when the boost is not held or health is too
// low.
func (c *Controller) AddForce() bool {
	if !c.held || c.state == Dead || c.health <= minBoostHealth {
		return false
	}
	c.regen = false
	c.stopDecay()

	if c.addValue < maxAddValue {
		c.addValue = min(c.addValue+c.data.AddForceFactor, maxAddValue)
	}
	c.boost += c.addValue
	c.boostActive = true
	c.consume(c.addValue)
	return true
}

// Collide resolves contact with a solid obstacle. It reports true when the
// obstacle breaks; otherwise the runner is pushed back and loses
// healthReduction health unless shielded.
func (c *Controller) Collide(required, healthReduction float64) bool {
	if c.state == Dead {
		return false
	}
	if required < c.Force() {
		c.score += required * c.scoreMultiplier()
		return true
	}
	c.setState(Pushback)
	c.pushback = pushbackDuration
	c.distance = max(c.distance-c.data.PushbackDistance, 0)
	c.log.Debug("obstacle too strong",
		zap.Float64("required", required),
		zap.Float64("force", c.Force()),
	)
	if !c.Shielded() {
		c.consume(healthReduction)
	}
	return false
}

// Heal restores health up to the maximum.
func (c *Controller) Heal(amount float64) {
	if c.state == Dead || amount <= 0 {
		return
	}
	c.health = min(c.health+amount, c.data.MaxHealth)
}

// TakeDamage removes health unless shielded.
func (c *Controller) TakeDamage(amount float64) {
	if c.state == Dead || amount <= 0 || c.Shielded() {
		return
	}
	c.consume(amount)
}

// ApplyPowerUp activates kind for d, replacing any active one of that kind.
func (c *Controller) ApplyPowerUp(kind obstacle.PowerUpKind, value float64, d time.Duration) {
	if int(kind) >= len(c.powers) || c.state == Dead {
		return
	}
	c.powers[kind] = power{value: value, remaining: d}
	c.log.Debug("power-up applied", zap.Stringer("kind", kind), zap.Float64("value", value), zap.Duration("duration", d))
}

// Advance steps every timed behavior by dt: movement, pushback recovery,
// power-up expiry, boost decay and health regeneration.
func (c *Controller) Advance(dt time.Duration) {
	if dt <= 0 || c.state == Dead {
		return
	}
	secs := dt.Seconds()

	switch c.state {
	case Moving:
		c.distance += c.Speed() * secs
	case Pushback:
		c.pushback -= dt
		if c.pushback <= 0 {
			c.pushback = 0
			c.setState(Moving)
		}
	}

	for i := range c.powers {
		if c.powers[i].remaining > 0 {
			c.powers[i].remaining -= dt
			if c.powers[i].remaining <= 0 {
				c.powers[i] = power{}
			}
		}
	}

	if c.decaying {
		c.advanceDecay(dt)
	}

	if c.regen {
		if c.health < c.data.MaxHealth {
			c.health = min(c.health+c.data.AddForceFactor, c.data.MaxHealth)
		}
		if c.health >= c.data.MaxHealth {
			c.regen = false
		}
	}
}

func (c *Controller) advanceDecay(dt time.Duration) {
	if c.decayWait > 0 {
		c.decayWait -= dt
		if c.decayWait > 0 {
			return
		}
		// the overshoot past the wait counts toward decay
		dt = -c.decayWait
		c.decayWait = 0
	}
	c.boost = max(c.boost-c.data.ForceDecaySpeed*dt.Seconds(), 0)
	if c.boost > 0 {
		return
	}
	c.decaying = false
	c.boostActive = false
	c.regen = true
	c.log.Debug("boost ended, regenerating health")
}

func (c *Controller) startDecay() {
	c.decaying = true
	c.decayWait = time.Duration(c.data.BoostDuration * float64(time.Second))
}

func (c *Controller) stopDecay() {
	c.decaying = false
	c.decayWait = 0
}

func (c *Controller) consume(amount float64) {
	c.health = max(c.health-amount, 0)
	if c.health <= deathHealth {
		c.die()
	}
}

func (c *Controller) die() {
	if c.state == Dead {
		return
	}
	c.setState(Dead)
	c.held = false
	c.decaying = false
	c.regen = false
	c.log.Info("player died", zap.Int("level", c.level), zap.Float64("distance", c.distance))
	if c.bus != nil {
		event.Emit(c.bus, event.PlayerDied{Level: c.level})
	}
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.log.Debug("player state", zap.Stringer("from", c.state), zap.Stringer("to", s))
	c.state = s
}

func (c *Controller) powerValue(k obstacle.PowerUpKind) float64 {
	p := c.powers[k]
	if p.remaining <= 0 {
		return 0
	}
	return p.value
}

func (c *Controller) scoreMultiplier() float64 {
	if m := c.powerValue(obstacle.DoubleScore); m > 0 {
		return m
	}
	return 1
}

// AddScore credits points for collected obstacles.
func (c *Controller) AddScore(points float64) {
	if points > 0 {
		c.score += points * c.scoreMultiplier()
	}
}
