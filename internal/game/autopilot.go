package game

import (
	"math"
	"time"

	"github.com/trijam/forcerun/internal/core/ecs"
	coresys "github.com/trijam/forcerun/internal/core/system"
	"github.com/trijam/forcerun/internal/obstacle"
	"github.com/trijam/forcerun/internal/player"
	"github.com/trijam/forcerun/internal/system"
)

const (
	laneStep  = 0.25 // lateral resolution when choosing a lane
	rowDepth  = 1.0  // obstacles this close along z count as one row
	behindTol = 0.25
)

// Autopilot plays the session without a human: it presses play from the
// menu, steers toward the cheapest lane of the next row and holds the boost
// while the obstacle in that lane is stronger than the runner.
// Phase 0 (Input), registered between the event and input systems.
type Autopilot struct {
	s       *Session
	holding bool
}

func NewAutopilot(s *Session) *Autopilot {
	return &Autopilot{s: s}
}

func (a *Autopilot) Phase() coresys.Phase { return coresys.PhaseInput }

func (a *Autopilot) Update(_ time.Duration) {
	switch a.s.Stage() {
	case StageMenu:
		a.release()
		if !a.s.playPending {
			a.s.Send(system.CmdPlay)
		}
		return
	case StageRunning:
	default:
		a.release()
		return
	}

	p := a.s.Player()
	if p.State() == player.Dead {
		a.release()
		return
	}
	x, cost, ok := a.pickLane()
	if !ok {
		a.release()
		return
	}
	a.s.SetLane(x)

	if cost >= p.Force() && !math.IsInf(cost, 1) {
		a.hold()
	} else {
		a.release()
	}
}

func (a *Autopilot) hold() {
	if !a.holding && a.s.Send(system.CmdBoostPress) {
		a.holding = true
	}
}

func (a *Autopilot) release() {
	if a.holding && a.s.Send(system.CmdBoostRelease) {
		a.holding = false
	}
}

// pickLane scans the play area at the next row ahead and returns the lane
// with the lowest cost, preferring the one nearest the current lane.
func (a *Autopilot) pickLane() (float64, float64, bool) {
	z := a.s.Position().Z
	ahead := func(h ecs.Handle, inst *obstacle.Instance) bool {
		if _, gone := a.s.released[h]; gone {
			return false
		}
		return inst.WorldPosition().Z >= z-behindTol
	}

	rowZ := math.Inf(1)
	a.s.Obstacles().Each(func(h ecs.Handle, inst *obstacle.Instance) {
		if ahead(h, inst) {
			rowZ = math.Min(rowZ, inst.WorldPosition().Z)
		}
	})
	if math.IsInf(rowZ, 1) {
		return 0, 0, false
	}
	var row []*obstacle.Instance
	a.s.Obstacles().Each(func(h ecs.Handle, inst *obstacle.Instance) {
		if ahead(h, inst) && inst.WorldPosition().Z-rowZ <= rowDepth {
			row = append(row, inst)
		}
	})

	half := a.s.gen.Layout().PlayAreaWidth / 2
	cur := a.s.Lane()
	bestX, bestCost := cur, math.Inf(1)
	for x := -half + laneStep; x < half; x += laneStep {
		c := laneCost(row, x)
		if c < bestCost || (c == bestCost && math.Abs(x-cur) < math.Abs(bestX-cur)) {
			bestX, bestCost = x, c
		}
	}
	return bestX, bestCost, true
}

// laneCost is what crossing the row at x costs: the destruction value of a
// solid obstacle, the damage of a spike, nothing for gaps and pickups. The
// finish line is always the cheapest.
func laneCost(row []*obstacle.Instance, x float64) float64 {
	cost := 0.0
	for _, inst := range row {
		if math.Abs(inst.WorldPosition().X-x) >= inst.Width()/2 {
			continue
		}
		var c float64
		switch inst.Type {
		case obstacle.FinishLine:
			return -1
		case obstacle.PowerUp, obstacle.HealthOrb, obstacle.Explosive:
			c = 0
		case obstacle.Spike:
			c = inst.HealthReduction
		default:
			if !inst.Destructible {
				c = math.Inf(1)
			} else {
				c = inst.DestructionValue
			}
		}
		cost = math.Max(cost, c)
	}
	return cost
}
