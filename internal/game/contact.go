package game

import (
	"math"

	"github.com/trijam/forcerun/internal/core/ecs"
	"github.com/trijam/forcerun/internal/core/event"
	"github.com/trijam/forcerun/internal/obstacle"
	"github.com/trijam/forcerun/internal/player"
	"go.uber.org/zap"
)

// ResolveContact applies the runner touching h. Solid obstacles break when
// their destruction value is below the runner's force and push the runner
// back otherwise; indestructible ones always hold.
func (s *Session) ResolveContact(h ecs.Handle) bool {
	if _, gone := s.released[h]; gone {
		return true
	}
	inst, ok := s.obstacles.Get(h)
	if !ok {
		return true
	}
	kind := inst.Type
	value := inst.DestructionValue
	destructible := inst.Destructible
	reduction := inst.HealthReduction
	center := inst.WorldPosition()
	power := inst.Power()

	out, ok := s.obstacles.Contact(h, s.player)
	if !ok {
		return true
	}

	switch {
	case out.CompleteLevel:
		s.completeLevel()
		return false

	case out.Solid:
		required := value
		if !destructible {
			required = math.Inf(1)
		}
		if s.player.Collide(required, reduction) {
			s.release(h, value)
			s.play("smash")
			return true
		}
		event.Emit(s.bus, event.PlayerPushedBack{Handle: h, Required: value, Force: s.player.Force()})
		s.play("pushback")

	case out.Consumed:
		s.release(h, value)
		s.player.AddScore(value)
		switch kind {
		case obstacle.Explosive:
			s.play("explosion")
		case obstacle.PowerUp:
			s.log.Debug("power up collected", zap.Stringer("kind", power))
			s.play("power_up")
		case obstacle.HealthOrb:
			s.play("heal")
		}
		if out.ExplosionRadius > 0 {
			s.explode(h, center, out.ExplosionRadius)
		}
	}

	if s.player.State() == player.Dead {
		s.stage = StageEnded
		return false
	}
	return s.player.State() == player.Moving
}

// explode clears every destructible obstacle within radius of center.
func (s *Session) explode(source ecs.Handle, center obstacle.Vec3, radius float64) {
	type caught struct {
		h     ecs.Handle
		value float64
	}
	var hits []caught
	s.obstacles.Each(func(h ecs.Handle, inst *obstacle.Instance) {
		if h == source || !inst.Destructible || inst.Type == obstacle.FinishLine {
			return
		}
		if _, gone := s.released[h]; gone {
			return
		}
		p := inst.WorldPosition()
		dx, dz := p.X-center.X, p.Z-center.Z
		if dx*dx+dz*dz <= radius*radius {
			hits = append(hits, caught{h: h, value: inst.DestructionValue})
		}
	})
	for _, c := range hits {
		s.release(c.h, c.value)
	}
	if len(hits) > 0 {
		s.log.Debug("explosion", zap.Int("cleared", len(hits)), zap.Float64("radius", radius))
	}
}

// release queues h for the end of the tick and announces it.
func (s *Session) release(h ecs.Handle, value float64) {
	s.released[h] = struct{}{}
	s.obstacles.MarkForRelease(h)
	event.Emit(s.bus, event.ObstacleCleared{Handle: h, DestructionValue: value})
}
