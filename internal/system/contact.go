package system

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/trijam/forcerun/internal/core/ecs"
	coresys "github.com/trijam/forcerun/internal/core/system"
	"github.com/trijam/forcerun/internal/obstacle"
)

// contactDepth is the half extent of an obstacle along the run axis.
const contactDepth = 0.5

// Collider locates the runner in level space.
type Collider interface {
	Position() obstacle.Vec3
	Colliding() bool // false while idle, pushed back or dead
}

// ContactResolver applies one contact. It returns false to stop resolving
// further contacts this tick.
type ContactResolver interface {
	ResolveContact(h ecs.Handle) bool
}

// ContactSystem sweeps the runner's path since the previous tick and
// resolves every obstacle it crossed, nearest first. Phase 2 (PostUpdate).
type ContactSystem struct {
	obstacles *obstacle.Manager
	runner    Collider
	resolver  ContactResolver

	prevZ   float64
	hasPrev bool
	hits    []hit
}

type hit struct {
	h ecs.Handle
	z float64
}

func NewContactSystem(m *obstacle.Manager, runner Collider, resolver ContactResolver) *ContactSystem {
	return &ContactSystem{obstacles: m, runner: runner, resolver: resolver}
}

func (s *ContactSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *ContactSystem) Update(_ time.Duration) {
	pos := s.runner.Position()
	prev := pos.Z
	if s.hasPrev {
		prev = s.prevZ
	}
	s.prevZ, s.hasPrev = pos.Z, true
	if !s.runner.Colliding() {
		return
	}

	lo := math.Min(prev, pos.Z) - contactDepth
	hi := math.Max(prev, pos.Z) + contactDepth

	s.hits = s.hits[:0]
	s.obstacles.Each(func(h ecs.Handle, inst *obstacle.Instance) {
		p := inst.WorldPosition()
		if p.Z < lo || p.Z > hi {
			return
		}
		if math.Abs(p.X-pos.X) >= inst.Width()/2 {
			return
		}
		s.hits = append(s.hits, hit{h: h, z: p.Z})
	})
	slices.SortFunc(s.hits, func(a, b hit) int {
		if c := cmp.Compare(a.z, b.z); c != 0 {
			return c
		}
		return cmp.Compare(a.h, b.h)
	})

	for _, c := range s.hits {
		if !s.resolver.ResolveContact(c.h) {
			return
		}
	}
}

// Reset forgets the previous position, e.g. after the runner respawns.
func (s *ContactSystem) Reset() {
	s.hasPrev = false
}
