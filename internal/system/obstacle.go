package system

import (
	"time"

	coresys "github.com/trijam/forcerun/internal/core/system"
	"github.com/trijam/forcerun/internal/obstacle"
)

// ObstacleSystem runs the per-type tick behaviors (moving blocks, spikes,
// bobbing orbs). Phase 1 (Update).
type ObstacleSystem struct {
	obstacles *obstacle.Manager
}

func NewObstacleSystem(m *obstacle.Manager) *ObstacleSystem {
	return &ObstacleSystem{obstacles: m}
}

func (s *ObstacleSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ObstacleSystem) Update(dt time.Duration) {
	s.obstacles.Tick(dt)
}
