package system

import (
	"time"

	coresys "github.com/trijam/forcerun/internal/core/system"
	"github.com/trijam/forcerun/internal/player"
)

// PlayerSystem feeds the held boost and advances the runner.
// Phase 1 (Update).
type PlayerSystem struct {
	player *player.Controller
}

func NewPlayerSystem(p *player.Controller) *PlayerSystem {
	return &PlayerSystem{player: p}
}

func (s *PlayerSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *PlayerSystem) Update(dt time.Duration) {
	s.player.AddForce()
	s.player.Advance(dt)
}
