package system

import (
	"time"

	coresys "github.com/trijam/forcerun/internal/core/system"
	"github.com/trijam/forcerun/internal/timer"
)

// TimerSystem fires due deferred callbacks. Phase 3 (Timers).
type TimerSystem struct {
	sched *timer.Scheduler
}

func NewTimerSystem(sched *timer.Scheduler) *TimerSystem {
	return &TimerSystem{sched: sched}
}

func (s *TimerSystem) Phase() coresys.Phase { return coresys.PhaseTimers }

func (s *TimerSystem) Update(dt time.Duration) {
	s.sched.Advance(dt)
}
