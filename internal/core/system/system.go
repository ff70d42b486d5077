package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: deliver last tick's events
	PhaseUpdate                  // 1: player and obstacle behaviors
	PhasePostUpdate              // 2: contact resolution
	PhaseTimers                  // 3: deferred callbacks
	PhaseAudio                   // 4: emitter lifetimes
	PhaseCleanup                 // 5: release queued obstacles

	phaseCount
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
