package system

import (
	"time"

	coresys "github.com/trijam/forcerun/internal/core/system"
)

// Flusher releases work queued during the tick.
type Flusher interface {
	Flush()
}

// CleanupSystem flushes the deferred obstacle release queue at tick end.
// Phase 5 (Cleanup).
type CleanupSystem struct {
	queue Flusher
}

func NewCleanupSystem(queue Flusher) *CleanupSystem {
	return &CleanupSystem{queue: queue}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.queue.Flush()
}
