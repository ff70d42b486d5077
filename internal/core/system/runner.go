package system

import (
	"fmt"
	"time"
)

// Runner executes systems in phase order each tick. Systems sharing a phase
// keep their registration order.
type Runner struct {
	phases [phaseCount][]System
	ticks  uint64
}

func NewRunner() *Runner {
	return &Runner{}
}

// Register adds s to the bucket of its phase. An unknown phase is a
// programming error and panics.
func (r *Runner) Register(s System) {
	p := s.Phase()
	if p < 0 || p >= phaseCount {
		panic(fmt.Sprintf("system: %T registered with unknown phase %d", s, p))
	}
	r.phases[p] = append(r.phases[p], s)
}

func (r *Runner) Tick(dt time.Duration) {
	for _, bucket := range r.phases {
		for _, s := range bucket {
			s.Update(dt)
		}
	}
	r.ticks++
}

// Len returns the number of registered systems.
func (r *Runner) Len() int {
	n := 0
	for _, bucket := range r.phases {
		n += len(bucket)
	}
	return n
}

// Ticks returns the number of completed ticks.
func (r *Runner) Ticks() uint64 { return r.ticks }
