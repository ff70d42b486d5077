// Package timer runs deferred callbacks on the tick loop. Callbacks fire on
// the goroutine that calls Advance, in due-time order, at most once each.
package timer

import (
	"container/heap"
	"time"
)

// ID identifies a scheduled callback. The zero ID is never issued.
type ID uint64

type entry struct {
	id  ID
	at  time.Duration
	fn  func()
	idx int
}

type queue []*entry

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].id < q[j].id
}
func (q queue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].idx = i
	q[j].idx = j
}
func (q *queue) Push(x any) {
	e := x.(*entry)
	e.idx = len(*q)
	*q = append(*q, e)
}
func (q *queue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	e.idx = -1
	return e
}

// Scheduler keeps its own clock, advanced only by Advance.
type Scheduler struct {
	now     time.Duration
	lastID  ID
	pending queue
	byID    map[ID]*entry
}

func NewScheduler() *Scheduler {
	return &Scheduler{byID: make(map[ID]*entry)}
}

// After schedules fn to run once delay has elapsed. A non-positive delay
// fires on the next Advance.
func (s *Scheduler) After(delay time.Duration, fn func()) ID {
	s.lastID++
	e := &entry{id: s.lastID, at: s.now + max(delay, 0), fn: fn}
	heap.Push(&s.pending, e)
	s.byID[e.id] = e
	return e.id
}

// Cancel removes a pending callback. It reports false if the callback already
// fired or was cancelled.
func (s *Scheduler) Cancel(id ID) bool {
	e, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	heap.Remove(&s.pending, e.idx)
	return true
}

// Advance moves the clock forward and runs every callback that became due,
// returning how many ran. Callbacks may schedule or cancel others; callbacks
// scheduled during this call wait for the next Advance, so a callback that
// re-arms itself with a zero delay runs once per call.
func (s *Scheduler) Advance(dt time.Duration) int {
	if dt > 0 {
		s.now += dt
	}
	last := s.lastID
	fired := 0
	for len(s.pending) > 0 && s.pending[0].at <= s.now {
		if s.pending[0].id > last {
			// due entries are ordered by id once their times tie at now
			break
		}
		e := heap.Pop(&s.pending).(*entry)
		delete(s.byID, e.id)
		e.fn()
		fired++
	}
	return fired
}

// Clear cancels everything pending.
func (s *Scheduler) Clear() {
	s.pending = s.pending[:0]
	clear(s.byID)
}

func (s *Scheduler) Pending() int       { return len(s.byID) }
func (s *Scheduler) Now() time.Duration { return s.now }
