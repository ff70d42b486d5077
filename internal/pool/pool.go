// Package pool implements a bounded object pool with a free queue and an
// in-use set. Instances beyond the capacity ceiling may be created while the
// free queue is empty; they are destroyed instead of queued when released.
package pool

import (
	"errors"
)

// ErrDoubleRelease is returned in strict mode when an instance that is not in
// use is released.
var ErrDoubleRelease = errors.New("pool: release of an instance that is not in use")

const (
	defaultCapacity = 10
	defaultMaxSize  = 100
)

// Options configures a Pool. Create is required; the hooks are optional.
type Options[T comparable] struct {
	Create    func() T
	OnAcquire func(T)
	OnRelease func(T)
	OnDestroy func(T)

	DefaultCapacity int
	MaxSize         int
	Strict          bool
}

// Stats is a snapshot of pool counters.
type Stats struct {
	Active    int
	Inactive  int
	Created   int
	Destroyed int
}

// Pool is not safe for concurrent use. All calls must come from the goroutine
// that owns the game loop.
type Pool[T comparable] struct {
	opts      Options[T]
	free      []T
	inUse     map[T]struct{}
	created   int
	destroyed int
}

func New[T comparable](opts Options[T]) *Pool[T] {
	if opts.Create == nil {
		panic("pool: Options.Create is required")
	}
	if opts.DefaultCapacity <= 0 {
		opts.DefaultCapacity = defaultCapacity
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = defaultMaxSize
	}
	return &Pool[T]{
		opts:  opts,
		free:  make([]T, 0, opts.DefaultCapacity),
		inUse: make(map[T]struct{}, opts.DefaultCapacity),
	}
}

// Acquire returns the oldest free instance, or a new one when the free queue
// is empty. The instance is in use when OnAcquire runs.
func (p *Pool[T]) Acquire() T {
	var v T
	if len(p.free) > 0 {
		var zero T
		v = p.free[0]
		p.free[0] = zero
		p.free = p.free[1:]
	} else {
		v = p.opts.Create()
		p.created++
	}
	p.inUse[v] = struct{}{}
	if p.opts.OnAcquire != nil {
		p.opts.OnAcquire(v)
	}
	return v
}

// Release returns v to the pool. Releasing an instance that is not in use is
// a no-op, or ErrDoubleRelease in strict mode. When keeping v would push the
// pool past max(MaxSize, in-use count) the instance is destroyed instead.
func (p *Pool[T]) Release(v T) error {
	if _, ok := p.inUse[v]; !ok {
		if p.opts.Strict {
			return ErrDoubleRelease
		}
		return nil
	}
	if p.opts.OnRelease != nil {
		p.opts.OnRelease(v)
	}
	delete(p.inUse, v)

	if len(p.free)+len(p.inUse)+1 > p.ceiling() {
		p.destroy(v)
		return nil
	}
	p.free = append(p.free, v)
	return nil
}

// Prewarm creates up to n free instances ahead of first use, stopping at the
// capacity ceiling. It returns the number created.
func (p *Pool[T]) Prewarm(n int) int {
	made := 0
	for i := 0; i < n; i++ {
		if len(p.free)+len(p.inUse) >= p.ceiling() {
			break
		}
		p.free = append(p.free, p.opts.Create())
		p.created++
		made++
	}
	return made
}

// Clear destroys every free instance. Instances in use stay with their owners
// and are handled normally when released.
func (p *Pool[T]) Clear() {
	var zero T
	for i, v := range p.free {
		p.destroy(v)
		p.free[i] = zero
	}
	p.free = p.free[:0]
}

// InUse reports whether v is currently handed out.
func (p *Pool[T]) InUse(v T) bool {
	_, ok := p.inUse[v]
	return ok
}

func (p *Pool[T]) CountActive() int   { return len(p.inUse) }
func (p *Pool[T]) CountInactive() int { return len(p.free) }
func (p *Pool[T]) CountAll() int      { return len(p.free) + len(p.inUse) }
func (p *Pool[T]) MaxSize() int       { return p.opts.MaxSize }

func (p *Pool[T]) Stats() Stats {
	return Stats{
		Active:    len(p.inUse),
		Inactive:  len(p.free),
		Created:   p.created,
		Destroyed: p.destroyed,
	}
}

func (p *Pool[T]) ceiling() int {
	return max(p.opts.MaxSize, len(p.inUse))
}

func (p *Pool[T]) destroy(v T) {
	p.destroyed++
	if p.opts.OnDestroy != nil {
		p.opts.OnDestroy(v)
	}
}
