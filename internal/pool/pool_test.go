package pool

import (
	"errors"
	"math/rand"
	"testing"
)

type emitter struct {
	id     int
	active bool
}

func newTestPool(maxSize int, strict bool) (*Pool[*emitter], *[]*emitter) {
	var destroyed []*emitter
	next := 0
	p := New(Options[*emitter]{
		Create: func() *emitter {
			next++
			return &emitter{id: next}
		},
		OnAcquire: func(e *emitter) { e.active = true },
		OnRelease: func(e *emitter) { e.active = false },
		OnDestroy: func(e *emitter) { destroyed = append(destroyed, e) },
		MaxSize:   maxSize,
		Strict:    strict,
	})
	return p, &destroyed
}

// TestPoolOverflowTrimmedOnRelease verifies a pool of 2 keeps the last 2 of 3 released instances
func TestPoolOverflowTrimmedOnRelease(t *testing.T) {
	p, destroyed := newTestPool(2, false)

	a, b, c := p.Acquire(), p.Acquire(), p.Acquire()
	if p.CountActive() != 3 {
		t.Fatalf("expected 3 active, got %d", p.CountActive())
	}

	for _, e := range []*emitter{a, b, c} {
		if err := p.Release(e); err != nil {
			t.Fatalf("release: %v", err)
		}
		if e.active {
			t.Errorf("emitter %d still active after release", e.id)
		}
	}

	if p.CountInactive() != 2 {
		t.Errorf("expected 2 pooled instances, got %d", p.CountInactive())
	}
	if len(*destroyed) != 1 || (*destroyed)[0] != a {
		t.Errorf("expected only the first released instance destroyed, got %v", *destroyed)
	}
	if p.InUse(b) || p.InUse(c) {
		t.Error("pooled instances reported in use")
	}
	if got := p.Acquire(); got != b && got != c {
		t.Errorf("reacquired emitter %d, want a pooled one", got.id)
	}
	if st := p.Stats(); st.Created != 3 || st.Destroyed != 1 {
		t.Errorf("unexpected stats %+v", st)
	}
}

// TestPoolReusesFreeInstances verifies Acquire prefers the free queue
func TestPoolReusesFreeInstances(t *testing.T) {
	p, _ := newTestPool(4, false)
	a := p.Acquire()
	p.Release(a)

	b := p.Acquire()
	if a != b {
		t.Error("expected the released instance to be reused")
	}
	if !b.active {
		t.Error("OnAcquire hook did not run")
	}
	if p.Stats().Created != 1 {
		t.Errorf("expected a single construction, got %d", p.Stats().Created)
	}
}

// TestPoolDoubleRelease verifies lenient and strict double release handling
func TestPoolDoubleRelease(t *testing.T) {
	lenient, _ := newTestPool(4, false)
	e := lenient.Acquire()
	lenient.Release(e)
	if err := lenient.Release(e); err != nil {
		t.Errorf("lenient pool should ignore double release, got %v", err)
	}
	if lenient.CountInactive() != 1 {
		t.Errorf("double release must not enqueue twice, free=%d", lenient.CountInactive())
	}

	strict, _ := newTestPool(4, true)
	e = strict.Acquire()
	strict.Release(e)
	if err := strict.Release(e); !errors.Is(err, ErrDoubleRelease) {
		t.Errorf("strict pool should report ErrDoubleRelease, got %v", err)
	}
	if err := strict.Release(&emitter{id: 99}); !errors.Is(err, ErrDoubleRelease) {
		t.Errorf("strict pool should reject foreign instances, got %v", err)
	}
}

// TestPoolPrewarmStopsAtCeiling verifies prewarm never exceeds MaxSize
func TestPoolPrewarmStopsAtCeiling(t *testing.T) {
	p, _ := newTestPool(3, false)
	if made := p.Prewarm(10); made != 3 {
		t.Errorf("expected 3 prewarmed, got %d", made)
	}
	if p.CountInactive() != 3 || p.CountActive() != 0 {
		t.Errorf("unexpected counts free=%d inUse=%d", p.CountInactive(), p.CountActive())
	}

	// Prewarmed instances are served without construction
	p.Acquire()
	if p.Stats().Created != 3 {
		t.Errorf("acquire after prewarm should not construct, created=%d", p.Stats().Created)
	}
}

// TestPoolClearDestroysFreeOnly verifies Clear leaves in-use instances alone
func TestPoolClearDestroysFreeOnly(t *testing.T) {
	p, destroyed := newTestPool(5, false)
	p.Prewarm(3)
	held := p.Acquire()

	p.Clear()
	if p.CountInactive() != 0 {
		t.Errorf("expected empty free queue, got %d", p.CountInactive())
	}
	if len(*destroyed) != 2 {
		t.Errorf("expected 2 destroyed, got %d", len(*destroyed))
	}
	if !p.InUse(held) {
		t.Error("held instance should remain in use")
	}
}

// TestPoolInvariantUnderRandomTraffic checks disjointness and the size ceiling
func TestPoolInvariantUnderRandomTraffic(t *testing.T) {
	for _, capacity := range []int{1, 2, 5, 16} {
		p, _ := newTestPool(capacity, false)
		rng := rand.New(rand.NewSource(int64(capacity)))
		var held []*emitter

		for step := 0; step < 2000; step++ {
			if len(held) == 0 || rng.Intn(100) < 55 {
				held = append(held, p.Acquire())
			} else {
				i := rng.Intn(len(held))
				p.Release(held[i])
				held = append(held[:i], held[i+1:]...)
			}

			free, inUse := p.CountInactive(), p.CountActive()
			if inUse != len(held) {
				t.Fatalf("cap %d step %d: in-use %d, held %d", capacity, step, inUse, len(held))
			}
			if free+inUse > max(capacity, inUse) {
				t.Fatalf("cap %d step %d: free %d + in-use %d exceeds ceiling", capacity, step, free, inUse)
			}
			for _, f := range p.free {
				if p.InUse(f) {
					t.Fatalf("cap %d step %d: instance %d is both free and in use", capacity, step, f.id)
				}
			}
		}
	}
}

// TestPoolNeverHandsOutTwice verifies no instance is acquired twice without release
func TestPoolNeverHandsOutTwice(t *testing.T) {
	p, _ := newTestPool(2, false)
	p.Prewarm(2)
	seen := map[*emitter]bool{}
	for i := 0; i < 6; i++ {
		e := p.Acquire()
		if seen[e] {
			t.Fatalf("instance %d handed out twice", e.id)
		}
		seen[e] = true
	}
}
