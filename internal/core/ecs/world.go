package ecs

// World owns the handle slots, the component stores registered against them
// and a deferred release queue flushed once per tick by the cleanup phase.
type World struct {
	slots        *Slots
	stores       []Removable
	releaseQueue []Handle
}

func NewWorld() *World {
	return &World{
		slots:        NewSlots(),
		stores:       make([]Removable, 0, 8),
		releaseQueue: make([]Handle, 0, 64),
	}
}

// Register adds a component store whose entries are dropped on Destroy.
func (w *World) Register(store Removable) {
	w.stores = append(w.stores, store)
}

func (w *World) Spawn() Handle {
	return w.slots.Create()
}

func (w *World) Alive(h Handle) bool {
	return w.slots.Alive(h)
}

func (w *World) Live() int {
	return w.slots.Live()
}

// Destroy removes h from every registered store and invalidates it.
// Stale handles are ignored and report false.
func (w *World) Destroy(h Handle) bool {
	if !w.slots.Alive(h) {
		return false
	}
	for _, s := range w.stores {
		s.Remove(h)
	}
	return w.slots.Release(h)
}

// MarkForDestruction queues h for the end-of-tick flush.
func (w *World) MarkForDestruction(h Handle) {
	w.releaseQueue = append(w.releaseQueue, h)
}

// Pending returns the number of queued handles.
func (w *World) Pending() int {
	return len(w.releaseQueue)
}

// FlushDestroyQueue hands every queued handle that is still alive to release,
// then clears the queue. Handles queued twice or invalidated in between are
// skipped.
func (w *World) FlushDestroyQueue(release func(Handle)) {
	queue := w.releaseQueue
	w.releaseQueue = nil
	for _, h := range queue {
		if w.slots.Alive(h) {
			release(h)
		}
	}
	if w.releaseQueue == nil {
		w.releaseQueue = queue[:0]
	}
}
