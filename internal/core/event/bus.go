package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus owned by a session. Events emitted
// during tick N are delivered when the dispatch phase of tick N+1 runs
// SwapBuffers and DispatchAll.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]func(any)
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer.
func Emit[T any](b *Bus, ev T) {
	t := typeKey[T]()
	b.back[t] = append(b.back[t], ev)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeKey[T]()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// SwapBuffers rotates back to front and empties the new back buffer.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers every front-buffer event to its handlers. Events
// emitted by handlers land in the back buffer and wait for the next swap.
func (b *Bus) DispatchAll() {
	b.mu.Lock()
	handlers := make(map[reflect.Type][]func(any), len(b.handlers))
	for t, hs := range b.handlers {
		handlers[t] = hs
	}
	b.mu.Unlock()

	for t, events := range b.front {
		for _, ev := range events {
			for _, h := range handlers[t] {
				h(ev)
			}
		}
		b.front[t] = events[:0]
	}
}

// Pending reports how many events wait in the back buffer.
func (b *Bus) Pending() int {
	n := 0
	for _, evs := range b.back {
		n += len(evs)
	}
	return n
}

// Flush swaps and dispatches until no events remain or rounds is exhausted.
// Shells and tests that run outside the tick loop use it to settle cascades.
func (b *Bus) Flush(rounds int) {
	for i := 0; i < rounds && b.Pending() > 0; i++ {
		b.SwapBuffers()
		b.DispatchAll()
	}
}
