package ecs

// Removable is implemented by every component store so the World can drop a
// handle's data from all of them at once.
type Removable interface {
	Remove(h Handle)
}

// Store is a generic handle-keyed component store.
type Store[T any] struct {
	data map[Handle]*T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		data: make(map[Handle]*T, 64),
	}
}

func (s *Store[T]) Set(h Handle, c *T) {
	s.data[h] = c
}

func (s *Store[T]) Get(h Handle) (*T, bool) {
	c, ok := s.data[h]
	return c, ok
}

func (s *Store[T]) Remove(h Handle) {
	delete(s.data, h)
}

func (s *Store[T]) Has(h Handle) bool {
	_, ok := s.data[h]
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.data)
}

// Each visits every entry. fn must not add to or remove from the store.
func (s *Store[T]) Each(fn func(Handle, *T)) {
	for h, c := range s.data {
		fn(h, c)
	}
}

// Handles returns a snapshot of the stored handles, safe to iterate while
// removing.
func (s *Store[T]) Handles() []Handle {
	out := make([]Handle, 0, len(s.data))
	for h := range s.data {
		out = append(out, h)
	}
	return out
}
