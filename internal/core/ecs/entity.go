package ecs

// Handle encodes a 32-bit slot index in the lower bits and a 32-bit generation
// in the upper bits. Releasing a slot bumps its generation, so every handle
// issued before the release stops resolving.
type Handle uint64

func NewHandle(index uint32, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) Index() uint32      { return uint32(h) }
func (h Handle) Generation() uint32 { return uint32(h >> 32) }

// IsZero reports whether h is the zero handle. Generations start at 1, so the
// zero handle never resolves.
func (h Handle) IsZero() bool { return h == 0 }

// Slots hands out generational handles and recycles released indices.
type Slots struct {
	generations []uint32
	freeList    []uint32
	live        int
}

func NewSlots() *Slots {
	return &Slots{
		generations: make([]uint32, 0, 256),
		freeList:    make([]uint32, 0, 64),
	}
}

func (s *Slots) Create() Handle {
	s.live++
	if n := len(s.freeList); n > 0 {
		idx := s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
		return NewHandle(idx, s.generations[idx])
	}
	idx := uint32(len(s.generations))
	s.generations = append(s.generations, 1)
	return NewHandle(idx, 1)
}

func (s *Slots) Alive(h Handle) bool {
	idx := h.Index()
	if int(idx) >= len(s.generations) {
		return false
	}
	return s.generations[idx] == h.Generation()
}

// Release invalidates h. It returns false for stale or unknown handles.
func (s *Slots) Release(h Handle) bool {
	if !s.Alive(h) {
		return false
	}
	idx := h.Index()
	s.generations[idx]++
	if s.generations[idx] == 0 {
		s.generations[idx] = 1
	}
	s.freeList = append(s.freeList, idx)
	s.live--
	return true
}

// Live returns the number of handles created and not yet released.
func (s *Slots) Live() int { return s.live }
