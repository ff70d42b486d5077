package obstacle

import (
	"time"

	"github.com/trijam/forcerun/internal/core/ecs"
	"github.com/trijam/forcerun/internal/pool"
	"go.uber.org/zap"
)

// Options configures the per-type pools of a Manager.
type Options struct {
	Prewarm int // free instances created per type up front
	MaxSize int // capacity ceiling per type
	Strict  bool

	// Prefabs is the number of visual variants available per type. A type
	// with no variants falls back to variant 0.
	Prefabs [TypeCount]int
}

// Manager owns one pool per obstacle type and the registry of live obstacles.
// Handles are generational: once an obstacle is destroyed or the level is
// cleared, its handle stops resolving and every operation on it is a no-op.
type Manager struct {
	world   *ecs.World
	active  *ecs.Store[Instance]
	pools   [typeCount]*pool.Pool[*Instance]
	prefabs [typeCount]int
	spawned [typeCount]int
	warned  [typeCount]bool
	log     *zap.Logger
}

func NewManager(opts Options, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		world:  ecs.NewWorld(),
		active: ecs.NewStore[Instance](),
		log:    log,
	}
	m.world.Register(m.active)
	copy(m.prefabs[:], opts.Prefabs[:])

	for _, t := range Types() {
		t := t
		m.pools[t] = pool.New(pool.Options[*Instance]{
			Create:    func() *Instance { return &Instance{Type: t} },
			OnAcquire: func(i *Instance) { i.Active = true },
			OnRelease: func(i *Instance) { i.reset() },
			OnDestroy: func(i *Instance) {
				m.log.Debug("obstacle evicted", zap.Stringer("type", i.Type))
			},
			DefaultCapacity: opts.Prewarm,
			MaxSize:         opts.MaxSize,
			Strict:          opts.Strict,
		})
		m.pools[t].Prewarm(opts.Prewarm)
	}
	return m
}

// CreateObstacle takes an instance from the pool for spec.Type, copies the
// spec onto it at position, runs the type's init behavior and registers it.
func (m *Manager) CreateObstacle(spec Spec, position Vec3) ecs.Handle {
	t := spec.Type
	if !t.Valid() {
		m.log.Warn("unknown obstacle type, spawning wall", zap.Stringer("type", t))
		t = Wall
		spec.Type = Wall
	}

	inst := m.pools[t].Acquire()
	inst.Type = t
	inst.Variant = m.nextVariant(t)
	inst.apply(spec, position)
	BehaviorFor(t).OnInit(inst)

	h := m.world.Spawn()
	inst.Handle = h
	m.active.Set(h, inst)
	return h
}

// DestroyObstacle deactivates h and returns it to its type pool, where it is
// evicted if the pool is at capacity. Unknown and stale handles are ignored.
func (m *Manager) DestroyObstacle(h ecs.Handle) {
	inst, ok := m.active.Get(h)
	if !ok || !m.world.Alive(h) {
		return
	}
	m.world.Destroy(h)
	if err := m.pools[inst.Type].Release(inst); err != nil {
		m.log.Warn("obstacle release rejected", zap.Stringer("type", inst.Type), zap.Error(err))
	}
}

// ClearAllObstacles releases every live obstacle. Calling it with nothing
// active is a no-op.
func (m *Manager) ClearAllObstacles() {
	for _, h := range m.active.Handles() {
		m.DestroyObstacle(h)
	}
}

// ClearPools clears the level and destroys every pooled instance.
func (m *Manager) ClearPools() {
	m.ClearAllObstacles()
	for _, p := range m.pools {
		p.Clear()
	}
}

// MarkForRelease queues h for release at the end of the tick.
func (m *Manager) MarkForRelease(h ecs.Handle) {
	if m.Alive(h) {
		m.world.MarkForDestruction(h)
	}
}

// Flush releases every queued obstacle that is still live.
func (m *Manager) Flush() {
	m.world.FlushDestroyQueue(m.DestroyObstacle)
}

// Tick advances the behavior of every live obstacle.
func (m *Manager) Tick(dt time.Duration) {
	m.active.Each(func(_ ecs.Handle, inst *Instance) {
		BehaviorFor(inst.Type).OnTick(inst, dt)
	})
}

// Contact runs the contact behavior of h against target. It reports false
// for stale handles.
func (m *Manager) Contact(h ecs.Handle, target Target) (Outcome, bool) {
	inst, ok := m.Get(h)
	if !ok {
		return Outcome{}, false
	}
	return BehaviorFor(inst.Type).OnPlayerContact(inst, target), true
}

func (m *Manager) Get(h ecs.Handle) (*Instance, bool) {
	if !m.world.Alive(h) {
		return nil, false
	}
	return m.active.Get(h)
}

func (m *Manager) Alive(h ecs.Handle) bool {
	return m.world.Alive(h) && m.active.Has(h)
}

func (m *Manager) ActiveCount() int { return m.active.Len() }

// Each visits every live obstacle. fn must not create or destroy obstacles.
func (m *Manager) Each(fn func(ecs.Handle, *Instance)) {
	m.active.Each(fn)
}

// PoolStats reports the pool counters for one type.
func (m *Manager) PoolStats(t Type) pool.Stats {
	if !t.Valid() {
		return pool.Stats{}
	}
	return m.pools[t].Stats()
}

func (m *Manager) nextVariant(t Type) int {
	n := m.prefabs[t]
	if n <= 0 {
		if !m.warned[t] {
			m.warned[t] = true
			m.log.Warn("no prefab variants for obstacle type, using default", zap.Stringer("type", t))
		}
		return 0
	}
	v := m.spawned[t] % n
	m.spawned[t]++
	return v
}
