package level

import (
	"github.com/trijam/forcerun/internal/core/ecs"
	"github.com/trijam/forcerun/internal/core/event"
	"github.com/trijam/forcerun/internal/data"
	"github.com/trijam/forcerun/internal/gen"
	"github.com/trijam/forcerun/internal/obstacle"
	"go.uber.org/zap"
)

// State is the lifecycle state of the current level.
type State uint8

const (
	StateEmpty State = iota
	StateGenerated
	StateActivated
	StateCleared // no obstacles live; the blueprint stays cached
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateGenerated:
		return "generated"
	case StateActivated:
		return "activated"
	case StateCleared:
		return "cleared"
	}
	return "unknown"
}

// Spawner materializes obstacle specs. obstacle.Manager implements it.
type Spawner interface {
	CreateObstacle(spec obstacle.Spec, position obstacle.Vec3) ecs.Handle
	ClearAllObstacles()
}

// DataSource resolves level configuration by number.
type DataSource interface {
	GetLevelData(n int) data.LevelData
}

// Pipeline builds levels: it generates blueprints, spawns them through the
// Spawner and keeps the last blueprint so a retry reuses the same layout.
type Pipeline struct {
	source  DataSource
	gen     *gen.Generator
	spawner Spawner
	bus     *event.Bus
	log     *zap.Logger

	origin  obstacle.Vec3
	state   State
	cached  *gen.Blueprint
	handles []ecs.Handle
}

func NewPipeline(source DataSource, g *gen.Generator, spawner Spawner, bus *event.Bus, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		source:  source,
		gen:     g,
		spawner: spawner,
		bus:     bus,
		log:     log,
	}
}

// SetOrigin moves where future spawns are placed in world space.
func (p *Pipeline) SetOrigin(o obstacle.Vec3) { p.origin = o }

// GenerateLevel clears the current level, generates a fresh blueprint for n,
// spawns it and emits LevelGenerated.
func (p *Pipeline) GenerateLevel(n int) {
	p.clear()
	ld := p.source.GetLevelData(n)
	p.cached = p.gen.Blueprint(n, ld)
	p.spawn()
	p.state = StateGenerated

	p.log.Info("level generated",
		zap.Int("level", n),
		zap.String("name", ld.Name),
		zap.Stringer("difficulty", p.cached.Difficulty),
		zap.Int("obstacles", len(p.handles)),
	)
	if p.bus != nil {
		event.Emit(p.bus, event.LevelGenerated{Level: n, Obstacles: len(p.handles)})
	}
}

// ActivateLevel re-spawns the cached blueprint when it belongs to level n,
// preserving the layout across retries. Otherwise it generates level n.
func (p *Pipeline) ActivateLevel(n int) {
	if p.cached == nil || p.cached.LevelNumber != n {
		p.GenerateLevel(n)
		return
	}
	p.clear()
	p.spawn()
	p.state = StateActivated

	p.log.Info("level activated", zap.Int("level", n), zap.Int("obstacles", len(p.handles)))
	if p.bus != nil {
		event.Emit(p.bus, event.LevelActivated{Level: n, Obstacles: len(p.handles)})
	}
}

// ClearLevel releases every live obstacle. It is always legal and keeps the
// cached blueprint.
func (p *Pipeline) ClearLevel() {
	p.clear()
	if p.state != StateEmpty {
		p.state = StateCleared
	}
}

// Blueprint returns the cached blueprint, or nil before the first generation.
// Callers must not modify it.
func (p *Pipeline) Blueprint() *gen.Blueprint { return p.cached }

func (p *Pipeline) State() State { return p.state }

// Handles returns the handles spawned for the current attempt. Handles of
// obstacles destroyed since then are stale.
func (p *Pipeline) Handles() []ecs.Handle {
	return append([]ecs.Handle(nil), p.handles...)
}

func (p *Pipeline) spawn() {
	p.handles = p.handles[:0]
	for _, s := range p.cached.Specs {
		h := p.spawner.CreateObstacle(s, s.Position.Add(p.origin))
		p.handles = append(p.handles, h)
	}
}

func (p *Pipeline) clear() {
	p.spawner.ClearAllObstacles()
	p.handles = p.handles[:0]
}
