// Package game wires the level pipeline, the runner and the tick systems into
// one playable session.
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trijam/forcerun/internal/audio"
	"github.com/trijam/forcerun/internal/core/ecs"
	"github.com/trijam/forcerun/internal/core/event"
	coresys "github.com/trijam/forcerun/internal/core/system"
	"github.com/trijam/forcerun/internal/data"
	"github.com/trijam/forcerun/internal/gen"
	"github.com/trijam/forcerun/internal/level"
	"github.com/trijam/forcerun/internal/obstacle"
	"github.com/trijam/forcerun/internal/player"
	"github.com/trijam/forcerun/internal/prefs"
	"github.com/trijam/forcerun/internal/system"
	"github.com/trijam/forcerun/internal/timer"
	"go.uber.org/zap"
)

const prefsTimeout = 2 * time.Second

// Stage is where the session is in the play loop.
type Stage uint8

const (
	StageMenu    Stage = iota // level built, waiting for play
	StageCamera               // camera moving to the runner
	StageRunning              // runner moving and colliding
	StageEnded                // finish reached or runner dead, next level pending
)

func (s Stage) String() string {
	switch s {
	case StageMenu:
		return "menu"
	case StageCamera:
		return "camera"
	case StageRunning:
		return "running"
	case StageEnded:
		return "ended"
	}
	return "unknown"
}

// Deps are the loaded resources a Session runs on. Levels is required.
type Deps struct {
	Levels *data.LevelTable
	Colors *data.ColorTable // nil uses the default tiers and palette
	Sounds *data.SoundTable // nil plays nothing
	Store  prefs.Store      // nil keeps preferences in memory
	Curve  gen.Curve        // optional difficulty/density override
	Audio  *audio.Manager   // nil runs silent
	Random gen.Random       // nil seeds from Options.Seed
	Log    *zap.Logger
}

// Stats are cumulative counters for the session.
type Stats struct {
	Level      int
	Completed  int
	Deaths     int
	Cleared    int
	PushedBack int
	Best       int
}

// Session owns every component of a running game. All methods must be called
// from the goroutine that calls Tick.
type Session struct {
	opts Options
	log  *zap.Logger

	bus    *event.Bus
	runner *coresys.Runner
	sched  *timer.Scheduler
	input  chan system.Command

	levels    *level.Provider
	gen       *gen.Generator
	pipeline  *level.Pipeline
	obstacles *obstacle.Manager
	player    *player.Controller
	contact   *system.ContactSystem
	autopilot *Autopilot

	prefs  *prefs.Service
	sounds *data.SoundTable
	audio  *audio.Manager
	music  *audio.Emitter

	stage       Stage
	level       int
	lane        float64
	runData     data.PlayerData
	playPending bool
	cameraTimer timer.ID
	released    map[ecs.Handle]struct{}
	stats       Stats
}

func NewSession(opts Options, deps Deps) (*Session, error) {
	if deps.Levels == nil {
		return nil, errors.New("session: no level table")
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	bus := event.NewBus()
	classifier := obstacle.DefaultClassifier()
	if deps.Colors != nil {
		classifier = deps.Colors.Classifier()
	}
	rnd := deps.Random
	if rnd == nil {
		seed := opts.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		log.Info("generator seeded", zap.Int64("seed", seed))
		rnd = gen.NewRandom(seed)
	}
	store := deps.Store
	if store == nil {
		store = prefs.NewMemoryStore()
	}

	s := &Session{
		opts:     opts,
		log:      log,
		bus:      bus,
		runner:   coresys.NewRunner(),
		sched:    timer.NewScheduler(),
		input:    make(chan system.Command, max(opts.InputQueue, 1)),
		levels:   level.NewProvider(deps.Levels),
		prefs:    prefs.NewService(store, bus, log.Named("prefs")),
		sounds:   deps.Sounds,
		audio:    deps.Audio,
		level:    1,
		runData:  data.DefaultPlayerData(),
		released: make(map[ecs.Handle]struct{}),
	}

	s.gen = gen.NewGenerator(opts.Layout, classifier, rnd, log.Named("gen"))
	if deps.Curve != nil {
		s.gen.SetCurve(deps.Curve)
	}
	s.obstacles = obstacle.NewManager(opts.Obstacles, log.Named("obstacle"))
	s.pipeline = level.NewPipeline(s.levels, s.gen, s.obstacles, bus, log.Named("level"))
	s.player = player.NewController(s.runData, bus, log.Named("player"))
	s.contact = system.NewContactSystem(s.obstacles, s, s)

	s.runner.Register(system.NewEventSystem(bus))
	if opts.Autopilot {
		s.autopilot = NewAutopilot(s)
		s.runner.Register(s.autopilot)
	}
	s.runner.Register(system.NewInputSystem(s.input, s, 0, log))
	s.runner.Register(system.NewPlayerSystem(s.player))
	s.runner.Register(system.NewObstacleSystem(s.obstacles))
	s.runner.Register(s.contact)
	s.runner.Register(system.NewTimerSystem(s.sched))
	if s.audio != nil {
		s.runner.Register(system.NewAudioSystem(s.audio))
	}
	s.runner.Register(system.NewCleanupSystem(s))

	event.Subscribe(bus, func(event.PlayClicked) { s.onPlayClicked() })
	event.Subscribe(bus, s.onLevelCompleted)
	event.Subscribe(bus, s.onPlayerDied)
	event.Subscribe(bus, s.onPreferenceChanged)
	event.Subscribe(bus, func(event.ObstacleCleared) { s.stats.Cleared++ })
	event.Subscribe(bus, func(event.PlayerPushedBack) { s.stats.PushedBack++ })

	return s, nil
}

// Start generates the stored current level and waits for play.
func (s *Session) Start(ctx context.Context) error {
	lvl, err := s.prefs.CurrentLevel(ctx)
	if err != nil {
		return fmt.Errorf("read current level: %w", err)
	}
	if best, err := s.prefs.HighScore(ctx); err == nil {
		s.stats.Best = best
	}
	s.level = lvl
	s.applyVolume(ctx)
	s.startMusic(ctx)
	s.pipeline.GenerateLevel(lvl)
	s.stage = StageMenu
	return nil
}

// Tick runs every system once.
func (s *Session) Tick(dt time.Duration) {
	s.runner.Tick(dt)
}

// Send queues a command for the next tick. It reports false when the queue
// is full.
func (s *Session) Send(cmd system.Command) bool {
	select {
	case s.input <- cmd:
		return true
	default:
		return false
	}
}

// HandleCommand applies one drained input command.
func (s *Session) HandleCommand(cmd system.Command) {
	switch cmd {
	case system.CmdPlay:
		if s.stage == StageMenu && !s.playPending {
			s.playPending = true
			event.Emit(s.bus, event.PlayClicked{})
		}
	case system.CmdBoostPress:
		if s.stage == StageRunning {
			s.player.BoostPressed()
		}
	case system.CmdBoostRelease:
		s.player.BoostReleased()
	}
}

// Flush releases obstacles queued during the tick.
func (s *Session) Flush() {
	s.obstacles.Flush()
	clear(s.released)
}

// Close cancels pending callbacks and empties the obstacle pools.
func (s *Session) Close() {
	s.sched.Clear()
	s.obstacles.ClearPools()
	if s.audio != nil && s.music != nil {
		s.audio.Stop(s.music)
		s.music = nil
	}
}

func (s *Session) onPlayClicked() {
	s.playPending = false
	if s.stage != StageMenu {
		return
	}
	ld := s.levels.GetLevelData(s.level)
	s.runData = ld.Player
	s.pipeline.ActivateLevel(s.level)
	s.player.Reset(s.runData, s.level)
	s.lane = 0
	s.contact.Reset()
	s.stage = StageCamera
	s.play("click")

	s.cameraTimer = s.sched.After(s.opts.CameraMoveDuration, func() {
		if s.stage != StageCamera {
			return
		}
		s.stage = StageRunning
		s.player.Start()
		s.log.Info("run started", zap.Int("level", s.level))
	})
}

func (s *Session) onLevelCompleted(e event.LevelCompleted) {
	s.stats.Completed++
	next := e.Level + 1
	s.level = next

	ctx, cancel := context.WithTimeout(context.Background(), prefsTimeout)
	defer cancel()
	if err := s.prefs.SetCurrentLevel(ctx, next); err != nil {
		s.log.Warn("save current level failed", zap.Int("level", next), zap.Error(err))
	}

	s.pipeline.GenerateLevel(next)
	s.stage = StageMenu
}

func (s *Session) onPlayerDied(e event.PlayerDied) {
	s.stats.Deaths++
	s.sched.Cancel(s.cameraTimer)
	s.submitScore()
	s.play("death")
	s.log.Info("restarting level", zap.Int("level", e.Level))

	s.pipeline.ActivateLevel(s.level)
	s.stage = StageMenu
}

func (s *Session) onPreferenceChanged(e event.PreferenceChanged) {
	ctx, cancel := context.WithTimeout(context.Background(), prefsTimeout)
	defer cancel()
	switch e.Key {
	case prefs.KeySoundVolume:
		s.applyVolume(ctx)
	case prefs.KeyMusicVolume:
		s.startMusic(ctx)
	case prefs.KeyAll:
		s.applyVolume(ctx)
		s.startMusic(ctx)
	}
}

// completeLevel ends the run at the finish line.
func (s *Session) completeLevel() {
	if s.stage != StageRunning {
		return
	}
	s.stage = StageEnded
	s.submitScore()
	s.player.Reset(s.runData, s.level)
	s.play("finish")
	s.log.Info("level completed", zap.Int("level", s.level))
	event.Emit(s.bus, event.LevelCompleted{Level: s.level})
}

func (s *Session) submitScore() {
	score := int(s.player.Score())
	ctx, cancel := context.WithTimeout(context.Background(), prefsTimeout)
	defer cancel()
	saved, err := s.prefs.SubmitScore(ctx, score)
	if err != nil {
		s.log.Warn("save high score failed", zap.Error(err))
		return
	}
	if saved {
		s.stats.Best = score
		s.log.Info("new high score", zap.Int("score", score))
	}
}

func (s *Session) applyVolume(ctx context.Context) {
	if s.audio == nil {
		return
	}
	v, err := s.prefs.SoundVolume(ctx)
	if err != nil {
		s.log.Warn("read sound volume failed", zap.Error(err))
	}
	s.audio.SetVolume(v * s.opts.MasterVolume)
}

// startMusic (re)starts the looping music track at the stored music volume.
func (s *Session) startMusic(ctx context.Context) {
	if s.audio == nil || s.sounds == nil {
		return
	}
	d := s.sounds.Get("music")
	if d == nil {
		return
	}
	if s.music != nil {
		s.audio.Stop(s.music)
		s.music = nil
	}
	v, err := s.prefs.MusicVolume(ctx)
	if err != nil {
		s.log.Warn("read music volume failed", zap.Error(err))
	}
	track := *d
	track.Volume *= v
	e, err := s.audio.Play(track)
	if err != nil {
		s.log.Warn("play music failed", zap.Error(err))
		return
	}
	s.music = e
}

func (s *Session) play(name string) {
	if s.audio == nil || s.sounds == nil {
		return
	}
	d := s.sounds.Get(name)
	if d == nil {
		s.log.Debug("sound not found", zap.String("sound", name))
		return
	}
	if _, err := s.audio.Play(*d); err != nil {
		s.log.Warn("play sound failed", zap.String("sound", name), zap.Error(err))
	}
}

// Position is the runner's location in level space.
func (s *Session) Position() obstacle.Vec3 {
	return obstacle.Vec3{X: s.lane, Z: s.player.Distance()}
}

// Colliding reports whether contacts should be resolved this tick.
func (s *Session) Colliding() bool {
	return s.stage == StageRunning && s.player.State() == player.Moving
}

// SetLane moves the runner sideways, clamped to the play area.
func (s *Session) SetLane(x float64) {
	half := s.gen.Layout().PlayAreaWidth / 2
	s.lane = min(max(x, -half), half)
}

func (s *Session) Lane() float64                { return s.lane }
func (s *Session) Stage() Stage                 { return s.stage }
func (s *Session) Level() int                   { return s.level }
func (s *Session) Player() *player.Controller   { return s.player }
func (s *Session) Pipeline() *level.Pipeline    { return s.pipeline }
func (s *Session) Obstacles() *obstacle.Manager { return s.obstacles }
func (s *Session) Prefs() *prefs.Service        { return s.prefs }
func (s *Session) Bus() *event.Bus              { return s.bus }
func (s *Session) Ticks() uint64                { return s.runner.Ticks() }

func (s *Session) Stats() Stats {
	st := s.stats
	st.Level = s.level
	return st
}
