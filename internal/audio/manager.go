// Package audio plays synthesized sound effects on pooled emitters mixed
// through beep. Emitter lifetimes are driven by Advance from the tick loop.
package audio

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/trijam/forcerun/internal/data"
	"github.com/trijam/forcerun/internal/pool"
	"go.uber.org/zap"
)

// Options configures a Manager.
type Options struct {
	SampleRate        int
	DefaultCapacity   int
	MaxPoolSize       int
	MaxSoundInstances int // cap on concurrently playing frequent sounds
	Strict            bool
}

func DefaultOptions() Options {
	return Options{
		SampleRate:        44100,
		DefaultCapacity:   10,
		MaxPoolSize:       100,
		MaxSoundInstances: 30,
	}
}

// Manager owns the emitter pool and the mixer every emitter plays into.
type Manager struct {
	opts     Options
	rate     beep.SampleRate
	pool     *pool.Pool[*Emitter]
	mixer    *beep.Mixer
	active   []*Emitter
	frequent []*Emitter // oldest first
	gain     float64
	speaker  bool
	log      *zap.Logger
}

func NewManager(opts Options, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	def := DefaultOptions()
	if opts.SampleRate <= 0 {
		opts.SampleRate = def.SampleRate
	}
	if opts.MaxSoundInstances <= 0 {
		opts.MaxSoundInstances = def.MaxSoundInstances
	}
	m := &Manager{
		opts:  opts,
		rate:  beep.SampleRate(opts.SampleRate),
		mixer: &beep.Mixer{},
		gain:  1,
		log:   log,
	}
	m.pool = pool.New(pool.Options[*Emitter]{
		Create:    func() *Emitter { return &Emitter{} },
		OnRelease: m.onRelease,
		OnDestroy: func(*Emitter) {
			m.log.Debug("sound emitter evicted")
		},
		DefaultCapacity: opts.DefaultCapacity,
		MaxSize:         opts.MaxPoolSize,
		Strict:          opts.Strict,
	})
	m.pool.Prewarm(opts.DefaultCapacity)
	return m
}

// StartSpeaker sends the mixer to the default output device. Without it the
// manager still tracks emitters, which is what headless runs and tests use.
func (m *Manager) StartSpeaker() error {
	if m.speaker {
		return nil
	}
	if err := speaker.Init(m.rate, m.rate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(m.mixer)
	m.speaker = true
	return nil
}

// Close stops every sound and detaches from the speaker.
func (m *Manager) Close() {
	m.StopAll()
	if m.speaker {
		speaker.Close()
		m.speaker = false
	}
}

// Streamer is the mixed output of every playing emitter.
func (m *Manager) Streamer() beep.Streamer { return m.mixer }

// makeRoom stops the oldest frequent emitter when the frequent-sound cap is
// reached.
func (m *Manager) makeRoom() {
	for len(m.frequent) >= m.opts.MaxSoundInstances {
		oldest := m.frequent[0]
		m.frequent = m.frequent[1:]
		if oldest.playing {
			m.log.Debug("frequent sound cap reached, stopping oldest", zap.String("sound", oldest.data.Name))
			m.Stop(oldest)
			return
		}
	}
}

// Play voices d on an emitter taken from the pool.
func (m *Manager) Play(d data.SoundData) (*Emitter, error) {
	wave, err := ParseWave(d.Wave)
	if err != nil {
		return nil, fmt.Errorf("play %s: %w", d.Name, err)
	}
	if d.Frequent {
		m.makeRoom()
	}

	e := m.pool.Acquire()
	m.withLock(func() {
		e.start(d, wave, m.gain, m.rate)
		m.mixer.Add(e.ctrl)
	})
	m.active = append(m.active, e)
	if d.Frequent {
		m.frequent = append(m.frequent, e)
	}
	return e, nil
}

// Advance counts down one-shot emitters and returns finished ones to the
// pool. It returns how many finished.
func (m *Manager) Advance(dt time.Duration) int {
	var done []*Emitter
	for _, e := range m.active {
		if e.advance(dt) {
			done = append(done, e)
		}
	}
	for _, e := range done {
		m.Stop(e)
	}
	return len(done)
}

// Stop ends e and returns it to the pool. Stopping an emitter that is not
// playing is a no-op.
func (m *Manager) Stop(e *Emitter) {
	if e == nil || !e.playing {
		return
	}
	if err := m.pool.Release(e); err != nil {
		m.log.Warn("sound emitter release rejected", zap.String("sound", e.data.Name), zap.Error(err))
	}
}

// StopAll ends every playing emitter.
func (m *Manager) StopAll() {
	for _, e := range append([]*Emitter(nil), m.active...) {
		m.Stop(e)
	}
}

// SetVolume sets the master gain, clamped to [0, 1], on every emitter.
func (m *Manager) SetVolume(v float64) {
	if math.IsNaN(v) {
		v = 0
	}
	m.gain = math.Max(0, math.Min(v, 1))
	m.withLock(func() {
		for _, e := range m.active {
			e.setGain(m.gain)
		}
	})
}

func (m *Manager) Volume() float64 { return m.gain }

// Active returns the number of playing emitters.
func (m *Manager) Active() int { return len(m.active) }

// FrequentActive returns the number of playing frequent emitters.
func (m *Manager) FrequentActive() int { return len(m.frequent) }

func (m *Manager) Stats() pool.Stats { return m.pool.Stats() }

func (m *Manager) onRelease(e *Emitter) {
	m.withLock(e.detach)
	m.active = remove(m.active, e)
	m.frequent = remove(m.frequent, e)
}

func (m *Manager) withLock(fn func()) {
	if m.speaker {
		speaker.Lock()
		defer speaker.Unlock()
	}
	fn()
}

func remove(list []*Emitter, e *Emitter) []*Emitter {
	for i, x := range list {
		if x == e {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
