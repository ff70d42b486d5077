package game

import (
	"time"

	"github.com/trijam/forcerun/internal/audio"
	"github.com/trijam/forcerun/internal/config"
	"github.com/trijam/forcerun/internal/gen"
	"github.com/trijam/forcerun/internal/obstacle"
	"go.uber.org/zap"
)

// Options tunes a Session.
type Options struct {
	Layout             gen.Layout
	Obstacles          obstacle.Options
	CameraMoveDuration time.Duration
	Seed               int64
	Autopilot          bool
	InputQueue         int
	MasterVolume       float64 // scales the stored sound volume
}

// DefaultOptions matches the built-in configuration.
func DefaultOptions() Options {
	return Options{
		Layout:             gen.DefaultLayout(),
		Obstacles:          obstacle.Options{Prewarm: 10, MaxSize: 50},
		CameraMoveDuration: time.Second,
		InputQueue:         64,
		MasterVolume:       1,
	}
}

// OptionsFromConfig maps the TOML configuration onto session options.
// Unknown prefab type names are reported and skipped.
func OptionsFromConfig(cfg *config.Config, log *zap.Logger) Options {
	if log == nil {
		log = zap.NewNop()
	}
	l := cfg.Level
	opts := Options{
		Layout: gen.Layout{
			SegmentLength:       l.SegmentLength,
			RowSpacing:          l.RowSpacing,
			PlayAreaWidth:       l.PlayAreaWidth,
			StartOffset:         l.StartOffset,
			ForcedSpawnDistance: l.ForcedSpawnDistance,
			DefaultGapStep:      l.DefaultGapStep,
			BaseObstacleWidth:   l.BaseObstacleWidth,
			FinishOffset:        l.FinishOffset,
			FinishWidth:         l.FinishWidth,
			FinishHeight:        l.FinishHeight,
			MinLevelLength:      l.MinLevelLength,
			MaxLevelLength:      l.MaxLevelLength,
		},
		Obstacles: obstacle.Options{
			Prewarm: cfg.Pools.Prewarm,
			MaxSize: cfg.Pools.MaxSize,
			Strict:  cfg.Pools.Strict,
		},
		CameraMoveDuration: cfg.Loop.CameraMoveDuration,
		Seed:               cfg.Game.Seed,
		Autopilot:          cfg.Loop.Autopilot,
		InputQueue:         64,
		MasterVolume:       cfg.Audio.Volume,
	}
	for name, n := range cfg.Pools.Prefabs {
		t, err := obstacle.ParseType(name)
		if err != nil {
			log.Warn("unknown prefab type in config, ignoring", zap.String("type", name))
			continue
		}
		opts.Obstacles.Prefabs[t] = n
	}
	if opts.CameraMoveDuration < 0 {
		log.Warn("negative camera move duration, starting immediately")
		opts.CameraMoveDuration = 0
	}
	return opts
}

// AudioOptions maps the [audio] section onto emitter manager options.
func AudioOptions(cfg config.AudioConfig, strict bool) audio.Options {
	return audio.Options{
		SampleRate:        cfg.SampleRate,
		DefaultCapacity:   cfg.DefaultCapacity,
		MaxPoolSize:       cfg.MaxPoolSize,
		MaxSoundInstances: cfg.MaxSoundInstances,
		Strict:            strict,
	}
}
