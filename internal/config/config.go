package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Game     GameConfig     `toml:"game"`
	Level    LevelConfig    `toml:"level"`
	Pools    PoolsConfig    `toml:"pools"`
	Audio    AudioConfig    `toml:"audio"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Loop     LoopConfig     `toml:"loop"`
	Data     DataConfig     `toml:"data"`
}

type GameConfig struct {
	Name      string `toml:"name"`
	Seed      int64  `toml:"seed"` // 0 = seed from the clock
	StartTime int64  // set at boot, not from config
}

// LevelConfig is the world-space layout used by the generator.
type LevelConfig struct {
	SegmentLength       float64 `toml:"segment_length"`
	RowSpacing          float64 `toml:"row_spacing"`
	PlayAreaWidth       float64 `toml:"play_area_width"`
	StartOffset         float64 `toml:"start_offset"`
	ForcedSpawnDistance float64 `toml:"forced_spawn_distance"`
	DefaultGapStep      float64 `toml:"default_gap_step"`
	BaseObstacleWidth   float64 `toml:"base_obstacle_width"`
	FinishOffset        float64 `toml:"finish_offset"`
	FinishWidth         float64 `toml:"finish_width"`
	FinishHeight        float64 `toml:"finish_height"`
	MinLevelLength      float64 `toml:"min_level_length"`
	MaxLevelLength      float64 `toml:"max_level_length"` // 0 = unbounded
}

type PoolsConfig struct {
	Prewarm int            `toml:"prewarm"`  // per obstacle type
	MaxSize int            `toml:"max_size"` // per obstacle type
	Strict  bool           `toml:"strict"`   // return errors on double release
	Prefabs map[string]int `toml:"prefabs"`  // visual variants per obstacle type name
}

type AudioConfig struct {
	Enabled           bool    `toml:"enabled"` // open the speaker
	SampleRate        int     `toml:"sample_rate"`
	DefaultCapacity   int     `toml:"default_capacity"`
	MaxPoolSize       int     `toml:"max_pool_size"`
	MaxSoundInstances int     `toml:"max_sound_instances"`
	Volume            float64 `toml:"volume"`
}

// DatabaseConfig selects the preference store. An empty DSN keeps
// preferences in memory.
type DatabaseConfig struct {
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type LoopConfig struct {
	TickRate           time.Duration `toml:"tick_rate"`
	CameraMoveDuration time.Duration `toml:"camera_move_duration"`
	MaxLevels          int           `toml:"max_levels"` // 0 = run until interrupted
	MaxTicks           int           `toml:"max_ticks"`  // 0 = unlimited
	Autopilot          bool          `toml:"autopilot"`
}

type DataConfig struct {
	LevelsPath string `toml:"levels_path"`
	ColorsPath string `toml:"colors_path"`
	SoundsPath string `toml:"sounds_path"`
	ScriptsDir string `toml:"scripts_dir"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Game.StartTime = time.Now().Unix()
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := defaults()
	cfg.Game.StartTime = time.Now().Unix()
	return cfg
}

func defaults() *Config {
	return &Config{
		Game: GameConfig{
			Name: "ForceRun",
		},
		Level: LevelConfig{
			SegmentLength:       8,
			RowSpacing:          20,
			PlayAreaWidth:       10,
			StartOffset:         2,
			ForcedSpawnDistance: 30,
			DefaultGapStep:      10,
			BaseObstacleWidth:   1.5,
			FinishOffset:        2,
			FinishWidth:         8,
			FinishHeight:        3,
			MinLevelLength:      20,
			MaxLevelLength:      1000,
		},
		Pools: PoolsConfig{
			Prewarm: 10,
			MaxSize: 50,
		},
		Audio: AudioConfig{
			SampleRate:        44100,
			DefaultCapacity:   10,
			MaxPoolSize:       100,
			MaxSoundInstances: 30,
			Volume:            1,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Loop: LoopConfig{
			TickRate:           50 * time.Millisecond,
			CameraMoveDuration: time.Second,
			Autopilot:          true,
		},
		Data: DataConfig{
			LevelsPath: "data/yaml/level_list.yaml",
			ColorsPath: "data/yaml/color_list.yaml",
			SoundsPath: "data/yaml/sound_list.yaml",
			ScriptsDir: "scripts",
		},
	}
}
