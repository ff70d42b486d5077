package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/trijam/forcerun/internal/audio"
	"github.com/trijam/forcerun/internal/config"
	"github.com/trijam/forcerun/internal/data"
	"github.com/trijam/forcerun/internal/game"
	"github.com/trijam/forcerun/internal/persist"
	"github.com/trijam/forcerun/internal/prefs"
	"github.com/trijam/forcerun/internal/scripting"
	"github.com/trijam/forcerun/internal/system"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string, seed int64) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             ForceRun  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       endless runner · level core         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	if seed == 0 {
		fmt.Printf("  \033[1mgame:\033[0m %s \033[90m(seed: clock)\033[0m\n\n", name)
		return
	}
	fmt.Printf("  \033[1mgame:\033[0m %s \033[90m(seed: %d)\033[0m\n\n", name, seed)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := printer.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ──────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/forcerun.toml"
	if p := os.Getenv("FORCERUN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Game.Name, cfg.Game.Seed)

	// 3. Preferences: PostgreSQL when a DSN is configured, memory otherwise
	printSection("preferences")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var store prefs.Store
	if cfg.Database.DSN != "" {
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		if err := db.RunMigrations(ctx); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		store = persist.NewPrefStore(db)
		printOK("postgres preference store")
	} else {
		store = prefs.NewMemoryStore()
		printOK("in-memory preference store")
	}

	// 4. Load data tables
	printSection("data")

	levels, err := data.LoadLevelTable(cfg.Data.LevelsPath)
	if err != nil {
		return fmt.Errorf("load levels: %w", err)
	}
	printStat("levels", levels.Count())
	printStat("patterns", levels.PatternCount())

	colors, err := data.LoadColorTable(cfg.Data.ColorsPath)
	if err != nil {
		return fmt.Errorf("load colors: %w", err)
	}
	printStat("color tiers", colors.Count())

	sounds, err := data.LoadSoundTable(cfg.Data.SoundsPath)
	if err != nil {
		return fmt.Errorf("load sounds: %w", err)
	}
	printStat("sounds", sounds.Count())

	// 5. Lua curve overrides
	engine, err := scripting.NewEngine(cfg.Data.ScriptsDir, log.Named("lua"))
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()
	printOK(fmt.Sprintf("lua engine (%s)", cfg.Data.ScriptsDir))

	// 6. Audio
	am := audio.NewManager(game.AudioOptions(cfg.Audio, cfg.Pools.Strict), log.Named("audio"))
	defer am.Close()
	if cfg.Audio.Enabled {
		if err := am.StartSpeaker(); err != nil {
			log.Warn("speaker unavailable, running silent", zap.Error(err))
		} else {
			printOK(printer.Sprintf("speaker at %d Hz", cfg.Audio.SampleRate))
		}
	}

	// 7. Session
	session, err := game.NewSession(game.OptionsFromConfig(cfg, log), game.Deps{
		Levels: levels,
		Colors: colors,
		Sounds: sounds,
		Store:  store,
		Curve:  engine,
		Audio:  am,
		Log:    log,
	})
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	defer session.Close()
	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	commands := make(chan system.Command, 16)
	if !cfg.Loop.Autopilot {
		go readCommands(os.Stdin, commands, log)
	}

	// 8. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Loop.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("level %d generated", session.Level()))
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Loop.TickRate))
	if cfg.Loop.Autopilot {
		printReady("autopilot on")
	} else {
		printReady("type play, boost or release")
	}
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			session.Tick(cfg.Loop.TickRate)
			if done(session, cfg.Loop) {
				log.Info("run limit reached", zap.Uint64("ticks", session.Ticks()))
				printSummary(session, cfg.Game.StartTime)
				return nil
			}
		case cmd := <-commands:
			if !session.Send(cmd) {
				log.Warn("input queue full, dropping command", zap.Stringer("cmd", cmd))
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			printSummary(session, cfg.Game.StartTime)
			return nil
		}
	}
}

func done(s *game.Session, loop config.LoopConfig) bool {
	if loop.MaxTicks > 0 && s.Ticks() >= uint64(loop.MaxTicks) {
		return true
	}
	return loop.MaxLevels > 0 && s.Stats().Completed >= loop.MaxLevels
}

// readCommands forwards one command per input line until r closes.
func readCommands(r io.Reader, out chan<- system.Command, log *zap.Logger) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		cmd, err := system.ParseCommand(line)
		if err != nil {
			log.Warn("ignoring input", zap.Error(err))
			continue
		}
		out <- cmd
	}
}

func printSummary(s *game.Session, startTime int64) {
	st := s.Stats()
	fmt.Println()
	printSection("summary")
	printStat("seconds up", int(time.Now().Unix()-startTime))
	printStat("ticks", int(s.Ticks()))
	printStat("current level", st.Level)
	printStat("levels completed", st.Completed)
	printStat("deaths", st.Deaths)
	printStat("obstacles cleared", st.Cleared)
	printStat("pushbacks", st.PushedBack)
	printStat("high score", st.Best)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
