// levelview plays a level in the terminal: a top-down view of the track
// ahead of the runner, colored by obstacle tier.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/trijam/forcerun/internal/config"
	"github.com/trijam/forcerun/internal/data"
	"github.com/trijam/forcerun/internal/game"
	"github.com/trijam/forcerun/internal/prefs"
	"github.com/trijam/forcerun/internal/scripting"
	"github.com/trijam/forcerun/internal/system"

	"go.uber.org/zap"
)

const laneNudge = 0.5

func main() {
	cfgPath := flag.String("config", "config/forcerun.toml", "configuration file")
	logPath := flag.String("log", "levelview.log", "log file")
	autopilot := flag.Bool("autopilot", false, "let the autopilot play")
	flag.Parse()

	if err := run(*cfgPath, *logPath, *autopilot); err != nil {
		fmt.Fprintf(os.Stderr, "levelview: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, logPath string, autopilot bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Loop.Autopilot = autopilot

	zc := zap.NewDevelopmentConfig()
	zc.OutputPaths = []string{logPath}
	zc.ErrorOutputPaths = []string{logPath}
	log, err := zc.Build()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	levels, err := data.LoadLevelTable(cfg.Data.LevelsPath)
	if err != nil {
		return err
	}
	colors, err := data.LoadColorTable(cfg.Data.ColorsPath)
	if err != nil {
		return err
	}
	engine, err := scripting.NewEngine(cfg.Data.ScriptsDir, log.Named("lua"))
	if err != nil {
		return err
	}
	defer engine.Close()

	session, err := game.NewSession(game.OptionsFromConfig(cfg, log), game.Deps{
		Levels: levels,
		Colors: colors,
		Store:  prefs.NewMemoryStore(),
		Curve:  engine,
		Log:    log,
	})
	if err != nil {
		return err
	}
	defer session.Close()
	if err := session.Start(context.Background()); err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	screen.HideCursor()

	v := newView(screen, session, colors.Classifier(), cfg.Level.PlayAreaWidth)
	loop(v, cfg.Loop.TickRate)
	return nil
}

func loop(v *view, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !v.handleEvent(ev) {
				return
			}
		case <-ticker.C:
			v.session.Tick(tick)
			v.draw()
		}
	}
}

// handleEvent applies a key press. It returns false when the viewer should exit.
func (v *view) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyEnter:
			v.session.Send(system.CmdPlay)
		case tcell.KeyLeft:
			v.session.SetLane(v.session.Lane() - laneNudge)
		case tcell.KeyRight:
			v.session.SetLane(v.session.Lane() + laneNudge)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				v.toggleBoost()
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// toggleBoost stands in for holding the boost key; terminals report no key release.
func (v *view) toggleBoost() {
	cmd := system.CmdBoostPress
	if v.boosting {
		cmd = system.CmdBoostRelease
	}
	if v.session.Send(cmd) {
		v.boosting = !v.boosting
	}
}
