package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for level formula overrides.
// Single-goroutine access only (tick loop).
type Engine struct {
	vm      *lua.LState
	log     *zap.Logger
	missing map[string]bool
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory. A missing directory yields an engine with no overrides.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, missing: make(map[string]bool)}

	for _, sub := range []string{"core", "formula"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Has reports whether a global Lua function is defined.
func (e *Engine) Has(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// Difficulty calls calc_difficulty(level, builtin). The built-in value is
// returned when the function is absent or fails.
func (e *Engine) Difficulty(level int, builtin float64) float64 {
	return e.callCurve("calc_difficulty", level, builtin)
}

// ObstacleDensity calls calc_density(level, builtin).
func (e *Engine) ObstacleDensity(level int, builtin float64) float64 {
	return e.callCurve("calc_density", level, builtin)
}

func (e *Engine) callCurve(name string, level int, builtin float64) float64 {
	fn, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	if !ok {
		if !e.missing[name] {
			e.missing[name] = true
			e.log.Debug("lua function not defined, using built-in curve", zap.String("func", name))
		}
		return builtin
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(level), lua.LNumber(builtin)); err != nil {
		e.log.Warn("lua call error, using built-in curve", zap.String("func", name), zap.Error(err))
		return builtin
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok || math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
		e.log.Warn("lua returned non-number, using built-in curve",
			zap.String("func", name), zap.String("type", result.Type().String()))
		return builtin
	}
	return float64(n)
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
