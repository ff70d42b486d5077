package system

import (
	"fmt"
	"strings"
	"time"

	coresys "github.com/trijam/forcerun/internal/core/system"
	"go.uber.org/zap"
)

// Command is one player input queued by the shell.
type Command uint8

const (
	CmdPlay Command = iota + 1
	CmdBoostPress
	CmdBoostRelease
)

func (c Command) String() string {
	switch c {
	case CmdPlay:
		return "play"
	case CmdBoostPress:
		return "boost_press"
	case CmdBoostRelease:
		return "boost_release"
	}
	return "unknown"
}

// ParseCommand reads a shell word. "boost" and "release" are accepted as
// short forms of the boost commands.
func ParseCommand(word string) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(word)) {
	case "play", "p":
		return CmdPlay, nil
	case "boost", "boost_press", "b":
		return CmdBoostPress, nil
	case "release", "boost_release", "r":
		return CmdBoostRelease, nil
	}
	return 0, fmt.Errorf("unknown command %q", word)
}

// CommandHandler applies a drained command.
type CommandHandler interface {
	HandleCommand(cmd Command)
}

// InputSystem drains the command queue and dispatches each command to the
// session. Phase 0 (Input).
type InputSystem struct {
	queue      <-chan Command
	handler    CommandHandler
	maxPerTick int
	log        *zap.Logger
}

// NewInputSystem drains at most maxPerTick commands per tick; 0 drains all.
func NewInputSystem(queue <-chan Command, handler CommandHandler, maxPerTick int, log *zap.Logger) *InputSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &InputSystem{queue: queue, handler: handler, maxPerTick: maxPerTick, log: log}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	for n := 0; s.maxPerTick <= 0 || n < s.maxPerTick; n++ {
		select {
		case cmd := <-s.queue:
			s.log.Debug("input", zap.Stringer("cmd", cmd))
			s.handler.HandleCommand(cmd)
		default:
			return
		}
	}
}
