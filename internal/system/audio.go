package system

import (
	"time"

	"github.com/trijam/forcerun/internal/audio"
	coresys "github.com/trijam/forcerun/internal/core/system"
)

// AudioSystem returns finished emitters to their pool. Phase 4 (Audio).
type AudioSystem struct {
	audio *audio.Manager
}

func NewAudioSystem(m *audio.Manager) *AudioSystem {
	return &AudioSystem{audio: m}
}

func (s *AudioSystem) Phase() coresys.Phase { return coresys.PhaseAudio }

func (s *AudioSystem) Update(dt time.Duration) {
	s.audio.Advance(dt)
}
