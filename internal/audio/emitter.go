package audio

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/trijam/forcerun/internal/data"
)

// Emitter is a pooled voice. Each Play gives it a fresh control chain on the
// mixer; releasing it detaches the chain so the mixer drops it.
type Emitter struct {
	data      data.SoundData
	ctrl      *beep.Ctrl
	volume    *effects.Volume
	remaining time.Duration
	playing   bool
	plays     int
}

func (e *Emitter) Data() data.SoundData { return e.data }
func (e *Emitter) Playing() bool        { return e.playing }

// Plays counts how many sounds this emitter has voiced since creation.
func (e *Emitter) Plays() int { return e.plays }

// Remaining is the time left before the emitter returns to its pool. Looping
// sounds report zero.
func (e *Emitter) Remaining() time.Duration { return e.remaining }

func (e *Emitter) start(d data.SoundData, wave Wave, gain float64, rate beep.SampleRate) {
	dur := time.Duration(d.Duration * float64(time.Second))
	e.data = d
	e.volume = withVolume(newTone(wave, d.Frequency, dur, d.Loop, rate), d.Volume*gain)
	e.ctrl = &beep.Ctrl{Streamer: e.volume}
	e.remaining = 0
	if !d.Loop {
		e.remaining = dur
	}
	e.playing = true
	e.plays++
}

// advance reports whether a one-shot sound has finished.
func (e *Emitter) advance(dt time.Duration) bool {
	if !e.playing || e.data.Loop {
		return false
	}
	e.remaining -= dt
	return e.remaining <= 0
}

func (e *Emitter) setGain(gain float64) {
	if e.volume == nil {
		return
	}
	v := e.data.Volume * gain
	fresh := withVolume(e.volume.Streamer, v)
	e.volume.Volume, e.volume.Silent = fresh.Volume, fresh.Silent
}

// detach silences the emitter and lets the mixer drop its chain.
func (e *Emitter) detach() {
	if e.ctrl != nil {
		e.ctrl.Streamer = nil
	}
	e.ctrl = nil
	e.volume = nil
	e.playing = false
	e.remaining = 0
}
