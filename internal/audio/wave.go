package audio

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Wave is an oscillator shape.
type Wave int

const (
	Sine Wave = iota
	Square
	Saw
	Noise
)

var waveNames = [...]string{"sine", "square", "saw", "noise"}

func (w Wave) String() string {
	if w < 0 || int(w) >= len(waveNames) {
		return "unknown"
	}
	return waveNames[w]
}

// ParseWave maps a sound table wave name to a Wave. Empty means sine.
func ParseWave(s string) (Wave, error) {
	if s == "" {
		return Sine, nil
	}
	for i, name := range waveNames {
		if strings.EqualFold(s, name) {
			return Wave(i), nil
		}
	}
	return Sine, fmt.Errorf("unknown wave %q", s)
}

// tone synthesizes one wave. A negative length plays until stopped.
type tone struct {
	wave   Wave
	freq   float64
	rate   beep.SampleRate
	phase  float64
	length int
	pos    int
}

func newTone(w Wave, freq float64, d time.Duration, loop bool, rate beep.SampleRate) *tone {
	length := rate.N(d)
	if loop {
		length = -1
	}
	return &tone{wave: w, freq: freq, rate: rate, length: length}
}

func (t *tone) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if t.length >= 0 && t.pos >= t.length {
			return i, i > 0
		}
		var v float64
		switch t.wave {
		case Sine:
			v = math.Sin(2 * math.Pi * t.phase)
		case Square:
			v = 1
			if t.phase >= 0.5 {
				v = -1
			}
		case Saw:
			v = 2*t.phase - 1
		case Noise:
			v = rand.Float64()*2 - 1
		}
		samples[i][0], samples[i][1] = v, v

		t.phase += t.freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// withVolume scales s linearly by v. Zero or less is silent.
func withVolume(s beep.Streamer, v float64) *effects.Volume {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}
