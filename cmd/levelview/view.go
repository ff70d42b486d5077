package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/trijam/forcerun/internal/core/ecs"
	"github.com/trijam/forcerun/internal/game"
	"github.com/trijam/forcerun/internal/obstacle"
)

const (
	hudRows   = 2
	viewDepth = 40.0 // track length shown ahead of the runner
	viewBack  = 2.0
)

var glyphs = [obstacle.TypeCount]rune{
	obstacle.Wall:        '█',
	obstacle.Barrier:     '▓',
	obstacle.Explosive:   '*',
	obstacle.MovingBlock: '■',
	obstacle.Spike:       '^',
	obstacle.PowerUp:     '+',
	obstacle.HealthOrb:   'o',
	obstacle.FinishLine:  '═',
}

type view struct {
	screen     tcell.Screen
	session    *game.Session
	classifier *obstacle.Classifier
	halfWidth  float64
	boosting   bool
}

func newView(screen tcell.Screen, s *game.Session, c *obstacle.Classifier, playAreaWidth float64) *view {
	if playAreaWidth <= 0 {
		playAreaWidth = 1
	}
	return &view{screen: screen, session: s, classifier: c, halfWidth: playAreaWidth / 2}
}

// column maps a lateral position onto the screen; ok is false off the track.
func (v *view) column(x float64, cols int) (int, bool) {
	if x < -v.halfWidth || x > v.halfWidth {
		return 0, false
	}
	c := int((x + v.halfWidth) / (2 * v.halfWidth) * float64(cols))
	return min(c, cols-1), true
}

// row maps a track position onto the screen, far ahead at the top.
func (v *view) row(z, runnerZ float64, rows int) (int, bool) {
	d := z - runnerZ + viewBack
	if d < 0 || d >= viewDepth+viewBack {
		return 0, false
	}
	r := rows - 1 - int(d/(viewDepth+viewBack)*float64(rows))
	return hudRows + r, true
}

func (v *view) draw() {
	v.screen.Clear()
	cols, height := v.screen.Size()
	rows := height - hudRows
	if cols <= 0 || rows <= 0 {
		v.screen.Show()
		return
	}

	pos := v.session.Position()
	v.session.Obstacles().Each(func(_ ecs.Handle, inst *obstacle.Instance) {
		v.drawObstacle(inst, pos.Z, cols, rows)
	})

	if c, ok := v.column(pos.X, cols); ok {
		if r, ok := v.row(pos.Z, pos.Z, rows); ok {
			style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
			if v.boosting {
				style = style.Foreground(tcell.ColorAqua)
			}
			v.screen.SetContent(c, r, '▲', nil, style)
		}
	}
	v.drawHUD(cols)
	v.screen.Show()
}

func (v *view) drawObstacle(inst *obstacle.Instance, runnerZ float64, cols, rows int) {
	if inst.Retracted() {
		return
	}
	p := inst.WorldPosition()
	r, ok := v.row(p.Z, runnerZ, rows)
	if !ok {
		return
	}
	rgb := v.classifier.Color(inst.Tier)
	style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(rgb.R), int32(rgb.G), int32(rgb.B)))
	if inst.Type == obstacle.FinishLine {
		style = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	}
	glyph := glyphs[inst.Type]

	half := inst.Width() / 2
	lo, _ := v.column(max(p.X-half, -v.halfWidth), cols)
	hi, _ := v.column(min(p.X+half, v.halfWidth), cols)
	for c := lo; c <= hi; c++ {
		v.screen.SetContent(c, r, glyph, nil, style)
	}
}

func (v *view) drawHUD(cols int) {
	p := v.session.Player()
	st := v.session.Stats()
	line1 := fmt.Sprintf("level %d  %s  force %.1f  health %.0f/%.0f  score %.0f  best %d",
		v.session.Level(), v.session.Stage(), p.Force(), p.Health(), p.MaxHealth(), p.Score(), st.Best)
	line2 := "enter play · space boost · ←/→ lane · q quit"
	v.text(0, line1, tcell.StyleDefault.Foreground(tcell.ColorYellow), cols)
	v.text(1, line2, tcell.StyleDefault.Foreground(tcell.ColorGray), cols)
}

func (v *view) text(row int, s string, style tcell.Style, cols int) {
	col := 0
	for _, r := range s {
		if col >= cols {
			return
		}
		v.screen.SetContent(col, row, r, nil, style)
		col++
	}
}
