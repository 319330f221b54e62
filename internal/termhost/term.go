// Package termhost runs a scene in a terminal using tcell.
package termhost

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/olivierh59500/particle-rules/scene"
	"github.com/olivierh59500/particle-rules/sim"
)

const block = '█'

// Options configures the terminal loop.
type Options struct {
	TPS int
}

// Host drives a scene on a tcell screen.
type Host struct {
	screen tcell.Screen
	scene  scene.Scene
	tps    int
	paused bool
}

// New returns a host drawing s on an initialized screen.
func New(screen tcell.Screen, s scene.Scene, opts Options) *Host {
	tps := opts.TPS
	if tps <= 0 {
		tps = 60
	}
	return &Host{screen: screen, scene: s, tps: tps}
}

// Run opens the terminal screen and runs s until the user quits or ctx is
// done.
func Run(ctx context.Context, s scene.Scene, opts Options) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer screen.Fini()

	return New(screen, s, opts).Run(ctx)
}

// Run is the fixed-rate update/draw loop.
func (h *Host) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(h.tps))
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	dt := 1 / float64(h.tps)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !h.handle(ev) {
				return nil
			}
		case <-ticker.C:
			if !h.paused {
				h.scene.Step(dt)
			}
			h.draw()
		}
	}
}

func (h *Host) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return h.handleKey(ev.Key(), ev.Rune())
	case *tcell.EventResize:
		h.screen.Sync()
	}
	return true
}

// handleKey reports false when the key quits.
func (h *Host) handleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
		switch r {
		case 'q':
			return false
		case ' ':
			h.paused = !h.paused
		}
	}
	return true
}

func (h *Host) draw() {
	h.screen.Clear()
	cols, rows := h.screen.Size()
	shapes := h.scene.Shapes()
	for _, c := range cells(shapes, h.scene.World(), cols, rows) {
		h.screen.SetContent(c.col, c.row, block, nil, c.style)
	}
	status := fmt.Sprintf("%d shapes", len(shapes))
	if h.paused {
		status += "  paused"
	}
	for i, r := range status {
		h.screen.SetContent(i, 0, r, nil, tcell.StyleDefault)
	}
	h.screen.Show()
}

type cell struct {
	col, row int
	style    tcell.Style
}

// cells rasterizes shapes onto a cols x rows grid. A terminal cell is
// about twice as tall as it is wide, so the world is fitted onto
// cols x 2*rows half-cells.
func cells(shapes []scene.Shape, w sim.World, cols, rows int) []cell {
	v := scene.Fit(w, float64(cols), float64(rows*2))
	out := make([]cell, 0, len(shapes))
	for _, s := range shapes {
		// center of the square after rotation around the pivot
		ox := s.OffsetX + s.Size/2
		oy := s.OffsetY + s.Size/2
		sin, cos := math.Sincos(s.Angle)
		cx, cy := v.Project(s.X+ox*cos-oy*sin, s.Y+ox*sin+oy*cos)

		wide := max(1, int(math.Round(s.Size*v.Scale)))
		tall := max(1, int(math.Round(s.Size*v.Scale/2)))
		c := s.Color.RGBA()
		style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))

		left := int(math.Floor(cx)) - wide/2
		top := int(math.Floor(cy/2)) - tall/2
		for row := top; row < top+tall; row++ {
			for col := left; col < left+wide; col++ {
				if col < 0 || row < 0 || col >= cols || row >= rows {
					continue
				}
				out = append(out, cell{col: col, row: row, style: style})
			}
		}
	}
	return out
}
