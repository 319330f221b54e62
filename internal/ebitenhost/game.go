// Package ebitenhost runs a scene in an Ebitengine window.
package ebitenhost

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/olivierh59500/particle-rules/scene"
	"github.com/olivierh59500/particle-rules/sim"
)

var errNoParticles = errors.New("scene has no particle state")

// Options configures the window and the key bindings.
type Options struct {
	Title         string
	Width, Height int
	TPS           int
	Workers       int
	// SavePath is where S saves and L loads particle state.
	SavePath string
	// Rebuild recreates the scene when R is pressed. Nil disables R.
	Rebuild func() (scene.Scene, error)
}

// Game adapts a scene to ebiten.Game.
type Game struct {
	scene  scene.Scene
	opts   Options
	paused bool
	pixel  *ebiten.Image
}

// New returns a Game drawing s.
func New(s scene.Scene, opts Options) *Game {
	if opts.TPS <= 0 {
		opts.TPS = ebiten.DefaultTPS
	}
	return &Game{scene: s, opts: opts}
}

// Run opens the window and blocks until it is closed.
func Run(s scene.Scene, opts Options) error {
	g := New(s, opts)
	ebiten.SetWindowSize(g.opts.Width, g.opts.Height)
	ebiten.SetWindowTitle(g.opts.Title)
	ebiten.SetTPS(g.opts.TPS)
	return ebiten.RunGame(g)
}

// Update is called each tick by Ebitengine
func (g *Game) Update() error {
	if err := g.handleInput(); err != nil {
		return err
	}
	g.advance()
	return nil
}

// advance steps the scene once unless paused.
func (g *Game) advance() {
	if g.paused {
		return
	}
	g.scene.Step(1 / float64(g.opts.TPS))
}

func (g *Game) togglePause() { g.paused = !g.paused }

// Draw is called each frame by Ebitengine
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	b := screen.Bounds()
	v := scene.Fit(g.scene.World(), float64(b.Dx()), float64(b.Dy()))
	for _, s := range g.scene.Shapes() {
		g.drawShape(screen, v, s)
	}

	status := fmt.Sprintf("TPS %0.1f", ebiten.ActualTPS())
	if p, ok := g.scene.(*scene.Particles); ok {
		status += fmt.Sprintf("  tick %d  particles %d", p.Engine().Tick(), p.Engine().Len())
	}
	if g.paused {
		status += "  paused"
	}
	ebitenutil.DebugPrint(screen, status)
}

// Layout returns the screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.opts.Width, g.opts.Height
}

func (g *Game) drawShape(screen *ebiten.Image, v scene.Viewport, s scene.Shape) {
	clr := s.Color.RGBA()
	size := s.Size * v.Scale

	if s.Angle == 0 {
		x, y := v.Project(s.X+s.OffsetX, s.Y+s.OffsetY)
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(size), float32(size), clr, false)
		return
	}

	if g.pixel == nil {
		g.pixel = ebiten.NewImage(1, 1)
		g.pixel.Fill(color.White)
	}
	px, py := v.Project(s.X, s.Y)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(size, size)
	op.GeoM.Translate(s.OffsetX*v.Scale, s.OffsetY*v.Scale)
	op.GeoM.Rotate(s.Angle)
	op.GeoM.Translate(px, py)
	op.ColorScale.ScaleWithColor(clr)
	screen.DrawImage(g.pixel, op)
}

// handleInput processes keyboard input
func (g *Game) handleInput() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.togglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.rebuild()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.save()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		g.load()
	}
	return nil
}

// rebuild swaps in a fresh scene from Rebuild, keeping the old one on error.
func (g *Game) rebuild() {
	if g.opts.Rebuild == nil {
		return
	}
	s, err := g.opts.Rebuild()
	if err != nil {
		log.Printf("rebuild: %v", err)
		return
	}
	g.scene = s
}

// save writes the particle state to SavePath
func (g *Game) save() {
	if g.opts.SavePath == "" {
		return
	}
	f, err := os.Create(g.opts.SavePath)
	if err != nil {
		log.Printf("save: %v", err)
		return
	}
	defer f.Close()
	if err := g.saveTo(f); err != nil {
		log.Printf("save: %v", err)
		return
	}
	log.Printf("saved to %s", g.opts.SavePath)
}

// saveTo writes the particle state to w. Scenes without particles have
// nothing to save.
func (g *Game) saveTo(w io.Writer) error {
	p, ok := g.scene.(*scene.Particles)
	if !ok {
		return errNoParticles
	}
	return p.Engine().Save(w)
}

// load replaces the scene with the state saved at SavePath
func (g *Game) load() {
	if g.opts.SavePath == "" {
		return
	}
	f, err := os.Open(g.opts.SavePath)
	if err != nil {
		log.Printf("load: %v", err)
		return
	}
	defer f.Close()
	if err := g.loadFrom(f); err != nil {
		log.Printf("load: %v", err)
		return
	}
	log.Printf("loaded from %s", g.opts.SavePath)
}

// loadFrom replaces the scene with a particle scene read from r, in the
// current world. The scene is left alone on error.
func (g *Game) loadFrom(r io.Reader) error {
	e, err := sim.Load(r, sim.Options{Workers: g.opts.Workers})
	if err != nil {
		return err
	}
	g.scene = scene.NewParticles(e, g.scene.World())
	return nil
}
