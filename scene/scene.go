// Package scene turns demo descriptions into runnable scenes that a host
// can step and draw.
package scene

import (
	"github.com/olivierh59500/particle-rules/sim"
)

// Scene is what a host drives: Step once per update tick, Shapes once per
// frame.
type Scene interface {
	Step(dt float64)
	Shapes() []Shape
	World() sim.World
}

// Shape is a filled square of side Size whose top-left corner sits at
// (OffsetX, OffsetY) from the pivot (X, Y) before rotating by Angle
// radians around the pivot. World coordinates have their origin at the
// world center.
type Shape struct {
	X, Y             float64
	OffsetX, OffsetY float64
	Size             float64
	Angle            float64
	Color            sim.Color
}

// Particles is a scene backed by the simulation engine.
type Particles struct {
	engine *sim.Engine
	world  sim.World
}

// NewParticles wraps an engine simulating world.
func NewParticles(e *sim.Engine, w sim.World) *Particles {
	return &Particles{engine: e, world: w}
}

// Step advances the engine one tick.
func (s *Particles) Step(dt float64) { s.engine.Step(dt) }

// World returns the simulated area.
func (s *Particles) World() sim.World { return s.world }

// Engine exposes the underlying engine, e.g. for saving its state.
func (s *Particles) Engine() *sim.Engine { return s.engine }

// Shapes draws every particle as a square centered on its position.
func (s *Particles) Shapes() []Shape {
	sprites := s.engine.Snapshot()
	out := make([]Shape, len(sprites))
	for i, sp := range sprites {
		half := sp.Size / 2
		out[i] = Shape{
			X:       sp.X,
			Y:       sp.Y,
			OffsetX: -half,
			OffsetY: -half,
			Size:    sp.Size,
			Color:   sp.Color,
		}
	}
	return out
}

// Spinner is the rotating square demo: two squares turning around the
// world center.
type Spinner struct {
	world    sim.World
	rotation float64
}

// SpinRate is the spinner's angular speed in radians per second.
const SpinRate = 2.0

const spinnerSide = 50.0

// NewSpinner returns a spinner at rest in w.
func NewSpinner(w sim.World) *Spinner {
	return &Spinner{world: w}
}

// Step turns the squares by SpinRate*dt.
func (s *Spinner) Step(dt float64) { s.rotation += SpinRate * dt }

// World returns the area the spinner is drawn in.
func (s *Spinner) World() sim.World { return s.world }

// Rotation returns the current angle in radians.
func (s *Spinner) Rotation() float64 { return s.rotation }

// Shapes returns the red inner and white outer squares.
func (s *Spinner) Shapes() []Shape {
	return []Shape{
		{OffsetX: -spinnerSide / 2, OffsetY: -spinnerSide / 2, Size: spinnerSide, Angle: s.rotation, Color: sim.Red},
		{OffsetX: -spinnerSide, OffsetY: -spinnerSide, Size: spinnerSide, Angle: s.rotation, Color: sim.White},
	}
}

// Viewport maps world coordinates onto a screen, keeping the world's
// aspect ratio and centering it.
type Viewport struct {
	Scale            float64
	OriginX, OriginY float64 // screen position of the world origin
}

// Fit returns the largest viewport showing all of w on a width x height
// screen.
func Fit(w sim.World, width, height float64) Viewport {
	s := 1.0
	if w.Width > 0 && w.Height > 0 {
		s = min(width/w.Width, height/w.Height)
	}
	return Viewport{Scale: s, OriginX: width / 2, OriginY: height / 2}
}

// Project returns the screen position of world point (x, y).
func (v Viewport) Project(x, y float64) (float64, float64) {
	return v.OriginX + x*v.Scale, v.OriginY + y*v.Scale
}
