package ebitenhost

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/olivierh59500/particle-rules/scene"
	"github.com/olivierh59500/particle-rules/sim"
)

var testWorld = sim.World{Width: 200, Height: 200}

func particleScene(t *testing.T) *scene.Particles {
	t.Helper()
	ps := []sim.Particle{
		sim.NewParticle(1, 0, 0, 5, sim.Red, sim.Behaviors{Rules: []sim.Behavior{sim.Move()}}),
		sim.NewParticle(2, 20, 20, 5, sim.White, sim.Behaviors{Forces: []sim.Behavior{sim.Gravity(1)}}),
	}
	e, err := sim.NewEngine(ps, sim.Options{Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	return scene.NewParticles(e, testWorld)
}

func TestPauseStopsStepping(t *testing.T) {
	s := particleScene(t)
	g := New(s, Options{Width: 320, Height: 240})

	g.advance()
	if got := s.Engine().Tick(); got != 1 {
		t.Fatalf("tick = %d, want 1", got)
	}

	g.togglePause()
	g.advance()
	g.advance()
	if got := s.Engine().Tick(); got != 1 {
		t.Errorf("tick while paused = %d, want 1", got)
	}

	g.togglePause()
	g.advance()
	if got := s.Engine().Tick(); got != 2 {
		t.Errorf("tick after resume = %d, want 2", got)
	}
}

func TestSaveLoadSwapsScene(t *testing.T) {
	s := particleScene(t)
	g := New(s, Options{})
	for i := 0; i < 3; i++ {
		g.advance()
	}

	var buf bytes.Buffer
	if err := g.saveTo(&buf); err != nil {
		t.Fatal(err)
	}
	g.advance()

	if err := g.loadFrom(&buf); err != nil {
		t.Fatal(err)
	}
	p, ok := g.scene.(*scene.Particles)
	if !ok {
		t.Fatalf("scene = %T, want *scene.Particles", g.scene)
	}
	if p == s {
		t.Fatal("load kept the old scene")
	}
	if got := p.Engine().Tick(); got != 3 {
		t.Errorf("loaded tick = %d, want 3", got)
	}
	if got := p.World(); got != testWorld {
		t.Errorf("world = %+v, want %+v", got, testWorld)
	}
	q, _ := p.Engine().Particle(2)
	if q.VY != 3 {
		t.Errorf("loaded vy = %v, want 3", q.VY)
	}
}

func TestLoadBadStateKeepsScene(t *testing.T) {
	s := particleScene(t)
	g := New(s, Options{})

	if err := g.loadFrom(strings.NewReader("{not json")); err == nil {
		t.Error("expected an error for malformed state")
	}
	dup := `{"tick":1,"particles":[{"id":1,"size":5},{"id":1,"size":5}]}`
	if err := g.loadFrom(strings.NewReader(dup)); !errors.Is(err, sim.ErrDuplicateID) {
		t.Errorf("err = %v, want ErrDuplicateID", err)
	}
	if g.scene != scene.Scene(s) {
		t.Error("scene replaced after a failed load")
	}
}

func TestSaveWithoutParticles(t *testing.T) {
	g := New(scene.NewSpinner(testWorld), Options{})
	if err := g.saveTo(new(bytes.Buffer)); !errors.Is(err, errNoParticles) {
		t.Errorf("err = %v, want errNoParticles", err)
	}
}

func TestRebuildKeepsSceneOnError(t *testing.T) {
	s := particleScene(t)
	g := New(s, Options{Rebuild: func() (scene.Scene, error) {
		return nil, errors.New("bad config")
	}})
	g.rebuild()
	if g.scene != scene.Scene(s) {
		t.Error("scene replaced after a failed rebuild")
	}

	spin := scene.NewSpinner(testWorld)
	g.opts.Rebuild = func() (scene.Scene, error) { return spin, nil }
	g.rebuild()
	if g.scene != scene.Scene(spin) {
		t.Errorf("scene = %T, want the rebuilt spinner", g.scene)
	}
}

func TestLayoutUsesConfiguredSize(t *testing.T) {
	g := New(particleScene(t), Options{Width: 640, Height: 480})
	if w, h := g.Layout(100, 100); w != 640 || h != 480 {
		t.Errorf("Layout = %d x %d, want 640 x 480", w, h)
	}
	if g.opts.TPS <= 0 {
		t.Errorf("TPS = %d, want the ebiten default", g.opts.TPS)
	}
}
