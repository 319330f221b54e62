package sim

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func mixedParticles(t *testing.T, n int) []Particle {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	ids := NewIDSource(0)
	w := World{Width: 400, Height: 400}
	ps, err := Seed(rng, ids, w,
		Group{Count: n / 2, Color: Red, Speed: 1, Behaviors: Behaviors{
			Rules:        []Behavior{Move(), Bounce(400)},
			Forces:       []Behavior{Drift(0.02)},
			Interactions: []Behavior{Avoid(50), Attract(Green, 0.1)},
		}},
		Group{Count: n - n/2, Color: Green, Speed: 1, Behaviors: Behaviors{
			Rules:        []Behavior{Move(), Bounce(400)},
			Forces:       []Behavior{Gravity(0.01), Damp(0.9)},
			Interactions: []Behavior{MoveCloser(60)},
		}},
	)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return ps
}

func TestStepWithoutBehaviorsKeepsState(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ps, err := Seed(rng, NewIDSource(0), World{Width: 100, Height: 100},
		Group{Count: 20, Color: Blue, Speed: 3})
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewEngine(ps, Options{})
	if err != nil {
		t.Fatal(err)
	}
	before := e.Particles()
	e.Step(1)
	e.Step(1)
	if after := e.Particles(); !reflect.DeepEqual(before, after) {
		t.Error("particles without behaviors changed after Step")
	}
	if e.Tick() != 2 {
		t.Errorf("tick = %d, want 2", e.Tick())
	}
}

func TestParallelStepMatchesSerial(t *testing.T) {
	ps := mixedParticles(t, ParallelThreshold*2)

	serial, err := NewEngine(ps, Options{Workers: 1, Seed: 9})
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := NewEngine(ps, Options{Workers: 4, Seed: 9})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		serial.Step(0)
		parallel.Step(0)
	}
	if !reflect.DeepEqual(serial.Particles(), parallel.Particles()) {
		t.Error("parallel step diverged from serial step")
	}
}

func TestInteractionsSeeFrozenGeneration(t *testing.T) {
	// A reads B before B moves, regardless of which one is computed first.
	a := NewParticle(1, 0, 0, 5, Red, Behaviors{Interactions: []Behavior{Avoid(100)}})
	b := NewParticle(2, 10, 0, 5, White, Behaviors{Rules: []Behavior{Move()}})
	b.VX, b.VY = -10, 10

	got := stepOnce(t, b, a)
	if !approx(got[0].VX, -1) || !approx(got[0].VY, 0) {
		t.Errorf("A velocity = (%v, %v), want (-1, 0)", got[0].VX, got[0].VY)
	}
	if got[1].X != 0 || got[1].Y != 10 {
		t.Errorf("B position = (%v, %v), want (0, 10)", got[1].X, got[1].Y)
	}
}

func TestInteractionOrderFollowsIDs(t *testing.T) {
	chaser := NewParticle(5, 0, 0, 5, Red, Behaviors{Interactions: []Behavior{MoveCloser(100)}})
	left := NewParticle(9, -10, 0, 5, White, Behaviors{})
	up := NewParticle(7, 0, -10, 5, White, Behaviors{})

	// id 7 comes first, so the latch points up
	got := stepOnce(t, left, chaser, up)
	if got[0].ID != 5 || got[1].ID != 7 || got[2].ID != 9 {
		t.Fatalf("ids not sorted: %d %d %d", got[0].ID, got[1].ID, got[2].ID)
	}
	if !approx(got[0].VX, 0) || !approx(got[0].VY, -1) {
		t.Errorf("chaser velocity = (%v, %v), want (0, -1)", got[0].VX, got[0].VY)
	}
}

func TestBehaviorListsSurviveGenerations(t *testing.T) {
	bs := Behaviors{Rules: []Behavior{Move()}, Forces: []Behavior{Gravity(1)}}
	p := NewParticle(1, 0, 0, 5, Red, bs)
	bs.Rules[0] = Bounce(10)

	e, err := NewEngine([]Particle{p}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		e.Step(0)
	}
	got, _ := e.Particle(1)
	if !reflect.DeepEqual(got.Behaviors, Behaviors{Rules: []Behavior{Move()}, Forces: []Behavior{Gravity(1)}}) {
		t.Errorf("behaviors = %+v", got.Behaviors)
	}
	// vy: 1, 2, 3; y: 0, 1, 3
	if got.Y != 3 || got.VY != 3 {
		t.Errorf("y = %v vy = %v, want 3 and 3", got.Y, got.VY)
	}
	if got.ID != 1 || !got.Alive {
		t.Errorf("identity changed: %+v", got)
	}
}

func TestSnapshotIsIdempotentAndDetached(t *testing.T) {
	e, err := NewEngine(mixedParticles(t, 10), Options{})
	if err != nil {
		t.Fatal(err)
	}
	e.Step(0)

	s1 := e.Snapshot()
	s2 := e.Snapshot()
	if !reflect.DeepEqual(s1, s2) {
		t.Fatal("two snapshots without a step differ")
	}
	if len(s1) != e.Len() {
		t.Fatalf("snapshot length = %d, want %d", len(s1), e.Len())
	}

	s1[0].X = 1e9
	if s3 := e.Snapshot(); s3[0].X == 1e9 {
		t.Error("snapshot shares memory with the engine")
	}
}

func TestSnapshotFields(t *testing.T) {
	p := NewParticle(3, 1, 2, 8, Purple, Behaviors{})
	e, err := NewEngine([]Particle{p}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := []Sprite{{ID: 3, X: 1, Y: 2, Size: 8, Color: Purple}}
	if got := e.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("snapshot = %+v, want %+v", got, want)
	}
}

func TestNewEngineRejectsDuplicates(t *testing.T) {
	a := NewParticle(1, 0, 0, 5, Red, Behaviors{})
	b := NewParticle(1, 5, 5, 5, White, Behaviors{})
	if _, err := NewEngine([]Particle{a, b}, Options{}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("err = %v, want ErrDuplicateID", err)
	}
}

func TestNewEngineRejectsUnknownKinds(t *testing.T) {
	p := NewParticle(1, 0, 0, 5, Red, Behaviors{})
	p.Behaviors.Rules = []Behavior{{Kind: 200}}
	if _, err := NewEngine([]Particle{p}, Options{}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("err = %v, want ErrUnknownKind", err)
	}
}

func TestNewEngineCopiesInput(t *testing.T) {
	ps := []Particle{NewParticle(1, 0, 0, 5, Red, Behaviors{})}
	e, err := NewEngine(ps, Options{})
	if err != nil {
		t.Fatal(err)
	}
	ps[0].X = 50
	if got, _ := e.Particle(1); got.X != 0 {
		t.Errorf("engine saw caller mutation, x = %v", got.X)
	}
}

func TestNewEngineCopiesBehaviors(t *testing.T) {
	p := Particle{ID: 1, Alive: true, Behaviors: Behaviors{Forces: []Behavior{Gravity(1)}}}
	e, err := NewEngine([]Particle{p}, Options{Workers: 1})
	if err != nil {
		t.Fatal(err)
	}

	p.Behaviors.Forces[0] = Gravity(5)
	e.Step(0)
	got, _ := e.Particle(1)
	if got.VY != 1 {
		t.Errorf("vy = %v, want 1", got.VY)
	}

	// an unknown kind written after validation must never reach Step
	p.Behaviors.Forces[0] = Behavior{Kind: 200}
	e.Step(0)
	got, _ = e.Particle(1)
	if got.VY != 2 {
		t.Errorf("vy = %v, want 2", got.VY)
	}
}

func TestParticleLookup(t *testing.T) {
	e, err := NewEngine(mixedParticles(t, 6), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.Particle(999); ok {
		t.Error("found a particle that does not exist")
	}
	p, ok := e.Particle(4)
	if !ok || p.ID != 4 {
		t.Errorf("Particle(4) = %+v, %v", p, ok)
	}
	if e.MaxID() != 6 {
		t.Errorf("MaxID = %d, want 6", e.MaxID())
	}
	if e.State() != Idle {
		t.Errorf("state = %v, want idle", e.State())
	}
}

func BenchmarkStep(b *testing.B) {
	rng := rand.New(rand.NewSource(3))
	ps, err := Seed(rng, NewIDSource(0), World{Width: 800, Height: 800},
		Group{Count: 500, Color: Red, Speed: 1, Behaviors: Behaviors{
			Rules:        []Behavior{Move(), Bounce(800)},
			Interactions: []Behavior{Avoid(100)},
		}},
		Group{Count: 500, Color: White, Speed: 1, Behaviors: Behaviors{
			Rules:        []Behavior{Move(), Bounce(800)},
			Interactions: []Behavior{MoveCloser(100)},
		}},
	)
	if err != nil {
		b.Fatal(err)
	}
	e, err := NewEngine(ps, Options{})
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Step(1.0 / 60)
	}
}
