package sim

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/aquilax/go-perlin"
	"golang.org/x/sync/errgroup"
)

// ParallelThreshold is the generation size from which Step fans out to
// worker goroutines. Smaller generations are cheaper to run inline.
const ParallelThreshold = 256

// Perlin parameters for the drift field.
const (
	noiseAlpha  = 2.0
	noiseBeta   = 2.0
	noiseOctave = 3
)

// ErrDuplicateID is returned when two particles share an id.
var ErrDuplicateID = errors.New("duplicate particle id")

// State is the engine's position in its tick cycle.
type State int32

const (
	Idle State = iota
	Stepping
)

func (s State) String() string {
	if s == Stepping {
		return "stepping"
	}
	return "idle"
}

// Options tunes an Engine.
type Options struct {
	// Workers caps the goroutines used by Step. Zero means GOMAXPROCS,
	// one forces a serial step.
	Workers int
	// Seed seeds the drift noise field.
	Seed int64
}

// Engine owns a generation of particles and advances it one tick at a
// time. Particles are kept in ascending id order, which fixes the order in
// which interactions see other particles.
type Engine struct {
	mu    sync.Mutex
	state atomic.Int32

	cur  []Particle // current generation, read-only while stepping
	next []Particle // scratch buffer for the next generation
	pos  map[ID]int

	tick    uint64
	workers int
	seed    int64
	noise   *perlin.Perlin
}

// NewEngine creates an engine over a copy of particles.
func NewEngine(particles []Particle, opts Options) (*Engine, error) {
	cur := slices.Clone(particles)
	slices.SortFunc(cur, func(a, b Particle) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	pos := make(map[ID]int, len(cur))
	for i := range cur {
		// the caller keeps its slices; the engine owns private copies
		cur[i].Behaviors = cur[i].Behaviors.clone()
		p := cur[i]
		if _, dup := pos[p.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, p.ID)
		}
		if err := p.Behaviors.Validate(); err != nil {
			return nil, fmt.Errorf("particle %d: %w", p.ID, err)
		}
		pos[p.ID] = i
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{
		cur:     cur,
		next:    make([]Particle, len(cur)),
		pos:     pos,
		workers: workers,
		seed:    opts.Seed,
		noise:   perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctave, opts.Seed),
	}, nil
}

// Step advances the simulation by one tick. dt is accepted for hosts that
// pass their frame delta; every built-in behavior treats a step as one tick.
func (e *Engine) Step(dt float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Store(int32(Stepping))
	defer e.state.Store(int32(Idle))

	n := len(e.cur)
	env := &env{tick: e.tick, noise: e.noise}

	if e.workers <= 1 || n < ParallelThreshold {
		e.advance(0, n, env)
	} else {
		var g errgroup.Group
		g.SetLimit(e.workers)
		chunk := (n + e.workers - 1) / e.workers
		for lo := 0; lo < n; lo += chunk {
			hi := min(lo+chunk, n)
			g.Go(func() error {
				e.advance(lo, hi, env)
				return nil
			})
		}
		// behaviors are total, nothing to report
		_ = g.Wait()
	}

	e.cur, e.next = e.next, e.cur
	e.tick++
}

// advance writes the next state of particles [lo, hi) into e.next. It only
// reads e.cur.
func (e *Engine) advance(lo, hi int, env *env) {
	for i := lo; i < hi; i++ {
		e.next[i] = evolve(e.cur, i, env)
	}
}

// evolve folds gen[i] through its interactions against every other
// particle, then its rules, then its forces.
func evolve(gen []Particle, i int, env *env) Particle {
	acc := gen[i]
	bs := acc.Behaviors

	if len(bs.Interactions) > 0 {
		for j := range gen {
			if j == i {
				continue
			}
			for _, b := range bs.Interactions {
				acc = interactions[b.Kind](acc, gen[j], b)
			}
		}
	}
	for _, b := range bs.Rules {
		acc = rules[b.Kind](acc, b, env)
	}
	for _, b := range bs.Forces {
		acc = rules[b.Kind](acc, b, env)
	}
	return acc
}

// Snapshot returns the renderable state of the current generation in id
// order. The slice is freshly allocated on every call.
func (e *Engine) Snapshot() []Sprite {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Sprite, len(e.cur))
	for i, p := range e.cur {
		out[i] = p.sprite()
	}
	return out
}

// Particles returns a copy of the current generation in id order.
func (e *Engine) Particles() []Particle {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Particle, len(e.cur))
	for i, p := range e.cur {
		p.Behaviors = p.Behaviors.clone()
		out[i] = p
	}
	return out
}

// Particle returns a copy of the particle with the given id.
func (e *Engine) Particle(id ID) (Particle, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.pos[id]
	if !ok {
		return Particle{}, false
	}
	p := e.cur[i]
	p.Behaviors = p.Behaviors.clone()
	return p, true
}

// Len returns the number of particles.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cur)
}

// Tick returns the number of completed steps.
func (e *Engine) Tick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// State reports whether a step is in progress.
func (e *Engine) State() State {
	return State(e.state.Load())
}
