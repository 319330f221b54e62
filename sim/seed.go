package sim

import (
	"fmt"
	"math/rand"
)

// DefaultSize is the side of a particle when a group leaves it unset.
const DefaultSize = 5.0

// World is the simulated area, centered on the origin.
type World struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Group describes a batch of identical particles created at bootstrap.
type Group struct {
	Count     int
	Color     Color
	Size      float64
	Speed     float64 // initial velocity components are drawn from [-Speed, Speed]
	Behaviors Behaviors
}

// Seed creates every group's particles at random positions inside w. The
// returned slice is in id order.
func Seed(rng *rand.Rand, ids *IDSource, w World, groups ...Group) ([]Particle, error) {
	if w.Width <= 0 || w.Height <= 0 {
		return nil, fmt.Errorf("seed: world must have positive extents, got %vx%v", w.Width, w.Height)
	}
	total := 0
	for i, g := range groups {
		if g.Count < 0 {
			return nil, fmt.Errorf("seed: group %d: negative count %d", i, g.Count)
		}
		if err := g.Behaviors.Validate(); err != nil {
			return nil, fmt.Errorf("seed: group %d: %w", i, err)
		}
		total += g.Count
	}

	out := make([]Particle, 0, total)
	for _, g := range groups {
		size := g.Size
		if size <= 0 {
			size = DefaultSize
		}
		for i := 0; i < g.Count; i++ {
			x := randomIn(rng, w.Width, size)
			y := randomIn(rng, w.Height, size)
			p := NewParticle(ids.Next(), x, y, size, g.Color, g.Behaviors)
			if g.Speed > 0 {
				p.VX = (rng.Float64()*2 - 1) * g.Speed
				p.VY = (rng.Float64()*2 - 1) * g.Speed
			}
			out = append(out, p)
		}
	}
	return out, nil
}

// randomIn returns a center coordinate that keeps a square of side size
// inside an extent centered on zero. Extents smaller than the square pin
// it to the center.
func randomIn(rng *rand.Rand, extent, size float64) float64 {
	room := extent - size
	if room <= 0 {
		return 0
	}
	return rng.Float64()*room - room/2
}
