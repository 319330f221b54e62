package sim

import (
	"fmt"
	"image/color"
)

// ID identifies a particle for its whole lifetime.
type ID uint64

// Color tags a particle's appearance. Chase and avoid use it to tell
// friends from strangers.
type Color uint8

const (
	Red Color = iota
	White
	Yellow
	Green
	Purple
	Blue
	numColors
)

var colorNames = [numColors]string{"red", "white", "yellow", "green", "purple", "blue"}

var palette = [numColors]color.RGBA{
	{255, 0, 0, 255},
	{255, 255, 255, 255},
	{255, 220, 0, 255},
	{0, 200, 0, 255},
	{160, 32, 240, 255},
	{40, 90, 255, 255},
}

func (c Color) String() string {
	if c < numColors {
		return colorNames[c]
	}
	return fmt.Sprintf("color(%d)", uint8(c))
}

// RGBA returns the draw color, white for unknown tags.
func (c Color) RGBA() color.RGBA {
	if c < numColors {
		return palette[c]
	}
	return palette[White]
}

// MarshalText writes the color's name.
func (c Color) MarshalText() ([]byte, error) {
	if c >= numColors {
		return nil, fmt.Errorf("unknown color %d", uint8(c))
	}
	return []byte(colorNames[c]), nil
}

// UnmarshalText parses a color name.
func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseColor maps a color name to its tag.
func ParseColor(name string) (Color, error) {
	for i, n := range colorNames {
		if n == name {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("unknown color %q", name)
}

// Behaviors is the set of functions a particle runs every tick. It is fixed
// at creation and shared, never written, by every later generation.
type Behaviors struct {
	Rules        []Behavior `json:"rules,omitempty"`
	Forces       []Behavior `json:"forces,omitempty"`
	Interactions []Behavior `json:"interactions,omitempty"`
}

// Empty reports whether no behavior is attached.
func (b Behaviors) Empty() bool {
	return len(b.Rules) == 0 && len(b.Forces) == 0 && len(b.Interactions) == 0
}

// Validate checks that each list only holds kinds its table can run.
func (b Behaviors) Validate() error {
	for _, r := range b.Rules {
		if err := r.validate(ruleTable); err != nil {
			return fmt.Errorf("rule: %w", err)
		}
	}
	for _, f := range b.Forces {
		if err := f.validate(ruleTable); err != nil {
			return fmt.Errorf("force: %w", err)
		}
	}
	for _, in := range b.Interactions {
		if err := in.validate(interactionTable); err != nil {
			return fmt.Errorf("interaction: %w", err)
		}
	}
	return nil
}

func (b Behaviors) clone() Behaviors {
	return Behaviors{
		Rules:        append([]Behavior(nil), b.Rules...),
		Forces:       append([]Behavior(nil), b.Forces...),
		Interactions: append([]Behavior(nil), b.Interactions...),
	}
}

// Particle is one simulated square.
type Particle struct {
	ID        ID        `json:"id"`
	X         float64   `json:"x"` // center
	Y         float64   `json:"y"`
	VX        float64   `json:"vx"`
	VY        float64   `json:"vy"`
	Size      float64   `json:"size"`
	Color     Color     `json:"color"`
	Alive     bool      `json:"alive"`
	Chasing   bool      `json:"chasing,omitempty"`
	Behaviors Behaviors `json:"behaviors"`
}

// NewParticle returns a live particle at (x, y) that owns a private copy
// of behaviors.
func NewParticle(id ID, x, y, size float64, c Color, behaviors Behaviors) Particle {
	return Particle{
		ID:        id,
		X:         x,
		Y:         y,
		Size:      size,
		Color:     c,
		Alive:     true,
		Behaviors: behaviors.clone(),
	}
}

// Sprite is the renderable part of a particle.
type Sprite struct {
	ID    ID
	X, Y  float64
	Size  float64
	Color Color
}

func (p Particle) sprite() Sprite {
	return Sprite{ID: p.ID, X: p.X, Y: p.Y, Size: p.Size, Color: p.Color}
}
