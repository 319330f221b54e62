package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"
)

// Behavior defaults, used by scene files that leave a value out.
const (
	DefaultGravity   = 0.1
	DefaultThreshold = 100.0
	DefaultDamping   = 0.5
	DefaultDrift     = 0.05

	// AttractRadius bounds the reach of attract.
	AttractRadius = 80.0

	driftScale = 0.01
	driftSpeed = 0.005
)

// ErrUnknownKind is returned for behaviors that no table can dispatch.
var ErrUnknownKind = errors.New("unknown behavior kind")

// Kind selects a behavior implementation.
type Kind uint8

const (
	KindMove Kind = iota + 1
	KindBounce
	KindGravity
	KindDamp
	KindDrift
	KindMoveCloser
	KindAvoid
	KindAttract
)

var kindNames = map[Kind]string{
	KindMove:       "move",
	KindBounce:     "bounce",
	KindGravity:    "gravity",
	KindDamp:       "damp",
	KindDrift:      "drift",
	KindMoveCloser: "move-closer",
	KindAvoid:      "avoid",
	KindAttract:    "attract",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// MarshalText writes the kind's name.
func (k Kind) MarshalText() ([]byte, error) {
	n, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	return []byte(n), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	for kind, n := range kindNames {
		if n == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, string(b))
}

// Behavior is a tagged behavior: Kind picks the function, Value is its
// parameter (bound, acceleration, threshold...) and Target is the color
// attract reacts to.
type Behavior struct {
	Kind   Kind
	Value  float64
	Target Color
}

// Move adds velocity to position.
func Move() Behavior { return Behavior{Kind: KindMove} }

// Bounce reflects velocity at the walls of a box of side bound.
func Bounce(bound float64) Behavior { return Behavior{Kind: KindBounce, Value: bound} }

// Gravity adds g to vy every tick.
func Gravity(g float64) Behavior { return Behavior{Kind: KindGravity, Value: g} }

// Damp scales velocity by f every tick.
func Damp(f float64) Behavior { return Behavior{Kind: KindDamp, Value: f} }

// Drift pushes velocity by s along a noise flow field.
func Drift(s float64) Behavior { return Behavior{Kind: KindDrift, Value: s} }

// MoveCloser heads toward the first stranger closer than thr.
func MoveCloser(thr float64) Behavior { return Behavior{Kind: KindMoveCloser, Value: thr} }

// Avoid heads away from any stranger closer than thr.
func Avoid(thr float64) Behavior { return Behavior{Kind: KindAvoid, Value: thr} }

// Attract pulls a particle toward others of color target with strength g
// divided by distance. A negative g pushes away.
func Attract(target Color, g float64) Behavior {
	return Behavior{Kind: KindAttract, Value: g, Target: target}
}

// defaults fill in a value missing from a JSON behavior.
var defaults = map[Kind]float64{
	KindGravity:    DefaultGravity,
	KindDamp:       DefaultDamping,
	KindDrift:      DefaultDrift,
	KindMoveCloser: DefaultThreshold,
	KindAvoid:      DefaultThreshold,
}

type behaviorJSON struct {
	Kind   Kind     `json:"kind"`
	Value  *float64 `json:"value,omitempty"`
	Target *Color   `json:"target,omitempty"`
}

// MarshalJSON writes the kind by name; value is omitted for move.
func (b Behavior) MarshalJSON() ([]byte, error) {
	out := behaviorJSON{Kind: b.Kind}
	if b.Kind != KindMove {
		v := b.Value
		out.Value = &v
	}
	if b.Kind == KindAttract {
		t := b.Target
		out.Target = &t
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a behavior, applying the kind's default when value
// is absent.
func (b *Behavior) UnmarshalJSON(data []byte) error {
	var in behaviorJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*b = Behavior{Kind: in.Kind, Value: defaults[in.Kind]}
	if in.Value != nil {
		b.Value = *in.Value
	}
	if in.Target != nil {
		b.Target = *in.Target
	}
	return nil
}

func (b Behavior) validate(table map[Kind]any) error {
	if _, ok := table[b.Kind]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKind, b.Kind)
	}
	switch b.Kind {
	case KindBounce:
		if b.Value <= 0 {
			return fmt.Errorf("bounce: bound must be positive, got %v", b.Value)
		}
	case KindMoveCloser, KindAvoid:
		if b.Value < 0 {
			return fmt.Errorf("%s: threshold must not be negative, got %v", b.Kind, b.Value)
		}
	case KindAttract:
		if b.Target >= numColors {
			return fmt.Errorf("attract: unknown target color %d", uint8(b.Target))
		}
	}
	return nil
}

// env is the read-only context a tick hands to per-particle behaviors.
type env struct {
	tick  uint64
	noise *perlin.Perlin
}

type ruleFunc func(p Particle, b Behavior, e *env) Particle

type interactionFunc func(p, other Particle, b Behavior) Particle

// Rules and forces share one table; the lists only differ in when they run.
var rules = map[Kind]ruleFunc{
	KindMove:    move,
	KindBounce:  bounce,
	KindGravity: gravity,
	KindDamp:    damp,
	KindDrift:   drift,
}

var interactions = map[Kind]interactionFunc{
	KindMoveCloser: moveCloser,
	KindAvoid:      avoid,
	KindAttract:    attract,
}

// kind sets used by validate
var (
	ruleTable        = keys(rules)
	interactionTable = keys(interactions)
)

func keys[F any](m map[Kind]F) map[Kind]any {
	out := make(map[Kind]any, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}

func move(p Particle, _ Behavior, _ *env) Particle {
	p.X += p.VX
	p.Y += p.VY
	return p
}

// bounce reflects velocity when the particle's edge leaves the box of side
// bound centered on the origin.
func bounce(p Particle, b Behavior, _ *env) Particle {
	half := p.Size / 2
	limit := b.Value / 2
	if p.X+half > limit || p.X-half < -limit {
		p.VX = -p.VX
	}
	if p.Y+half > limit || p.Y-half < -limit {
		p.VY = -p.VY
	}
	return p
}

func gravity(p Particle, b Behavior, _ *env) Particle {
	p.VY += b.Value
	return p
}

func damp(p Particle, b Behavior, _ *env) Particle {
	f := b.Value
	p.VX *= f
	p.VY *= f
	return p
}

// drift nudges velocity along a Perlin flow field that slowly changes with
// the tick count.
func drift(p Particle, b Behavior, e *env) Particle {
	if e == nil || e.noise == nil {
		return p
	}
	n := e.noise.Noise2D(p.X*driftScale+float64(e.tick)*driftSpeed, p.Y*driftScale)
	theta := (n + 1) * math.Pi
	s := b.Value
	p.VX += s * math.Cos(theta)
	p.VY += s * math.Sin(theta)
	return p
}

// towards returns the unit vector from p to other and their distance.
// ok is false when the two coincide.
func towards(p, other Particle) (ux, uy, d float64, ok bool) {
	dx := other.X - p.X
	dy := other.Y - p.Y
	d = math.Hypot(dx, dy)
	if d == 0 {
		return 0, 0, 0, false
	}
	return dx / d, dy / d, d, true
}

// moveCloser latches onto the first stranger seen within range. The
// velocity is set once and the particle keeps that heading from then on.
func moveCloser(p, other Particle, b Behavior) Particle {
	if p.Color == other.Color || p.Chasing {
		return p
	}
	ux, uy, d, ok := towards(p, other)
	if !ok || d >= b.Value {
		return p
	}
	p.Chasing = true
	p.VX, p.VY = ux, uy
	return p
}

func avoid(p, other Particle, b Behavior) Particle {
	if p.Color == other.Color {
		return p
	}
	ux, uy, d, ok := towards(p, other)
	if !ok || d >= b.Value {
		return p
	}
	p.VX, p.VY = -ux, -uy
	return p
}

func attract(p, other Particle, b Behavior) Particle {
	if other.Color != b.Target {
		return p
	}
	ux, uy, d, ok := towards(p, other)
	if !ok || d >= AttractRadius {
		return p
	}
	// (g/d) * (q - p), with q - p = d * u
	p.VX += b.Value * ux
	p.VY += b.Value * uy
	return p
}
