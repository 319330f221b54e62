package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/olivierh59500/particle-rules/sim"
)

// Scene kinds.
const (
	KindParticles = "particles"
	KindSpinner   = "spinner"
)

// ErrUnknownScene is returned for names missing from the catalogue.
var ErrUnknownScene = errors.New("unknown scene")

// Config describes a demo. It is what scene files hold.
type Config struct {
	Name   string        `json:"name"`
	Kind   string        `json:"kind,omitempty"` // particles when empty
	World  sim.World     `json:"world"`
	Seed   int64         `json:"seed,omitempty"`
	Groups []GroupConfig `json:"groups,omitempty"`
}

// GroupConfig is the file form of sim.Group.
type GroupConfig struct {
	Count        int            `json:"count"`
	Color        sim.Color      `json:"color"`
	Size         float64        `json:"size,omitempty"`
	Speed        float64        `json:"speed,omitempty"`
	Rules        []sim.Behavior `json:"rules,omitempty"`
	Forces       []sim.Behavior `json:"forces,omitempty"`
	Interactions []sim.Behavior `json:"interactions,omitempty"`
}

func (g GroupConfig) group() sim.Group {
	return sim.Group{
		Count: g.Count,
		Color: g.Color,
		Size:  g.Size,
		Speed: g.Speed,
		Behaviors: sim.Behaviors{
			Rules:        g.Rules,
			Forces:       g.Forces,
			Interactions: g.Interactions,
		},
	}
}

// Load reads a scene file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load scene: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("load scene %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a scene.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the world, the kind and every group's behaviors.
func (c Config) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("scene %q: world must have positive extents", c.Name)
	}
	switch c.Kind {
	case "", KindParticles:
	case KindSpinner:
		return nil
	default:
		return fmt.Errorf("scene %q: unknown kind %q", c.Name, c.Kind)
	}
	for i, g := range c.Groups {
		if g.Count < 0 {
			return fmt.Errorf("scene %q: group %d: negative count", c.Name, i)
		}
		if err := g.group().Behaviors.Validate(); err != nil {
			return fmt.Errorf("scene %q: group %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Options tunes Build.
type Options struct {
	Workers int
}

// Build seeds a runnable scene from cfg.
func Build(cfg Config, opts Options) (Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Kind == KindSpinner {
		return NewSpinner(cfg.World), nil
	}

	groups := make([]sim.Group, len(cfg.Groups))
	for i, g := range cfg.Groups {
		groups[i] = g.group()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	ps, err := sim.Seed(rng, sim.NewIDSource(0), cfg.World, groups...)
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", cfg.Name, err)
	}
	e, err := sim.NewEngine(ps, sim.Options{Workers: opts.Workers, Seed: cfg.Seed})
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", cfg.Name, err)
	}
	return NewParticles(e, cfg.World), nil
}

// Builtin returns a catalogue scene by name.
func Builtin(name string) (Config, error) {
	mk, ok := catalogue[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return mk(), nil
}

// Names lists the catalogue in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for n := range catalogue {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
