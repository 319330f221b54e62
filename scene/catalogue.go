package scene

import "github.com/olivierh59500/particle-rules/sim"

const (
	demoSide = 800.0
	lifeSide = 500.0
)

var catalogue = map[string]func() Config{
	"square":  square,
	"bounce":  bouncing,
	"gravity": falling,
	"chase":   chase,
	"avoid":   avoidance,
	"life":    life,
}

func demoWorld() sim.World { return sim.World{Width: demoSide, Height: demoSide} }

// walls keeps a group moving inside the demo box.
func walls(side float64) []sim.Behavior {
	return []sim.Behavior{sim.Move(), sim.Bounce(side)}
}

func square() Config {
	return Config{Name: "square", Kind: KindSpinner, World: demoWorld()}
}

func bouncing() Config {
	return Config{
		Name:  "bounce",
		World: demoWorld(),
		Groups: []GroupConfig{
			{Count: 60, Color: sim.Red, Speed: 3, Rules: walls(demoSide)},
			{Count: 40, Color: sim.White, Speed: 1, Rules: walls(demoSide), Forces: []sim.Behavior{sim.Drift(0.05)}},
		},
	}
}

func falling() Config {
	return Config{
		Name:  "gravity",
		World: demoWorld(),
		Groups: []GroupConfig{
			{Count: 100, Color: sim.White, Speed: 2, Rules: walls(demoSide), Forces: []sim.Behavior{sim.Gravity(sim.DefaultGravity)}},
		},
	}
}

func chase() Config {
	return Config{
		Name:  "chase",
		World: demoWorld(),
		Groups: []GroupConfig{
			{Count: 20, Color: sim.Red, Size: 8, Rules: walls(demoSide), Interactions: []sim.Behavior{sim.MoveCloser(sim.DefaultThreshold)}},
			{Count: 80, Color: sim.White, Speed: 1, Rules: walls(demoSide)},
		},
	}
}

func avoidance() Config {
	return Config{
		Name:  "avoid",
		World: demoWorld(),
		Groups: []GroupConfig{
			{Count: 50, Color: sim.Red, Speed: 1, Rules: walls(demoSide), Interactions: []sim.Behavior{sim.Avoid(sim.DefaultThreshold)}},
			{Count: 50, Color: sim.White, Speed: 1, Rules: walls(demoSide), Interactions: []sim.Behavior{sim.Avoid(sim.DefaultThreshold)}},
		},
	}
}

// life is the particle-life demo: each color is pulled toward or pushed
// away from the others, with friction.
func life() Config {
	friction := []sim.Behavior{sim.Damp(sim.DefaultDamping)}
	return Config{
		Name:  "life",
		World: sim.World{Width: lifeSide, Height: lifeSide},
		Groups: []GroupConfig{
			{Count: 150, Color: sim.Yellow, Rules: walls(lifeSide), Forces: friction, Interactions: []sim.Behavior{
				sim.Attract(sim.Red, -0.1),
				sim.Attract(sim.Yellow, 0.001),
				sim.Attract(sim.Green, -0.02),
			}},
			{Count: 150, Color: sim.Red, Rules: walls(lifeSide), Forces: friction, Interactions: []sim.Behavior{
				sim.Attract(sim.Red, 0.05),
				sim.Attract(sim.Green, -0.08),
				sim.Attract(sim.Purple, -0.02),
			}},
			{Count: 100, Color: sim.Green, Rules: walls(lifeSide), Forces: friction, Interactions: []sim.Behavior{
				sim.Attract(sim.Red, 0.05),
				sim.Attract(sim.Green, -0.03),
			}},
			{Count: 50, Color: sim.Purple, Rules: walls(lifeSide), Forces: friction, Interactions: []sim.Behavior{
				sim.Attract(sim.Red, 0.02),
				sim.Attract(sim.Yellow, -0.03),
				sim.Attract(sim.Green, 0.01),
				sim.Attract(sim.Purple, -0.02),
			}},
		},
	}
}
