package sim

import (
	"encoding/json"
	"fmt"
	"io"
)

type savedState struct {
	Tick      uint64     `json:"tick"`
	Seed      int64      `json:"seed"`
	Particles []Particle `json:"particles"`
}

// Save writes the current generation as JSON.
func (e *Engine) Save(w io.Writer) error {
	e.mu.Lock()
	st := savedState{Tick: e.tick, Seed: e.seed, Particles: e.cur}
	data, err := json.MarshalIndent(st, "", "  ")
	e.mu.Unlock()
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// Load rebuilds an engine from a Save stream. The tick counter and noise
// seed are restored; opts.Seed is ignored.
func Load(r io.Reader, opts Options) (*Engine, error) {
	var st savedState
	if err := json.NewDecoder(r).Decode(&st); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	opts.Seed = st.Seed
	e, err := NewEngine(st.Particles, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	e.tick = st.Tick
	return e, nil
}

// MaxID returns the highest id in the engine, for resuming an IDSource.
func (e *Engine) MaxID() ID {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.cur) == 0 {
		return 0
	}
	return e.cur[len(e.cur)-1].ID
}
