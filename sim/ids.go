package sim

import "sync/atomic"

// IDSource hands out particle ids. Ids start at 1 and are never reused, so
// particles created in the same instant or by different groups cannot
// collide.
type IDSource struct {
	last atomic.Uint64
}

// NewIDSource returns a source whose first id is after+1.
func NewIDSource(after ID) *IDSource {
	s := &IDSource{}
	s.last.Store(uint64(after))
	return s
}

// Next returns a fresh id.
func (s *IDSource) Next() ID {
	return ID(s.last.Add(1))
}

// Last returns the most recently issued id, 0 if none.
func (s *IDSource) Last() ID {
	return ID(s.last.Load())
}
