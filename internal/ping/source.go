package ping

import (
	"math/rand/v2"
	"sync"
)

// Source yields integers for outcome selection.
type Source interface {
	// IntRange returns an integer in the closed interval [lo, hi].
	IntRange(lo, hi int) int
}

type randSource struct{}

// NewRandSource returns a Source backed by math/rand/v2.
func NewRandSource() Source {
	return randSource{}
}

func (randSource) IntRange(lo, hi int) int {
	return lo + rand.IntN(hi-lo+1) //nolint:gosec
}

// FixedSource always returns its value, clamped to the requested range.
type FixedSource int

func (f FixedSource) IntRange(lo, hi int) int {
	return clamp(int(f), lo, hi)
}

// ScriptedSource replays a fixed sequence of values, wrapping around at the end.
// It is safe for concurrent use.
type ScriptedSource struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewScriptedSource returns a ScriptedSource over values. It panics if values is empty.
func NewScriptedSource(values ...int) *ScriptedSource {
	if len(values) == 0 {
		panic("ping: scripted source needs at least one value")
	}
	return &ScriptedSource{values: values}
}

func (s *ScriptedSource) IntRange(lo, hi int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.values[s.next%len(s.values)]
	s.next++
	return clamp(v, lo, hi)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
