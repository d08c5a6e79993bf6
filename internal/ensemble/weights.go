// internal/ensemble/weights.go
package ensemble

import (
	"sync/atomic"
)

// Component names used across the blend.
const (
	ComponentTemporal = "temporal"
	ComponentExternal = "external"
	ComponentProduct  = "product"
	ComponentMarket   = "market"
)

// Weights maps component name to blend weight. A usable weight set is
// non-negative and sums to 1 within 1e-6; Normalized enforces both.
type Weights map[string]float64

// DefaultWeights are the fixed priors the adaptation starts from.
func DefaultWeights() Weights {
	return Weights{
		ComponentTemporal: 0.35,
		ComponentExternal: 0.25,
		ComponentProduct:  0.25,
		ComponentMarket:   0.15,
	}
}

// Normalized returns a copy with negatives clamped to zero and the whole
// set rescaled to sum to 1. An all-zero set becomes uniform.
func (w Weights) Normalized() Weights {
	out := make(Weights, len(w))
	sum := 0.0
	for name, v := range w {
		if v < 0 {
			v = 0
		}
		out[name] = v
		sum += v
	}

	if sum == 0 {
		uniform := 1.0 / float64(len(out))
		for name := range out {
			out[name] = uniform
		}
		return out
	}

	for name := range out {
		out[name] /= sum
	}
	return out
}

// Sum returns the total weight mass.
func (w Weights) Sum() float64 {
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	return sum
}

func (w Weights) clone() Weights {
	out := make(Weights, len(w))
	for name, v := range w {
		out[name] = v
	}
	return out
}

// Store holds the process-wide weight vector. Readers always see a
// complete snapshot: the map is replaced atomically on retrain and copied
// on read, never mutated in place.
type Store struct {
	current atomic.Pointer[Weights]
}

// NewStore starts from the default priors.
func NewStore() *Store {
	s := &Store{}
	w := DefaultWeights()
	s.current.Store(&w)
	return s
}

// Snapshot returns a private copy of the current weights.
func (s *Store) Snapshot() Weights {
	return (*s.current.Load()).clone()
}

// Replace swaps in a new weight set after normalizing it.
func (s *Store) Replace(w Weights) {
	normalized := w.Normalized()
	s.current.Store(&normalized)
}
