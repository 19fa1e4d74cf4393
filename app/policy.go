package app

import (
	"fmt"
	"math/rand"
)

// Policy produces a raw action vector for the configured action encoding.
// Policies are baselines for exercising the environment, not learners.
type Policy interface {
	Name() string
	Act(obs []float64, candidates, required int) []float64
}

// NewPolicy builds the named baseline policy for the given action kind.
func NewPolicy(name, kind string, maxCandidates int, seed int64) (Policy, error) {
	if maxCandidates <= 0 {
		maxCandidates = 10
	}
	switch name {
	case "nearest":
		return NearestPolicy{Kind: kind, Width: maxCandidates}, nil
	case "random":
		return &RandomPolicy{Kind: kind, Width: maxCandidates, rng: rand.New(rand.NewSource(seed))}, nil
	default:
		return nil, fmt.Errorf("unknown policy %s", name)
	}
}

// NearestPolicy always takes the top of the availability ranking.
type NearestPolicy struct {
	Kind  string
	Width int
}

func (NearestPolicy) Name() string { return "nearest" }

func (p NearestPolicy) Act(_ []float64, candidates, required int) []float64 {
	switch p.Kind {
	case "multidiscrete":
		out := make([]float64, required)
		for i := range out {
			idx := i
			if candidates > 0 && idx >= candidates {
				idx = candidates - 1
			}
			out[i] = float64(idx)
		}
		return out
	case "continuous":
		out := make([]float64, p.Width)
		for i := range out {
			out[i] = 1 - float64(i)/float64(p.Width)
		}
		return out
	default:
		return []float64{0}
	}
}

// RandomPolicy samples uniformly over the candidate pool.
type RandomPolicy struct {
	Kind  string
	Width int
	rng   *rand.Rand
}

func (*RandomPolicy) Name() string { return "random" }

func (p *RandomPolicy) Act(_ []float64, candidates, required int) []float64 {
	pick := func() float64 {
		if candidates <= 0 {
			return 0
		}
		return float64(p.rng.Intn(candidates))
	}
	switch p.Kind {
	case "multidiscrete":
		out := make([]float64, required)
		for i := range out {
			out[i] = pick()
		}
		return out
	case "continuous":
		out := make([]float64, p.Width)
		for i := range out {
			out[i] = p.rng.Float64()
		}
		return out
	default:
		return []float64{pick()}
	}
}
