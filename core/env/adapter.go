package env

import (
	"errors"
	"sort"
)

// ErrInvalidAction is returned when an action index falls outside the
// candidate list and fallback is disabled.
var ErrInvalidAction = errors.New("invalid action index")

// ActionAdapter translates a raw agent action into rank indices within the
// ranked availability list. candidates is the number of selectable
// vehicles, required the incident's dispatch count. Adapters never touch
// the engine; they only reshape actions.
type ActionAdapter interface {
	Ranks(action []float64, candidates, required int) ([]int, error)
}

// DiscreteAdapter interprets the action as a single rank index and repeats
// it to fill the required dispatch count. Out-of-bounds indices fall back
// to the nearest vehicle unless Strict is set.
type DiscreteAdapter struct {
	Strict bool
}

func (a DiscreteAdapter) Ranks(action []float64, candidates, required int) ([]int, error) {
	if len(action) == 0 {
		return nil, ErrInvalidAction
	}
	idx, err := resolveIndex(int(action[0]), candidates, a.Strict)
	if err != nil {
		return nil, err
	}
	ranks := make([]int, required)
	for i := range ranks {
		ranks[i] = idx
	}
	return ranks, nil
}

// MultiDiscreteAdapter interprets the action as one rank index per dispatch
// slot, truncated to the required count.
type MultiDiscreteAdapter struct {
	Strict bool
}

func (a MultiDiscreteAdapter) Ranks(action []float64, candidates, required int) ([]int, error) {
	if len(action) > required {
		action = action[:required]
	}
	ranks := make([]int, 0, len(action))
	for _, v := range action {
		idx, err := resolveIndex(int(v), candidates, a.Strict)
		if err != nil {
			return nil, err
		}
		ranks = append(ranks, idx)
	}
	return ranks, nil
}

// ContinuousAdapter interprets the action as a score vector over the
// nearest MaxCandidates vehicles. Scores are clipped to [0,1], the vector
// is padded or truncated to MaxCandidates, and the top required indices by
// descending score are selected. Indices beyond the candidate list are
// dropped rather than substituted, so a step can dispatch fewer vehicles
// than required, or none at all.
type ContinuousAdapter struct {
	MaxCandidates int
}

func (a ContinuousAdapter) Ranks(action []float64, candidates, required int) ([]int, error) {
	width := a.MaxCandidates
	if width <= 0 {
		width = 10
	}
	pool := candidates
	if pool > width {
		pool = width
	}

	scores := make([]float64, width)
	for i := 0; i < width && i < len(action); i++ {
		s := action[i]
		if s < 0 {
			s = 0
		}
		if s > 1 {
			s = 1
		}
		scores[i] = s
	}

	order := make([]int, width)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	if required > len(order) {
		required = len(order)
	}
	var ranks []int
	for _, idx := range order[:required] {
		if idx < pool {
			ranks = append(ranks, idx)
		}
	}
	return ranks, nil
}

func resolveIndex(idx, candidates int, strict bool) (int, error) {
	if idx >= 0 && idx < candidates {
		return idx, nil
	}
	if strict || candidates == 0 {
		return 0, ErrInvalidAction
	}
	return 0, nil
}
