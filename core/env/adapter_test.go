package env

import (
	"errors"
	"testing"
)

func TestDiscreteAdapterRepeatsIndex(t *testing.T) {
	a := DiscreteAdapter{}
	ranks, err := a.Ranks([]float64{1}, 5, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranks) != 2 || ranks[0] != 1 || ranks[1] != 1 {
		t.Fatalf("expected [1 1] got %v", ranks)
	}
}

func TestDiscreteAdapterFallback(t *testing.T) {
	a := DiscreteAdapter{}
	ranks, err := a.Ranks([]float64{9}, 3, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranks) != 1 || ranks[0] != 0 {
		t.Fatalf("expected fallback to rank 0 got %v", ranks)
	}
}

func TestDiscreteAdapterStrictRejects(t *testing.T) {
	a := DiscreteAdapter{Strict: true}
	if _, err := a.Ranks([]float64{9}, 3, 1); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction got %v", err)
	}
}

func TestMultiDiscreteAdapterTruncates(t *testing.T) {
	a := MultiDiscreteAdapter{}
	ranks, err := a.Ranks([]float64{0, 1, 2, 3}, 5, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranks) != 2 || ranks[0] != 0 || ranks[1] != 1 {
		t.Fatalf("expected [0 1] got %v", ranks)
	}
}

func TestMultiDiscreteAdapterFallbackPerSlot(t *testing.T) {
	a := MultiDiscreteAdapter{}
	ranks, err := a.Ranks([]float64{1, 7}, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranks) != 2 || ranks[0] != 1 || ranks[1] != 0 {
		t.Fatalf("expected [1 0] got %v", ranks)
	}
}

func TestContinuousAdapterTopK(t *testing.T) {
	a := ContinuousAdapter{MaxCandidates: 5}
	ranks, err := a.Ranks([]float64{0.1, 0.9, 0.5, 0.7, 0.2}, 5, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranks) != 2 || ranks[0] != 1 || ranks[1] != 3 {
		t.Fatalf("expected [1 3] got %v", ranks)
	}
}

func TestContinuousAdapterClipsAndPads(t *testing.T) {
	a := ContinuousAdapter{MaxCandidates: 4}
	// Oversized scores clip to 1; the short vector zero-pads.
	ranks, err := a.Ranks([]float64{5.0, -2.0}, 4, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranks) != 1 || ranks[0] != 0 {
		t.Fatalf("expected [0] got %v", ranks)
	}
}

func TestContinuousAdapterDropsBeyondPool(t *testing.T) {
	a := ContinuousAdapter{MaxCandidates: 5}
	// Only two vehicles are actually available. A high score on a padding
	// slot wastes that dispatch slot instead of selecting a substitute.
	ranks, err := a.Ranks([]float64{0.1, 0.8, 0.9, 0.2, 0.3}, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranks) != 1 || ranks[0] != 1 {
		t.Fatalf("expected [1] got %v", ranks)
	}
}

func TestContinuousAdapterCanSelectNothing(t *testing.T) {
	a := ContinuousAdapter{MaxCandidates: 10}
	// All top scores land outside the candidate pool: nothing dispatches
	// and the incident is lost.
	action := []float64{0.1, 0.2, 0.3, 0, 0, 0.9, 0, 0.8, 0, 0}
	ranks, err := a.Ranks(action, 3, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranks) != 0 {
		t.Fatalf("expected no ranks got %v", ranks)
	}
}
