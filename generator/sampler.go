package generator

import (
	"fmt"
	"math/rand"
	"sort"
)

// A WeightedChoice picks from a fixed set of choices with relative weights. It
// keeps a cumulative weight table so a pick is one uniform draw plus a binary
// search.
type WeightedChoice struct {
	choices    []string
	cumulative []int
	total      int
}

// NewWeightedChoice builds the cumulative table for the given choices and
// weights, which must line up one to one.
func NewWeightedChoice(choices []string, weights []int) (*WeightedChoice, error) {
	if len(choices) == 0 {
		return nil, fmt.Errorf("no choices given")
	}

	if len(choices) != len(weights) {
		return nil, fmt.Errorf("got %d choices but %d weights", len(choices), len(weights))
	}

	cumulative := make([]int, len(weights))
	total := 0
	for i, weight := range weights {
		if weight < 0 {
			return nil, fmt.Errorf("negative weight %d for %s", weight, choices[i])
		}
		total += weight
		cumulative[i] = total
	}

	if total == 0 {
		return nil, fmt.Errorf("weights sum to zero")
	}

	return &WeightedChoice{
		choices:    choices,
		cumulative: cumulative,
		total:      total,
	}, nil
}

// Pick draws one choice using the supplied source
func (w *WeightedChoice) Pick(rnd *rand.Rand) string {
	draw := rnd.Intn(w.total)

	// First bucket whose cumulative weight is past the draw. Zero weight
	// buckets share their predecessor's bound and are never selected.
	idx := sort.Search(len(w.cumulative), func(i int) bool {
		return w.cumulative[i] > draw
	})

	return w.choices[idx]
}

// Probability returns the share of picks expected for choice, or 0 when it is
// not one of the choices.
func (w *WeightedChoice) Probability(choice string) float64 {
	prev := 0
	for i, c := range w.choices {
		if c == choice {
			return float64(w.cumulative[i]-prev) / float64(w.total)
		}
		prev = w.cumulative[i]
	}

	return 0
}
