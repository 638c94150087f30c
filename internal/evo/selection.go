package evo

import (
	"fmt"
	"math/rand"

	"gaplace/internal/placement"
)

// Selector builds an offspring pool from an evaluated population.
type Selector interface {
	Name() string
	Select(rng *rand.Rand, population []*Individual, k int) ([]*Individual, error)
}

// TournamentSelector runs k independent tournaments, drawing Size contestants
// with replacement. The lowest cost wins and ties keep the earlier draw.
// Winners are returned as clones.
type TournamentSelector struct {
	Size int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) Select(rng *rand.Rand, population []*Individual, k int) ([]*Individual, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if len(population) == 0 {
		return nil, fmt.Errorf("population is empty")
	}
	if k < 0 {
		return nil, fmt.Errorf("invalid selection count: %d", k)
	}
	for i, ind := range population {
		if !ind.Valid() {
			return nil, fmt.Errorf("individual %d has no current fitness", i)
		}
	}

	size := s.Size
	if size <= 0 {
		size = 3
	}

	out := make([]*Individual, 0, k)
	for n := 0; n < k; n++ {
		best := population[rng.Intn(len(population))]
		for i := 1; i < size; i++ {
			candidate := population[rng.Intn(len(population))]
			if candidate.fitness < best.fitness {
				best = candidate
			}
		}
		out = append(out, best.Clone())
	}
	return out, nil
}

// EliteSelector picks uniformly among the Count lowest-cost individuals.
type EliteSelector struct {
	Count int
}

func (EliteSelector) Name() string {
	return "elite"
}

func (s EliteSelector) Select(rng *rand.Rand, population []*Individual, k int) ([]*Individual, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if s.Count <= 0 || s.Count > len(population) {
		return nil, fmt.Errorf("invalid elite count: %d", s.Count)
	}
	ranked, err := rankByFitness(population)
	if err != nil {
		return nil, err
	}
	out := make([]*Individual, 0, k)
	for n := 0; n < k; n++ {
		out = append(out, ranked[rng.Intn(s.Count)].Clone())
	}
	return out, nil
}

// SelectorFor builds the selector named by a validated selection config.
func SelectorFor(sel placement.Selection) Selector {
	if sel.Kind == placement.SelectionElite {
		return EliteSelector{Count: sel.EliteCount}
	}
	size := sel.TournamentSize
	if size <= 0 {
		size = placement.DefaultTournamentSize
	}
	return TournamentSelector{Size: size}
}
