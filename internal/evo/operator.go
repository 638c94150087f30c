package evo

import (
	"math/rand"

	"gaplace/internal/placement"
)

// Mutator changes a genome in place and reports whether any gene changed.
type Mutator interface {
	Name() string
	Mutate(g placement.Genome, rng *rand.Rand) bool
}

// Crossover is a two-point crossover. Cut points i <= j are drawn uniformly on
// [0, len) and the genes in [i, j] are exchanged. Parents are not modified.
func Crossover(a, b placement.Genome, rng *rand.Rand) (placement.Genome, placement.Genome) {
	c1, c2 := a.Clone(), b.Clone()
	n := len(c1)
	if len(c2) < n {
		n = len(c2)
	}
	if n == 0 {
		return c1, c2
	}
	i, j := rng.Intn(n), rng.Intn(n)
	if i > j {
		i, j = j, i
	}
	for k := i; k <= j; k++ {
		c1[k], c2[k] = c2[k], c1[k]
	}
	return c1, c2
}

// MutatePosition resamples each x gene on [0, W-1] and each y gene on
// [0, H-1] with probability p. Rotation genes are left alone.
func MutatePosition(board placement.Board, g placement.Genome, p float64, rng *rand.Rand) bool {
	changed := false
	for i := range g {
		if !placement.IsPositionGene(i) {
			continue
		}
		if rng.Float64() >= p {
			continue
		}
		limit := board.Width
		if i%placement.GenesPerComponent == placement.GeneY {
			limit = board.Height
		}
		v := rng.Intn(limit)
		if v != g[i] {
			g[i] = v
			changed = true
		}
	}
	return changed
}

// MutateRotation flips each rotation gene with probability p.
func MutateRotation(g placement.Genome, p float64, rng *rand.Rand) bool {
	changed := false
	for i := placement.GeneRotation; i < len(g); i += placement.GenesPerComponent {
		if rng.Float64() < p {
			g[i] = 1 - g[i]
			changed = true
		}
	}
	return changed
}

// RotationFlip is the Mutator form of MutateRotation.
type RotationFlip struct {
	P float64
}

func (RotationFlip) Name() string { return "rotation_flip" }

func (m RotationFlip) Mutate(g placement.Genome, rng *rand.Rand) bool {
	return MutateRotation(g, m.P, rng)
}

// PositionResample is the Mutator form of MutatePosition.
type PositionResample struct {
	Board placement.Board
	P     float64
}

func (PositionResample) Name() string { return "position_resample" }

func (m PositionResample) Mutate(g placement.Genome, rng *rand.Rand) bool {
	return MutatePosition(m.Board, g, m.P, rng)
}
