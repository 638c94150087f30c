package evo

import "gaplace/internal/placement"

// Individual is a genome plus its cached fitness. The cache is valid only
// until the genome is changed through SetGenome or Invalidate.
type Individual struct {
	genome   placement.Genome
	fitness  float64
	feasible bool
	valid    bool
}

func NewIndividual(g placement.Genome) *Individual {
	return &Individual{genome: g}
}

// Genome returns the live genome. Callers that write to it must Invalidate.
func (ind *Individual) Genome() placement.Genome {
	return ind.genome
}

func (ind *Individual) SetGenome(g placement.Genome) {
	ind.genome = g
	ind.valid = false
}

func (ind *Individual) Invalidate() {
	ind.valid = false
}

func (ind *Individual) Valid() bool {
	return ind.valid
}

// Fitness returns the cached cost and whether it is current.
func (ind *Individual) Fitness() (float64, bool) {
	return ind.fitness, ind.valid
}

// Feasible reports whether the last evaluation found no overlap or bounds violation.
func (ind *Individual) Feasible() bool {
	return ind.valid && ind.feasible
}

func (ind *Individual) setScore(b placement.Breakdown) {
	ind.fitness = b.Cost
	ind.feasible = b.Feasible()
	ind.valid = true
}

// Clone deep-copies the genome and keeps the cache state.
func (ind *Individual) Clone() *Individual {
	out := *ind
	out.genome = ind.genome.Clone()
	return &out
}
