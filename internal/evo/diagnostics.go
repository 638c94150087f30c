package evo

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"gaplace/internal/model"
)

// summarizeGeneration computes population statistics and returns the first
// individual with the lowest cost. Every individual must be evaluated.
func summarizeGeneration(population []*Individual, generation, evaluations int) (model.GenerationDiagnostics, *Individual) {
	if len(population) == 0 {
		return model.GenerationDiagnostics{Generation: generation, Evaluations: evaluations}, nil
	}

	fitness := make([]float64, len(population))
	feasible := 0
	for i, ind := range population {
		fitness[i] = ind.fitness
		if ind.Feasible() {
			feasible++
		}
	}

	bestIdx := floats.MinIdx(fitness)
	mean, std := stat.MeanStdDev(fitness, nil)
	if len(fitness) < 2 {
		std = 0
	}

	return model.GenerationDiagnostics{
		Generation:    generation,
		BestFitness:   fitness[bestIdx],
		MeanFitness:   mean,
		StdDevFitness: std,
		WorstFitness:  floats.Max(fitness),
		FeasibleCount: feasible,
		Evaluations:   evaluations,
	}, population[bestIdx]
}
