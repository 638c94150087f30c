package stats

import (
	"gonum.org/v1/gonum/stat"

	"gaplace/internal/model"
)

// Summary condenses a run's fitness curve.
type Summary struct {
	RunID           string  `json:"run_id"`
	Checkpoints     int     `json:"checkpoints"`
	InitialBest     float64 `json:"initial_best"`
	FinalBest       float64 `json:"final_best"`
	Improvement     float64 `json:"improvement"`
	MeanBest        float64 `json:"mean_best"`
	StdDevBest      float64 `json:"stddev_best"`
	Evaluations     int     `json:"evaluations"`
	FinalFeasible   int     `json:"final_feasible"`
	BestEverFitness float64 `json:"best_ever_fitness"`
	PopulationSize  int     `json:"population_size"`
}

// Summarize reports how far a run moved between its first and last
// checkpoints. Improvement is positive when cost went down.
func Summarize(run model.RunRecord) Summary {
	s := Summary{
		RunID:           run.ID,
		Checkpoints:     len(run.FitnessHistory),
		Evaluations:     run.Evaluations,
		BestEverFitness: run.BestFitness,
		PopulationSize:  run.Spec.PopulationSize,
	}
	if n := len(run.FitnessHistory); n > 0 {
		s.InitialBest = run.FitnessHistory[0]
		s.FinalBest = run.FitnessHistory[n-1]
		s.Improvement = s.InitialBest - s.FinalBest
		if n > 1 {
			s.MeanBest, s.StdDevBest = stat.MeanStdDev(run.FitnessHistory, nil)
		} else {
			s.MeanBest = run.FitnessHistory[0]
		}
	}
	if n := len(run.Diagnostics); n > 0 {
		s.FinalFeasible = run.Diagnostics[n-1].FeasibleCount
	}
	return s
}
