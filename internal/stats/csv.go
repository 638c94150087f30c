package stats

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"gaplace/internal/model"
)

// FitnessRow is one checkpoint of the fitness curve.
type FitnessRow struct {
	Generation  int     `csv:"generation"`
	BestFitness float64 `csv:"best_fitness"`
}

// FitnessRows pairs each checkpoint generation with the best fitness
// recorded there.
func FitnessRows(run model.RunRecord) []FitnessRow {
	rows := make([]FitnessRow, 0, len(run.Checkpoints))
	for i, cp := range run.Checkpoints {
		fitness := cp.Fitness
		if i < len(run.FitnessHistory) {
			fitness = run.FitnessHistory[i]
		}
		rows = append(rows, FitnessRow{Generation: cp.Generation, BestFitness: fitness})
	}
	return rows
}

// WriteFitnessCSV writes the fitness curve of run with a header row.
func WriteFitnessCSV(w io.Writer, run model.RunRecord) error {
	rows := FitnessRows(run)
	if len(rows) == 0 {
		_, err := io.WriteString(w, "generation,best_fitness\n")
		return err
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing fitness csv: %w", err)
	}
	return nil
}

// ReadFitnessCSV parses output of WriteFitnessCSV.
func ReadFitnessCSV(r io.Reader) ([]FitnessRow, error) {
	var rows []FitnessRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("reading fitness csv: %w", err)
	}
	return rows, nil
}

// WriteDiagnosticsCSV writes one row per evaluated generation.
func WriteDiagnosticsCSV(w io.Writer, diagnostics []model.GenerationDiagnostics) error {
	if len(diagnostics) == 0 {
		_, err := io.WriteString(w, "generation,best_fitness,mean_fitness,stddev_fitness,worst_fitness,feasible_count,evaluations\n")
		return err
	}
	if err := gocsv.Marshal(diagnostics, w); err != nil {
		return fmt.Errorf("writing diagnostics csv: %w", err)
	}
	return nil
}
