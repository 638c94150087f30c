// Package stats writes run records to disk as JSON and CSV artifacts and
// summarises their fitness curves.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gaplace/internal/model"
)

const runIndexFile = "run_index.json"

// Artifact file names written for every run.
const (
	SpecFile           = "spec.json"
	FitnessHistoryFile = "fitness_history.json"
	CheckpointsFile    = "checkpoints.json"
	BestFile           = "best.json"
	DiagnosticsFile    = "diagnostics.json"
	SummaryFile        = "summary.json"
	FitnessCSVFile     = "fitness.csv"
	DiagnosticsCSVFile = "diagnostics.csv"
)

// ArtifactFiles lists everything WriteRunArtifacts produces.
var ArtifactFiles = []string{
	SpecFile,
	FitnessHistoryFile,
	CheckpointsFile,
	BestFile,
	DiagnosticsFile,
	SummaryFile,
	FitnessCSVFile,
	DiagnosticsCSVFile,
}

type fitnessHistory struct {
	Generations      []int     `json:"generations"`
	BestByCheckpoint []float64 `json:"best_by_checkpoint"`
	FinalBestFitness float64   `json:"final_best_fitness"`
}

type bestIndividual struct {
	Fitness float64 `json:"fitness"`
	Genome  []int   `json:"genome"`
}

// RunIndexEntry is one line of the export index kept next to run
// directories.
type RunIndexEntry struct {
	RunID          string  `json:"run_id"`
	ConfigName     string  `json:"config_name,omitempty"`
	PopulationSize int     `json:"population_size"`
	Generations    int     `json:"generations"`
	Seed           int64   `json:"seed"`
	BestFitness    float64 `json:"best_fitness"`
	CreatedAtUTC   string  `json:"created_at_utc"`
}

// IndexEntry builds the index line for run.
func IndexEntry(run model.RunRecord) RunIndexEntry {
	return RunIndexEntry{
		RunID:          run.ID,
		ConfigName:     run.ConfigName,
		PopulationSize: run.Spec.PopulationSize,
		Generations:    run.Spec.Generations,
		Seed:           run.Spec.Seed,
		BestFitness:    run.BestFitness,
		CreatedAtUTC:   run.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// WriteRunArtifacts writes run into baseDir/<run id> and returns that
// directory.
func WriteRunArtifacts(baseDir string, run model.RunRecord) (string, error) {
	if run.ID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, run.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	history := fitnessHistory{
		Generations:      make([]int, len(run.Checkpoints)),
		BestByCheckpoint: run.FitnessHistory,
		FinalBestFitness: run.BestFitness,
	}
	for i, cp := range run.Checkpoints {
		history.Generations[i] = cp.Generation
	}
	checkpoints := run.Checkpoints
	if checkpoints == nil {
		checkpoints = []model.CheckpointRecord{}
	}
	diagnostics := run.Diagnostics
	if diagnostics == nil {
		diagnostics = []model.GenerationDiagnostics{}
	}

	files := []struct {
		name  string
		value any
	}{
		{SpecFile, run.Spec},
		{FitnessHistoryFile, history},
		{CheckpointsFile, checkpoints},
		{BestFile, bestIndividual{Fitness: run.BestFitness, Genome: run.BestGenome}},
		{DiagnosticsFile, diagnostics},
		{SummaryFile, Summarize(run)},
	}
	for _, f := range files {
		if err := writeJSON(filepath.Join(runDir, f.name), f.value); err != nil {
			return "", err
		}
	}

	if err := writeCSVFile(filepath.Join(runDir, FitnessCSVFile), func(f *os.File) error {
		return WriteFitnessCSV(f, run)
	}); err != nil {
		return "", err
	}
	if err := writeCSVFile(filepath.Join(runDir, DiagnosticsCSVFile), func(f *os.File) error {
		return WriteDiagnosticsCSV(f, run.Diagnostics)
	}); err != nil {
		return "", err
	}

	return runDir, nil
}

// AppendRunIndex records entry in baseDir's index, replacing any entry with
// the same run id.
func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns the index newest first. A missing index is empty.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CreatedAtUTC == entries[j].CreatedAtUTC {
			return entries[i].RunID < entries[j].RunID
		}
		return entries[i].CreatedAtUTC > entries[j].CreatedAtUTC
	})
	return entries, nil
}

// ExportRun writes the artifacts of run under outDir and records it in the
// index there.
func ExportRun(outDir string, run model.RunRecord) (string, error) {
	runDir, err := WriteRunArtifacts(outDir, run)
	if err != nil {
		return "", err
	}
	if err := AppendRunIndex(outDir, IndexEntry(run)); err != nil {
		return "", err
	}
	return runDir, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func writeCSVFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
