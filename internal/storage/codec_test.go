package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gaplace/internal/model"
)

func TestDecodeConfigFixture(t *testing.T) {
	record, err := DecodeConfig(readFixture(t, "config_v1.json"))
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	if record.Name != "board-a" {
		t.Fatalf("unexpected name: %s", record.Name)
	}
	if len(record.Spec.Components) != 2 || record.Spec.Components[1].Name != "U2" {
		t.Fatalf("unexpected components: %+v", record.Spec.Components)
	}
	if record.Spec.PositionINDPB != nil {
		t.Fatal("expected absent position_indpb to decode as nil")
	}
	if !record.UpdatedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp: %v", record.UpdatedAt)
	}
}

func TestDecodeRunFixture(t *testing.T) {
	record, err := DecodeRun(readFixture(t, "run_v1.json"))
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	if record.ID != "run-fixture-1" || record.BestFitness != 2.5 {
		t.Fatalf("unexpected run: %+v", record)
	}
	if len(record.Checkpoints) != len(record.FitnessHistory) {
		t.Fatalf("checkpoints %d, history %d", len(record.Checkpoints), len(record.FitnessHistory))
	}
	if got := record.Checkpoints[1].Genome; len(got) != 6 || got[3] != 2 {
		t.Fatalf("unexpected checkpoint genome: %v", got)
	}
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	_, err := DecodeConfig(readFixture(t, "future_v2.json"))
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
	if _, err := DecodeRun([]byte(`{"id":"x"}`)); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch for unstamped run, got %v", err)
	}
}

func TestEncodeRunRoundTrip(t *testing.T) {
	in := sampleRun("r1", time.Unix(100, 0).UTC())
	data, err := EncodeRun(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeRun(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ID != in.ID || len(out.Diagnostics) != 1 || out.Diagnostics[0].FeasibleCount != 3 {
		t.Fatalf("unexpected round trip: %+v", out)
	}
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "fixtures", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

func sampleConfig(name string) model.ConfigRecord {
	return model.ConfigRecord{
		VersionedRecord: CurrentVersion(),
		Name:            name,
		Spec:            model.DefaultRunSpec(),
		UpdatedAt:       time.Unix(50, 0).UTC(),
	}
}

func sampleRun(id string, created time.Time) model.RunRecord {
	return model.RunRecord{
		VersionedRecord: CurrentVersion(),
		ID:              id,
		ConfigName:      "default",
		Spec:            model.DefaultRunSpec(),
		CreatedAt:       created,
		FitnessHistory:  []float64{12, 8},
		Checkpoints: []model.CheckpointRecord{
			{Generation: 0, Fitness: 12, Genome: []int{0, 0, 0, 1, 1, 0, 9, 9, 1, 3, 3, 0}},
			{Generation: 10, Fitness: 8, Genome: []int{0, 0, 0, 1, 2, 0, 9, 9, 1, 3, 3, 0}},
		},
		BestGenome:  []int{0, 0, 0, 1, 2, 0, 9, 9, 1, 3, 3, 0},
		BestFitness: 8,
		Diagnostics: []model.GenerationDiagnostics{{Generation: 0, BestFitness: 12, FeasibleCount: 3}},
		Evaluations: 40,
	}
}
