package storage

import (
	"context"
	"testing"
	"time"

	perrors "gaplace/internal/errors"
)

// exerciseStore checks the behaviour every backend shares.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, ok, err := store.GetConfig(ctx, "missing"); err != nil || ok {
		t.Fatalf("get missing config: ok=%v err=%v", ok, err)
	}

	for _, name := range []string{"beta", "alpha"} {
		if err := store.SaveConfig(ctx, sampleConfig(name)); err != nil {
			t.Fatalf("save config %s: %v", name, err)
		}
	}
	names, err := store.ListConfigs(ctx)
	if err != nil {
		t.Fatalf("list configs: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Fatalf("unexpected config names: %v", names)
	}

	updated := sampleConfig("alpha")
	updated.Spec.BoardWidth = 33
	if err := store.SaveConfig(ctx, updated); err != nil {
		t.Fatalf("overwrite config: %v", err)
	}
	got, ok, err := store.GetConfig(ctx, "alpha")
	if err != nil || !ok {
		t.Fatalf("get config: ok=%v err=%v", ok, err)
	}
	if got.Spec.BoardWidth != 33 || len(got.Spec.Components) != 4 {
		t.Fatalf("unexpected config: %+v", got.Spec)
	}
	got.Spec.Components[0].Width = 99
	again, _, _ := store.GetConfig(ctx, "alpha")
	if again.Spec.Components[0].Width == 99 {
		t.Fatal("store returned shared component storage")
	}

	deleted, err := store.DeleteConfig(ctx, "beta")
	if err != nil || !deleted {
		t.Fatalf("delete config: deleted=%v err=%v", deleted, err)
	}
	deleted, err = store.DeleteConfig(ctx, "beta")
	if err != nil || deleted {
		t.Fatalf("second delete: deleted=%v err=%v", deleted, err)
	}

	if err := store.SaveConfig(ctx, sampleConfig("../escape")); !perrors.Is(err, perrors.CodeInvalidConfig) {
		t.Fatalf("expected invalid name error, got %v", err)
	}

	base := time.Unix(1_000, 0).UTC()
	for _, run := range []struct {
		id      string
		created time.Time
	}{
		{"run-b", base},
		{"run-c", base.Add(time.Minute)},
		{"run-a", base},
	} {
		if err := store.SaveRun(ctx, sampleRun(run.id, run.created)); err != nil {
			t.Fatalf("save run %s: %v", run.id, err)
		}
	}
	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 3 || runs[0].ID != "run-a" || runs[1].ID != "run-b" || runs[2].ID != "run-c" {
		ids := make([]string, len(runs))
		for i, r := range runs {
			ids[i] = r.ID
		}
		t.Fatalf("unexpected run order: %v", ids)
	}

	run, ok, err := store.GetRun(ctx, "run-c")
	if err != nil || !ok {
		t.Fatalf("get run: ok=%v err=%v", ok, err)
	}
	if len(run.Checkpoints) != 2 || run.Checkpoints[1].Generation != 10 || run.BestFitness != 8 {
		t.Fatalf("unexpected run: %+v", run)
	}
	if _, ok, err := store.GetRun(ctx, "nope"); err != nil || ok {
		t.Fatalf("get missing run: ok=%v err=%v", ok, err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	exerciseStore(t, NewFileStore(t.TempDir()))
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first := NewFileStore(dir)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := first.SaveConfig(ctx, sampleConfig("kept")); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := NewFileStore(dir)
	if err := second.Init(ctx); err != nil {
		t.Fatalf("init second: %v", err)
	}
	record, ok, err := second.GetConfig(ctx, "kept")
	if err != nil || !ok {
		t.Fatalf("get from second instance: ok=%v err=%v", ok, err)
	}
	if record.Spec.PopulationSize != 50 {
		t.Fatalf("unexpected spec: %+v", record.Spec)
	}
}

func TestFileStoreRequiresDirectory(t *testing.T) {
	if err := NewFileStore("").Init(context.Background()); err == nil {
		t.Fatal("expected error for empty directory")
	}
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	if err := NewMemoryStore().SaveConfig(context.Background(), sampleConfig("x")); err == nil {
		t.Fatal("expected error before init")
	}
}
