package evo

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	perrors "gaplace/internal/errors"
	"gaplace/internal/model"
	"gaplace/internal/placement"
)

func testConfig(t *testing.T, population, generations int) *placement.Config {
	t.Helper()
	spec := model.DefaultRunSpec()
	spec.PopulationSize = population
	spec.Generations = generations
	spec.CheckpointGenerations = nil
	for g := 0; g <= generations; g += 2 {
		spec.CheckpointGenerations = append(spec.CheckpointGenerations, g)
	}
	cfg, err := placement.NewConfig(spec)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	return cfg
}

func runEngine(t *testing.T, cfg *placement.Config, opts ...Option) Result {
	t.Helper()
	e, err := NewEngine(cfg, opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	res, err := e.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return res
}

func TestRunIsDeterministicAcrossWorkerCounts(t *testing.T) {
	cfg := testConfig(t, 24, 12)
	base := runEngine(t, cfg, WithWorkers(1))

	for _, workers := range []int{2, 5, 32} {
		got := runEngine(t, cfg, WithWorkers(workers))
		if len(got.FitnessHistory) != len(base.FitnessHistory) {
			t.Fatalf("workers=%d: history length %d, want %d", workers, len(got.FitnessHistory), len(base.FitnessHistory))
		}
		for i := range base.FitnessHistory {
			if got.FitnessHistory[i] != base.FitnessHistory[i] {
				t.Fatalf("workers=%d: history[%d]=%v, want %v", workers, i, got.FitnessHistory[i], base.FitnessHistory[i])
			}
		}
		for i := range base.FinalPopulation {
			a, b := base.FinalPopulation[i].Genome(), got.FinalPopulation[i].Genome()
			for k := range a {
				if a[k] != b[k] {
					t.Fatalf("workers=%d: final individual %d differs", workers, i)
				}
			}
		}
		if got.Evaluations != base.Evaluations {
			t.Fatalf("workers=%d: evaluations %d, want %d", workers, got.Evaluations, base.Evaluations)
		}
	}
}

func TestRunDifferentSeedsDiverge(t *testing.T) {
	a := testConfig(t, 20, 6)
	spec := a.Spec()
	spec.Seed = 99
	b, err := placement.NewConfig(spec)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	ra, rb := runEngine(t, a), runEngine(t, b)
	same := true
	for i := range ra.FinalPopulation {
		ga, gb := ra.FinalPopulation[i].Genome(), rb.FinalPopulation[i].Genome()
		for k := range ga {
			if ga[k] != gb[k] {
				same = false
			}
		}
	}
	if same {
		t.Fatal("different seeds produced identical populations")
	}
}

func TestCheckpointsAlignWithHistory(t *testing.T) {
	cfg := testConfig(t, 10, 7)
	var emitted []Checkpoint
	sink := SinkFunc(func(_ context.Context, cp Checkpoint) error {
		emitted = append(emitted, cp)
		return nil
	})
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	res, err := e.Run(context.Background(), sink)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []int{0, 2, 4, 6}
	if len(emitted) != len(want) || len(res.FitnessHistory) != len(want) || len(res.Checkpoints) != len(want) {
		t.Fatalf("emitted=%d history=%d checkpoints=%d, want %d", len(emitted), len(res.FitnessHistory), len(res.Checkpoints), len(want))
	}
	for i, cp := range emitted {
		if cp.Generation != want[i] {
			t.Fatalf("checkpoint %d generation %d, want %d", i, cp.Generation, want[i])
		}
		if cp.Fitness != res.FitnessHistory[i] {
			t.Fatalf("checkpoint %d fitness %v, history %v", i, cp.Fitness, res.FitnessHistory[i])
		}
		got, err := placement.Evaluate(cfg, cp.Genome)
		if err != nil {
			t.Fatalf("evaluate checkpoint: %v", err)
		}
		if got != cp.Fitness {
			t.Fatalf("checkpoint %d genome scores %v, recorded %v", i, got, cp.Fitness)
		}
		if res.Diagnostics[cp.Generation].BestFitness != cp.Fitness {
			t.Fatalf("checkpoint %d is not the generation best", i)
		}
	}
	if len(res.Diagnostics) != cfg.Generations+1 {
		t.Fatalf("diagnostics = %d, want %d", len(res.Diagnostics), cfg.Generations+1)
	}

	emitted[0].Genome[0] = -1
	if res.Checkpoints[0].Genome[0] == -1 {
		t.Fatal("sink received shared genome storage")
	}
}

func TestRunZeroGenerations(t *testing.T) {
	spec := model.DefaultRunSpec()
	spec.PopulationSize = 6
	spec.Generations = 0
	spec.CheckpointGenerations = []int{0}
	cfg, err := placement.NewConfig(spec)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	res := runEngine(t, cfg)
	if len(res.FitnessHistory) != 1 || res.Evaluations != 6 {
		t.Fatalf("history=%v evaluations=%d", res.FitnessHistory, res.Evaluations)
	}
	if len(res.FinalPopulation) != 6 {
		t.Fatalf("final population %d", len(res.FinalPopulation))
	}
}

func TestRunReevaluatesOnlyChangedIndividuals(t *testing.T) {
	spec := model.DefaultRunSpec()
	spec.PopulationSize = 10
	spec.Generations = 5
	spec.CheckpointGenerations = nil
	spec.CXPB = 0
	spec.MUTPB = 0
	cfg, err := placement.NewConfig(spec)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	res := runEngine(t, cfg)
	if res.Evaluations != 10 {
		t.Fatalf("evaluations = %d, want only the initial 10", res.Evaluations)
	}
	for _, d := range res.Diagnostics[1:] {
		if d.Evaluations != 0 {
			t.Fatalf("generation %d evaluated %d individuals", d.Generation, d.Evaluations)
		}
	}
	if len(res.FitnessHistory) != 0 {
		t.Fatalf("no checkpoints configured, got history %v", res.FitnessHistory)
	}

	spec.CXPB = 1
	cfg, err = placement.NewConfig(spec)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	res = runEngine(t, cfg)
	if res.Evaluations != 10*6 {
		t.Fatalf("evaluations = %d, want %d with full crossover", res.Evaluations, 60)
	}
}

func TestRunBestNeverWorsens(t *testing.T) {
	cfg := testConfig(t, 30, 20)
	res := runEngine(t, cfg)
	f, ok := res.Best.Fitness()
	if !ok {
		t.Fatal("best has no fitness")
	}
	for _, d := range res.Diagnostics {
		if d.BestFitness < f {
			t.Fatalf("generation %d best %v below overall best %v", d.Generation, d.BestFitness, f)
		}
		if d.WorstFitness < d.BestFitness || d.MeanFitness < d.BestFitness {
			t.Fatalf("inconsistent diagnostics %+v", d)
		}
	}
}

type negativeCoordinate struct{}

func (negativeCoordinate) Name() string { return "negative_coordinate" }

func (negativeCoordinate) Mutate(g placement.Genome, _ *rand.Rand) bool {
	g[0] = -5
	return true
}

func TestRunRejectsBrokenGenome(t *testing.T) {
	spec := model.DefaultRunSpec()
	spec.PopulationSize = 4
	spec.Generations = 2
	spec.MUTPB = 1
	spec.CheckpointGenerations = nil
	cfg, err := placement.NewConfig(spec)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	e, err := NewEngine(cfg, WithMutators(negativeCoordinate{}))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	_, err = e.Run(context.Background(), nil)
	if !perrors.Is(err, perrors.CodeGeometryInvariant) {
		t.Fatalf("expected geometry invariant error, got %v", err)
	}
}

func TestRunStopsOnSinkError(t *testing.T) {
	cfg := testConfig(t, 6, 4)
	boom := errors.New("boom")
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	_, err = e.Run(context.Background(), SinkFunc(func(context.Context, Checkpoint) error { return boom }))
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	cfg := testConfig(t, 6, 50)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	sink := SinkFunc(func(_ context.Context, cp Checkpoint) error {
		if cp.Generation == 2 {
			cancel()
		}
		return nil
	})
	_, err = e.Run(ctx, sink)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestChannelSinkDelivers(t *testing.T) {
	cfg := testConfig(t, 6, 4)
	ch := make(chan Checkpoint, 8)
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	if _, err := e.Run(context.Background(), ChannelSink(ch)); err != nil {
		t.Fatalf("run: %v", err)
	}
	close(ch)
	var gens []int
	for cp := range ch {
		gens = append(gens, cp.Generation)
	}
	if len(gens) != 3 || gens[0] != 0 || gens[2] != 4 {
		t.Fatalf("generations = %v", gens)
	}
}

func TestEngineLogsCheckpoints(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})
	cfg := testConfig(t, 4, 2)
	runEngine(t, cfg, WithLogger(logger))
	out := buf.String()
	for _, want := range []string{"run started", "checkpoint", "run finished"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t, 4, 2)
	broken := *cfg
	broken.PopulationSize = 0
	if _, err := NewEngine(&broken); !perrors.Is(err, perrors.CodeInvalidConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestSubstreamSeedIsStable(t *testing.T) {
	if substreamSeed(42, 3, 7) != substreamSeed(42, 3, 7) {
		t.Fatal("substream seed not stable")
	}
	seen := map[int64]bool{}
	for gen := 0; gen < 10; gen++ {
		for idx := 0; idx < 10; idx++ {
			s := substreamSeed(42, gen, idx)
			if seen[s] {
				t.Fatalf("collision at gen=%d idx=%d", gen, idx)
			}
			seen[s] = true
		}
	}
}
