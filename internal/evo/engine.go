// Package evo runs the generational search over placement genomes.
package evo

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	perrors "gaplace/internal/errors"
	"gaplace/internal/model"
	"gaplace/internal/placement"
)

// Result is the outcome of one Run.
type Result struct {
	FinalPopulation []*Individual
	// FitnessHistory holds the best fitness at each checkpoint generation.
	FitnessHistory []float64
	Checkpoints    []Checkpoint
	// Best is the lowest-cost individual seen in any generation.
	Best        *Individual
	Diagnostics []model.GenerationDiagnostics
	Evaluations int
}

type Option func(*Engine)

// WithWorkers overrides the worker count of the config. n < 1 means 1.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.workers = n
	}
}

func WithSelector(s Selector) Option {
	return func(e *Engine) {
		if s != nil {
			e.tools.Selector = s
		}
	}
}

// WithMutators replaces the default rotation and position mutators.
func WithMutators(ms ...Mutator) Option {
	return func(e *Engine) {
		e.optErr = e.tools.Replace(ms...)
	}
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine evolves a population for one validated config.
type Engine struct {
	cfg     *placement.Config
	tools   *Toolbox
	workers int
	logger  *log.Logger
	optErr  error
}

func NewEngine(cfg *placement.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:     cfg,
		tools:   NewToolbox(cfg),
		workers: cfg.Workers,
		logger:  log.New(io.Discard),
	}
	if e.workers < 1 {
		e.workers = 1
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.optErr != nil {
		return nil, e.optErr
	}
	return e, nil
}

// Toolbox exposes the operators this engine runs with.
func (e *Engine) Toolbox() *Toolbox {
	return e.tools
}

// Run executes the search. Generation 0 is the evaluated initial population;
// generations 1..Generations each select, recombine, mutate and re-evaluate,
// so a run breeds Generations times and scores Generations+1 populations.
// This differs from a loop that breeds before its first checkpoint: here
// checkpoint 0 always reports the unbred initial population. sink may be nil.
func (e *Engine) Run(ctx context.Context, sink CheckpointSink) (Result, error) {
	cfg := e.cfg
	rng := rand.New(rand.NewSource(cfg.Seed))

	population := make([]*Individual, cfg.PopulationSize)
	for i := range population {
		population[i] = NewIndividual(placement.GenerateIndividual(cfg, rng))
	}

	e.logger.Info("run started",
		"components", len(cfg.Catalog),
		"connections", cfg.Graph.Len(),
		"population", cfg.PopulationSize,
		"generations", cfg.Generations,
		"workers", e.workers,
	)

	res := Result{
		FitnessHistory: make([]float64, 0, len(cfg.CheckpointGenerations)),
		Checkpoints:    make([]Checkpoint, 0, len(cfg.CheckpointGenerations)),
		Diagnostics:    make([]model.GenerationDiagnostics, 0, cfg.Generations+1),
	}

	// Every receiver gets its own genome copy.
	emit := MultiSink{LogSink(e.logger), sink}
	for gen := 0; gen <= cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		if gen > 0 {
			offspring, err := e.breed(ctx, rng, population, gen)
			if err != nil {
				return Result{}, err
			}
			population = offspring
		}

		evals, err := e.evaluatePopulation(ctx, population)
		if err != nil {
			return Result{}, err
		}
		res.Evaluations += evals

		diag, best := summarizeGeneration(population, gen, evals)
		res.Diagnostics = append(res.Diagnostics, diag)
		if res.Best == nil || best.fitness < res.Best.fitness {
			res.Best = best.Clone()
		}
		e.logger.Debug("generation",
			"generation", gen,
			"best", diag.BestFitness,
			"mean", diag.MeanFitness,
			"feasible", diag.FeasibleCount,
		)

		if !cfg.IsCheckpoint(gen) {
			continue
		}
		cp := Checkpoint{Generation: gen, Genome: best.genome.Clone(), Fitness: best.fitness}
		res.FitnessHistory = append(res.FitnessHistory, cp.Fitness)
		res.Checkpoints = append(res.Checkpoints, cp)
		if err := emit.Emit(ctx, cp); err != nil {
			return Result{}, fmt.Errorf("emit checkpoint %d: %w", gen, err)
		}
	}

	res.FinalPopulation = population
	e.logger.Info("run finished", "best", res.Best.fitness, "evaluations", res.Evaluations)
	return res, nil
}

// breed produces the next generation's unevaluated offspring. Selection and
// crossover consume the run RNG sequentially; mutation runs in parallel on
// per-individual streams.
func (e *Engine) breed(ctx context.Context, rng *rand.Rand, population []*Individual, gen int) ([]*Individual, error) {
	cfg := e.cfg
	offspring, err := e.tools.Selector.Select(rng, population, len(population))
	if err != nil {
		return nil, fmt.Errorf("select generation %d: %w", gen, err)
	}
	if len(offspring) != len(population) {
		return nil, fmt.Errorf("selector %s returned %d individuals, want %d", e.tools.Selector.Name(), len(offspring), len(population))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i := 1; i < len(offspring); i += 2 {
		if rng.Float64() >= cfg.CXPB {
			continue
		}
		a, b := e.tools.Crossover(offspring[i-1].genome, offspring[i].genome, rng)
		offspring[i-1].SetGenome(a)
		offspring[i].SetGenome(b)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	err = e.parallel(ctx, len(offspring), func(i int) (int, error) {
		ind := offspring[i]
		sub := rand.New(rand.NewSource(substreamSeed(cfg.Seed, gen, i)))
		if sub.Float64() < cfg.MUTPB && e.tools.mutate(ind.genome, sub) {
			ind.Invalidate()
		}
		return 0, nil
	})
	if err != nil {
		return nil, err
	}

	want := cfg.GenomeLen()
	for i, ind := range offspring {
		if len(ind.genome) != want {
			return nil, perrors.GeometryInvariant("generation %d individual %d: genome length %d, want %d", gen, i, len(ind.genome), want)
		}
	}
	return offspring, nil
}

// evaluatePopulation scores every individual without a current fitness and
// returns how many were scored.
func (e *Engine) evaluatePopulation(ctx context.Context, population []*Individual) (int, error) {
	return e.parallelSum(ctx, len(population), func(i int) (int, error) {
		ind := population[i]
		if ind.Valid() {
			return 0, nil
		}
		b, err := placement.Score(e.cfg, ind.genome)
		if err != nil {
			return 0, fmt.Errorf("evaluate individual %d: %w", i, err)
		}
		ind.setScore(b)
		return 1, nil
	})
}

func (e *Engine) parallel(ctx context.Context, n int, fn func(i int) (int, error)) error {
	_, err := e.parallelSum(ctx, n, fn)
	return err
}

// parallelSum runs fn for 0..n-1 on the worker pool and sums the returned
// counts. fn must only touch index i. The first error by index wins.
func (e *Engine) parallelSum(ctx context.Context, n int, fn func(i int) (int, error)) (int, error) {
	type result struct {
		idx   int
		count int
		err   error
	}
	if n == 0 {
		return 0, nil
	}

	jobs := make(chan int)
	results := make(chan result, n)

	workerCount := e.workers
	if workerCount > n {
		workerCount = n
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: idx, err: err}
					continue
				}
				count, err := fn(idx)
				results <- result{idx: idx, count: count, err: err}
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(results)

	total := 0
	firstErrIdx := n
	var firstErr error
	for res := range results {
		if res.err != nil {
			if res.idx < firstErrIdx {
				firstErrIdx, firstErr = res.idx, res.err
			}
			continue
		}
		total += res.count
	}
	if firstErr != nil {
		return 0, firstErr
	}
	return total, nil
}

// rankByFitness returns the population sorted by ascending cost, keeping the
// original order among ties.
func rankByFitness(population []*Individual) ([]*Individual, error) {
	ranked := make([]*Individual, len(population))
	for i, ind := range population {
		if !ind.Valid() {
			return nil, fmt.Errorf("individual %d has no current fitness", i)
		}
		ranked[i] = ind
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].fitness < ranked[j].fitness
	})
	return ranked, nil
}

// substreamSeed derives the mutation stream of individual idx in generation
// gen. The result depends only on its inputs, never on scheduling.
func substreamSeed(seed int64, gen, idx int) int64 {
	x := splitmix64(uint64(seed))
	x = splitmix64(x ^ uint64(gen))
	x = splitmix64(x ^ uint64(idx))
	return int64(x)
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
