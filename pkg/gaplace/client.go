// Package gaplace is the public entry point for running placement searches
// and managing their configurations and results.
package gaplace

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	perrors "gaplace/internal/errors"
	"gaplace/internal/evo"
	"gaplace/internal/model"
	"gaplace/internal/placement"
	"gaplace/internal/storage"
)

const (
	defaultStorePath  = ".gaplace"
	defaultExportsDir = "exports"
)

type Options struct {
	// StoreKind is "memory", "file" or "sqlite". Empty means file.
	StoreKind string
	// StorePath is the record directory for "file" and the database file
	// for "sqlite".
	StorePath  string
	ExportsDir string
	Logger     *log.Logger
}

type Client struct {
	store      storage.Store
	exportsDir string
	logger     *log.Logger
	now        func() time.Time
}

// New opens and initialises the configured store.
func New(ctx context.Context, opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind
	}
	storePath := opts.StorePath
	if storePath == "" {
		storePath = defaultStorePath
		if storeKind == "sqlite" {
			storePath = "gaplace.db"
		}
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	store, err := storage.NewStore(storeKind, storePath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		_ = storage.CloseIfSupported(store)
		return nil, err
	}

	return &Client{
		store:      store,
		exportsDir: exportsDir,
		logger:     logger,
		now:        time.Now,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// RunRequest selects the configuration for a run. Spec is used when set,
// else the stored config ConfigName is loaded, else the default spec. A
// non-empty ConfigName is recorded with the run either way.
type RunRequest struct {
	ConfigName string
	Spec       *model.RunSpec
	// Workers overrides the config's worker count when > 0.
	Workers int
	// Seed overrides the config's seed when non-nil.
	Seed *int64
	// Sink receives checkpoints while the run progresses.
	Sink   evo.CheckpointSink
	Logger *log.Logger
}

// RunSummary is a finished and persisted run.
type RunSummary struct {
	Record          model.RunRecord
	FinalPopulation []*evo.Individual
}

func (s RunSummary) RunID() string { return s.Record.ID }

// Run executes one search and stores its record. A failed or cancelled run
// stores nothing.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	spec, err := c.resolveSpec(ctx, req.ConfigName, req.Spec)
	if err != nil {
		return RunSummary{}, err
	}
	if req.Workers > 0 {
		spec.Workers = req.Workers
	}
	if req.Seed != nil {
		spec.Seed = *req.Seed
	}

	cfg, err := placement.NewConfig(spec)
	if err != nil {
		return RunSummary{}, err
	}
	logger := req.Logger
	if logger == nil {
		logger = c.logger
	}

	runID := uuid.NewString()
	engine, err := evo.NewEngine(cfg, evo.WithLogger(logger.With("run", runID[:8])))
	if err != nil {
		return RunSummary{}, err
	}
	result, err := engine.Run(ctx, req.Sink)
	if err != nil {
		return RunSummary{}, err
	}

	record := newRunRecord(runID, req.ConfigName, cfg, result, c.now().UTC())
	if err := c.store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, storeError(err, "save run %s", runID)
	}
	return RunSummary{Record: record, FinalPopulation: result.FinalPopulation}, nil
}

func newRunRecord(id, configName string, cfg *placement.Config, result evo.Result, createdAt time.Time) model.RunRecord {
	checkpoints := make([]model.CheckpointRecord, len(result.Checkpoints))
	for i, cp := range result.Checkpoints {
		checkpoints[i] = model.CheckpointRecord{
			Generation: cp.Generation,
			Fitness:    cp.Fitness,
			Genome:     cp.Genome.Clone(),
		}
	}
	record := model.RunRecord{
		VersionedRecord: storage.CurrentVersion(),
		ID:              id,
		ConfigName:      configName,
		Spec:            cfg.Spec(),
		CreatedAt:       createdAt,
		FitnessHistory:  append([]float64(nil), result.FitnessHistory...),
		Checkpoints:     checkpoints,
		Diagnostics:     result.Diagnostics,
		Evaluations:     result.Evaluations,
	}
	if result.Best != nil {
		record.BestGenome = result.Best.Genome().Clone()
		record.BestFitness, _ = result.Best.Fitness()
	}
	return record
}

// EvaluateRequest scores one hand-made layout against a config, chosen the
// same way as in RunRequest.
type EvaluateRequest struct {
	ConfigName string
	Spec       *model.RunSpec
	Genome     []int
}

// Evaluation is the scored layout together with its decoded placements.
type Evaluation struct {
	placement.Breakdown
	Placements []placement.Placement
	Config     *placement.Config
}

func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) (Evaluation, error) {
	spec, err := c.resolveSpec(ctx, req.ConfigName, req.Spec)
	if err != nil {
		return Evaluation{}, err
	}
	cfg, err := placement.NewConfig(spec)
	if err != nil {
		return Evaluation{}, err
	}
	placements, err := placement.Decode(cfg, placement.Genome(req.Genome))
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{
		Breakdown:  placement.ScorePlacements(cfg, placements),
		Placements: placements,
		Config:     cfg,
	}, nil
}

// storeError tags uncoded store failures as internal errors.
func storeError(err error, format string, args ...any) error {
	if perrors.GetCode(err) != "" {
		return err
	}
	return perrors.Wrap(perrors.CodeInternal, err, format, args...)
}

func (c *Client) resolveSpec(ctx context.Context, configName string, spec *model.RunSpec) (model.RunSpec, error) {
	if spec != nil {
		return spec.Clone(), nil
	}
	if configName != "" {
		record, err := c.GetConfig(ctx, configName)
		if err != nil {
			return model.RunSpec{}, err
		}
		return record.Spec, nil
	}
	return model.DefaultRunSpec(), nil
}
