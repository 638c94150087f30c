package gaplace

import (
	"context"
	"errors"
	"io"
	"path/filepath"

	perrors "gaplace/internal/errors"
	"gaplace/internal/model"
	"gaplace/internal/stats"
)

type RunsRequest struct {
	// Limit caps the result; <= 0 means 20.
	Limit      int
	ConfigName string
}

// Runs lists stored runs newest first.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]model.RunRecord, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	records, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, storeError(err, "list runs")
	}

	out := make([]model.RunRecord, 0, min(req.Limit, len(records)))
	for i := len(records) - 1; i >= 0 && len(out) < req.Limit; i-- {
		if req.ConfigName != "" && records[i].ConfigName != req.ConfigName {
			continue
		}
		out = append(out, records[i])
	}
	return out, nil
}

func (c *Client) GetRun(ctx context.Context, id string) (model.RunRecord, error) {
	record, ok, err := c.store.GetRun(ctx, id)
	if err != nil {
		return model.RunRecord{}, storeError(err, "read run %s", id)
	}
	if !ok {
		return model.RunRecord{}, perrors.NotFound("run", id)
	}
	return record, nil
}

// LatestRun returns the most recently created run.
func (c *Client) LatestRun(ctx context.Context) (model.RunRecord, error) {
	runs, err := c.Runs(ctx, RunsRequest{Limit: 1})
	if err != nil {
		return model.RunRecord{}, err
	}
	if len(runs) == 0 {
		return model.RunRecord{}, perrors.New(perrors.CodeNotFound, "no runs stored")
	}
	return runs[0], nil
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

// Export writes a run's JSON and CSV artifacts under OutDir/<run id>.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	var (
		run model.RunRecord
		err error
	)
	if req.Latest {
		run, err = c.LatestRun(ctx)
	} else {
		run, err = c.GetRun(ctx, req.RunID)
	}
	if err != nil {
		return ExportSummary{}, err
	}

	dir, err := stats.ExportRun(req.OutDir, run)
	if err != nil {
		return ExportSummary{}, perrors.Wrap(perrors.CodeInternal, err, "export run %s", run.ID)
	}
	return ExportSummary{RunID: run.ID, Directory: filepath.Clean(dir)}, nil
}

// WriteFitnessCSV writes the checkpoint fitness curve of a stored run.
func (c *Client) WriteFitnessCSV(ctx context.Context, runID string, w io.Writer) error {
	run, err := c.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	return stats.WriteFitnessCSV(w, run)
}
