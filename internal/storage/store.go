package storage

import (
	"context"

	"gaplace/internal/model"
)

// Store persists named run configurations and finished run records.
// Getters report a missing record with ok=false and a nil error.
type Store interface {
	Init(ctx context.Context) error
	SaveConfig(ctx context.Context, record model.ConfigRecord) error
	GetConfig(ctx context.Context, name string) (model.ConfigRecord, bool, error)
	// ListConfigs returns config names in lexical order.
	ListConfigs(ctx context.Context) ([]string, error)
	DeleteConfig(ctx context.Context, name string) (bool, error)
	SaveRun(ctx context.Context, record model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	// ListRuns returns runs ordered by creation time, then id.
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
}
