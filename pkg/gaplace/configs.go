package gaplace

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"gaplace/internal/config"
	perrors "gaplace/internal/errors"
	"gaplace/internal/model"
	"gaplace/internal/placement"
	"gaplace/internal/storage"
)

// NewConfig stores spec under name, replacing any config of that name. An
// empty name gets a random one and a nil spec stores the defaults.
func (c *Client) NewConfig(ctx context.Context, name string, spec *model.RunSpec) (model.ConfigRecord, error) {
	if name == "" {
		name = uuid.NewString()
	}
	s := model.DefaultRunSpec()
	if spec != nil {
		s = spec.Clone()
	}
	return c.saveConfig(ctx, name, s)
}

// ImportConfig reads a JSON, YAML or TOML file and stores it under the file
// name without extension. Taken names get -1, -2, ... appended.
func (c *Client) ImportConfig(ctx context.Context, path string) (model.ConfigRecord, error) {
	spec, err := config.Load(path)
	if err != nil {
		return model.ConfigRecord{}, err
	}
	if _, err := placement.NewConfig(spec); err != nil {
		return model.ConfigRecord{}, err
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := stem
	for k := 1; ; k++ {
		_, ok, err := c.store.GetConfig(ctx, name)
		if err != nil {
			return model.ConfigRecord{}, storeError(err, "read config %s", name)
		}
		if !ok {
			break
		}
		name = fmt.Sprintf("%s-%d", stem, k)
	}
	return c.saveConfig(ctx, name, spec)
}

func (c *Client) GetConfig(ctx context.Context, name string) (model.ConfigRecord, error) {
	record, ok, err := c.store.GetConfig(ctx, name)
	if err != nil {
		return model.ConfigRecord{}, storeError(err, "read config %s", name)
	}
	if !ok {
		return model.ConfigRecord{}, perrors.NotFound("config", name)
	}
	return record, nil
}

func (c *Client) ListConfigs(ctx context.Context) ([]string, error) {
	names, err := c.store.ListConfigs(ctx)
	if err != nil {
		return nil, storeError(err, "list configs")
	}
	return names, nil
}

// UpdateConfig replaces the spec of an existing config.
func (c *Client) UpdateConfig(ctx context.Context, name string, spec model.RunSpec) (model.ConfigRecord, error) {
	if _, err := c.GetConfig(ctx, name); err != nil {
		return model.ConfigRecord{}, err
	}
	return c.saveConfig(ctx, name, spec.Clone())
}

func (c *Client) DeleteConfig(ctx context.Context, name string) error {
	deleted, err := c.store.DeleteConfig(ctx, name)
	if err != nil {
		return storeError(err, "delete config %s", name)
	}
	if !deleted {
		return perrors.NotFound("config", name)
	}
	return nil
}

func (c *Client) saveConfig(ctx context.Context, name string, spec model.RunSpec) (model.ConfigRecord, error) {
	if _, err := placement.NewConfig(spec); err != nil {
		return model.ConfigRecord{}, err
	}
	spec.Name = name
	record := model.ConfigRecord{
		VersionedRecord: storage.CurrentVersion(),
		Name:            name,
		Spec:            spec,
		UpdatedAt:       c.now().UTC(),
	}
	if err := c.store.SaveConfig(ctx, record); err != nil {
		return model.ConfigRecord{}, storeError(err, "save config %s", name)
	}
	c.logger.Debug("config saved", "name", name)
	return record, nil
}
