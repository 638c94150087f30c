// Package config reads and writes run configuration files. JSON, YAML and
// TOML are selected by file extension. Fields missing from a file keep the
// values of model.DefaultRunSpec.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	perrors "gaplace/internal/errors"
	"gaplace/internal/model"
)

// Format is a configuration file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", perrors.New(perrors.CodeInvalidFormat, "unsupported config extension %q (want .json, .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// Load reads path and overlays it on the default run spec. The result is not
// validated; pass it to placement.NewConfig.
func Load(path string) (model.RunSpec, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return model.RunSpec{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RunSpec{}, perrors.Wrap(perrors.CodeInvalidFormat, err, "read config file")
	}
	spec, err := Decode(data, format)
	if err != nil {
		return model.RunSpec{}, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// Decode parses data in the given format over the defaults.
func Decode(data []byte, format Format) (model.RunSpec, error) {
	spec := model.DefaultRunSpec()
	if err := unmarshal(data, format, &spec); err != nil {
		return model.RunSpec{}, err
	}

	set, err := topLevelKeys(data, format)
	if err != nil {
		return model.RunSpec{}, err
	}
	if set["components"] && !set["connections"] {
		spec.Connections = nil
	}
	if set["generations"] && !set["checkpoint_generations"] {
		kept := spec.CheckpointGenerations[:0]
		for _, g := range spec.CheckpointGenerations {
			if g <= spec.Generations {
				kept = append(kept, g)
			}
		}
		spec.CheckpointGenerations = kept
	}
	return spec, nil
}

// topLevelKeys reports which keys data sets, including keys set to zero.
func topLevelKeys(data []byte, format Format) (map[string]bool, error) {
	raw := make(map[string]any)
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatTOML:
		_, err = toml.Decode(string(data), &raw)
	default:
		return nil, perrors.New(perrors.CodeInvalidFormat, "unsupported config format %q", format)
	}
	if err != nil {
		return nil, perrors.Wrap(perrors.CodeInvalidFormat, err, "parse %s config", format)
	}
	set := make(map[string]bool, len(raw))
	for k := range raw {
		set[k] = true
	}
	return set, nil
}

func unmarshal(data []byte, format Format, spec *model.RunSpec) error {
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(spec)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(spec)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatTOML:
		var md toml.MetaData
		md, err = toml.Decode(string(data), spec)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				err = fmt.Errorf("unknown field %q", undecoded[0].String())
			}
		}
	default:
		return perrors.New(perrors.CodeInvalidFormat, "unsupported config format %q", format)
	}
	if err != nil {
		return perrors.Wrap(perrors.CodeInvalidFormat, err, "parse %s config", format)
	}
	return nil
}

// Encode renders spec in the given format.
func Encode(spec model.RunSpec, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(spec, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(spec)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(spec); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, perrors.New(perrors.CodeInvalidFormat, "unsupported config format %q", format)
	}
}

// Write stores spec at path in the format implied by its extension.
func Write(path string, spec model.RunSpec) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Encode(spec, format)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
