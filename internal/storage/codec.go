package storage

import (
	"encoding/json"
	"errors"
	"sort"

	"gaplace/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// CurrentVersion is the version stamp new records are written with.
func CurrentVersion() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeConfig(record model.ConfigRecord) ([]byte, error) {
	return json.MarshalIndent(record, "", "  ")
}

func DecodeConfig(data []byte) (model.ConfigRecord, error) {
	var record model.ConfigRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.ConfigRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.ConfigRecord{}, err
	}
	return record, nil
}

func EncodeRun(record model.RunRecord) ([]byte, error) {
	return json.MarshalIndent(record, "", "  ")
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var record model.RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return record, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

func cloneConfig(record model.ConfigRecord) model.ConfigRecord {
	out := record
	out.Spec = record.Spec.Clone()
	return out
}

func cloneRun(record model.RunRecord) model.RunRecord {
	out := record
	out.Spec = record.Spec.Clone()
	out.FitnessHistory = append([]float64(nil), record.FitnessHistory...)
	out.BestGenome = append([]int(nil), record.BestGenome...)
	out.Diagnostics = append([]model.GenerationDiagnostics(nil), record.Diagnostics...)
	out.Checkpoints = make([]model.CheckpointRecord, len(record.Checkpoints))
	for i, cp := range record.Checkpoints {
		cp.Genome = append([]int(nil), cp.Genome...)
		out.Checkpoints[i] = cp
	}
	return out
}

func sortRuns(runs []model.RunRecord) {
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.Before(runs[j].CreatedAt)
		}
		return runs[i].ID < runs[j].ID
	})
}
