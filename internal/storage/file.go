package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gaplace/internal/model"
)

// FileStore keeps one JSON document per record:
//
//	<dir>/configs/<name>.json
//	<dir>/runs/<id>.json
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Init(_ context.Context) error {
	if s.dir == "" {
		return errors.New("file store directory is required")
	}
	for _, sub := range []string{"configs", "runs"} {
		if err := os.MkdirAll(filepath.Join(s.dir, sub), 0o755); err != nil {
			return fmt.Errorf("create %s directory: %w", sub, err)
		}
	}
	return nil
}

func (s *FileStore) configPath(name string) string {
	return filepath.Join(s.dir, "configs", name+".json")
}

func (s *FileStore) runPath(id string) string {
	return filepath.Join(s.dir, "runs", id+".json")
}

func (s *FileStore) SaveConfig(_ context.Context, record model.ConfigRecord) error {
	if err := validateKey("name", record.Name); err != nil {
		return err
	}
	payload, err := EncodeConfig(record)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFileAtomic(s.configPath(record.Name), payload)
}

func (s *FileStore) GetConfig(_ context.Context, name string) (model.ConfigRecord, bool, error) {
	if validateKey("name", name) != nil {
		return model.ConfigRecord{}, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, err := os.ReadFile(s.configPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.ConfigRecord{}, false, nil
		}
		return model.ConfigRecord{}, false, err
	}
	record, err := DecodeConfig(payload)
	if err != nil {
		return model.ConfigRecord{}, false, fmt.Errorf("decode config %s: %w", name, err)
	}
	return record, true, nil
}

func (s *FileStore) ListConfigs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names, err := listJSON(filepath.Join(s.dir, "configs"))
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileStore) DeleteConfig(_ context.Context, name string) (bool, error) {
	if validateKey("name", name) != nil {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.configPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *FileStore) SaveRun(_ context.Context, record model.RunRecord) error {
	if err := validateKey("id", record.ID); err != nil {
		return err
	}
	payload, err := EncodeRun(record)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFileAtomic(s.runPath(record.ID), payload)
}

func (s *FileStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	if validateKey("id", id) != nil {
		return model.RunRecord{}, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, err := os.ReadFile(s.runPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.RunRecord{}, false, nil
		}
		return model.RunRecord{}, false, err
	}
	record, err := DecodeRun(payload)
	if err != nil {
		return model.RunRecord{}, false, fmt.Errorf("decode run %s: %w", id, err)
	}
	return record, true, nil
}

func (s *FileStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, err := listJSON(filepath.Join(s.dir, "runs"))
	if err != nil {
		return nil, err
	}
	runs := make([]model.RunRecord, 0, len(ids))
	for _, id := range ids {
		payload, err := os.ReadFile(s.runPath(id))
		if err != nil {
			return nil, err
		}
		record, err := DecodeRun(payload)
		if err != nil {
			return nil, fmt.Errorf("decode run %s: %w", id, err)
		}
		runs = append(runs, record)
	}
	sortRuns(runs)
	return runs, nil
}

func listJSON(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return names, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
