package storage

import (
	"context"
	"sort"
	"sync"

	"gaplace/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	configs     map[string]model.ConfigRecord
	runs        map[string]model.RunRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.initialized = true
	s.configs = make(map[string]model.ConfigRecord)
	s.runs = make(map[string]model.RunRecord)
	return nil
}

func (s *MemoryStore) SaveConfig(_ context.Context, record model.ConfigRecord) error {
	if err := validateKey("name", record.Name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.configs[record.Name] = cloneConfig(record)
	return nil
}

func (s *MemoryStore) GetConfig(_ context.Context, name string) (model.ConfigRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.configs[name]
	if !ok {
		return model.ConfigRecord{}, false, nil
	}
	return cloneConfig(record), true, nil
}

func (s *MemoryStore) ListConfigs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.configs))
	for name := range s.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) DeleteConfig(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.configs[name]; !ok {
		return false, nil
	}
	delete(s.configs, name)
	return true, nil
}

func (s *MemoryStore) SaveRun(_ context.Context, record model.RunRecord) error {
	if err := validateKey("id", record.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.runs[record.ID] = cloneRun(record)
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.runs[id]
	if !ok {
		return model.RunRecord{}, false, nil
	}
	return cloneRun(record), true, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, record := range s.runs {
		runs = append(runs, cloneRun(record))
	}
	sortRuns(runs)
	return runs, nil
}
