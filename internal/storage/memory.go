package storage

import (
	"context"
	"sort"
	"sync"

	"syzygos/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	runs        map[string]model.RunRecord
	diagnostics map[string][]model.BatchDiagnostics
	snapshots   map[string]model.PopulationSnapshot
	trials      map[string][]model.TrialLogRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = make(map[string]model.RunRecord)
	s.diagnostics = make(map[string][]model.BatchDiagnostics)
	s.snapshots = make(map[string]model.PopulationSnapshot)
	s.trials = make(map[string][]model.TrialLogRecord)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = StampRun(run)
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context, limit int) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAtUTC == out[j].CreatedAtUTC {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAtUTC > out[j].CreatedAtUTC
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) SaveBatchDiagnostics(_ context.Context, runID string, diagnostics []model.BatchDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.diagnostics[runID] = append([]model.BatchDiagnostics(nil), diagnostics...)
	return nil
}

func (s *MemoryStore) GetBatchDiagnostics(_ context.Context, runID string) ([]model.BatchDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	diagnostics, ok := s.diagnostics[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.BatchDiagnostics(nil), diagnostics...), true, nil
}

func (s *MemoryStore) SavePopulationSnapshot(_ context.Context, snapshot model.PopulationSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snapshot.RunID+"/"+snapshot.Side] = StampSnapshot(snapshot)
	return nil
}

func (s *MemoryStore) GetPopulationSnapshot(_ context.Context, runID, side string) (model.PopulationSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[runID+"/"+side]
	return snapshot, ok, nil
}

func (s *MemoryStore) SaveTrialLog(_ context.Context, runID string, trials []model.TrialLogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trials[runID] = append([]model.TrialLogRecord(nil), trials...)
	return nil
}

func (s *MemoryStore) GetTrialLog(_ context.Context, runID string) ([]model.TrialLogRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trials, ok := s.trials[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.TrialLogRecord(nil), trials...), true, nil
}
