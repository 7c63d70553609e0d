package mcc

import (
	"sync"
	"sync/atomic"

	"syzygos/internal/model"
)

// EvaluationCounter is the process-wide trial counter shared by both sides'
// evaluators.
type EvaluationCounter struct {
	n atomic.Int64
}

// Add records one trial and returns the new cumulative count.
func (c *EvaluationCounter) Add() int64 {
	return c.n.Add(1)
}

func (c *EvaluationCounter) Total() int64 {
	return c.n.Load()
}

// IDSequence hands out monotonically increasing genome IDs. Variation
// operators on both sides share one sequence so IDs stay unique across
// populations.
type IDSequence struct {
	n atomic.Int64
}

func (s *IDSequence) Next() model.GenomeID {
	return model.GenomeID(s.n.Add(1))
}

// RecordingTrialLogger buffers trial and batch records in memory, for tests
// and for flushing a run's log to the archive afterward. Recording stops
// silently once Limit trial records are held (0 means unbounded).
type RecordingTrialLogger struct {
	Limit int

	mu      sync.Mutex
	trials  []model.TrialLogRecord
	batches []model.BatchDiagnostics
}

func (l *RecordingTrialLogger) LogTrial(record model.TrialLogRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Limit > 0 && len(l.trials) >= l.Limit {
		return
	}
	l.trials = append(l.trials, record)
}

func (l *RecordingTrialLogger) LogBatch(record model.BatchDiagnostics) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.batches = append(l.batches, record)
}

func (l *RecordingTrialLogger) Trials() []model.TrialLogRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.TrialLogRecord, len(l.trials))
	copy(out, l.trials)
	return out
}

func (l *RecordingTrialLogger) Batches() []model.BatchDiagnostics {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.BatchDiagnostics, len(l.batches))
	copy(out, l.batches)
	return out
}
