package storage

import (
	"context"

	"syzygos/internal/model"
)

// Store defines the run-archive operations for the coevolution engine: run
// metadata, per-batch diagnostics, final population snapshots per side, and
// the trial log.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)
	SaveBatchDiagnostics(ctx context.Context, runID string, diagnostics []model.BatchDiagnostics) error
	GetBatchDiagnostics(ctx context.Context, runID string) ([]model.BatchDiagnostics, bool, error)
	SavePopulationSnapshot(ctx context.Context, snapshot model.PopulationSnapshot) error
	GetPopulationSnapshot(ctx context.Context, runID, side string) (model.PopulationSnapshot, bool, error)
	SaveTrialLog(ctx context.Context, runID string, trials []model.TrialLogRecord) error
	GetTrialLog(ctx context.Context, runID string) ([]model.TrialLogRecord, bool, error)
}
