package storage

import (
	"context"
	"testing"

	"syzygos/internal/model"
)

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	run := model.RunRecord{ID: "run-1", CreatedAtUTC: "2026-01-02T03:04:05Z", Domain: "maze", Batches: 7}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	got, ok, err := store.GetRun(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get run: ok=%v err=%v", ok, err)
	}
	if got.Domain != "maze" || got.Batches != 7 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.SchemaVersion != CurrentSchemaVersion || got.CodecVersion != CurrentCodecVersion {
		t.Fatalf("versions not stamped: %+v", got.VersionedRecord)
	}

	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing run: ok=%v err=%v", ok, err)
	}
}

func TestMemoryStoreListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, run := range []model.RunRecord{
		{ID: "old", CreatedAtUTC: "2026-01-01T00:00:00Z"},
		{ID: "new", CreatedAtUTC: "2026-02-01T00:00:00Z"},
		{ID: "mid", CreatedAtUTC: "2026-01-15T00:00:00Z"},
	} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "new" || runs[1].ID != "mid" {
		t.Fatalf("ordering: %+v", runs)
	}
}

func TestMemoryStoreDiagnosticsAndTrialsAreCopied(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	diagnostics := []model.BatchDiagnostics{{Batch: 1, Evaluations: 10}}
	if err := store.SaveBatchDiagnostics(ctx, "run-1", diagnostics); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}
	diagnostics[0].Batch = 99

	got, ok, err := store.GetBatchDiagnostics(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get diagnostics: ok=%v err=%v", ok, err)
	}
	if got[0].Batch != 1 {
		t.Fatalf("stored diagnostics aliased the caller's slice")
	}

	trials := []model.TrialLogRecord{{Batch: 1, CandidateID: 5, OpponentID: 6, Success: true}}
	if err := store.SaveTrialLog(ctx, "run-1", trials); err != nil {
		t.Fatalf("save trials: %v", err)
	}
	gotTrials, ok, err := store.GetTrialLog(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get trials: ok=%v err=%v", ok, err)
	}
	if len(gotTrials) != 1 || gotTrials[0].CandidateID != 5 {
		t.Fatalf("trial round trip mismatch: %+v", gotTrials)
	}
}

func TestMemoryStoreSnapshotKeyedByRunAndSide(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, side := range []string{"navigators", "arenas"} {
		snapshot := model.PopulationSnapshot{
			RunID:   "run-1",
			Side:    side,
			Batch:   3,
			Genomes: []model.Genome{{ID: 1, BirthBatch: 2}},
		}
		if err := store.SavePopulationSnapshot(ctx, snapshot); err != nil {
			t.Fatalf("save snapshot: %v", err)
		}
	}

	got, ok, err := store.GetPopulationSnapshot(ctx, "run-1", "arenas")
	if err != nil || !ok {
		t.Fatalf("get snapshot: ok=%v err=%v", ok, err)
	}
	if got.Side != "arenas" || len(got.Genomes) != 1 {
		t.Fatalf("snapshot mismatch: %+v", got)
	}
	if _, ok, _ := store.GetPopulationSnapshot(ctx, "run-1", "unknown"); ok {
		t.Fatalf("unexpected snapshot for unknown side")
	}
}
