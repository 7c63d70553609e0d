// Package syzygos is the embedding API: it assembles the maze demonstration
// domain, runs the coevolution engine, and archives the results.
package syzygos

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"syzygos/internal/config"
	"syzygos/internal/maze"
	"syzygos/internal/mcc"
	"syzygos/internal/model"
	"syzygos/internal/storage"
)

const (
	SideNavigators = "navigators"
	SideArenas     = "arenas"

	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

type Client struct {
	store storage.Store
}

// Open builds a client over the configured archive backend.
func Open(ctx context.Context, storageKind, storagePath string) (*Client, error) {
	store, err := storage.NewStore(storageKind, storagePath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return &Client{store: store}, nil
}

// NewClient wraps an existing store.
func NewClient(store storage.Store) *Client {
	return &Client{store: store}
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// RunSummary is the caller-facing digest of one archived run.
type RunSummary struct {
	RunID       string
	Batches     int
	Evaluations int64
	Outcome     string
	Navigators  int
	Arenas      int
}

// Run executes one full coevolution run of navigators against arenas and
// archives the run record, per-batch diagnostics, final populations, and the
// trial log. The run is archived even when it terminates with a failure, so
// a collapsed run can still be inspected afterward.
func (c *Client) Run(ctx context.Context, cfg *config.Config) (RunSummary, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return RunSummary{}, err
	}

	ids := &mcc.IDSequence{}
	recorder := &mcc.RecordingTrialLogger{Limit: cfg.Run.TrialLogLimit}
	var logger mcc.TrialLogger = recorder
	if cfg.Run.Verbose {
		logger = mcc.MultiTrialLogger{
			recorder,
			mcc.PrintfTrialLogger{Logger: log.New(os.Stderr, "", log.LstdFlags)},
		}
	}
	params := maze.ArenaParams{Width: cfg.Maze.Width, Height: cfg.Maze.Height}

	arenaSeeds, err := maze.DirectSeedArenas(cfg.Arenas.SeedCount, params, ids, cfg.Run.Seed)
	if err != nil {
		return RunSummary{}, err
	}

	navigatorPartitioner, err := buildPartitioner(cfg.Navigators, maze.NavigatorDistance, cfg.Run.Workers, cfg.Run.Seed+10)
	if err != nil {
		return RunSummary{}, err
	}
	arenaPartitioner, err := buildPartitioner(cfg.Arenas, maze.ArenaDistance, cfg.Run.Workers, cfg.Run.Seed+11)
	if err != nil {
		return RunSummary{}, err
	}

	scheduler, err := mcc.NewCoevolutionScheduler(mcc.SchedulerConfig{
		A: mcc.SideConfig{
			Name:               SideNavigators,
			TargetSize:         cfg.Navigators.TargetSize,
			BatchSize:          cfg.Navigators.BatchSize,
			SuccessCriterion:   cfg.Navigators.SuccessCriterion,
			FailureCriterion:   cfg.Navigators.FailureCriterion,
			ResourceLimit:      cfg.Navigators.ResourceLimit,
			Variation:          maze.NewNavigatorVariation(ids, cfg.Run.Seed+2),
			Decoder:            maze.NavigatorDecoder{},
			Scorer:             maze.NavigatorScorer{StepBudget: cfg.Maze.StepBudget},
			SeedCount:          cfg.Navigators.SeedCount,
			BootstrapSize:      cfg.Navigators.BootstrapSize,
			BootstrapBudget:    cfg.Navigators.BootstrapBudget,
			BootstrapObjective: mcc.ObjectiveSeed{},
			Partitioner:        navigatorPartitioner,
		},
		B: mcc.SideConfig{
			Name:             SideArenas,
			TargetSize:       cfg.Arenas.TargetSize,
			BatchSize:        cfg.Arenas.BatchSize,
			SuccessCriterion: cfg.Arenas.SuccessCriterion,
			FailureCriterion: cfg.Arenas.FailureCriterion,
			ResourceLimit:    cfg.Arenas.ResourceLimit,
			Variation:        maze.NewArenaVariation(params, ids, cfg.Run.Seed+3),
			Decoder:          maze.ArenaDecoder{},
			Scorer:           maze.ArenaScorer{StepBudget: cfg.Maze.StepBudget},
			SeedCount:        cfg.Arenas.SeedCount,
			DirectSeeds:      arenaSeeds,
			Partitioner:      arenaPartitioner,
		},
		MaxBatches:     cfg.Run.MaxBatches,
		MaxEvaluations: cfg.Run.MaxEvaluations,
		Workers:        cfg.Run.Workers,
		Seed:           cfg.Run.Seed,
		Logger:         logger,
	})
	if err != nil {
		return RunSummary{}, err
	}

	runID := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)
	runErr := scheduler.Run(ctx)

	outcome := OutcomeCompleted
	if runErr != nil {
		outcome = fmt.Sprintf("%s: %v", OutcomeFailed, runErr)
	}

	navigators := scheduler.Snapshot(mcc.SideA)
	arenas := scheduler.Snapshot(mcc.SideB)

	summary := RunSummary{
		RunID:       runID,
		Batches:     scheduler.CurrentBatch(),
		Evaluations: scheduler.CumulativeEvaluations(),
		Outcome:     outcome,
		Navigators:  len(navigators),
		Arenas:      len(arenas),
	}

	if err := c.archive(ctx, runID, createdAt, cfg, summary, navigators, arenas, recorder); err != nil {
		if runErr != nil {
			return summary, runErr
		}
		return summary, err
	}
	return summary, runErr
}

func (c *Client) archive(ctx context.Context, runID, createdAt string, cfg *config.Config, summary RunSummary, navigators, arenas []model.Genome, recorder *mcc.RecordingTrialLogger) error {
	run := model.RunRecord{
		ID:             runID,
		CreatedAtUTC:   createdAt,
		Domain:         "maze",
		Seed:           cfg.Run.Seed,
		MaxBatches:     cfg.Run.MaxBatches,
		MaxEvaluations: cfg.Run.MaxEvaluations,
		Batches:        summary.Batches,
		Evaluations:    summary.Evaluations,
		Outcome:        summary.Outcome,
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("archive run: %w", err)
	}
	if err := c.store.SaveBatchDiagnostics(ctx, runID, recorder.Batches()); err != nil {
		return fmt.Errorf("archive diagnostics: %w", err)
	}
	for side, genomes := range map[string][]model.Genome{
		SideNavigators: navigators,
		SideArenas:     arenas,
	} {
		snapshot := model.PopulationSnapshot{
			RunID:   runID,
			Side:    side,
			Batch:   summary.Batches,
			Genomes: genomes,
		}
		if err := c.store.SavePopulationSnapshot(ctx, snapshot); err != nil {
			return fmt.Errorf("archive %s snapshot: %w", side, err)
		}
	}
	if err := c.store.SaveTrialLog(ctx, runID, recorder.Trials()); err != nil {
		return fmt.Errorf("archive trial log: %w", err)
	}
	return nil
}

// Runs lists archived runs, newest first.
func (c *Client) Runs(ctx context.Context, limit int) ([]model.RunRecord, error) {
	return c.store.ListRuns(ctx, limit)
}

func (c *Client) RunRecord(ctx context.Context, runID string) (model.RunRecord, bool, error) {
	return c.store.GetRun(ctx, runID)
}

func (c *Client) Diagnostics(ctx context.Context, runID string) ([]model.BatchDiagnostics, bool, error) {
	return c.store.GetBatchDiagnostics(ctx, runID)
}

func (c *Client) Population(ctx context.Context, runID, side string) (model.PopulationSnapshot, bool, error) {
	return c.store.GetPopulationSnapshot(ctx, runID, side)
}

func (c *Client) Trials(ctx context.Context, runID string) ([]model.TrialLogRecord, bool, error) {
	return c.store.GetTrialLog(ctx, runID)
}

func buildPartitioner(side config.SideConfig, metric mcc.DistanceMetric, workers int, seed int64) (*mcc.SpeciationPartitioner, error) {
	if side.SpeciesCount <= 0 {
		return nil, nil
	}
	return mcc.NewSpeciationPartitioner(mcc.PartitionerConfig{
		Metric:             metric,
		TargetSpeciesCount: side.SpeciesCount,
		Workers:            workers,
		Seed:               seed,
	})
}
