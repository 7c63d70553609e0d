package mcc

import (
	"context"
	"errors"
	"testing"

	"syzygos/internal/model"
)

func newBootstrapPool(t *testing.T, scorer Scorer, counter *EvaluationCounter) *ParallelEvaluationPool {
	t.Helper()
	evaluator, err := NewMinimalCriterionEvaluator(EvaluatorConfig{
		Scorer:           scorer,
		SuccessCriterion: 1,
		Evaluations:      counter,
		Seed:             1,
	})
	if err != nil {
		t.Fatalf("new evaluator: %v", err)
	}
	pool, err := NewParallelEvaluationPool(PoolConfig{Workers: 2, Decoder: stubDecoder{}, Evaluator: evaluator})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	return pool
}

func TestBootstrapReportsExhaustionInsteadOfShortSeedSet(t *testing.T) {
	counter := &EvaluationCounter{}
	bootstrapper, err := NewSeedBootstrapper(BootstrapConfig{
		Name:             "agents",
		SeedCount:        10,
		PopulationSize:   10,
		EvaluationBudget: 15,
		Variation:        &stubVariation{ids: &IDSequence{}},
		Pool:             newBootstrapPool(t, neverSucceed(), counter),
		Evaluations:      counter,
		Opponents:        stubPhenomes(1, 2),
	})
	if err != nil {
		t.Fatalf("new bootstrapper: %v", err)
	}

	seeds, err := bootstrapper.Run(context.Background())
	if !errors.Is(err, ErrBootstrapExhausted) {
		t.Fatalf("err = %v, want ErrBootstrapExhausted", err)
	}
	if seeds != nil {
		t.Fatalf("exhausted bootstrap must not return a partial seed set")
	}
}

func TestBootstrapAccumulatesViableSeedsAcrossIterations(t *testing.T) {
	counter := &EvaluationCounter{}
	scorer := &scriptScorer{fn: func(_ int, candidate, _ Phenome) (model.TrialResult, error) {
		return model.TrialResult{
			Success:   candidate.GenomeID()%2 == 0,
			Objective: float64(candidate.GenomeID()),
		}, nil
	}}
	bootstrapper, err := NewSeedBootstrapper(BootstrapConfig{
		Name:             "agents",
		SeedCount:        4,
		PopulationSize:   4,
		EvaluationBudget: 10_000,
		Variation:        &stubVariation{ids: &IDSequence{}},
		Pool:             newBootstrapPool(t, scorer, counter),
		Evaluations:      counter,
		Opponents:        stubPhenomes(1),
	})
	if err != nil {
		t.Fatalf("new bootstrapper: %v", err)
	}

	seeds, err := bootstrapper.Run(context.Background())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if len(seeds) != 4 {
		t.Fatalf("seeds = %d, want exactly 4", len(seeds))
	}
	for i, seed := range seeds {
		if seed.ID%2 != 0 {
			t.Fatalf("seed %d is not one of the viable genomes: %+v", i, seed)
		}
		if seed.Eval == nil || !seed.Eval.Viable {
			t.Fatalf("seed %d missing viable evaluation record", i)
		}
		if i > 0 && seeds[i-1].ID >= seed.ID {
			t.Fatalf("seeds not returned in ID order")
		}
	}
}

func TestBootstrapValidatesConfig(t *testing.T) {
	counter := &EvaluationCounter{}
	pool := newBootstrapPool(t, neverSucceed(), counter)
	base := BootstrapConfig{
		Name:             "agents",
		SeedCount:        2,
		PopulationSize:   4,
		EvaluationBudget: 10,
		Variation:        &stubVariation{ids: &IDSequence{}},
		Pool:             pool,
		Evaluations:      counter,
		Opponents:        stubPhenomes(1),
	}

	broken := base
	broken.SeedCount = 0
	if _, err := NewSeedBootstrapper(broken); err == nil {
		t.Fatalf("expected error for zero seed count")
	}
	broken = base
	broken.PopulationSize = 1
	if _, err := NewSeedBootstrapper(broken); err == nil {
		t.Fatalf("expected error for population below seed count")
	}
	broken = base
	broken.Opponents = nil
	if _, err := NewSeedBootstrapper(broken); err == nil {
		t.Fatalf("expected error for missing opponent sample")
	}
	broken = base
	broken.EvaluationBudget = 0
	if _, err := NewSeedBootstrapper(broken); err == nil {
		t.Fatalf("expected error for missing budget")
	}
}

func TestNoveltySeedPrefersDistantGenomes(t *testing.T) {
	objective := &NoveltySeed{Metric: idMetric}

	// First genome scores zero against an empty archive and enters it.
	if got := objective.Score(model.Genome{ID: 10}, model.ViabilityRecord{}); got != 0 {
		t.Fatalf("first score = %f, want 0", got)
	}
	near := objective.Score(model.Genome{ID: 11}, model.ViabilityRecord{})
	far := objective.Score(model.Genome{ID: 200}, model.ViabilityRecord{})
	if far <= near {
		t.Fatalf("novelty should reward distance: near=%f far=%f", near, far)
	}
}
