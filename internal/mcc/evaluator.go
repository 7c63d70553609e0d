package mcc

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"syzygos/internal/model"
)

type EvaluatorConfig struct {
	Side             string
	Scorer           Scorer
	SuccessCriterion int
	FailureCriterion int
	Logger           TrialLogger
	Evaluations      *EvaluationCounter
	Seed             int64
}

// MinimalCriterionEvaluator runs one candidate against a sampled opponent
// set until viability is decided or the sample is exhausted. Opponents are
// visited in a freshly randomized order on every call so no opponent is
// systematically favored or starved.
type MinimalCriterionEvaluator struct {
	cfg EvaluatorConfig

	mu  sync.Mutex
	rng *rand.Rand
}

func NewMinimalCriterionEvaluator(cfg EvaluatorConfig) (*MinimalCriterionEvaluator, error) {
	if cfg.Scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	if cfg.SuccessCriterion <= 0 {
		return nil, fmt.Errorf("success criterion must be > 0")
	}
	if cfg.FailureCriterion < 0 {
		return nil, fmt.Errorf("failure criterion must be >= 0")
	}
	if cfg.Logger == nil {
		cfg.Logger = NopTrialLogger{}
	}
	if cfg.Evaluations == nil {
		cfg.Evaluations = &EvaluationCounter{}
	}
	return &MinimalCriterionEvaluator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

func (e *MinimalCriterionEvaluator) SuccessCriterion() int {
	return e.cfg.SuccessCriterion
}

// visitOrder draws a fresh permutation under the evaluator's lock; Evaluate
// itself runs concurrently across pool workers.
func (e *MinimalCriterionEvaluator) visitOrder(n int) []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Perm(n)
}

func (e *MinimalCriterionEvaluator) decided(record model.ViabilityRecord) bool {
	if record.SuccessCount < e.cfg.SuccessCriterion {
		return false
	}
	if e.cfg.FailureCriterion > 0 && record.FailureCount < e.cfg.FailureCriterion {
		return false
	}
	return true
}

// Evaluate scores the candidate against opponents one trial at a time,
// short-circuiting as soon as the minimal criterion is met. A successful
// trial only counts if the opponent is still under its resource limit; the
// limit check and the usage increment are a single critical section inside
// the tracker, so the trial either owns its slot or is discarded. Discarded
// trials contribute to neither tally but still consume an evaluation count.
func (e *MinimalCriterionEvaluator) Evaluate(ctx context.Context, batch int, candidate Phenome, opponents []Phenome, tracker *ResourceUsageTracker) (model.ViabilityRecord, error) {
	var record model.ViabilityRecord
	for _, idx := range e.visitOrder(len(opponents)) {
		if err := ctx.Err(); err != nil {
			return model.ViabilityRecord{}, err
		}
		opponent := opponents[idx]

		trial, err := e.cfg.Scorer.Score(ctx, candidate, opponent)
		if err != nil {
			if ctx.Err() != nil {
				return model.ViabilityRecord{}, ctx.Err()
			}
			// Scorer failures are non-success trials, not run failures.
			trial = model.TrialResult{Err: err.Error()}
		}
		trial.OpponentID = opponent.GenomeID()
		evaluation := e.cfg.Evaluations.Add()

		if trial.Success {
			if tracker.TryUse(trial.OpponentID) {
				record.SuccessCount++
			} else {
				trial.ResourceCapped = true
			}
		} else {
			record.FailureCount++
		}
		record.Trials = append(record.Trials, trial)

		e.cfg.Logger.LogTrial(model.TrialLogRecord{
			Batch:          batch,
			Side:           e.cfg.Side,
			CandidateID:    candidate.GenomeID(),
			OpponentID:     trial.OpponentID,
			Evaluation:     evaluation,
			Success:        trial.Success && !trial.ResourceCapped,
			Objective:      trial.Objective,
			ResourceCapped: trial.ResourceCapped,
		})

		if e.decided(record) {
			break
		}
	}
	record.Viable = e.decided(record)
	return record, nil
}
