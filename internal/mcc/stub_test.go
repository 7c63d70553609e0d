package mcc

import (
	"context"
	"fmt"
	"sync"

	"syzygos/internal/model"
)

type stubPhenome struct {
	id model.GenomeID
}

func (p stubPhenome) GenomeID() model.GenomeID {
	return p.id
}

type stubDecoder struct {
	failFor map[model.GenomeID]bool
}

func (d stubDecoder) Decode(_ context.Context, genome model.Genome) (Phenome, error) {
	if d.failFor[genome.ID] {
		return nil, fmt.Errorf("corrupted genome %d", genome.ID)
	}
	return stubPhenome{id: genome.ID}, nil
}

type scriptScorer struct {
	mu    sync.Mutex
	calls int
	fn    func(call int, candidate, opponent Phenome) (model.TrialResult, error)
}

func (s *scriptScorer) Score(_ context.Context, candidate, opponent Phenome) (model.TrialResult, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()
	return s.fn(call, candidate, opponent)
}

func alwaysSucceed() *scriptScorer {
	return &scriptScorer{fn: func(int, Phenome, Phenome) (model.TrialResult, error) {
		return model.TrialResult{Success: true, Objective: 1}, nil
	}}
}

func neverSucceed() *scriptScorer {
	return &scriptScorer{fn: func(int, Phenome, Phenome) (model.TrialResult, error) {
		return model.TrialResult{Success: false}, nil
	}}
}

type stubVariation struct {
	ids *IDSequence
}

func (v *stubVariation) Produce(_ context.Context, _ []model.Genome, batchSize int) ([]model.Genome, error) {
	out := make([]model.Genome, batchSize)
	for i := range out {
		out[i] = model.Genome{ID: v.ids.Next()}
	}
	return out, nil
}

func newEvaluator(t interface{ Fatalf(string, ...any) }, cfg EvaluatorConfig) *MinimalCriterionEvaluator {
	e, err := NewMinimalCriterionEvaluator(cfg)
	if err != nil {
		t.Fatalf("new evaluator: %v", err)
	}
	return e
}

func stubPhenomes(ids ...model.GenomeID) []Phenome {
	out := make([]Phenome, len(ids))
	for i, id := range ids {
		out[i] = stubPhenome{id: id}
	}
	return out
}

func stubGenomes(ids ...model.GenomeID) []model.Genome {
	out := make([]model.Genome, len(ids))
	for i, id := range ids {
		out[i] = model.Genome{ID: id}
	}
	return out
}

func viableGenome(id model.GenomeID, birthBatch int) model.Genome {
	return model.Genome{
		ID:         id,
		BirthBatch: birthBatch,
		Eval:       &model.EvalRecord{Viable: true, Trials: 1},
	}
}
