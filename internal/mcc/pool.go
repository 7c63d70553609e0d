package mcc

import (
	"context"
	"fmt"
	"sync"

	"syzygos/internal/model"
)

type PoolConfig struct {
	Workers   int
	Decoder   Decoder
	Evaluator *MinimalCriterionEvaluator
}

// ParallelEvaluationPool fans a batch of candidate genomes out across a
// bounded set of workers. Each worker decodes one candidate and runs it
// through the evaluator; results stay index-aligned with the input batch
// regardless of completion order.
type ParallelEvaluationPool struct {
	cfg PoolConfig
}

func NewParallelEvaluationPool(cfg PoolConfig) (*ParallelEvaluationPool, error) {
	if cfg.Decoder == nil {
		return nil, fmt.Errorf("decoder is required")
	}
	if cfg.Evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &ParallelEvaluationPool{cfg: cfg}, nil
}

// EvaluateBatch returns one ViabilityRecord per candidate, in input order.
// A candidate whose genome cannot be decoded gets a record carrying the
// error and stays non-viable; the rest of the batch is unaffected.
func (p *ParallelEvaluationPool) EvaluateBatch(ctx context.Context, batch int, candidates []model.Genome, opponents []Phenome, tracker *ResourceUsageTracker) ([]model.ViabilityRecord, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	type job struct {
		idx    int
		genome model.Genome
	}
	type result struct {
		idx    int
		record model.ViabilityRecord
		err    error
	}

	jobs := make(chan job)
	results := make(chan result, len(candidates))

	workerCount := p.cfg.Workers
	if workerCount > len(candidates) {
		workerCount = len(candidates)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}

				phenome, err := p.cfg.Decoder.Decode(ctx, j.genome)
				if err != nil {
					// Corrupted genome: fatal for this candidate only.
					results <- result{idx: j.idx, record: model.ViabilityRecord{Err: err.Error()}}
					continue
				}

				record, err := p.cfg.Evaluator.Evaluate(ctx, batch, phenome, opponents, tracker)
				if err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				results <- result{idx: j.idx, record: record}
			}
		}()
	}

	for i := range candidates {
		jobs <- job{idx: i, genome: candidates[i]}
	}
	close(jobs)

	wg.Wait()
	close(results)

	records := make([]model.ViabilityRecord, len(candidates))
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		records[res.idx] = res.record
	}
	return records, nil
}
