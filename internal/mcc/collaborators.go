package mcc

import (
	"context"

	"syzygos/internal/model"
)

// Phenome is the decoded, evaluable form of a genome. The engine never
// inspects its internals; it only needs the genome identity for resource
// accounting and logging.
type Phenome interface {
	GenomeID() model.GenomeID
}

// Decoder turns a genome into its evaluable phenome. Decoding must be
// deterministic and side-effect free from the engine's perspective.
type Decoder interface {
	Decode(ctx context.Context, genome model.Genome) (Phenome, error)
}

// Scorer runs one trial of a candidate against one opponent. It may block on
// an external simulator; the engine treats it as opaque and slow.
type Scorer interface {
	Score(ctx context.Context, candidate, opponent Phenome) (model.TrialResult, error)
}

// VariationOperator produces new candidate genomes from a parent population.
// An empty parent slice requests randomized genomes, which the bootstrap
// uses to found its auxiliary population.
type VariationOperator interface {
	Produce(ctx context.Context, parents []model.Genome, batchSize int) ([]model.Genome, error)
}

// TrialLogger receives structured per-trial and per-batch records.
// Implementations must be safe for concurrent use; the engine never fails a
// run because a record could not be delivered.
type TrialLogger interface {
	LogTrial(record model.TrialLogRecord)
	LogBatch(record model.BatchDiagnostics)
}

type NopTrialLogger struct{}

func (NopTrialLogger) LogTrial(model.TrialLogRecord)   {}
func (NopTrialLogger) LogBatch(model.BatchDiagnostics) {}
