package mcc

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"syzygos/internal/model"
)

// SeedObjective ranks auxiliary-population genomes for parent selection
// during bootstrap. Higher scores are better. Implementations may keep
// state (the novelty archive does) but are only called from the bootstrap
// loop, one genome at a time.
type SeedObjective interface {
	Name() string
	Score(genome model.Genome, record model.ViabilityRecord) float64
}

// ObjectiveSeed ranks by the best objective measure observed in the
// genome's trials (fitness maximization).
type ObjectiveSeed struct{}

func (ObjectiveSeed) Name() string {
	return "objective"
}

func (ObjectiveSeed) Score(_ model.Genome, record model.ViabilityRecord) float64 {
	return record.BestObjective()
}

// NoveltySeed ranks by mean distance to the archive of previously scored
// genomes, preferring unexplored regions of the search space.
type NoveltySeed struct {
	Metric      DistanceMetric
	ArchiveSize int

	mu      sync.Mutex
	archive []model.Genome
}

func (*NoveltySeed) Name() string {
	return "novelty"
}

func (n *NoveltySeed) Score(genome model.Genome, _ model.ViabilityRecord) float64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	score := 0.0
	if len(n.archive) > 0 {
		total := 0.0
		for _, other := range n.archive {
			total += n.Metric(genome, other)
		}
		score = total / float64(len(n.archive))
	}

	n.archive = append(n.archive, genome)
	limit := n.ArchiveSize
	if limit <= 0 {
		limit = 256
	}
	if len(n.archive) > limit {
		n.archive = n.archive[len(n.archive)-limit:]
	}
	return score
}

type BootstrapConfig struct {
	Name             string
	SeedCount        int
	PopulationSize   int
	EvaluationBudget int64
	Variation        VariationOperator
	Pool             *ParallelEvaluationPool
	Evaluations      *EvaluationCounter
	Opponents        []Phenome
	Objective        SeedObjective
}

// SeedBootstrapper runs an auxiliary single-population search until
// SeedCount genomes satisfying the minimal criterion exist simultaneously,
// breaking the circular dependency between the two coevolving sides. The
// search uses the same criterion definition as the main loop via the shared
// evaluator inside Pool.
type SeedBootstrapper struct {
	cfg BootstrapConfig
}

func NewSeedBootstrapper(cfg BootstrapConfig) (*SeedBootstrapper, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("bootstrap name is required")
	}
	if cfg.SeedCount <= 0 {
		return nil, fmt.Errorf("bootstrap %s: seed count must be > 0", cfg.Name)
	}
	if cfg.PopulationSize < cfg.SeedCount {
		return nil, fmt.Errorf("bootstrap %s: population size %d below seed count %d", cfg.Name, cfg.PopulationSize, cfg.SeedCount)
	}
	if cfg.EvaluationBudget <= 0 {
		return nil, fmt.Errorf("bootstrap %s: evaluation budget must be > 0", cfg.Name)
	}
	if cfg.Variation == nil {
		return nil, fmt.Errorf("bootstrap %s: variation operator is required", cfg.Name)
	}
	if cfg.Pool == nil {
		return nil, fmt.Errorf("bootstrap %s: evaluation pool is required", cfg.Name)
	}
	if cfg.Evaluations == nil {
		return nil, fmt.Errorf("bootstrap %s: evaluation counter is required", cfg.Name)
	}
	if len(cfg.Opponents) == 0 {
		return nil, fmt.Errorf("bootstrap %s: opponent sample is required", cfg.Name)
	}
	if cfg.Objective == nil {
		cfg.Objective = ObjectiveSeed{}
	}
	return &SeedBootstrapper{cfg: cfg}, nil
}

// Run returns exactly SeedCount viable genomes, or ErrBootstrapExhausted
// once the evaluation budget is spent. Viable genomes persist across
// iterations; only fresh candidates are re-evaluated.
func (b *SeedBootstrapper) Run(ctx context.Context) ([]model.Genome, error) {
	type scoredCandidate struct {
		genome model.Genome
		score  float64
	}

	start := b.cfg.Evaluations.Total()

	var viable []model.Genome
	candidates, err := b.cfg.Variation.Produce(ctx, nil, b.cfg.PopulationSize)
	if err != nil {
		return nil, fmt.Errorf("bootstrap %s: initial population: %w", b.cfg.Name, err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		records, err := b.cfg.Pool.EvaluateBatch(ctx, 0, candidates, b.cfg.Opponents, nil)
		if err != nil {
			return nil, fmt.Errorf("bootstrap %s: %w", b.cfg.Name, err)
		}

		scored := make([]scoredCandidate, 0, len(candidates))
		for i := range candidates {
			record := records[i]
			candidates[i].Eval = &model.EvalRecord{
				Viable:  record.Viable,
				Trials:  len(record.Trials),
				Fitness: record.BestObjective(),
			}
			if record.Viable {
				viable = append(viable, candidates[i])
				continue
			}
			if record.Err != "" {
				continue
			}
			scored = append(scored, scoredCandidate{
				genome: candidates[i],
				score:  b.cfg.Objective.Score(candidates[i], record),
			})
		}

		if len(viable) >= b.cfg.SeedCount {
			sort.Slice(viable, func(i, j int) bool { return viable[i].ID < viable[j].ID })
			return viable[:b.cfg.SeedCount], nil
		}
		if spent := b.cfg.Evaluations.Total() - start; spent >= b.cfg.EvaluationBudget {
			return nil, fmt.Errorf("bootstrap %s: %w: %d of %d viable seeds after %d evaluations",
				b.cfg.Name, ErrBootstrapExhausted, len(viable), b.cfg.SeedCount, spent)
		}

		sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
		parents := append([]model.Genome(nil), viable...)
		for _, item := range scored {
			if len(parents) >= b.cfg.PopulationSize {
				break
			}
			parents = append(parents, item.genome)
		}

		candidates, err = b.cfg.Variation.Produce(ctx, parents, b.cfg.PopulationSize)
		if err != nil {
			return nil, fmt.Errorf("bootstrap %s: produce: %w", b.cfg.Name, err)
		}
	}
}
