package mcc

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"syzygos/internal/model"
)

type State string

const (
	StateBootstrapping State = "bootstrapping"
	StateRunning       State = "running"
	StateTerminated    State = "terminated"
)

type SideID string

const (
	SideA SideID = "a"
	SideB SideID = "b"
)

// SideConfig describes one coevolving population and its collaborators.
// The Scorer is oriented from this side's point of view: Score(candidate,
// opponent) where the candidate belongs to this side and the opponent to the
// other one.
type SideConfig struct {
	Name             string
	TargetSize       int
	BatchSize        int
	SuccessCriterion int
	FailureCriterion int
	ResourceLimit    int

	Variation VariationOperator
	Decoder   Decoder
	Scorer    Scorer

	// Seed bootstrap. DirectSeeds short-circuits the auxiliary search for
	// domains whose individuals are cheap to construct directly; otherwise
	// the bootstrapper searches against BootstrapOpponents, or against the
	// other side's resolved seeds when no explicit sample is given.
	SeedCount          int
	BootstrapSize      int
	BootstrapBudget    int64
	BootstrapObjective SeedObjective
	DirectSeeds        []model.Genome
	BootstrapOpponents []model.Genome

	// Optional diversity-preserving eviction.
	Partitioner *SpeciationPartitioner
}

type SchedulerConfig struct {
	A SideConfig
	B SideConfig

	MaxBatches     int
	MaxEvaluations int64
	Workers        int
	Seed           int64
	Logger         TrialLogger
}

type schedulerSide struct {
	id      SideID
	cfg     SideConfig
	queue   *PopulationQueue
	tracker *ResourceUsageTracker
	pool    *ParallelEvaluationPool
}

// CoevolutionScheduler owns the two population queues and advances both
// sides in lockstep joint batches: Bootstrapping -> Running -> Terminated.
// Each side's opponent snapshot is taken before either side starts its
// batch, and both sides must finish before the batch counter advances, so a
// candidate is never scored against a population that is mutating under it.
type CoevolutionScheduler struct {
	cfg   SchedulerConfig
	evals *EvaluationCounter
	sides [2]*schedulerSide

	mu      sync.Mutex
	state   State
	batch   int
	failure error
	diags   []model.BatchDiagnostics
}

func NewCoevolutionScheduler(cfg SchedulerConfig) (*CoevolutionScheduler, error) {
	if cfg.MaxBatches <= 0 && cfg.MaxEvaluations <= 0 {
		return nil, fmt.Errorf("a termination bound is required: max batches or max evaluations")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = NopTrialLogger{}
	}

	s := &CoevolutionScheduler{
		cfg:   cfg,
		evals: &EvaluationCounter{},
		state: StateBootstrapping,
	}

	var err error
	if s.sides[0], err = s.buildSide(SideA, cfg.A, cfg.Seed); err != nil {
		return nil, err
	}
	if s.sides[1], err = s.buildSide(SideB, cfg.B, cfg.Seed+1); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CoevolutionScheduler) buildSide(id SideID, cfg SideConfig, seed int64) (*schedulerSide, error) {
	if cfg.Name == "" {
		cfg.Name = string(id)
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("side %s: batch size must be > 0", cfg.Name)
	}
	if cfg.Variation == nil {
		return nil, fmt.Errorf("side %s: variation operator is required", cfg.Name)
	}
	if cfg.Decoder == nil {
		return nil, fmt.Errorf("side %s: decoder is required", cfg.Name)
	}
	if cfg.SeedCount <= 0 {
		return nil, fmt.Errorf("side %s: seed count must be > 0", cfg.Name)
	}
	if cfg.SeedCount > cfg.TargetSize {
		return nil, fmt.Errorf("side %s: seed count %d exceeds target size %d", cfg.Name, cfg.SeedCount, cfg.TargetSize)
	}
	if cfg.BootstrapSize <= 0 {
		cfg.BootstrapSize = cfg.TargetSize
	}

	queue, err := NewPopulationQueue(QueueConfig{
		Name:        cfg.Name,
		TargetSize:  cfg.TargetSize,
		Partitioner: cfg.Partitioner,
	})
	if err != nil {
		return nil, err
	}

	evaluator, err := NewMinimalCriterionEvaluator(EvaluatorConfig{
		Side:             cfg.Name,
		Scorer:           cfg.Scorer,
		SuccessCriterion: cfg.SuccessCriterion,
		FailureCriterion: cfg.FailureCriterion,
		Logger:           s.cfg.Logger,
		Evaluations:      s.evals,
		Seed:             seed,
	})
	if err != nil {
		return nil, fmt.Errorf("side %s: %w", cfg.Name, err)
	}

	pool, err := NewParallelEvaluationPool(PoolConfig{
		Workers:   s.cfg.Workers,
		Decoder:   cfg.Decoder,
		Evaluator: evaluator,
	})
	if err != nil {
		return nil, fmt.Errorf("side %s: %w", cfg.Name, err)
	}

	return &schedulerSide{
		id:      id,
		cfg:     cfg,
		queue:   queue,
		tracker: NewResourceUsageTracker(cfg.ResourceLimit),
		pool:    pool,
	}, nil
}

// Initialize produces both sides' seed populations, cross-verifies them, and
// moves the scheduler to Running. Any failure terminates the scheduler with
// the failure recorded.
func (s *CoevolutionScheduler) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateBootstrapping {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("initialize called in state %s", state)
	}
	s.mu.Unlock()

	seeds, err := s.resolveSeeds(ctx)
	if err != nil {
		return s.fail(err)
	}
	if err := s.verifySeeds(ctx, seeds); err != nil {
		return s.fail(err)
	}

	for i, side := range s.sides {
		if err := side.queue.Seed(seeds[i]); err != nil {
			return s.fail(err)
		}
	}
	s.sides[0].tracker.Reconcile(s.sides[1].queue.IDs())
	s.sides[1].tracker.Reconcile(s.sides[0].queue.IDs())

	s.mu.Lock()
	s.state = StateRunning
	s.mu.Unlock()
	return nil
}

// resolveSeeds orders the two bootstraps so that a side with direct seeds or
// an explicit opponent sample resolves first, letting the other side search
// against the result.
func (s *CoevolutionScheduler) resolveSeeds(ctx context.Context) ([2][]model.Genome, error) {
	var seeds [2][]model.Genome

	selfSufficient := func(cfg SideConfig) bool {
		return len(cfg.DirectSeeds) > 0 || len(cfg.BootstrapOpponents) > 0
	}

	order := []int{0, 1}
	if !selfSufficient(s.sides[0].cfg) && selfSufficient(s.sides[1].cfg) {
		order = []int{1, 0}
	}
	if !selfSufficient(s.sides[order[0]].cfg) {
		return seeds, fmt.Errorf("side %s: neither direct seeds nor a bootstrap opponent sample is available", s.sides[order[0]].cfg.Name)
	}

	for _, i := range order {
		side := s.sides[i]
		other := s.sides[1-i]

		if len(side.cfg.DirectSeeds) > 0 {
			if len(side.cfg.DirectSeeds) < side.cfg.SeedCount {
				return seeds, fmt.Errorf("side %s: %d direct seeds below seed count %d", side.cfg.Name, len(side.cfg.DirectSeeds), side.cfg.SeedCount)
			}
			seeds[i] = append([]model.Genome(nil), side.cfg.DirectSeeds[:side.cfg.SeedCount]...)
			continue
		}

		opponentGenomes := side.cfg.BootstrapOpponents
		if len(opponentGenomes) == 0 {
			opponentGenomes = seeds[1-i]
		}
		opponents, err := decodePhenomes(ctx, other.cfg.Decoder, opponentGenomes)
		if err != nil {
			return seeds, fmt.Errorf("side %s: decode bootstrap opponents: %w", side.cfg.Name, err)
		}

		bootstrapper, err := NewSeedBootstrapper(BootstrapConfig{
			Name:             side.cfg.Name,
			SeedCount:        side.cfg.SeedCount,
			PopulationSize:   side.cfg.BootstrapSize,
			EvaluationBudget: side.cfg.BootstrapBudget,
			Variation:        side.cfg.Variation,
			Pool:             side.pool,
			Evaluations:      s.evals,
			Opponents:        opponents,
			Objective:        side.cfg.BootstrapObjective,
		})
		if err != nil {
			return seeds, err
		}
		if seeds[i], err = bootstrapper.Run(ctx); err != nil {
			return seeds, err
		}
	}
	return seeds, nil
}

// verifySeeds re-evaluates every seed of each side against the other side's
// full seed set. A seed that was viable only against a subset met during
// search fails here and rejects the whole bootstrap.
func (s *CoevolutionScheduler) verifySeeds(ctx context.Context, seeds [2][]model.Genome) error {
	for i, side := range s.sides {
		other := s.sides[1-i]
		opponents, err := decodePhenomes(ctx, other.cfg.Decoder, seeds[1-i])
		if err != nil {
			return fmt.Errorf("side %s: decode seed opponents: %w", side.cfg.Name, err)
		}
		records, err := side.pool.EvaluateBatch(ctx, 0, seeds[i], opponents, nil)
		if err != nil {
			return fmt.Errorf("side %s: seed verification: %w", side.cfg.Name, err)
		}
		for j, record := range records {
			if record.Err != "" {
				return fmt.Errorf("side %s: seed %d: %w: %s", side.cfg.Name, seeds[i][j].ID, ErrSeedVerification, record.Err)
			}
			if !record.Viable {
				return fmt.Errorf("side %s: seed %d: %w: %d of %d required successes",
					side.cfg.Name, seeds[i][j].ID, ErrSeedVerification, record.SuccessCount, side.cfg.SuccessCriterion)
			}
			seeds[i][j].Eval = &model.EvalRecord{
				Viable:  true,
				Trials:  len(record.Trials),
				Fitness: record.BestObjective(),
			}
		}
	}
	return nil
}

// Run initializes if necessary and steps until termination.
func (s *CoevolutionScheduler) Run(ctx context.Context) error {
	if s.State() == StateBootstrapping {
		if err := s.Initialize(ctx); err != nil {
			return err
		}
	}
	for !s.IsTerminated() {
		if err := s.Step(ctx); err != nil {
			return err
		}
	}
	return s.FailureReason()
}

// Step executes one joint batch for both sides. Snapshots of both queues are
// taken up front, so each side is scored against the other side's state as
// of the end of the previous joint batch; the errgroup wait is the hard
// barrier before the batch counter advances.
func (s *CoevolutionScheduler) Step(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateRunning {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("step called in state %s", state)
	}
	batch := s.batch + 1
	s.mu.Unlock()

	snapshots := [2][]model.Genome{
		s.sides[0].queue.Snapshot(),
		s.sides[1].queue.Snapshot(),
	}
	var opponents [2][]Phenome
	for i, side := range s.sides {
		// Side i's opponents are the other side's members, decoded with the
		// other side's decoder.
		decoded, err := decodePhenomes(ctx, s.sides[1-i].cfg.Decoder, snapshots[1-i])
		if err != nil {
			return s.fail(fmt.Errorf("side %s: decode opponents: %w", side.cfg.Name, err))
		}
		opponents[i] = decoded
		side.tracker.Reconcile(genomeIDs(snapshots[1-i]))
	}

	var diags [2]model.SideDiagnostics
	g, gctx := errgroup.WithContext(ctx)
	for i := range s.sides {
		idx := i
		g.Go(func() error {
			diag, err := s.runSideBatch(gctx, batch, s.sides[idx], snapshots[idx], opponents[idx])
			if err != nil {
				return err
			}
			diags[idx] = diag
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return s.fail(err)
	}

	for _, side := range s.sides {
		if side.queue.Len() == 0 {
			return s.fail(fmt.Errorf("side %s: %w", side.cfg.Name, ErrPopulationCollapse))
		}
	}

	diag := model.BatchDiagnostics{
		Batch:       batch,
		Evaluations: s.evals.Total(),
		SideA:       diags[0],
		SideB:       diags[1],
	}
	s.cfg.Logger.LogBatch(diag)

	s.mu.Lock()
	s.batch = batch
	s.diags = append(s.diags, diag)
	done := (s.cfg.MaxBatches > 0 && s.batch >= s.cfg.MaxBatches) ||
		(s.cfg.MaxEvaluations > 0 && diag.Evaluations >= s.cfg.MaxEvaluations)
	if done {
		s.state = StateTerminated
	}
	s.mu.Unlock()
	return nil
}

func (s *CoevolutionScheduler) runSideBatch(ctx context.Context, batch int, side *schedulerSide, parents []model.Genome, opponents []Phenome) (model.SideDiagnostics, error) {
	candidates, err := side.cfg.Variation.Produce(ctx, parents, side.cfg.BatchSize)
	if err != nil {
		return model.SideDiagnostics{}, fmt.Errorf("side %s: produce: %w", side.cfg.Name, err)
	}
	for i := range candidates {
		candidates[i].BirthBatch = batch
	}

	records, err := side.pool.EvaluateBatch(ctx, batch, candidates, opponents, side.tracker)
	if err != nil {
		return model.SideDiagnostics{}, fmt.Errorf("side %s: evaluate: %w", side.cfg.Name, err)
	}

	viable := make([]model.Genome, 0, len(candidates))
	for i := range candidates {
		record := records[i]
		candidates[i].Eval = &model.EvalRecord{
			Viable:  record.Viable,
			Trials:  len(record.Trials),
			Fitness: record.BestObjective(),
		}
		if record.Viable {
			viable = append(viable, candidates[i])
		}
	}

	admitted, err := side.queue.Admit(viable)
	if err != nil {
		return model.SideDiagnostics{}, err
	}
	return model.SideDiagnostics{
		Produced:  len(candidates),
		Viable:    len(viable),
		Admitted:  admitted,
		QueueSize: side.queue.Len(),
	}, nil
}

func (s *CoevolutionScheduler) fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateTerminated
	if s.failure == nil {
		s.failure = err
	}
	return err
}

func (s *CoevolutionScheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *CoevolutionScheduler) IsTerminated() bool {
	return s.State() == StateTerminated
}

// FailureReason is nil when the scheduler terminated by reaching a
// configured bound.
func (s *CoevolutionScheduler) FailureReason() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

func (s *CoevolutionScheduler) CurrentBatch() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch
}

func (s *CoevolutionScheduler) CumulativeEvaluations() int64 {
	return s.evals.Total()
}

// Snapshot returns the current admitted population of one side.
func (s *CoevolutionScheduler) Snapshot(side SideID) []model.Genome {
	if side == SideB {
		return s.sides[1].queue.Snapshot()
	}
	return s.sides[0].queue.Snapshot()
}

func (s *CoevolutionScheduler) Diagnostics() []model.BatchDiagnostics {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.BatchDiagnostics, len(s.diags))
	copy(out, s.diags)
	return out
}

func decodePhenomes(ctx context.Context, decoder Decoder, genomes []model.Genome) ([]Phenome, error) {
	out := make([]Phenome, 0, len(genomes))
	for _, genome := range genomes {
		phenome, err := decoder.Decode(ctx, genome)
		if err != nil {
			return nil, fmt.Errorf("decode genome %d: %w", genome.ID, err)
		}
		out = append(out, phenome)
	}
	return out, nil
}

func genomeIDs(genomes []model.Genome) []model.GenomeID {
	out := make([]model.GenomeID, len(genomes))
	for i, genome := range genomes {
		out[i] = genome.ID
	}
	return out
}
