package mcc

import (
	"fmt"
	"sort"
	"sync"

	"syzygos/internal/model"
)

type QueueConfig struct {
	Name        string
	TargetSize  int
	Partitioner *SpeciationPartitioner
}

// PopulationQueue is one side's bounded FIFO of admitted genomes. Admission
// plus eviction is a single critical section, and Snapshot is atomic with
// respect to concurrent admission, so the size bound and the viability gate
// hold at every observable point.
type PopulationQueue struct {
	cfg QueueConfig

	mu      sync.Mutex
	members []model.Genome
}

func NewPopulationQueue(cfg QueueConfig) (*PopulationQueue, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("queue name is required")
	}
	if cfg.TargetSize <= 0 {
		return nil, fmt.Errorf("queue %s: target size must be > 0", cfg.Name)
	}
	return &PopulationQueue{cfg: cfg}, nil
}

// Seed installs the bootstrap population. It may only be called on an empty
// queue and may not exceed the target size.
func (q *PopulationQueue) Seed(genomes []model.Genome) error {
	if len(genomes) == 0 {
		return fmt.Errorf("queue %s: seed population is empty", q.cfg.Name)
	}
	if len(genomes) > q.cfg.TargetSize {
		return fmt.Errorf("queue %s: seed population %d exceeds target size %d", q.cfg.Name, len(genomes), q.cfg.TargetSize)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.members) > 0 {
		return fmt.Errorf("queue %s: already seeded", q.cfg.Name)
	}
	q.members = append([]model.Genome(nil), genomes...)
	return nil
}

// Admit appends viable candidates at the tail and evicts from the head until
// the population is back at its target size. Passing a non-viable genome is
// a caller bug and is rejected before any mutation.
func (q *PopulationQueue) Admit(candidates []model.Genome) (int, error) {
	for _, candidate := range candidates {
		if candidate.Eval == nil || !candidate.Eval.Viable {
			return 0, fmt.Errorf("queue %s: non-viable genome %d passed to Admit", q.cfg.Name, candidate.ID)
		}
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.members = append(q.members, candidates...)
	overflow := len(q.members) - q.cfg.TargetSize
	if overflow <= 0 {
		return len(candidates), nil
	}

	if q.cfg.Partitioner == nil {
		q.members = append([]model.Genome(nil), q.members[overflow:]...)
		return len(candidates), nil
	}
	if err := q.evictSpeciated(overflow); err != nil {
		return len(candidates), err
	}
	return len(candidates), nil
}

// evictSpeciated spreads the eviction load across species proportionally to
// species size, then removes the oldest members of each species. Quota
// remainders follow the deterministic largest-remainder policy.
func (q *PopulationQueue) evictSpeciated(overflow int) error {
	species, err := q.cfg.Partitioner.Partition(q.members)
	if err != nil {
		return fmt.Errorf("queue %s: speciated eviction: %w", q.cfg.Name, err)
	}

	sizes := make([]int, len(species))
	for i, members := range species {
		sizes[i] = len(members)
	}
	quotas := largestRemainderQuotas(sizes, overflow)

	evict := make(map[model.GenomeID]struct{}, overflow)
	for i, members := range species {
		oldest := append([]model.Genome(nil), members...)
		sort.SliceStable(oldest, func(a, b int) bool {
			if oldest[a].BirthBatch == oldest[b].BirthBatch {
				return oldest[a].ID < oldest[b].ID
			}
			return oldest[a].BirthBatch < oldest[b].BirthBatch
		})
		for n := 0; n < quotas[i] && n < len(oldest); n++ {
			evict[oldest[n].ID] = struct{}{}
		}
	}

	kept := make([]model.Genome, 0, len(q.members)-len(evict))
	for _, member := range q.members {
		if _, gone := evict[member.ID]; gone {
			continue
		}
		kept = append(kept, member)
	}
	// Quota capping can leave the queue above target; fall back to FIFO for
	// the difference.
	if extra := len(kept) - q.cfg.TargetSize; extra > 0 {
		kept = kept[extra:]
	}
	q.members = kept
	return nil
}

// Snapshot returns a copy of the admitted set, taken atomically with respect
// to concurrent admission.
func (q *PopulationQueue) Snapshot() []model.Genome {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]model.Genome, len(q.members))
	copy(out, q.members)
	return out
}

func (q *PopulationQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.members)
}

// IDs returns the admitted genome IDs in queue order, for tracker
// reconciliation.
func (q *PopulationQueue) IDs() []model.GenomeID {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]model.GenomeID, len(q.members))
	for i, member := range q.members {
		out[i] = member.ID
	}
	return out
}
