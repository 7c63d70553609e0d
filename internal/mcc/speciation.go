package mcc

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"syzygos/internal/model"
)

// DistanceMetric measures dissimilarity between two genomes of the same
// population. It must be symmetric and return zero for identical genomes.
type DistanceMetric func(a, b model.Genome) float64

type PartitionerConfig struct {
	Metric             DistanceMetric
	TargetSpeciesCount int
	MaxIterations      int
	Workers            int
	Seed               int64
}

// SpeciationPartitioner clusters a population into species with a k-medoids
// sweep over the configured metric. The assignment step fans out across
// workers; medoid selection and output ordering are deterministic for a
// given seed.
type SpeciationPartitioner struct {
	cfg PartitionerConfig

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSpeciationPartitioner(cfg PartitionerConfig) (*SpeciationPartitioner, error) {
	if cfg.Metric == nil {
		return nil, fmt.Errorf("distance metric is required")
	}
	if cfg.TargetSpeciesCount <= 0 {
		return nil, fmt.Errorf("target species count must be > 0")
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 10
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &SpeciationPartitioner{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Partition splits the population into at most TargetSpeciesCount species.
// Each returned species preserves the population's original ordering, and
// species are ordered by their smallest member index so output is stable.
func (p *SpeciationPartitioner) Partition(population []model.Genome) ([][]model.Genome, error) {
	if len(population) == 0 {
		return nil, nil
	}
	k := p.cfg.TargetSpeciesCount
	if k > len(population) {
		k = len(population)
	}

	p.mu.Lock()
	perm := p.rng.Perm(len(population))
	p.mu.Unlock()
	medoids := append([]int(nil), perm[:k]...)
	sort.Ints(medoids)

	assignment := make([]int, len(population))
	for iter := 0; iter < p.cfg.MaxIterations; iter++ {
		if err := p.assign(population, medoids, assignment); err != nil {
			return nil, err
		}
		next := p.recomputeMedoids(population, medoids, assignment)
		if equalInts(next, medoids) {
			break
		}
		medoids = next
	}
	if err := p.assign(population, medoids, assignment); err != nil {
		return nil, err
	}

	species := make([][]model.Genome, len(medoids))
	for i, genome := range population {
		cluster := assignment[i]
		species[cluster] = append(species[cluster], genome)
	}
	out := make([][]model.Genome, 0, len(species))
	for _, members := range species {
		if len(members) > 0 {
			out = append(out, members)
		}
	}
	return out, nil
}

func (p *SpeciationPartitioner) assign(population []model.Genome, medoids, assignment []int) error {
	var g errgroup.Group
	g.SetLimit(p.cfg.Workers)

	chunk := (len(population) + p.cfg.Workers - 1) / p.cfg.Workers
	for start := 0; start < len(population); start += chunk {
		end := start + chunk
		if end > len(population) {
			end = len(population)
		}
		lo, hi := start, end
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				best := 0
				bestDist := math.Inf(1)
				for c, m := range medoids {
					d := p.cfg.Metric(population[i], population[m])
					if d < bestDist {
						best = c
						bestDist = d
					}
				}
				assignment[i] = best
			}
			return nil
		})
	}
	return g.Wait()
}

func (p *SpeciationPartitioner) recomputeMedoids(population []model.Genome, medoids, assignment []int) []int {
	next := append([]int(nil), medoids...)
	for c := range medoids {
		members := make([]int, 0)
		for i := range population {
			if assignment[i] == c {
				members = append(members, i)
			}
		}
		if len(members) == 0 {
			continue
		}
		bestIdx := members[0]
		bestTotal := math.Inf(1)
		for _, candidate := range members {
			total := 0.0
			for _, other := range members {
				total += p.cfg.Metric(population[candidate], population[other])
			}
			if total < bestTotal {
				bestIdx = candidate
				bestTotal = total
			}
		}
		next[c] = bestIdx
	}
	return next
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// largestRemainderQuotas splits total proportionally to sizes, assigning
// floor shares first and distributing the leftovers round-robin in order of
// descending remainder (ties broken by lower index). Quotas never exceed
// their bucket's size; excess spills to the next eligible bucket.
func largestRemainderQuotas(sizes []int, total int) []int {
	quotas := make([]int, len(sizes))
	if total <= 0 || len(sizes) == 0 {
		return quotas
	}
	sum := 0
	for _, size := range sizes {
		sum += size
	}
	if sum <= 0 {
		return quotas
	}
	if total > sum {
		total = sum
	}

	type share struct {
		idx       int
		remainder float64
	}
	shares := make([]share, 0, len(sizes))
	assigned := 0
	for i, size := range sizes {
		exact := float64(size) / float64(sum) * float64(total)
		base := int(math.Floor(exact))
		quotas[i] = base
		assigned += base
		shares = append(shares, share{idx: i, remainder: exact - float64(base)})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].remainder == shares[j].remainder {
			return shares[i].idx < shares[j].idx
		}
		return shares[i].remainder > shares[j].remainder
	})

	left := total - assigned
	for i := 0; left > 0; i++ {
		idx := shares[i%len(shares)].idx
		if quotas[idx] < sizes[idx] {
			quotas[idx]++
			left--
		}
		if i >= len(shares)*total {
			break
		}
	}
	return quotas
}
