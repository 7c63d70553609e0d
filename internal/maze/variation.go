package maze

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"syzygos/internal/mcc"
	"syzygos/internal/model"
)

// ArenaParams bounds the layouts the arena operators may produce.
type ArenaParams struct {
	Width  int
	Height int
}

// ArenaVariation produces arena genomes. With no parents it invents random
// layouts; otherwise it mutates copies of randomly chosen parents by
// jittering the braiding factor and occasionally recarving the layout.
type ArenaVariation struct {
	params ArenaParams
	ids    *mcc.IDSequence

	mu  sync.Mutex
	rng *rand.Rand
}

func NewArenaVariation(params ArenaParams, ids *mcc.IDSequence, seed int64) *ArenaVariation {
	return &ArenaVariation{
		params: params,
		ids:    ids,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (v *ArenaVariation) Produce(_ context.Context, parents []model.Genome, batchSize int) ([]model.Genome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]model.Genome, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		var gene ArenaGene
		if len(parents) == 0 {
			gene = v.randomGene()
		} else {
			parent, err := decodeArenaGene(parents[v.rng.Intn(len(parents))])
			if err != nil {
				return nil, err
			}
			gene = v.mutate(parent)
		}
		genome, err := NewArenaGenome(v.ids.Next(), gene)
		if err != nil {
			return nil, err
		}
		out = append(out, genome)
	}
	return out, nil
}

func (v *ArenaVariation) randomGene() ArenaGene {
	return ArenaGene{
		Width:    v.params.Width,
		Height:   v.params.Height,
		Braiding: v.rng.Float64() * 0.3,
		Layout:   v.rng.Int63(),
	}
}

func (v *ArenaVariation) mutate(gene ArenaGene) ArenaGene {
	gene.Braiding = clamp(gene.Braiding+(v.rng.Float64()-0.5)*0.2, 0, 1)
	if v.rng.Float64() < 0.5 {
		gene.Layout = v.rng.Int63()
	}
	return gene
}

// NavigatorVariation produces navigator genomes. Random genes lean greedy so
// an unevolved population can still make progress in easy arenas.
type NavigatorVariation struct {
	ids *mcc.IDSequence

	mu  sync.Mutex
	rng *rand.Rand
}

func NewNavigatorVariation(ids *mcc.IDSequence, seed int64) *NavigatorVariation {
	return &NavigatorVariation{
		ids: ids,
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (v *NavigatorVariation) Produce(_ context.Context, parents []model.Genome, batchSize int) ([]model.Genome, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]model.Genome, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		var gene NavigatorGene
		if len(parents) == 0 {
			gene = v.randomGene()
		} else {
			parent, err := decodeNavigatorGene(parents[v.rng.Intn(len(parents))])
			if err != nil {
				return nil, err
			}
			gene = v.mutate(parent)
		}
		genome, err := NewNavigatorGenome(v.ids.Next(), gene)
		if err != nil {
			return nil, err
		}
		out = append(out, genome)
	}
	return out, nil
}

func (v *NavigatorVariation) randomGene() NavigatorGene {
	gene := NavigatorGene{
		Greed: 0.6 + v.rng.Float64()*0.4,
		Seed:  v.rng.Int63(),
	}
	for i := range gene.Bias {
		gene.Bias[i] = v.rng.NormFloat64() * 0.2
	}
	return gene
}

func (v *NavigatorVariation) mutate(gene NavigatorGene) NavigatorGene {
	gene.Greed = clamp(gene.Greed+(v.rng.Float64()-0.5)*0.2, 0, 1)
	for i := range gene.Bias {
		gene.Bias[i] += v.rng.NormFloat64() * 0.1
	}
	if v.rng.Float64() < 0.2 {
		gene.Seed = v.rng.Int63()
	}
	return gene
}

// DirectSeedArenas constructs solvable arena genomes without any search; the
// carver yields a spanning tree, so connectivity holds for every layout seed.
func DirectSeedArenas(count int, params ArenaParams, ids *mcc.IDSequence, seed int64) ([]model.Genome, error) {
	rng := rand.New(rand.NewSource(seed))
	out := make([]model.Genome, 0, count)
	for i := 0; i < count; i++ {
		genome, err := NewArenaGenome(ids.Next(), ArenaGene{
			Width:    params.Width,
			Height:   params.Height,
			Braiding: rng.Float64() * 0.2,
			Layout:   rng.Int63(),
		})
		if err != nil {
			return nil, err
		}
		out = append(out, genome)
	}
	return out, nil
}

// ArenaDistance compares arenas by braiding factor and layout seed
// disagreement, which is enough for the partitioner to separate families of
// related layouts.
func ArenaDistance(a, b model.Genome) float64 {
	ga, errA := decodeArenaGene(a)
	gb, errB := decodeArenaGene(b)
	if errA != nil || errB != nil {
		return 0
	}
	d := math.Abs(ga.Braiding - gb.Braiding)
	if ga.Layout != gb.Layout {
		d += 1
	}
	return d
}

// NavigatorDistance is the euclidean distance over the policy parameters.
func NavigatorDistance(a, b model.Genome) float64 {
	ga, errA := decodeNavigatorGene(a)
	gb, errB := decodeNavigatorGene(b)
	if errA != nil || errB != nil {
		return 0
	}
	sum := (ga.Greed - gb.Greed) * (ga.Greed - gb.Greed)
	for i := range ga.Bias {
		diff := ga.Bias[i] - gb.Bias[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
