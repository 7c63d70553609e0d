package maze

import (
	"context"
	"testing"

	"syzygos/internal/mcc"
	"syzygos/internal/model"
)

func TestArenaVariationProducesValidGenes(t *testing.T) {
	ctx := context.Background()
	ids := &mcc.IDSequence{}
	variation := NewArenaVariation(ArenaParams{Width: 11, Height: 11}, ids, 1)

	random, err := variation.Produce(ctx, nil, 8)
	if err != nil {
		t.Fatalf("produce random: %v", err)
	}
	if len(random) != 8 {
		t.Fatalf("produced %d genomes, want 8", len(random))
	}
	seen := make(map[model.GenomeID]bool)
	for _, genome := range random {
		if seen[genome.ID] {
			t.Fatalf("duplicate genome id %d", genome.ID)
		}
		seen[genome.ID] = true
		if _, err := decodeArenaGene(genome); err != nil {
			t.Fatalf("random gene invalid: %v", err)
		}
	}

	mutated, err := variation.Produce(ctx, random, 8)
	if err != nil {
		t.Fatalf("produce mutated: %v", err)
	}
	for _, genome := range mutated {
		gene, err := decodeArenaGene(genome)
		if err != nil {
			t.Fatalf("mutated gene invalid: %v", err)
		}
		if !BuildLayout(gene).Solvable() {
			t.Fatalf("mutated gene %d builds an unsolvable layout", genome.ID)
		}
	}
}

func TestNavigatorVariationClampsGreed(t *testing.T) {
	ctx := context.Background()
	variation := NewNavigatorVariation(&mcc.IDSequence{}, 1)

	parents, err := variation.Produce(ctx, nil, 4)
	if err != nil {
		t.Fatalf("produce random: %v", err)
	}

	// Repeated mutation must keep greed inside [0,1].
	for round := 0; round < 20; round++ {
		parents, err = variation.Produce(ctx, parents, 4)
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		for _, genome := range parents {
			gene, err := decodeNavigatorGene(genome)
			if err != nil {
				t.Fatalf("round %d: %v", round, err)
			}
			if gene.Greed < 0 || gene.Greed > 1 {
				t.Fatalf("round %d: greed %f escaped [0,1]", round, gene.Greed)
			}
		}
	}
}

func TestVariationRejectsForeignParents(t *testing.T) {
	ctx := context.Background()
	variation := NewArenaVariation(ArenaParams{Width: 11, Height: 11}, &mcc.IDSequence{}, 1)

	foreign := []model.Genome{{ID: 9, Payload: []byte(`{"greed":0.5}`)}}
	if _, err := variation.Produce(ctx, foreign, 1); err == nil {
		t.Fatalf("expected error mutating a non-arena parent")
	}
}

func TestDirectSeedArenasAreSolvable(t *testing.T) {
	ids := &mcc.IDSequence{}
	seeds, err := DirectSeedArenas(6, ArenaParams{Width: 11, Height: 11}, ids, 42)
	if err != nil {
		t.Fatalf("direct seeds: %v", err)
	}
	if len(seeds) != 6 {
		t.Fatalf("got %d seeds, want 6", len(seeds))
	}
	for _, genome := range seeds {
		gene, err := decodeArenaGene(genome)
		if err != nil {
			t.Fatalf("seed gene invalid: %v", err)
		}
		if !BuildLayout(gene).Solvable() {
			t.Fatalf("seed %d unsolvable", genome.ID)
		}
	}
}

func TestDistanceMetrics(t *testing.T) {
	a, err := NewArenaGenome(1, ArenaGene{Width: 11, Height: 11, Braiding: 0.1, Layout: 5})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewArenaGenome(2, ArenaGene{Width: 11, Height: 11, Braiding: 0.6, Layout: 6})
	if err != nil {
		t.Fatal(err)
	}
	if ArenaDistance(a, a) != 0 {
		t.Fatalf("identical arenas should have zero distance")
	}
	if ArenaDistance(a, b) != ArenaDistance(b, a) {
		t.Fatalf("arena distance is not symmetric")
	}
	if ArenaDistance(a, b) <= 0 {
		t.Fatalf("distinct arenas should have positive distance")
	}

	n1, err := NewNavigatorGenome(3, NavigatorGene{Greed: 0.2})
	if err != nil {
		t.Fatal(err)
	}
	n2, err := NewNavigatorGenome(4, NavigatorGene{Greed: 0.9, Bias: [4]float64{1, 0, 0, 0}})
	if err != nil {
		t.Fatal(err)
	}
	if NavigatorDistance(n1, n1) != 0 {
		t.Fatalf("identical navigators should have zero distance")
	}
	if NavigatorDistance(n1, n2) <= 0 {
		t.Fatalf("distinct navigators should have positive distance")
	}
}
