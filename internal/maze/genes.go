// Package maze is the demonstration domain: arena genomes encode randomized
// maze layouts, navigator genomes encode stochastic steering policies, and
// the two populations coevolve under the engine's minimal criteria.
package maze

import (
	"encoding/json"
	"fmt"

	"syzygos/internal/model"
)

// ArenaGene is the payload of an arena genome. Width and Height bound the
// layout; Braiding adds cycles on top of the spanning tree; Layout seeds the
// carving so the same gene always produces the same maze.
type ArenaGene struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Braiding float64 `json:"braiding"`
	Layout   int64   `json:"layout"`
}

// NavigatorGene is the payload of a navigator genome. Greed is the
// probability of following the goal gradient at each step; Bias weights the
// four directions (up, down, left, right) when exploring instead; Seed fixes
// the policy's random stream.
type NavigatorGene struct {
	Greed float64    `json:"greed"`
	Bias  [4]float64 `json:"bias"`
	Seed  int64      `json:"seed"`
}

func NewArenaGenome(id model.GenomeID, gene ArenaGene) (model.Genome, error) {
	payload, err := json.Marshal(gene)
	if err != nil {
		return model.Genome{}, fmt.Errorf("encode arena gene: %w", err)
	}
	return model.Genome{ID: id, Payload: payload}, nil
}

func NewNavigatorGenome(id model.GenomeID, gene NavigatorGene) (model.Genome, error) {
	payload, err := json.Marshal(gene)
	if err != nil {
		return model.Genome{}, fmt.Errorf("encode navigator gene: %w", err)
	}
	return model.Genome{ID: id, Payload: payload}, nil
}

func decodeArenaGene(genome model.Genome) (ArenaGene, error) {
	var gene ArenaGene
	if err := json.Unmarshal(genome.Payload, &gene); err != nil {
		return ArenaGene{}, fmt.Errorf("genome %d: decode arena gene: %w", genome.ID, err)
	}
	if gene.Width < 5 || gene.Height < 5 {
		return ArenaGene{}, fmt.Errorf("genome %d: arena %dx%d below minimum 5x5", genome.ID, gene.Width, gene.Height)
	}
	if gene.Braiding < 0 || gene.Braiding > 1 {
		return ArenaGene{}, fmt.Errorf("genome %d: braiding %f outside [0,1]", genome.ID, gene.Braiding)
	}
	return gene, nil
}

func decodeNavigatorGene(genome model.Genome) (NavigatorGene, error) {
	var gene NavigatorGene
	if err := json.Unmarshal(genome.Payload, &gene); err != nil {
		return NavigatorGene{}, fmt.Errorf("genome %d: decode navigator gene: %w", genome.ID, err)
	}
	if gene.Greed < 0 || gene.Greed > 1 {
		return NavigatorGene{}, fmt.Errorf("genome %d: greed %f outside [0,1]", genome.ID, gene.Greed)
	}
	return gene, nil
}
