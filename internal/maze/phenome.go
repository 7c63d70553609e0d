package maze

import (
	"context"
	"fmt"

	"syzygos/internal/mcc"
	"syzygos/internal/model"
)

// ArenaPhenome is a fully expanded maze layout.
type ArenaPhenome struct {
	id     model.GenomeID
	gene   ArenaGene
	layout *Layout
}

func (p *ArenaPhenome) GenomeID() model.GenomeID { return p.id }
func (p *ArenaPhenome) Layout() *Layout          { return p.layout }

// NavigatorPhenome is a steering policy bound to its genome identity.
type NavigatorPhenome struct {
	id   model.GenomeID
	gene NavigatorGene
}

func (p *NavigatorPhenome) GenomeID() model.GenomeID { return p.id }

// ArenaDecoder expands arena genes into layouts. Expansion is pure: the same
// gene always yields the same grid and distance field.
type ArenaDecoder struct{}

func (ArenaDecoder) Decode(_ context.Context, genome model.Genome) (mcc.Phenome, error) {
	gene, err := decodeArenaGene(genome)
	if err != nil {
		return nil, err
	}
	return &ArenaPhenome{id: genome.ID, gene: gene, layout: BuildLayout(gene)}, nil
}

type NavigatorDecoder struct{}

func (NavigatorDecoder) Decode(_ context.Context, genome model.Genome) (mcc.Phenome, error) {
	gene, err := decodeNavigatorGene(genome)
	if err != nil {
		return nil, err
	}
	return &NavigatorPhenome{id: genome.ID, gene: gene}, nil
}

func asArena(p mcc.Phenome) (*ArenaPhenome, error) {
	arena, ok := p.(*ArenaPhenome)
	if !ok {
		return nil, fmt.Errorf("phenome %d is not an arena", p.GenomeID())
	}
	return arena, nil
}

func asNavigator(p mcc.Phenome) (*NavigatorPhenome, error) {
	navigator, ok := p.(*NavigatorPhenome)
	if !ok {
		return nil, fmt.Errorf("phenome %d is not a navigator", p.GenomeID())
	}
	return navigator, nil
}
