package maze

import (
	"context"
	"math/rand"

	"syzygos/internal/mcc"
	"syzygos/internal/model"
)

// Outcome is the result of simulating one navigator in one arena.
type Outcome struct {
	Solved   bool
	Steps    int
	Progress float64
}

// Simulate walks the navigator through the arena for at most budget steps.
// At each step the policy follows the goal gradient with probability Greed,
// otherwise it picks the passable direction with the highest bias, avoiding
// an immediate backtrack when any other exit exists. The walk is
// deterministic for a given arena/navigator pair.
func Simulate(layout *Layout, gene NavigatorGene, trialSeed int64, budget int) Outcome {
	pos := layout.Start
	startDist := layout.DistanceToGoal(pos)
	if startDist < 0 {
		return Outcome{}
	}
	if startDist == 0 {
		return Outcome{Solved: true, Progress: 1}
	}

	rng := rand.New(rand.NewSource(trialSeed))
	prev := Point{-1, -1}

	steps := 0
	for ; steps < budget; steps++ {
		next, ok := chooseStep(layout, gene, rng, pos, prev)
		if !ok {
			break
		}
		prev, pos = pos, next
		if pos == layout.Goal {
			steps++
			return Outcome{Solved: true, Steps: steps, Progress: 1}
		}
	}

	finalDist := layout.DistanceToGoal(pos)
	progress := 1 - float64(finalDist)/float64(startDist)
	if progress < 0 {
		progress = 0
	}
	return Outcome{Steps: steps, Progress: progress}
}

func chooseStep(layout *Layout, gene NavigatorGene, rng *rand.Rand, pos, prev Point) (Point, bool) {
	exits := make([]Point, 0, 4)
	biases := make([]float64, 0, 4)
	for i, d := range directions {
		next := Point{pos.X + d.X, pos.Y + d.Y}
		if layout.passable(next) {
			exits = append(exits, next)
			biases = append(biases, gene.Bias[i])
		}
	}
	if len(exits) == 0 {
		return Point{}, false
	}

	if rng.Float64() < gene.Greed {
		best := exits[0]
		for _, next := range exits[1:] {
			if layout.DistanceToGoal(next) < layout.DistanceToGoal(best) {
				best = next
			}
		}
		return best, true
	}

	// Exploring: highest bias wins, with jitter to break ties; never walk
	// straight back into the previous cell if anywhere else is open.
	bestIdx := -1
	bestScore := 0.0
	for i, next := range exits {
		if next == prev && len(exits) > 1 {
			continue
		}
		score := biases[i] + rng.Float64()*0.05
		if bestIdx < 0 || score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	return exits[bestIdx], true
}

// NavigatorScorer evaluates navigator candidates against arena opponents.
// A trial succeeds when the navigator reaches the goal within the step
// budget; the objective is the normalized progress toward the goal.
type NavigatorScorer struct {
	StepBudget int
}

func (s NavigatorScorer) Score(_ context.Context, candidate, opponent mcc.Phenome) (model.TrialResult, error) {
	navigator, err := asNavigator(candidate)
	if err != nil {
		return model.TrialResult{}, err
	}
	arena, err := asArena(opponent)
	if err != nil {
		return model.TrialResult{}, err
	}

	outcome := Simulate(arena.Layout(), navigator.gene, trialSeed(navigator, arena), s.StepBudget)
	return model.TrialResult{
		OpponentID: arena.GenomeID(),
		Success:    outcome.Solved,
		Objective:  outcome.Progress,
		SimSteps:   outcome.Steps,
	}, nil
}

// ArenaScorer evaluates arena candidates against navigator opponents. The
// trial runs the same simulation from the other direction: a success means
// this navigator can solve the arena, so the arena's success tally counts
// solvers and its failure tally counts navigators it defeats. The objective
// rewards longer solution paths relative to the grid area.
type ArenaScorer struct {
	StepBudget int
}

func (s ArenaScorer) Score(_ context.Context, candidate, opponent mcc.Phenome) (model.TrialResult, error) {
	arena, err := asArena(candidate)
	if err != nil {
		return model.TrialResult{}, err
	}
	navigator, err := asNavigator(opponent)
	if err != nil {
		return model.TrialResult{}, err
	}

	layout := arena.Layout()
	outcome := Simulate(layout, navigator.gene, trialSeed(navigator, arena), s.StepBudget)
	area := len(layout.Grid) * len(layout.Grid[0])
	return model.TrialResult{
		OpponentID: navigator.GenomeID(),
		Success:    outcome.Solved,
		Objective:  float64(layout.PathLength()) / float64(area),
		SimSteps:   outcome.Steps,
	}, nil
}

// trialSeed fixes the simulation stream per pair, so the same two phenomes
// always replay the same walk regardless of which side initiated the trial.
func trialSeed(navigator *NavigatorPhenome, arena *ArenaPhenome) int64 {
	return navigator.gene.Seed ^ (int64(arena.GenomeID()) << 17) ^ int64(navigator.GenomeID())
}
