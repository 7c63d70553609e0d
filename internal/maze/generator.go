package maze

import "math/rand"

const (
	wall    = true
	passage = false
)

type Point struct {
	X, Y int
}

var directions = []Point{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}

// Layout is the decoded form of an arena gene: a carved grid plus a BFS
// distance field rooted at the goal. Distances are in steps; unreachable
// cells hold -1.
type Layout struct {
	Grid  [][]bool
	Start Point
	Goal  Point

	dist [][]int
}

// BuildLayout deterministically expands an arena gene. The carver is a
// recursive backtracker over odd-coordinate nodes, which yields a spanning
// tree, so every layout is connected before braiding adds cycles.
func BuildLayout(gene ArenaGene) *Layout {
	rows := oddBelow(gene.Height)
	cols := oddBelow(gene.Width)

	grid := make([][]bool, rows)
	for y := range grid {
		grid[y] = make([]bool, cols)
		for x := range grid[y] {
			grid[y][x] = wall
		}
	}

	rng := rand.New(rand.NewSource(gene.Layout))
	start := Point{1, 1}
	goal := Point{cols - 2, rows - 2}

	carve(grid, start, rng)
	if gene.Braiding > 0 {
		braid(grid, gene.Braiding, rng)
	}

	layout := &Layout{Grid: grid, Start: start, Goal: goal}
	layout.dist = distanceField(grid, goal)
	return layout
}

// DistanceToGoal returns the shortest-path step count from p to the goal,
// or -1 when p is a wall or unreachable.
func (l *Layout) DistanceToGoal(p Point) int {
	if p.Y < 0 || p.Y >= len(l.dist) || p.X < 0 || p.X >= len(l.dist[0]) {
		return -1
	}
	return l.dist[p.Y][p.X]
}

// PathLength is the solution length from start to goal.
func (l *Layout) PathLength() int {
	return l.DistanceToGoal(l.Start)
}

func (l *Layout) Solvable() bool {
	return l.PathLength() >= 0
}

func (l *Layout) passable(p Point) bool {
	if p.Y < 0 || p.Y >= len(l.Grid) || p.X < 0 || p.X >= len(l.Grid[0]) {
		return false
	}
	return l.Grid[p.Y][p.X] == passage
}

func carve(grid [][]bool, start Point, rng *rand.Rand) {
	rows, cols := len(grid), len(grid[0])
	jumps := []Point{{0, -2}, {0, 2}, {-2, 0}, {2, 0}}

	stack := []Point{start}
	grid[start.Y][start.X] = passage

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		candidates := make([]Point, 0, 4)
		for _, j := range jumps {
			nx, ny := curr.X+j.X, curr.Y+j.Y
			if nx > 0 && nx < cols-1 && ny > 0 && ny < rows-1 && grid[ny][nx] == wall {
				candidates = append(candidates, j)
			}
		}
		if len(candidates) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		j := candidates[rng.Intn(len(candidates))]
		grid[curr.Y+j.Y/2][curr.X+j.X/2] = passage
		grid[curr.Y+j.Y][curr.X+j.X] = passage
		stack = append(stack, Point{curr.X + j.X, curr.Y + j.Y})
	}
}

// braid knocks out walls next to dead ends with the given probability,
// turning the tree into a graph with cycles. Connectivity can only improve.
func braid(grid [][]bool, probability float64, rng *rand.Rand) {
	rows, cols := len(grid), len(grid[0])

	for y := 1; y < rows-1; y += 2 {
		for x := 1; x < cols-1; x += 2 {
			if grid[y][x] == wall {
				continue
			}
			exits := 0
			for _, d := range directions {
				if grid[y+d.Y][x+d.X] == passage {
					exits++
				}
			}
			if exits != 1 || rng.Float64() >= probability {
				continue
			}

			candidates := make([]Point, 0, 4)
			for _, j := range []Point{{0, -2}, {0, 2}, {-2, 0}, {2, 0}} {
				nx, ny := x+j.X, y+j.Y
				wx, wy := x+j.X/2, y+j.Y/2
				if nx > 0 && nx < cols-1 && ny > 0 && ny < rows-1 &&
					grid[ny][nx] == passage && grid[wy][wx] == wall {
					candidates = append(candidates, Point{wx, wy})
				}
			}
			if len(candidates) > 0 {
				c := candidates[rng.Intn(len(candidates))]
				grid[c.Y][c.X] = passage
			}
		}
	}
}

func distanceField(grid [][]bool, goal Point) [][]int {
	rows, cols := len(grid), len(grid[0])
	dist := make([][]int, rows)
	for y := range dist {
		dist[y] = make([]int, cols)
		for x := range dist[y] {
			dist[y][x] = -1
		}
	}
	if grid[goal.Y][goal.X] == wall {
		return dist
	}

	dist[goal.Y][goal.X] = 0
	queue := []Point{goal}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, d := range directions {
			nx, ny := curr.X+d.X, curr.Y+d.Y
			if nx < 0 || nx >= cols || ny < 0 || ny >= rows {
				continue
			}
			if grid[ny][nx] == passage && dist[ny][nx] < 0 {
				dist[ny][nx] = dist[curr.Y][curr.X] + 1
				queue = append(queue, Point{nx, ny})
			}
		}
	}
	return dist
}

func oddBelow(n int) int {
	if n < 5 {
		n = 5
	}
	if n%2 == 0 {
		return n - 1
	}
	return n
}
