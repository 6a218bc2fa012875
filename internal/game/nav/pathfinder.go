// Package nav implements bounded A* pathfinding over the world grid.
package nav

import (
	"container/heap"
	"math"

	"github.com/hollowmere/ashfall/internal/model"
	"github.com/hollowmere/ashfall/internal/world"
)

const (
	// DefaultMaxNodesExplored bounds a search that is given no explicit
	// budget. At 10k expansions a worst-case search stays well under a
	// millisecond on current hardware.
	DefaultMaxNodesExplored = 10_000

	DefaultCardinalCost = 1.0
	DefaultDiagonalCost = math.Sqrt2

	// climbWeight scales elevation change into step cost. The heuristic
	// charges the same weight on net vertical displacement, which keeps it
	// a lower bound.
	climbWeight = 1.0 / 16
)

type direction struct {
	dx, dy   int32
	cost     float64
	diagonal bool
}

// PathFinder runs A* searches over a world grid. Searches keep all state on
// the call frame, so any number may run concurrently; the configuration
// setters are NOT synchronized against in-flight searches and must be
// serialized by the caller.
type PathFinder struct {
	grid *world.Grid

	maxNodes     int
	cardinalCost float64
	diagonalCost float64
	diagonal     bool
	dirs         []direction
}

// NewPathFinder creates a finder with 8-connected movement and default costs.
func NewPathFinder(g *world.Grid) *PathFinder {
	p := &PathFinder{
		grid:         g,
		maxNodes:     DefaultMaxNodesExplored,
		cardinalCost: DefaultCardinalCost,
		diagonalCost: DefaultDiagonalCost,
		diagonal:     true,
	}
	p.rebuildDirections()
	return p
}

// SetMaxNodesExplored sets the default expansion budget for searches that do
// not override it. Non-positive restores the built-in default.
func (p *PathFinder) SetMaxNodesExplored(n int) {
	if n <= 0 {
		n = DefaultMaxNodesExplored
	}
	p.maxNodes = n
}

// SetDiagonalMovement toggles between 8- and 4-connected movement and
// rebuilds the direction table.
func (p *PathFinder) SetDiagonalMovement(enabled bool) {
	p.diagonal = enabled
	p.rebuildDirections()
}

// SetMovementCosts replaces the per-step costs. The diagonal cost must exceed
// the cardinal cost; other pairs are ignored.
func (p *PathFinder) SetMovementCosts(cardinal, diagonal float64) {
	if cardinal <= 0 || diagonal <= cardinal {
		return
	}
	p.cardinalCost = cardinal
	p.diagonalCost = diagonal
	p.rebuildDirections()
}

func (p *PathFinder) rebuildDirections() {
	dirs := []direction{
		{0, -1, p.cardinalCost, false},
		{1, 0, p.cardinalCost, false},
		{0, 1, p.cardinalCost, false},
		{-1, 0, p.cardinalCost, false},
	}
	if p.diagonal {
		dirs = append(dirs,
			direction{1, -1, p.diagonalCost, true},
			direction{1, 1, p.diagonalCost, true},
			direction{-1, 1, p.diagonalCost, true},
			direction{-1, -1, p.diagonalCost, true},
		)
	}
	p.dirs = dirs
}

// SearchStats reports what a single search did.
type SearchStats struct {
	// NodesExplored counts expansions, not pushes. Fast-fail paths report
	// zero.
	NodesExplored int
	Found         bool // full path to the target
	Partial       bool // best-effort path, target not reached
	Truncated     bool // MaxPathLength cut the result
}

// pathNode lives in a per-call arena. Parents are arena indices (-1 for the
// start), so reconstruction never chases pointers and the whole search graph
// is dropped in one piece when the call returns.
type pathNode struct {
	x, y, z int32
	parent  int32
	g, h    float64
}

// FindPath searches for a route from start to target for the given entity.
// An empty result means no route within the configured limits and is a
// normal outcome, not an error. A nil entity searches without terrain
// capability restrictions.
func (p *PathFinder) FindPath(e model.Entity, start, target model.Position, opts Options) []model.Position {
	path, _ := p.FindPathStats(e, start, target, opts)
	return path
}

// FindPathStats is FindPath plus search statistics.
func (p *PathFinder) FindPathStats(e model.Entity, start, target model.Position, opts Options) ([]model.Position, SearchStats) {
	var stats SearchStats

	// Fast fails, cheapest first. None of these expand a node.
	if start.X == target.X && start.Y == target.Y {
		stats.Found = true
		return []model.Position{p.grid.SurfacePosition(start.X, start.Y)}, stats
	}
	if !p.grid.IsWalkable(p.grid.SurfacePosition(target.X, target.Y)) {
		return nil, stats
	}

	startPos := p.grid.SurfacePosition(start.X, start.Y)
	goal := p.grid.SurfacePosition(target.X, target.Y)
	if opts.MaxDistance > 0 && p.heuristic(startPos, goal) > opts.MaxDistance {
		return nil, stats
	}

	maxNodes := opts.MaxNodes
	if maxNodes <= 0 {
		maxNodes = p.maxNodes
	}

	arena := make([]pathNode, 0, 256)
	arena = append(arena, pathNode{
		x: startPos.X, y: startPos.Y, z: startPos.Z,
		parent: -1,
		h:      p.heuristic(startPos, goal),
	})

	open := make(openHeap, 0, 64)
	heap.Push(&open, openEntry{f: arena[0].h, idx: 0})
	closed := make(map[uint64]struct{}, 256)

	bestSeen := int32(0) // arena index with the smallest h generated so far
	goalIdx := int32(-1)

	for open.Len() > 0 && stats.NodesExplored < maxNodes {
		cur := heap.Pop(&open).(openEntry).idx
		n := arena[cur]

		key := columnKey(n.x, n.y)
		if _, ok := closed[key]; ok {
			continue
		}
		if n.x == goal.X && n.y == goal.Y {
			goalIdx = cur
			break
		}
		closed[key] = struct{}{}
		stats.NodesExplored++

		for _, d := range p.dirs {
			nx, ny := n.x+d.dx, n.y+d.dy
			if nx < 0 || nx >= p.grid.Width() || ny < 0 || ny >= p.grid.Height() {
				continue
			}
			npos := p.grid.SurfacePosition(nx, ny)
			if !p.grid.IsWalkable(npos) {
				continue
			}
			if e != nil && !e.CanTraverse(p.grid.TerrainAt(npos)) {
				continue
			}
			if d.diagonal && opts.CheckDiagonalBlockage {
				if !p.grid.IsWalkable(p.grid.SurfacePosition(nx, n.y)) ||
					!p.grid.IsWalkable(p.grid.SurfacePosition(n.x, ny)) {
					continue
				}
			}
			if _, ok := closed[columnKey(nx, ny)]; ok {
				continue
			}

			g := n.g + d.cost + climbWeight*float64(abs32(npos.Z-n.z))
			h := p.heuristic(npos, goal)
			arena = append(arena, pathNode{x: nx, y: ny, z: npos.Z, parent: cur, g: g, h: h})
			idx := int32(len(arena) - 1)
			if h < arena[bestSeen].h {
				bestSeen = idx
			}
			heap.Push(&open, openEntry{f: g + h, idx: idx})
		}
	}

	switch {
	case goalIdx >= 0:
		stats.Found = true
	case opts.ReturnPartialPath:
		goalIdx = bestSeen
		stats.Partial = true
	default:
		return nil, stats
	}

	path := reconstruct(arena, goalIdx)
	if opts.SmoothPath && len(path) > 2 {
		path = p.smooth(e, path, opts.CheckDiagonalBlockage)
	}
	if opts.MaxPathLength > 0 && len(path) > opts.MaxPathLength {
		path = path[:opts.MaxPathLength]
		stats.Truncated = true
	}
	return path, stats
}

// heuristic is the octile distance under the configured step costs plus a
// linear term for net vertical displacement.
func (p *PathFinder) heuristic(from, to model.Position) float64 {
	dx := float64(abs32(to.X - from.X))
	dy := float64(abs32(to.Y - from.Y))
	climb := climbWeight * float64(abs32(to.Z-from.Z))
	if !p.diagonal {
		return p.cardinalCost*(dx+dy) + climb
	}
	short := math.Min(dx, dy)
	long := math.Max(dx, dy)
	return p.cardinalCost*(long-short) + p.diagonalCost*short + climb
}

// smooth removes intermediate waypoints reachable in a straight grid line
// from the waypoint before them. Up to three passes, stopping early when a
// pass changes nothing.
func (p *PathFinder) smooth(e model.Entity, path []model.Position, checkCorners bool) []model.Position {
	for range 3 {
		if len(path) <= 2 {
			return path
		}

		changed := false
		smoothed := make([]model.Position, 0, len(path))
		smoothed = append(smoothed, path[0])

		for i := 1; i < len(path)-1; i++ {
			prev := smoothed[len(smoothed)-1]
			next := path[i+1]
			if p.lineOpen(e, prev, next, checkCorners) {
				changed = true
				continue
			}
			smoothed = append(smoothed, path[i])
		}
		smoothed = append(smoothed, path[len(path)-1])
		path = smoothed

		if !changed {
			break
		}
	}
	return path
}

func reconstruct(arena []pathNode, idx int32) []model.Position {
	count := 0
	for i := idx; i >= 0; i = arena[i].parent {
		count++
	}
	path := make([]model.Position, count)
	for i := idx; i >= 0; i = arena[i].parent {
		count--
		path[count] = model.NewPosition(arena[i].x, arena[i].y, arena[i].z)
	}
	return path
}

func columnKey(x, y int32) uint64 {
	return uint64(uint32(x))<<32 | uint64(uint32(y))
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
