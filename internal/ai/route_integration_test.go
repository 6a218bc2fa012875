package ai

import (
	"testing"

	"github.com/hollowmere/ashfall/internal/game/nav"
	"github.com/hollowmere/ashfall/internal/model"
	"github.com/hollowmere/ashfall/internal/testutil"
	"github.com/hollowmere/ashfall/internal/world"
)

// wallGrid builds a 16x16 plains grid split by a rock wall at x=8 with a
// single gap at y=12.
func wallGrid() *world.Grid {
	g := testutil.PlainsGrid(16, 16)
	for y := int32(0); y < 16; y++ {
		if y != 12 {
			g.SetCell(8, y, world.Cell{Terrain: model.TerrainRock})
		}
	}
	return g
}

// gridMover builds a MoveFunc enforcing walkability and occupancy, the same
// wiring the spawn manager gives live actors.
func gridMover(g *world.Grid) MoveFunc {
	return func(a *model.Actor, to model.Position) bool {
		if !g.IsWalkable(to) {
			return false
		}
		if err := g.MoveEntity(a.EntityID(), to); err != nil {
			return false
		}
		a.SetPosition(to)
		return true
	}
}

// gridPlanner builds a PathFunc over the real pathfinder.
func gridPlanner(g *world.Grid) PathFunc {
	finder := nav.NewPathFinder(g)
	return func(ent model.Entity, from, to model.Position) []model.Position {
		return finder.FindPath(ent, from, to, nav.Options{CheckDiagonalBlockage: true})
	}
}

func TestPatrolAI_WalksRealGrid(t *testing.T) {
	g := wallGrid()

	start := g.SurfacePosition(2, 2)
	actor := model.NewActor(21, "sentry", start)
	if err := g.PlaceEntity(actor.EntityID(), start); err != nil {
		t.Fatalf("PlaceEntity() error = %v", err)
	}

	goal := g.SurfacePosition(14, 2)
	ai := NewPatrolAI(actor, []model.Position{goal, start}, gridPlanner(g), gridMover(g))
	ai.Start()

	arrived := false
	for range 200 {
		ai.Tick()

		p := actor.Position()
		if !g.IsWalkable(p) {
			t.Fatalf("actor stands on unwalkable cell %v", p)
		}
		if gp, ok := g.EntityPosition(actor.EntityID()); !ok || gp != p {
			t.Fatalf("occupancy desynced: grid has %v, actor has %v", gp, p)
		}

		if p.X == goal.X && p.Y == goal.Y {
			arrived = true
			break
		}
	}

	if !arrived {
		t.Fatal("patroller never reached the far waypoint")
	}
}

func TestPatrolAI_BlockedGapRecovers(t *testing.T) {
	g := wallGrid()

	start := g.SurfacePosition(2, 12)
	actor := model.NewActor(22, "sentry", start)
	if err := g.PlaceEntity(actor.EntityID(), start); err != nil {
		t.Fatalf("PlaceEntity() error = %v", err)
	}

	// Park another entity in the only gap through the wall.
	gap := g.SurfacePosition(8, 12)
	if err := g.PlaceEntity(99, gap); err != nil {
		t.Fatalf("PlaceEntity() error = %v", err)
	}

	goal := g.SurfacePosition(14, 12)
	ai := NewPatrolAI(actor, []model.Position{goal}, gridPlanner(g), gridMover(g))
	ai.Start()

	tickN(ai, 40)

	if got := actor.Position(); got.X >= gap.X {
		t.Fatalf("actor at %v, should be held on the near side of the gap", got)
	}

	g.RemoveEntity(99)

	arrived := false
	for range 100 {
		ai.Tick()
		p := actor.Position()
		if p.X == goal.X && p.Y == goal.Y {
			arrived = true
			break
		}
	}

	if !arrived {
		t.Fatal("patroller never crossed the freed gap")
	}
}

func TestEscortAI_FollowsLeaderThroughGap(t *testing.T) {
	g := wallGrid()

	start := g.SurfacePosition(5, 12)
	actor := model.NewActor(23, "porter", start)
	if err := g.PlaceEntity(actor.EntityID(), start); err != nil {
		t.Fatalf("PlaceEntity() error = %v", err)
	}

	leaderPos := g.SurfacePosition(12, 12)
	leaderFn := func() (model.Position, bool) { return leaderPos, true }

	ai := NewEscortAI(actor, leaderFn, gridPlanner(g), gridMover(g))
	ai.Start()

	caughtUp := false
	for range 100 {
		ai.Tick()
		if ai.State() == StateWaiting {
			caughtUp = true
			break
		}
	}

	if !caughtUp {
		t.Fatal("escort never caught up with the leader")
	}
	if got := actor.Position(); got.ChebyshevDistance(leaderPos) > escortFollowDistance {
		t.Errorf("escort stopped at %v, outside follow distance of %v", got, leaderPos)
	}
}
