package model

import (
	"fmt"
	"math"
)

// Position is a discrete grid coordinate in the game world.
// Value type, passed by value and compared with == (immutable).
type Position struct {
	X int32
	Y int32
	Z int32
}

// NewPosition creates a Position with the given coordinates.
func NewPosition(x, y, z int32) Position {
	return Position{X: x, Y: y, Z: z}
}

// WithZ returns a new Position with the Z coordinate replaced.
func (p Position) WithZ(z int32) Position {
	p.Z = z
	return p
}

// DistanceSquared returns the squared 3D distance to another position
// (no sqrt, for cheap threshold comparisons).
func (p Position) DistanceSquared(other Position) int64 {
	dx := int64(p.X - other.X)
	dy := int64(p.Y - other.Y)
	dz := int64(p.Z - other.Z)
	return dx*dx + dy*dy + dz*dz
}

// Distance returns the 3D Euclidean distance to another position.
func (p Position) Distance(other Position) float64 {
	return math.Sqrt(float64(p.DistanceSquared(other)))
}

// ChebyshevDistance returns the planar Chebyshev distance (max of |dx|, |dy|).
// One 8-connected grid step covers exactly distance 1.
func (p Position) ChebyshevDistance(other Position) int32 {
	dx := abs32(p.X - other.X)
	dy := abs32(p.Y - other.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// IsAdjacent reports whether other is reachable from p in a single
// 8-connected step (excluding p itself). Z is ignored — elevation
// changes ride along with planar steps.
func (p Position) IsAdjacent(other Position) bool {
	if p.X == other.X && p.Y == other.Y {
		return false
	}
	return abs32(p.X-other.X) <= 1 && abs32(p.Y-other.Y) <= 1
}

// String implements fmt.Stringer for log output.
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
