package nav

import "github.com/hollowmere/ashfall/internal/model"

// lineOpen walks the grid line between two columns and reports whether every
// column on it admits the entity. Diagonal steps honor the corner rule when
// checkCorners is set, so smoothing never reintroduces a cut the search
// avoided.
func (p *PathFinder) lineOpen(ent model.Entity, from, to model.Position, checkCorners bool) bool {
	x, y := from.X, from.Y
	dx := abs32(to.X - x)
	dy := abs32(to.Y - y)
	sx := int32(1)
	if to.X < x {
		sx = -1
	}
	sy := int32(1)
	if to.Y < y {
		sy = -1
	}
	diff := dx - dy

	for {
		if !p.columnOpen(ent, x, y) {
			return false
		}
		if x == to.X && y == to.Y {
			return true
		}

		d2 := 2 * diff
		stepX := d2 > -dy
		stepY := d2 < dx
		if stepX && stepY && checkCorners {
			if !p.grid.IsWalkable(p.grid.SurfacePosition(x+sx, y)) ||
				!p.grid.IsWalkable(p.grid.SurfacePosition(x, y+sy)) {
				return false
			}
		}
		if stepX {
			diff -= dy
			x += sx
		}
		if stepY {
			diff += dx
			y += sy
		}
	}
}

func (p *PathFinder) columnOpen(ent model.Entity, x, y int32) bool {
	pos := p.grid.SurfacePosition(x, y)
	if !p.grid.IsWalkable(pos) {
		return false
	}
	return ent == nil || ent.CanTraverse(p.grid.TerrainAt(pos))
}
