package testutil

import (
	"github.com/hollowmere/ashfall/internal/model"
	"github.com/hollowmere/ashfall/internal/world"
)

// PlainsGrid returns a grid of the given size covered in walkable plains,
// with the standard elevation range. Tests carve obstacles into it with
// SetCell.
func PlainsGrid(width, height int32) *world.Grid {
	g := world.NewGrid(width, height, -16, 64)
	g.Fill(model.TerrainPlains)
	return g
}
