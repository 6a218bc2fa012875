package world

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hollowmere/ashfall/internal/model"
)

// Occupancy errors returned by entity placement operations.
var (
	ErrOutOfBounds   = errors.New("position out of world bounds")
	ErrCellOccupied  = errors.New("cell already occupied")
	ErrUnknownEntity = errors.New("entity not placed on grid")
)

// Cell is one column of the world grid: surface terrain plus the elevation
// an entity standing there occupies.
type Cell struct {
	Terrain   model.TerrainType
	Elevation int32
}

// Grid is the world terrain and occupancy oracle. Terrain is immutable once
// the grid is built (maps load once at startup); the occupancy index is
// guarded by an RWMutex. One entity per (x, y) column.
type Grid struct {
	width  int32
	height int32
	minZ   int32
	maxZ   int32
	cells  []Cell // y*width + x

	mu        sync.RWMutex
	occupants map[uint64]uint32         // column key → entityID
	positions map[uint32]model.Position // entityID → position (reverse index)
}

// NewGrid creates a grid of the given dimensions with every cell set to
// TerrainVoid (nothing walkable until terrain is painted or loaded).
func NewGrid(width, height, minZ, maxZ int32) *Grid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("world: invalid grid dimensions %dx%d", width, height))
	}
	return &Grid{
		width:     width,
		height:    height,
		minZ:      minZ,
		maxZ:      maxZ,
		cells:     make([]Cell, int(width)*int(height)),
		occupants: make(map[uint64]uint32),
		positions: make(map[uint32]model.Position),
	}
}

// NewGridFromMap builds a grid from loaded map data.
func NewGridFromMap(md *MapData) *Grid {
	g := NewGrid(md.Width, md.Height, md.MinZ, md.MaxZ)
	copy(g.cells, md.Cells)
	return g
}

// Width returns the grid width in cells.
func (g *Grid) Width() int32 { return g.width }

// Height returns the grid height in cells.
func (g *Grid) Height() int32 { return g.height }

// MinZ returns the lowest valid Z coordinate.
func (g *Grid) MinZ() int32 { return g.minZ }

// MaxZ returns the highest valid Z coordinate.
func (g *Grid) MaxZ() int32 { return g.maxZ }

// SetCell paints terrain and elevation at (x, y). Intended for map loading
// and test fixtures only — terrain is not synchronized and must not change
// once entities are moving.
func (g *Grid) SetCell(x, y int32, c Cell) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return
	}
	g.cells[y*g.width+x] = c
}

// Fill paints every cell with the given terrain at elevation 0.
func (g *Grid) Fill(t model.TerrainType) {
	for i := range g.cells {
		g.cells[i] = Cell{Terrain: t}
	}
}

// IsWithinBounds reports whether pos lies inside the world volume.
func (g *Grid) IsWithinBounds(pos model.Position) bool {
	return pos.X >= 0 && pos.X < g.width &&
		pos.Y >= 0 && pos.Y < g.height &&
		pos.Z >= g.minZ && pos.Z <= g.maxZ
}

// IsWalkable reports whether any entity can stand at pos: inside bounds and
// on terrain that admits standing at all. Per-entity terrain compatibility is
// the caller's check.
func (g *Grid) IsWalkable(pos model.Position) bool {
	if !g.IsWithinBounds(pos) {
		return false
	}
	return g.cellAt(pos.X, pos.Y).Terrain.Walkable()
}

// TerrainAt returns the terrain type at pos (TerrainVoid outside bounds).
func (g *Grid) TerrainAt(pos model.Position) model.TerrainType {
	if pos.X < 0 || pos.X >= g.width || pos.Y < 0 || pos.Y >= g.height {
		return model.TerrainVoid
	}
	return g.cellAt(pos.X, pos.Y).Terrain
}

// ElevationAt returns the surface elevation at (x, y), or 0 outside bounds.
// Pathfinding uses this as the Z an entity stands at in that column.
func (g *Grid) ElevationAt(x, y int32) int32 {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return 0
	}
	return g.cellAt(x, y).Elevation
}

// SurfacePosition returns the standable position in column (x, y).
func (g *Grid) SurfacePosition(x, y int32) model.Position {
	return model.NewPosition(x, y, g.ElevationAt(x, y))
}

// HasEntityAt reports whether an entity occupies the (x, y) column of pos.
func (g *Grid) HasEntityAt(pos model.Position) bool {
	g.mu.RLock()
	_, ok := g.occupants[columnKey(pos.X, pos.Y)]
	g.mu.RUnlock()
	return ok
}

// EntityAt returns the ID of the entity occupying the column of pos.
func (g *Grid) EntityAt(pos model.Position) (uint32, bool) {
	g.mu.RLock()
	id, ok := g.occupants[columnKey(pos.X, pos.Y)]
	g.mu.RUnlock()
	return id, ok
}

// EntityPosition returns the tracked position of a placed entity.
func (g *Grid) EntityPosition(id uint32) (model.Position, bool) {
	g.mu.RLock()
	pos, ok := g.positions[id]
	g.mu.RUnlock()
	return pos, ok
}

// EntityCount returns the number of placed entities.
func (g *Grid) EntityCount() int {
	g.mu.RLock()
	n := len(g.positions)
	g.mu.RUnlock()
	return n
}

// PlaceEntity registers an entity at pos. Fails if the position is outside
// bounds or the column is already occupied by another entity. Re-placing an
// entity moves it.
func (g *Grid) PlaceEntity(id uint32, pos model.Position) error {
	if !g.IsWithinBounds(pos) {
		return fmt.Errorf("placing entity %d at %v: %w", id, pos, ErrOutOfBounds)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	key := columnKey(pos.X, pos.Y)
	if occ, ok := g.occupants[key]; ok && occ != id {
		return fmt.Errorf("placing entity %d at %v (held by %d): %w", id, pos, occ, ErrCellOccupied)
	}
	if prev, ok := g.positions[id]; ok {
		delete(g.occupants, columnKey(prev.X, prev.Y))
	}
	g.occupants[key] = id
	g.positions[id] = pos
	return nil
}

// MoveEntity relocates a placed entity to pos. The destination column must be
// free or held by the entity itself.
func (g *Grid) MoveEntity(id uint32, pos model.Position) error {
	if !g.IsWithinBounds(pos) {
		return fmt.Errorf("moving entity %d to %v: %w", id, pos, ErrOutOfBounds)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	prev, ok := g.positions[id]
	if !ok {
		return fmt.Errorf("moving entity %d: %w", id, ErrUnknownEntity)
	}
	key := columnKey(pos.X, pos.Y)
	if occ, held := g.occupants[key]; held && occ != id {
		return fmt.Errorf("moving entity %d to %v (held by %d): %w", id, pos, occ, ErrCellOccupied)
	}
	delete(g.occupants, columnKey(prev.X, prev.Y))
	g.occupants[key] = id
	g.positions[id] = pos
	return nil
}

// RemoveEntity drops an entity from the occupancy index. Removing an unknown
// entity is a no-op.
func (g *Grid) RemoveEntity(id uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if pos, ok := g.positions[id]; ok {
		delete(g.occupants, columnKey(pos.X, pos.Y))
		delete(g.positions, id)
	}
}

func (g *Grid) cellAt(x, y int32) Cell {
	return g.cells[y*g.width+x]
}

func columnKey(x, y int32) uint64 {
	return uint64(uint32(x))<<32 | uint64(uint32(y))
}
