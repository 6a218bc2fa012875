package world

import "github.com/hollowmere/ashfall/internal/model"

// Procedural map generation. Every cell is a pure function of (seed, x, y)
// so generation is order-independent and reproducible across runs.

// GenConfig tunes the procedural generator.
type GenConfig struct {
	Width  int32
	Height int32
	MinZ   int32
	MaxZ   int32
	Seed   int64

	BiomeRegionSize int32 // cells per biome region side
	LatticeStep     int32 // elevation noise lattice spacing
	WaterLevel      int32 // elevation at or below is shallows/water
	CliffLevel      int32 // elevation at or above is rock
	MaxElevation    int32
}

// DefaultGenConfig returns generator settings that produce a playable map:
// rivers, cliffs, forest and desert biomes, a trade road across the middle.
func DefaultGenConfig(width, height int32, seed int64) GenConfig {
	return GenConfig{
		Width:           width,
		Height:          height,
		MinZ:            -16,
		MaxZ:            256,
		Seed:            seed,
		BiomeRegionSize: 24,
		LatticeStep:     16,
		WaterLevel:      8,
		CliffLevel:      40,
		MaxElevation:    48,
	}
}

// Generate builds map data from the config. Same config, same map.
func Generate(cfg GenConfig) *MapData {
	md := &MapData{
		Width:  cfg.Width,
		Height: cfg.Height,
		MinZ:   cfg.MinZ,
		MaxZ:   cfg.MaxZ,
		Cells:  make([]Cell, int(cfg.Width)*int(cfg.Height)),
	}
	roadY := cfg.Height / 2
	for y := int32(0); y < cfg.Height; y++ {
		for x := int32(0); x < cfg.Width; x++ {
			md.Cells[y*cfg.Width+x] = genCell(cfg, x, y, roadY)
		}
	}
	return md
}

func genCell(cfg GenConfig, x, y, roadY int32) Cell {
	// Rock rim keeps entities inside the playable volume.
	if x == 0 || y == 0 || x == cfg.Width-1 || y == cfg.Height-1 {
		return Cell{Terrain: model.TerrainRock, Elevation: cfg.MaxElevation}
	}

	elev := latticeElevation(cfg, x, y)
	switch {
	case elev <= cfg.WaterLevel-3:
		return Cell{Terrain: model.TerrainWater, Elevation: elev}
	case elev <= cfg.WaterLevel:
		return Cell{Terrain: model.TerrainShallows, Elevation: elev}
	case elev >= cfg.CliffLevel:
		if inCluster(cfg.Seed+7, x, y, 96, 3, 150) {
			return Cell{Terrain: model.TerrainLava, Elevation: elev}
		}
		return Cell{Terrain: model.TerrainRock, Elevation: elev}
	}

	if y == roadY {
		return Cell{Terrain: model.TerrainRoad, Elevation: elev}
	}

	switch biomeAt(cfg.Seed, x, y, cfg.BiomeRegionSize) {
	case biomeForest:
		if elev <= cfg.WaterLevel+2 && inCluster(cfg.Seed+2, x, y, 48, 4, 400) {
			return Cell{Terrain: model.TerrainSwamp, Elevation: elev}
		}
		if inCluster(cfg.Seed+3, x, y, 32, 6, 700) {
			return Cell{Terrain: model.TerrainForest, Elevation: elev}
		}
	case biomeDesert:
		if inCluster(cfg.Seed+4, x, y, 64, 10, 850) {
			return Cell{Terrain: model.TerrainSand, Elevation: elev}
		}
	default:
		if inCluster(cfg.Seed+5, x, y, 64, 4, 250) {
			return Cell{Terrain: model.TerrainForest, Elevation: elev}
		}
	}
	if elev <= cfg.WaterLevel+1 {
		return Cell{Terrain: model.TerrainSand, Elevation: elev}
	}
	return Cell{Terrain: model.TerrainPlains, Elevation: elev}
}

// latticeElevation interpolates coarse per-lattice-point noise, giving
// smooth hills instead of per-cell speckle.
func latticeElevation(cfg GenConfig, x, y int32) int32 {
	step := cfg.LatticeStep
	if step <= 0 {
		step = 16
	}
	gx, gy := floorDiv(x, step), floorDiv(y, step)
	fx, fy := x-gx*step, y-gy*step

	h00 := latticeHeight(cfg, gx, gy)
	h10 := latticeHeight(cfg, gx+1, gy)
	h01 := latticeHeight(cfg, gx, gy+1)
	h11 := latticeHeight(cfg, gx+1, gy+1)

	top := h00*(step-fx) + h10*fx
	bot := h01*(step-fx) + h11*fx
	return (top*(step-fy) + bot*fy) / (step * step)
}

func latticeHeight(cfg GenConfig, gx, gy int32) int32 {
	return int32(hash2(cfg.Seed+1, gx, gy) % uint64(cfg.MaxElevation+1))
}

type biomeKind uint8

const (
	biomePlains biomeKind = iota
	biomeForest
	biomeDesert
)

func biomeAt(seed int64, x, y, regionSize int32) biomeKind {
	if regionSize <= 0 {
		regionSize = 1
	}
	rx, ry := floorDiv(x, regionSize), floorDiv(y, regionSize)
	switch hash2(seed, rx, ry) % 3 {
	case 0:
		return biomePlains
	case 1:
		return biomeForest
	default:
		return biomeDesert
	}
}

// inCluster reports whether (x, y) lies within radius of a cluster center.
// Each grid-sized region rolls one candidate center against probPermille.
func inCluster(seed int64, x, y, grid, radius int32, probPermille uint64) bool {
	if grid <= 0 || radius <= 0 || probPermille == 0 {
		return false
	}
	gx, gy := floorDiv(x, grid), floorDiv(y, grid)
	r2 := radius * radius

	for dy := int32(-1); dy <= 1; dy++ {
		for dx := int32(-1); dx <= 1; dx++ {
			cgx, cgy := gx+dx, gy+dy
			h := hash2(seed, cgx, cgy)
			if h%1000 >= probPermille {
				continue
			}
			cx := cgx*grid + int32((h>>10)%uint64(grid))
			cy := cgy*grid + int32((h>>20)%uint64(grid))
			ddx, ddy := x-cx, y-cy
			if ddx*ddx+ddy*ddy <= r2 {
				return true
			}
		}
	}
	return false
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}

// hash2 is a splitmix64 finalizer over seed and coordinates.
func hash2(seed int64, x, y int32) uint64 {
	v := uint64(seed) ^ (uint64(uint32(x)) * 0x9e3779b97f4a7c15) ^ (uint64(uint32(y)) * 0xbf58476d1ce4e5b9)
	v += 0x9e3779b97f4a7c15
	v = (v ^ (v >> 30)) * 0xbf58476d1ce4e5b9
	v = (v ^ (v >> 27)) * 0x94d049bb133111eb
	return v ^ (v >> 31)
}
