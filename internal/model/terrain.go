package model

// TerrainType classifies a grid cell's surface.
// The zero value is TerrainVoid: absent geodata is never walkable.
type TerrainType uint8

const (
	TerrainVoid TerrainType = iota // missing/out-of-world cell
	TerrainPlains
	TerrainRoad
	TerrainForest
	TerrainSand
	TerrainShallows
	TerrainWater // deep water — walkable surface, gated by entity capability
	TerrainSwamp
	TerrainRock // cliff/wall face
	TerrainLava

	terrainCount
)

// TerrainMask is a bitmask of traversable terrain types for an entity.
type TerrainMask uint16

// Bit returns the mask bit for this terrain type.
func (t TerrainType) Bit() TerrainMask {
	return TerrainMask(1) << t
}

// Common capability masks. Ground walkers cover dry land and shallows;
// amphibious entities add deep water and swamp; flying ignores terrain
// entirely except void.
const (
	MaskGround = TerrainMask(1)<<TerrainPlains | TerrainMask(1)<<TerrainRoad | TerrainMask(1)<<TerrainForest |
		TerrainMask(1)<<TerrainSand | TerrainMask(1)<<TerrainShallows
	MaskAmphibious = MaskGround | TerrainMask(1)<<TerrainWater | TerrainMask(1)<<TerrainSwamp
	MaskFlying     = TerrainMask(1)<<terrainCount - 1 - TerrainMask(1)<<TerrainVoid
)

// Walkable reports whether any entity can stand on this terrain at all.
// Per-entity compatibility (swimmers vs. walkers) is a separate check
// against the entity's TerrainMask.
func (t TerrainType) Walkable() bool {
	switch t {
	case TerrainVoid, TerrainRock, TerrainLava:
		return false
	default:
		return t < terrainCount
	}
}

// Contains reports whether the mask permits the given terrain type.
func (m TerrainMask) Contains(t TerrainType) bool {
	return m&t.Bit() != 0
}

// Valid reports whether t is a known terrain type. Map decoding rejects
// anything else.
func (t TerrainType) Valid() bool {
	return t < terrainCount
}

var terrainNames = [terrainCount]string{
	"void", "plains", "road", "forest", "sand", "shallows", "water", "swamp", "rock", "lava",
}

// String implements fmt.Stringer.
func (t TerrainType) String() string {
	if t >= terrainCount {
		return "unknown"
	}
	return terrainNames[t]
}
