package model

import "testing"

func TestTerrainType_Walkable(t *testing.T) {
	tests := []struct {
		terrain TerrainType
		want    bool
	}{
		{TerrainVoid, false},
		{TerrainPlains, true},
		{TerrainRoad, true},
		{TerrainForest, true},
		{TerrainSand, true},
		{TerrainShallows, true},
		{TerrainWater, true},
		{TerrainSwamp, true},
		{TerrainRock, false},
		{TerrainLava, false},
	}

	for _, tt := range tests {
		t.Run(tt.terrain.String(), func(t *testing.T) {
			if got := tt.terrain.Walkable(); got != tt.want {
				t.Errorf("%v.Walkable() = %v, want %v", tt.terrain, got, tt.want)
			}
		})
	}
}

func TestTerrainMask_Contains(t *testing.T) {
	tests := []struct {
		name    string
		mask    TerrainMask
		terrain TerrainType
		want    bool
	}{
		{"ground walker on plains", MaskGround, TerrainPlains, true},
		{"ground walker in shallows", MaskGround, TerrainShallows, true},
		{"ground walker in deep water", MaskGround, TerrainWater, false},
		{"ground walker in swamp", MaskGround, TerrainSwamp, false},
		{"amphibious in deep water", MaskAmphibious, TerrainWater, true},
		{"amphibious in swamp", MaskAmphibious, TerrainSwamp, true},
		{"flying over lava", MaskFlying, TerrainLava, true},
		{"flying over void", MaskFlying, TerrainVoid, false},
		{"empty mask", TerrainMask(0), TerrainPlains, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mask.Contains(tt.terrain); got != tt.want {
				t.Errorf("mask.Contains(%v) = %v, want %v", tt.terrain, got, tt.want)
			}
		})
	}
}

func TestTerrainType_String(t *testing.T) {
	if got := TerrainWater.String(); got != "water" {
		t.Errorf("TerrainWater.String() = %q, want %q", got, "water")
	}
	if got := TerrainType(200).String(); got != "unknown" {
		t.Errorf("out-of-range String() = %q, want %q", got, "unknown")
	}
}
