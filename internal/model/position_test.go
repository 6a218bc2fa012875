package model

import (
	"testing"
)

func TestPosition_DistanceSquared(t *testing.T) {
	tests := []struct {
		name string
		a    Position
		b    Position
		want int64
	}{
		{
			name: "same position",
			a:    NewPosition(0, 0, 0),
			b:    NewPosition(0, 0, 0),
			want: 0,
		},
		{
			name: "distance on X axis",
			a:    NewPosition(0, 0, 0),
			b:    NewPosition(10, 0, 0),
			want: 100,
		},
		{
			name: "3-4-5 triangle",
			a:    NewPosition(0, 0, 0),
			b:    NewPosition(3, 4, 0),
			want: 25,
		},
		{
			name: "3D distance",
			a:    NewPosition(0, 0, 0),
			b:    NewPosition(1, 2, 2),
			want: 9, // 1 + 4 + 4
		},
		{
			name: "negative coordinates",
			a:    NewPosition(-10, -10, -10),
			b:    NewPosition(10, 10, 10),
			want: 1200, // 3 × 20²
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.DistanceSquared(tt.b)
			if got != tt.want {
				t.Errorf("DistanceSquared() = %d, want %d", got, tt.want)
			}

			// Distance must be symmetric
			gotReverse := tt.b.DistanceSquared(tt.a)
			if gotReverse != tt.want {
				t.Errorf("DistanceSquared() reverse = %d, want %d", gotReverse, tt.want)
			}
		})
	}
}

func TestPosition_IsAdjacent(t *testing.T) {
	origin := NewPosition(5, 5, 0)

	tests := []struct {
		name  string
		other Position
		want  bool
	}{
		{"self is not adjacent", NewPosition(5, 5, 0), false},
		{"same column different z is not adjacent", NewPosition(5, 5, 3), false},
		{"east neighbor", NewPosition(6, 5, 0), true},
		{"northwest neighbor", NewPosition(4, 4, 0), true},
		{"diagonal with elevation change", NewPosition(6, 6, 2), true},
		{"two cells away", NewPosition(7, 5, 0), false},
		{"knights move", NewPosition(7, 6, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := origin.IsAdjacent(tt.other); got != tt.want {
				t.Errorf("IsAdjacent(%v) = %v, want %v", tt.other, got, tt.want)
			}
		})
	}
}

func TestPosition_ChebyshevDistance(t *testing.T) {
	tests := []struct {
		name string
		a    Position
		b    Position
		want int32
	}{
		{"same cell", NewPosition(3, 3, 0), NewPosition(3, 3, 0), 0},
		{"cardinal run", NewPosition(0, 0, 0), NewPosition(5, 0, 0), 5},
		{"pure diagonal", NewPosition(0, 0, 0), NewPosition(4, 4, 0), 4},
		{"mixed", NewPosition(0, 0, 0), NewPosition(2, 7, 0), 7},
		{"z ignored", NewPosition(0, 0, 0), NewPosition(1, 1, 50), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.ChebyshevDistance(tt.b); got != tt.want {
				t.Errorf("ChebyshevDistance() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPosition_WithZ(t *testing.T) {
	original := NewPosition(1, 2, 3)
	got := original.WithZ(30)

	if got != (Position{X: 1, Y: 2, Z: 30}) {
		t.Errorf("WithZ() = %+v, want (1,2,30)", got)
	}
	if original.Z != 3 {
		t.Errorf("WithZ() mutated original: %+v", original)
	}
}

// Benchmark for DistanceSquared (hot path in movement validation).
func BenchmarkPosition_DistanceSquared(b *testing.B) {
	p1 := NewPosition(1000, 2000, 30)
	p2 := NewPosition(1100, 2200, 33)

	b.ResetTimer()
	for b.Loop() {
		_ = p1.DistanceSquared(p2)
	}
}
