package nav

// Options tunes a single search. The zero value uses the finder's defaults:
// full node budget, unlimited distance and length, no partial results, no
// smoothing, corner cutting allowed.
type Options struct {
	// MaxNodes overrides the finder's expansion budget when positive.
	MaxNodes int

	// MaxPathLength caps the number of returned waypoints when positive.
	// It truncates the finished path and never affects the search itself.
	MaxPathLength int

	// MaxDistance skips the search entirely when the start-to-target
	// heuristic already exceeds it. Zero means unlimited.
	MaxDistance float64

	// ReturnPartialPath returns a best-effort path toward the target when
	// the search runs out of budget or reachable cells.
	ReturnPartialPath bool

	// SmoothPath drops intermediate waypoints that a straight grid line
	// can replace.
	SmoothPath bool

	// CheckDiagonalBlockage rejects diagonal steps when either flanking
	// orthogonal cell is not walkable.
	CheckDiagonalBlockage bool
}
