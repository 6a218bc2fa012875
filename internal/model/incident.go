package model

import "time"

// Incident is one recorded movement violation: a rejected packet, a failed
// authentication, or a detected desync. Persisted for anticheat review.
type Incident struct {
	ID         int64
	EntityID   uint32
	Kind       string
	Detail     string
	Position   Position
	OccurredAt time.Time
}
