package gameserver

// Result classifies the outcome of movement validation. Anything but
// ResultValid means the packet must be rejected and the client resynced to
// its server-side position.
type Result uint8

const (
	// ResultValid accepts the movement.
	ResultValid Result = iota
	// ResultInvalidPosition rejects a target outside world bounds.
	ResultInvalidPosition
	// ResultTerrainBlocked rejects a target nothing can stand on, or a
	// diagonal step that would cut a blocked corner.
	ResultTerrainBlocked
	// ResultCollision rejects a target column occupied by another entity.
	ResultCollision
	// ResultMovementCapacity rejects terrain the entity cannot traverse
	// (a ground walker stepping into deep water).
	ResultMovementCapacity
	// ResultDistanceExceeded rejects a step longer than the per-packet cap.
	ResultDistanceExceeded
	// ResultSpeedExceeded is reserved for velocity tracking across packets.
	// No check produces it yet.
	ResultSpeedExceeded
	// ResultAuthenticationFailed rejects a packet with a bad token or a
	// timestamp outside tolerance.
	ResultAuthenticationFailed
	// ResultRateLimitExceeded rejects a packet over the movement rate caps.
	ResultRateLimitExceeded
	// ResultServerError marks validation aborted by a server-side fault,
	// such as a missing movement secret. Never the client's doing.
	ResultServerError
)

var resultNames = map[Result]string{
	ResultValid:                "valid",
	ResultInvalidPosition:      "invalid_position",
	ResultTerrainBlocked:       "terrain_blocked",
	ResultCollision:            "collision",
	ResultMovementCapacity:     "movement_capacity",
	ResultDistanceExceeded:     "distance_exceeded",
	ResultSpeedExceeded:        "speed_exceeded",
	ResultAuthenticationFailed: "authentication_failed",
	ResultRateLimitExceeded:    "rate_limit_exceeded",
	ResultServerError:          "server_error",
}

// String implements fmt.Stringer. The names double as incident kinds.
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "unknown"
}

// IsValid reports whether the movement was accepted.
func (r Result) IsValid() bool {
	return r == ResultValid
}
