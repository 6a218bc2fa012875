package gameserver

import (
	"fmt"

	"github.com/hollowmere/ashfall/internal/crypto"
	"github.com/hollowmere/ashfall/internal/model"
)

// MovementAuthData carries the authentication fields of a movement packet.
type MovementAuthData struct {
	EntityID    uint32
	SessionID   string
	Timestamp   int64 // client clock, unix milliseconds
	MoveCounter uint64
	Token       []byte // HMAC-SHA256 over the canonical message
}

// CanonicalMessage renders the exact byte string both sides sign:
//
//	entityID|sessionID|timestamp|moveCounter|curX,curY,curZ|newX,newY,newZ
//
// Field order and separators are part of the wire contract; any change
// invalidates every client token in flight.
func CanonicalMessage(d MovementAuthData, current, target model.Position) []byte {
	return fmt.Appendf(nil, "%d|%s|%d|%d|%d,%d,%d|%d,%d,%d",
		d.EntityID, d.SessionID, d.Timestamp, d.MoveCounter,
		current.X, current.Y, current.Z,
		target.X, target.Y, target.Z)
}

// BuildMovementToken computes the token a client would attach to the given
// movement. Server-side this is only for tests and diagnostic tooling.
func BuildMovementToken(secret []byte, d MovementAuthData, current, target model.Position) []byte {
	return crypto.ComputeAuthToken(secret, CanonicalMessage(d, current, target))
}
