package gameserver

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/hollowmere/ashfall/internal/crypto"
	"github.com/hollowmere/ashfall/internal/model"
	"github.com/hollowmere/ashfall/internal/security"
	"github.com/hollowmere/ashfall/internal/telemetry"
	"github.com/hollowmere/ashfall/internal/world"
)

// Movement validation defaults. These limits stop the common exploit
// classes: teleport hacking (distance cap), packet forgery and replay
// (HMAC + timestamp window), and movement flooding (rate caps).
const (
	defaultMovesPerSecond     = 5
	defaultBurstSize          = 10
	defaultTimestampTolerance = 5 * time.Second
	defaultMaxMoveDistance    = 5.0 // cells per movement packet
	defaultDesyncThreshold    = 3.0 // cells of client/server divergence
)

// ValidatorOptions configures a MovementValidator. Zero values fall back
// to the defaults above.
type ValidatorOptions struct {
	TimestampTolerance time.Duration
	MovesPerSecond     int
	BurstSize          int
	MaxMoveDistance    float64
	DesyncThreshold    float64
	Sink               telemetry.Sink
}

// DefaultValidatorOptions returns the production defaults with no sink.
func DefaultValidatorOptions() ValidatorOptions {
	return ValidatorOptions{
		TimestampTolerance: defaultTimestampTolerance,
		MovesPerSecond:     defaultMovesPerSecond,
		BurstSize:          defaultBurstSize,
		MaxMoveDistance:    defaultMaxMoveDistance,
		DesyncThreshold:    defaultDesyncThreshold,
	}
}

// MovementValidator is the gatekeeper for every movement packet: physical
// plausibility against the grid, packet authentication against the session
// secret, and rate limiting. One instance serves all entities; all methods
// are safe for concurrent use.
//
// Authentication always runs before physical validation in the combined
// entry point, so a forged packet can never probe the world through
// validation outcomes.
type MovementValidator struct {
	grid     *world.Grid
	security *security.Manager
	limiter  *rateLimiter
	sink     telemetry.Sink

	toleranceMS     atomic.Int64
	maxMoveDistance atomic.Uint64 // float64 bits
	desyncThreshold float64

	now func() time.Time
}

// NewMovementValidator creates a validator over the given grid and secret
// source.
func NewMovementValidator(grid *world.Grid, sec *security.Manager, opts ValidatorOptions) *MovementValidator {
	if opts.TimestampTolerance <= 0 {
		opts.TimestampTolerance = defaultTimestampTolerance
	}
	if opts.MaxMoveDistance <= 0 {
		opts.MaxMoveDistance = defaultMaxMoveDistance
	}
	if opts.DesyncThreshold <= 0 {
		opts.DesyncThreshold = defaultDesyncThreshold
	}
	sink := opts.Sink
	if sink == nil {
		sink = telemetry.NopSink{}
	}

	v := &MovementValidator{
		grid:            grid,
		security:        sec,
		limiter:         newRateLimiter(opts.MovesPerSecond, opts.BurstSize),
		sink:            sink,
		desyncThreshold: opts.DesyncThreshold,
		now:             time.Now,
	}
	v.toleranceMS.Store(opts.TimestampTolerance.Milliseconds())
	v.maxMoveDistance.Store(math.Float64bits(opts.MaxMoveDistance))
	return v
}

// ValidateMovement checks the physical plausibility of one step for a fixed
// world snapshot. First failure wins; the check order is part of the
// contract: bounds, terrain, corner-cut, capability, distance, collision.
func (v *MovementValidator) ValidateMovement(e model.Entity, current, target model.Position) Result {
	if e == nil {
		slog.Error("movement validation without entity", "from", current, "to", target)
		return ResultServerError
	}

	res := v.validatePhysical(e, current, target)
	if !res.IsValid() {
		v.record(telemetry.Event{
			Kind:     telemetry.EventMovementRejected,
			EntityID: e.EntityID(),
			Reason:   res.String(),
			Detail:   fmt.Sprintf("%v -> %v", current, target),
			Position: target,
		})
	}
	return res
}

func (v *MovementValidator) validatePhysical(e model.Entity, current, target model.Position) Result {
	if !v.grid.IsWithinBounds(target) {
		return ResultInvalidPosition
	}

	terrain := v.grid.TerrainAt(target)
	if !terrain.Walkable() {
		return ResultTerrainBlocked
	}

	// A diagonal step must not squeeze through the corner of two blocked
	// cells: both flanking orthogonal cells have to be walkable.
	dx := target.X - current.X
	dy := target.Y - current.Y
	if dx != 0 && dy != 0 && abs32(dx) == 1 && abs32(dy) == 1 {
		flankA := model.NewPosition(current.X, target.Y, current.Z)
		flankB := model.NewPosition(target.X, current.Y, current.Z)
		if !v.grid.IsWalkable(flankA) || !v.grid.IsWalkable(flankB) {
			return ResultTerrainBlocked
		}
	}

	if !e.CanTraverse(terrain) {
		return ResultMovementCapacity
	}

	limit := v.MaxMovementDistance()
	if override := e.MaxMovementDistance(); override > 0 {
		limit = override
	}
	if current.Distance(target) > limit {
		return ResultDistanceExceeded
	}

	if !e.CanPassThrough() {
		if occupant, ok := v.grid.EntityAt(target); ok && occupant != e.EntityID() {
			return ResultCollision
		}
	}

	return ResultValid
}

// AuthenticateMovementPacket verifies one packet's authentication fields:
// timestamp freshness, rate caps, then the HMAC token. Any failure returns
// false; granular classification is the combined entry point's job.
func (v *MovementValidator) AuthenticateMovementPacket(d MovementAuthData, current, target model.Position) bool {
	return v.authenticate(d, current, target).IsValid()
}

// ValidateAndAuthenticateMovement is the per-packet entry point.
// Authentication strictly precedes physical validation: a packet that fails
// auth is classified without the world ever being consulted.
func (v *MovementValidator) ValidateAndAuthenticateMovement(e model.Entity, current, target model.Position, d MovementAuthData) Result {
	if res := v.authenticate(d, current, target); !res.IsValid() {
		return res
	}
	return v.ValidateMovement(e, current, target)
}

func (v *MovementValidator) authenticate(d MovementAuthData, current, target model.Position) Result {
	nowMS := v.now().UnixMilli()

	// Too old is a replay; too far in the future is clock abuse. Both
	// directions share one tolerance.
	tol := v.toleranceMS.Load()
	if delta := nowMS - d.Timestamp; delta > tol || delta < -tol {
		v.record(telemetry.Event{
			Kind:     telemetry.EventAuthFailed,
			EntityID: d.EntityID,
			Reason:   "timestamp_out_of_window",
			Detail:   fmt.Sprintf("skew %dms, tolerance %dms", delta, tol),
			Position: target,
		})
		return ResultAuthenticationFailed
	}

	// Rate caps come before the HMAC so floods burn no CPU on hashing.
	if !v.limiter.allow(d.EntityID, nowMS) {
		v.record(telemetry.Event{
			Kind:     telemetry.EventRateLimited,
			EntityID: d.EntityID,
			Reason:   ResultRateLimitExceeded.String(),
			Position: target,
		})
		return ResultRateLimitExceeded
	}

	secret, ok := v.security.MovementSecret(d.EntityID)
	if !ok {
		slog.Error("no movement secret bound", "entity_id", d.EntityID, "session_id", d.SessionID)
		v.record(telemetry.Event{
			Kind:     telemetry.EventServerError,
			EntityID: d.EntityID,
			Reason:   "missing_movement_secret",
			Position: target,
		})
		return ResultServerError
	}

	if !crypto.VerifyAuthToken(secret, CanonicalMessage(d, current, target), d.Token) {
		v.record(telemetry.Event{
			Kind:     telemetry.EventAuthFailed,
			EntityID: d.EntityID,
			Reason:   "token_mismatch",
			Detail:   fmt.Sprintf("session %s counter %d", d.SessionID, d.MoveCounter),
			Position: target,
		})
		return ResultAuthenticationFailed
	}

	return ResultValid
}

// CheckPositionDesync compares a client-reported position against the
// server's tracked one. Past the threshold the caller should snap the
// client back; the divergence is also recorded as suspicious.
func (v *MovementValidator) CheckPositionDesync(entityID uint32, reported model.Position) (needsCorrection bool, distance float64) {
	tracked, ok := v.grid.EntityPosition(entityID)
	if !ok {
		return false, 0
	}

	distance = tracked.Distance(reported)
	if distance <= v.desyncThreshold {
		return false, distance
	}

	v.record(telemetry.Event{
		Kind:     telemetry.EventPositionDesync,
		EntityID: entityID,
		Reason:   "position_desync",
		Detail:   fmt.Sprintf("tracked %v, reported %v, drift %.1f", tracked, reported, distance),
		Position: reported,
	})
	return true, distance
}

// SetRateLimit reconfigures the rate caps for subsequent packets.
func (v *MovementValidator) SetRateLimit(movesPerSecond, burstSize int) {
	v.limiter.setLimits(movesPerSecond, burstSize)
}

// SetMaxMovementDistance replaces the global per-packet distance cap used
// for entities without their own override.
func (v *MovementValidator) SetMaxMovementDistance(distance float64) {
	if distance <= 0 {
		distance = defaultMaxMoveDistance
	}
	v.maxMoveDistance.Store(math.Float64bits(distance))
}

// MaxMovementDistance returns the current global distance cap.
func (v *MovementValidator) MaxMovementDistance() float64 {
	return math.Float64frombits(v.maxMoveDistance.Load())
}

// SetTimestampTolerance replaces the authentication clock-skew window.
func (v *MovementValidator) SetTimestampTolerance(tol time.Duration) {
	if tol > 0 {
		v.toleranceMS.Store(tol.Milliseconds())
	}
}

// ForgetEntity drops per-entity validator state on session close.
func (v *MovementValidator) ForgetEntity(entityID uint32) {
	v.limiter.forget(entityID)
}

func (v *MovementValidator) record(ev telemetry.Event) {
	ev.At = v.now()
	v.sink.Record(context.Background(), ev)
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
