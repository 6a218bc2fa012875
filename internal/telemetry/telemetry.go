// Package telemetry routes movement security events to operators: the log
// for humans, the incident store for anticheat review. Sinks never fail the
// caller — a broken sink must not block movement validation.
package telemetry

import (
	"context"
	"time"

	"github.com/hollowmere/ashfall/internal/model"
)

// EventKind is the coarse class of a security event. It drives routing and
// log levels; Event.Reason carries the specific rejection.
type EventKind string

const (
	// EventMovementRejected covers physical plausibility failures: bounds,
	// terrain, collision, distance.
	EventMovementRejected EventKind = "movement_rejected"
	// EventAuthFailed covers packet authentication failures.
	EventAuthFailed EventKind = "auth_failed"
	// EventRateLimited covers packets dropped by the movement rate caps.
	EventRateLimited EventKind = "rate_limited"
	// EventPositionDesync marks a divergence between the client's reported
	// position and the server's tracked one.
	EventPositionDesync EventKind = "position_desync"
	// EventServerError marks validation aborted by a server-side fault.
	EventServerError EventKind = "server_error"
)

// Event is one security observation tied to an entity.
type Event struct {
	Kind     EventKind
	EntityID uint32
	Reason   string // specific rejection, e.g. "collision"
	Detail   string
	Position model.Position
	At       time.Time // zero means "stamp on record"
}

// Sink consumes events. Implementations must be safe for concurrent use
// and must not block the caller beyond a channel send.
type Sink interface {
	Record(ctx context.Context, ev Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Record(context.Context, Event) {}

// MultiSink fans one event out to several sinks in order.
type MultiSink []Sink

func (m MultiSink) Record(ctx context.Context, ev Event) {
	for _, s := range m {
		s.Record(ctx, ev)
	}
}

// FilterSink forwards only the listed kinds. Used to keep high-volume
// plausibility rejections out of the incident store while still persisting
// security events.
type FilterSink struct {
	next    Sink
	allowed map[EventKind]bool
}

// NewFilterSink wraps next, passing through only the given kinds.
func NewFilterSink(next Sink, kinds ...EventKind) *FilterSink {
	allowed := make(map[EventKind]bool, len(kinds))
	for _, k := range kinds {
		allowed[k] = true
	}
	return &FilterSink{next: next, allowed: allowed}
}

func (f *FilterSink) Record(ctx context.Context, ev Event) {
	if f.allowed[ev.Kind] {
		f.next.Record(ctx, ev)
	}
}

// stamp fills a zero At with the current time.
func stamp(ev Event) Event {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	return ev
}
