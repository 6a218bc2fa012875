package telemetry

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hollowmere/ashfall/internal/model"
)

// IncidentWriter is the slice of the incident repository the sink needs.
type IncidentWriter interface {
	Insert(ctx context.Context, inc *model.Incident) (int64, error)
}

// StoreSink buffers events and writes them to the incident store from its
// own goroutine, keeping database latency off the validation hot path.
// When the buffer is full events are dropped and counted, never blocked on.
type StoreSink struct {
	writer  IncidentWriter
	events  chan Event
	dropped atomic.Uint64
}

const insertTimeout = 3 * time.Second

// NewStoreSink creates a store sink with the given buffer capacity.
func NewStoreSink(w IncidentWriter, buffer int) *StoreSink {
	if buffer <= 0 {
		buffer = 256
	}
	return &StoreSink{
		writer: w,
		events: make(chan Event, buffer),
	}
}

// Record enqueues an event for persistence.
func (s *StoreSink) Record(_ context.Context, ev Event) {
	select {
	case s.events <- stamp(ev):
	default:
		s.dropped.Add(1)
	}
}

// Run drains the event buffer until ctx is canceled, then flushes whatever
// is still queued. Intended to run under the server's errgroup.
func (s *StoreSink) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.flush()
			return nil
		case ev := <-s.events:
			s.write(ev)
		}
	}
}

// Dropped returns how many events were lost to a full buffer.
func (s *StoreSink) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *StoreSink) flush() {
	for {
		select {
		case ev := <-s.events:
			s.write(ev)
		default:
			return
		}
	}
}

func (s *StoreSink) write(ev Event) {
	// Detached context: inserts must survive server shutdown long enough
	// to flush.
	ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
	defer cancel()

	kind := ev.Reason
	if kind == "" {
		kind = string(ev.Kind)
	}
	inc := &model.Incident{
		EntityID:   ev.EntityID,
		Kind:       kind,
		Detail:     ev.Detail,
		Position:   ev.Position,
		OccurredAt: ev.At,
	}
	if _, err := s.writer.Insert(ctx, inc); err != nil {
		slog.Error("persisting incident", "entity_id", ev.EntityID, "kind", kind, "error", err)
	}
}
