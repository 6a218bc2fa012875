package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hollowmere/ashfall/internal/model"
)

type captureWriter struct {
	mu        sync.Mutex
	incidents []*model.Incident
}

func (w *captureWriter) Insert(_ context.Context, inc *model.Incident) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.incidents = append(w.incidents, inc)
	return int64(len(w.incidents)), nil
}

func (w *captureWriter) snapshot() []*model.Incident {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*model.Incident(nil), w.incidents...)
}

func TestStoreSink_PersistsEvents(t *testing.T) {
	w := &captureWriter{}
	sink := NewStoreSink(w, 16)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = sink.Run(ctx)
	}()

	sink.Record(ctx, Event{
		Kind:     EventAuthFailed,
		EntityID: 42,
		Reason:   "token_mismatch",
		Position: model.NewPosition(1, 2, 3),
	})
	sink.Record(ctx, Event{
		Kind:     EventMovementRejected,
		EntityID: 42,
		Reason:   "collision",
		Detail:   "column held by 77",
	})

	deadline := time.After(2 * time.Second)
	for len(w.snapshot()) < 2 {
		select {
		case <-deadline:
			t.Fatalf("only %d incidents persisted", len(w.snapshot()))
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done

	got := w.snapshot()
	if got[0].Kind != "token_mismatch" {
		t.Errorf("incident kind = %q, want reason-specific kind", got[0].Kind)
	}
	if got[0].OccurredAt.IsZero() {
		t.Error("sink did not stamp the event time")
	}
	if got[1].Detail != "column held by 77" {
		t.Errorf("incident detail = %q", got[1].Detail)
	}
}

func TestStoreSink_FlushesOnShutdown(t *testing.T) {
	w := &captureWriter{}
	sink := NewStoreSink(w, 16)

	// Enqueue before Run: everything must still land via the shutdown flush.
	for i := range 5 {
		sink.Record(context.Background(), Event{Kind: EventRateLimited, EntityID: uint32(i)})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sink.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := len(w.snapshot()); got != 5 {
		t.Errorf("persisted %d incidents, want 5", got)
	}
}

func TestStoreSink_DropsWhenFull(t *testing.T) {
	w := &captureWriter{}
	sink := NewStoreSink(w, 2)

	for range 10 {
		sink.Record(context.Background(), Event{Kind: EventAuthFailed, EntityID: 1})
	}

	if sink.Dropped() != 8 {
		t.Errorf("Dropped = %d, want 8", sink.Dropped())
	}
}

func TestLogSink_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sink := NewLogSink(log)
	ctx := context.Background()

	sink.Record(ctx, Event{Kind: EventAuthFailed, EntityID: 7, Reason: "timestamp_expired"})
	sink.Record(ctx, Event{Kind: EventMovementRejected, EntityID: 7, Reason: "terrain_blocked"})
	sink.Record(ctx, Event{Kind: EventServerError, EntityID: 7, Reason: "no_secret"})

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d log lines, want 3:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "level=WARN") || !strings.Contains(lines[0], "timestamp_expired") {
		t.Errorf("auth failure line = %q, want WARN with reason", lines[0])
	}
	if !strings.Contains(lines[1], "level=DEBUG") {
		t.Errorf("plausibility rejection line = %q, want DEBUG", lines[1])
	}
	if !strings.Contains(lines[2], "level=ERROR") {
		t.Errorf("server error line = %q, want ERROR", lines[2])
	}
	if !strings.Contains(lines[0], "entity_id=7") {
		t.Errorf("log line missing entity_id: %q", lines[0])
	}
}

func TestMultiSink_FanOut(t *testing.T) {
	w1 := &captureWriter{}
	w2 := &captureWriter{}
	s1 := NewStoreSink(w1, 4)
	s2 := NewStoreSink(w2, 4)
	multi := MultiSink{s1, s2}

	multi.Record(context.Background(), Event{Kind: EventPositionDesync, EntityID: 3})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = s1.Run(ctx)
	_ = s2.Run(ctx)

	if len(w1.snapshot()) != 1 || len(w2.snapshot()) != 1 {
		t.Errorf("fan-out reached (%d, %d) sinks, want (1, 1)", len(w1.snapshot()), len(w2.snapshot()))
	}
}

func TestFilterSink_PassesOnlyListedKinds(t *testing.T) {
	w := &captureWriter{}
	store := NewStoreSink(w, 8)
	filtered := NewFilterSink(store, EventAuthFailed, EventRateLimited)

	ctx := context.Background()
	filtered.Record(ctx, Event{Kind: EventMovementRejected, EntityID: 5, Reason: "terrain_blocked"})
	filtered.Record(ctx, Event{Kind: EventAuthFailed, EntityID: 5, Reason: "token_mismatch"})
	filtered.Record(ctx, Event{Kind: EventPositionDesync, EntityID: 5, Reason: "desync"})

	runCtx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = store.Run(runCtx)

	got := w.snapshot()
	if len(got) != 1 {
		t.Fatalf("persisted %d incidents, want only the auth failure", len(got))
	}
	if got[0].Kind != "token_mismatch" {
		t.Errorf("persisted kind = %q, want token_mismatch", got[0].Kind)
	}
}
