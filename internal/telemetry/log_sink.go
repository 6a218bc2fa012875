package telemetry

import (
	"context"
	"log/slog"
)

// LogSink writes events to the structured log. Authentication and rate
// failures log at Warn (an operator should see bursts of them); plain
// plausibility rejections happen constantly during normal play and stay
// at Debug.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink creates a log sink. A nil logger uses slog.Default.
func NewLogSink(log *slog.Logger) *LogSink {
	if log == nil {
		log = slog.Default()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Record(ctx context.Context, ev Event) {
	ev = stamp(ev)

	level := slog.LevelDebug
	switch ev.Kind {
	case EventAuthFailed, EventRateLimited, EventPositionDesync:
		level = slog.LevelWarn
	case EventServerError:
		level = slog.LevelError
	}

	attrs := []any{
		"entity_id", ev.EntityID,
		"reason", ev.Reason,
		"pos", ev.Position.String(),
	}
	if ev.Detail != "" {
		attrs = append(attrs, "detail", ev.Detail)
	}
	s.log.Log(ctx, level, string(ev.Kind), attrs...)
}
