package ai

import "sync/atomic"

// debugLoggingEnabled gates per-tick debug logging for the AI subsystem.
// A package-level flag avoids paying the slog level check on every tick.
// Set via EnableDebugLogging() during startup based on the configured log level.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables debug logging for the AI subsystem.
// Call during initialization, after the log level is known.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled reports whether AI debug logging is enabled.
// Use it to guard log calls that build per-tick attributes:
//
//	if ai.IsDebugEnabled() {
//	    slog.Debug("route planned", "steps", len(route))
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
