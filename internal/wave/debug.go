package wave

import "sync/atomic"

// debugLoggingEnabled gates per-spawn debug logging so the spawn loop
// skips slog argument construction when disabled.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables wave debug logging.
// Called during initialization based on config log level.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if wave debug logging is enabled.
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
