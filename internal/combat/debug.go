package combat

import "sync/atomic"

// debugLoggingEnabled gates per-hit debug logging so the hot damage
// path skips slog argument construction when disabled.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables combat debug logging.
// Called during initialization based on config log level.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if combat debug logging is enabled.
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
