package logger

// TraceLevel mirrors the compressed VFS's own verbosity scale, independent
// of the process-wide Debug/Info/Warn/Error level. It lets a caller dial up
// per-chunk read/write tracing without dropping the rest of the process
// into debug logging.
//
// The numeric values and ordering match the shim's documented configuration
// knob: each level is a superset of the one before it.
type TraceLevel int

const (
	TraceError        TraceLevel = -1
	TraceNone         TraceLevel = 0
	TraceRegistration TraceLevel = 1
	TraceOpenClose    TraceLevel = 2
	TraceNonIoOps     TraceLevel = 3
	TraceCompression  TraceLevel = 4
	TraceIoOps        TraceLevel = 5
	TraceTrace        TraceLevel = 6
	TraceMaximum      TraceLevel = 7
)

// DefaultTraceLevel matches the shim's documented default.
const DefaultTraceLevel = TraceRegistration

func (t TraceLevel) String() string {
	switch t {
	case TraceError:
		return "ERROR"
	case TraceNone:
		return "NONE"
	case TraceRegistration:
		return "REGISTRATION"
	case TraceOpenClose:
		return "OPEN_CLOSE"
	case TraceNonIoOps:
		return "NON_IO_OPS"
	case TraceCompression:
		return "COMPRESSION"
	case TraceIoOps:
		return "IO_OPS"
	case TraceTrace:
		return "TRACE"
	case TraceMaximum:
		return "MAXIMUM"
	default:
		return "UNKNOWN"
	}
}

// slogLevel maps a TraceLevel onto the underlying slog severity used by
// the shared logger. Anything at or above TraceCompression is chatty
// enough to log at Debug; Registration/OpenClose/NonIoOps log at Info;
// Error logs at Error; None suppresses tracing entirely and is handled
// by callers via Enabled, not by this mapping.
func (t TraceLevel) slogLevel() Level {
	switch {
	case t <= TraceError:
		return LevelError
	case t <= TraceNonIoOps:
		return LevelInfo
	default:
		return LevelDebug
	}
}

// Enabled reports whether logging at the given trace level should produce
// output under the current trace configuration. Registration never fires
// below TraceRegistration, compression-detail lines never fire below
// TraceCompression, and so on.
func (configured TraceLevel) Enabled(at TraceLevel) bool {
	if configured == TraceNone {
		return false
	}
	if configured == TraceError {
		return at == TraceError
	}
	return at <= configured
}

// Tracef logs a message at the given trace level if it is enabled under
// the configured level, using the shared process logger at the
// corresponding slog severity.
func Tracef(configured, at TraceLevel, msg string, args ...any) {
	if !configured.Enabled(at) {
		return
	}
	switch at.slogLevel() {
	case LevelDebug:
		Debug(msg, args...)
	case LevelWarn:
		Warn(msg, args...)
	case LevelError:
		Error(msg, args...)
	default:
		Info(msg, args...)
	}
}
