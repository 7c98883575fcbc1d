package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds operation-scoped logging context for a single VFS call.
type LogContext struct {
	Operation string    // VFS method name (Read, Write, Sync, Truncate, ...)
	Path      string    // database file path as seen by the shim
	Chunk     int64     // chunk index the operation is acting on, -1 if not chunk-scoped
	StartTime time.Time // for duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for an operation against path.
func NewLogContext(operation, path string) *LogContext {
	return &LogContext{
		Operation: operation,
		Path:      path,
		Chunk:     -1,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		Operation: lc.Operation,
		Path:      lc.Path,
		Chunk:     lc.Chunk,
		StartTime: lc.StartTime,
	}
}

// WithOperation returns a copy with the operation set
func (lc *LogContext) WithOperation(operation string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Operation = operation
	}
	return clone
}

// WithChunk returns a copy with the chunk index set
func (lc *LogContext) WithChunk(chunk int64) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Chunk = chunk
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
