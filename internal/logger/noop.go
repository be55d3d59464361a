package logger

// NoopLogger discards all log messages. Useful in tests.
type NoopLogger struct{}

// NewNoop creates a logger that discards everything.
func NewNoop() *NoopLogger {
	return &NoopLogger{}
}

// Debug does nothing.
func (n *NoopLogger) Debug(string, ...any) {}

// Info does nothing.
func (n *NoopLogger) Info(string, ...any) {}

// Warn does nothing.
func (n *NoopLogger) Warn(string, ...any) {}

// Error does nothing.
func (n *NoopLogger) Error(string, ...any) {}

// With returns the same no-op logger.
func (n *NoopLogger) With(...any) Interface { return n }
