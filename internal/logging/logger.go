// Package logging is the structured logging layer of fintrack. Components
// receive a Logger through their constructors; only the CLI entrypoint knows
// that logrus sits behind it.
package logging

// Logger is the structured logger used throughout the client.
type Logger interface {
	// Debug logs a debug-level message with optional fields
	Debug(msg string, fields ...Field)

	// Info logs an info-level message with optional fields
	Info(msg string, fields ...Field)

	// Warn logs a warning-level message with optional fields
	Warn(msg string, fields ...Field)

	// Error logs an error-level message with optional fields
	Error(msg string, fields ...Field)

	// WithError returns a logger with an error field attached
	WithError(err error) Logger

	// WithField returns a logger with a single field attached
	WithField(key string, value interface{}) Logger

	// WithFields returns a logger with multiple fields attached
	WithFields(fields ...Field) Logger
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for building a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
