package log

import "time"

// Logger provides structured logging for the printer client, the spool
// watcher and the transports. The zerolog adapter backs it in the CLI.
type Logger interface {
	// Debug logs per-chunk and discovery detail.
	Debug(msg string, fields ...Field)

	// Info logs connection changes and finished jobs.
	Info(msg string, fields ...Field)

	// Warn logs retried writes and recoverable spool failures.
	Warn(msg string, fields ...Field)

	// Error logs failed jobs.
	Error(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Float64 creates a float64 field.
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field with key "error".
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Any creates a field with any value.
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
