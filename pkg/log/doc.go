// Package log provides the structured logging abstraction used across printship.
//
// Components depend on the Logger interface only. The zerolog adapter is what
// the CLI wires in; the no-op logger is what tests and library callers get by
// default.
//
//	logger := log.NewZerologAdapter(zerolog.InfoLevel)
//	logger.Warn("chunk write failed, retrying", log.Int("attempt", 2))
package log
