package transport

import (
	"fmt"
	"time"

	"github.com/altoke/printship/internal/domain"
)

// Defaults tuned for the 58mm BLE printers the shop uses. They are not
// negotiated with the device; printers with a smaller MTU need MaxChunkSize
// lowered explicitly.
const (
	DefaultMaxChunkSize = 200
	DefaultChunkDelay   = 350 * time.Millisecond
	DefaultRetryDelay   = 500 * time.Millisecond
	DefaultMaxAttempts  = 4
)

// Config controls chunking, pacing and retries.
type Config struct {
	// MaxChunkSize is the largest payload of a single endpoint write.
	MaxChunkSize int

	// ChunkDelay separates consecutive chunks. It is never applied after the last one.
	ChunkDelay time.Duration

	// RetryDelay separates attempts at the same chunk.
	RetryDelay time.Duration

	// MaxAttempts counts the original write plus retries.
	MaxAttempts int

	// WriteTimeout bounds each write attempt. Zero disables it.
	WriteTimeout time.Duration
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		MaxChunkSize: DefaultMaxChunkSize,
		ChunkDelay:   DefaultChunkDelay,
		RetryDelay:   DefaultRetryDelay,
		MaxAttempts:  DefaultMaxAttempts,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MaxChunkSize <= 0 {
		return fmt.Errorf("%w: max chunk size must be positive", domain.ErrInvalidConfig)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1", domain.ErrInvalidConfig)
	}
	if c.ChunkDelay < 0 || c.RetryDelay < 0 || c.WriteTimeout < 0 {
		return fmt.Errorf("%w: delays must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}
