// Package transport delivers encoded receipts to an MTU-limited printer
// endpoint: it splits the payload, paces the writes and retries failed ones.
package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/altoke/printship/internal/domain"
	"github.com/altoke/printship/internal/ports"
	"github.com/altoke/printship/pkg/log"
)

// Connection is the part of the connection manager the transport uses.
type Connection interface {
	// Endpoint returns the current endpoint, if connected.
	Endpoint() (ports.Endpoint, bool)

	// Disconnect invalidates the current endpoint.
	Disconnect()
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Stats describes one delivery.
type Stats struct {
	Bytes    int
	Chunks   int
	Retries  int
	Duration time.Duration
}

// Transport writes byte streams to the endpoint held by a Connection.
// Writes against the same connection must be serialized by the caller.
type Transport struct {
	cfg    Config
	conn   Connection
	logger ports.Logger
	sleep  Sleeper
}

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the logger. Retries are reported at warn level.
func WithLogger(logger ports.Logger) Option {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithSleep replaces the delay primitive.
func WithSleep(s Sleeper) Option {
	return func(t *Transport) {
		if s != nil {
			t.sleep = s
		}
	}
}

// New creates a Transport. cfg is assumed valid; see Config.Validate.
func New(cfg Config, conn Connection, opts ...Option) *Transport {
	t := &Transport{
		cfg:    cfg,
		conn:   conn,
		logger: log.NewNoopLogger(),
		sleep:  SleepContext,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Config returns the transport configuration.
func (t *Transport) Config() Config { return t.cfg }

// Write delivers data. See WriteWithStats.
func (t *Transport) Write(ctx context.Context, data []byte) error {
	_, err := t.WriteWithStats(ctx, data)
	return err
}

// WriteWithStats delivers data chunk by chunk, strictly in order.
//
// Without a connected endpoint it fails with domain.ErrNoEndpoint before any
// write. When a chunk exhausts its attempts no further chunks are written, the
// connection is disconnected and the returned error wraps domain.ErrWriteFailed
// and the last write error. Cancelling ctx aborts with ctx.Err() and leaves the
// connection alone.
func (t *Transport) WriteWithStats(ctx context.Context, data []byte) (Stats, error) {
	var stats Stats
	ep, ok := t.conn.Endpoint()
	if !ok || ep == nil {
		return stats, domain.ErrNoEndpoint
	}

	start := time.Now()
	chunks := Split(data, t.cfg.MaxChunkSize)
	for i, chunk := range chunks {
		retries, err := t.writeChunk(ctx, ep, chunk, i, len(chunks))
		stats.Retries += retries
		if err != nil {
			stats.Duration = time.Since(start)
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			t.logger.Error("printer write failed, disconnecting",
				ports.Int("chunk", i+1),
				ports.Int("chunks", len(chunks)),
				ports.Err(err),
			)
			t.conn.Disconnect()
			return stats, fmt.Errorf("%w: chunk %d/%d: %w", domain.ErrWriteFailed, i+1, len(chunks), err)
		}
		stats.Chunks++
		stats.Bytes += len(chunk)

		if i < len(chunks)-1 {
			if err := t.sleep(ctx, t.cfg.ChunkDelay); err != nil {
				stats.Duration = time.Since(start)
				return stats, err
			}
		}
	}

	stats.Duration = time.Since(start)
	t.logger.Debug("receipt delivered",
		ports.Int("bytes", stats.Bytes),
		ports.Int("chunks", stats.Chunks),
		ports.Int("retries", stats.Retries),
		ports.Duration("duration", stats.Duration),
	)
	return stats, nil
}

// writeChunk makes up to MaxAttempts attempts and returns how many retries it used.
func (t *Transport) writeChunk(ctx context.Context, ep ports.Endpoint, chunk []byte, idx, total int) (int, error) {
	for attempt := 1; ; attempt++ {
		err := t.attempt(ctx, ep, chunk)
		if err == nil {
			return attempt - 1, nil
		}
		if attempt >= t.cfg.MaxAttempts || ctx.Err() != nil {
			return attempt - 1, err
		}

		t.logger.Warn("chunk write failed, retrying",
			ports.Int("chunk", idx+1),
			ports.Int("chunks", total),
			ports.Int("retry", attempt),
			ports.Int("max_retries", t.cfg.MaxAttempts-1),
			ports.Err(err),
		)
		if serr := t.sleep(ctx, t.cfg.RetryDelay); serr != nil {
			return attempt - 1, serr
		}
	}
}

func (t *Transport) attempt(ctx context.Context, ep ports.Endpoint, chunk []byte) error {
	if t.cfg.WriteTimeout <= 0 {
		return ep.WriteChunk(ctx, chunk)
	}
	wctx, cancel := context.WithTimeout(ctx, t.cfg.WriteTimeout)
	defer cancel()
	return ep.WriteChunk(wctx, chunk)
}

// SleepContext waits for d or until ctx is done, whichever comes first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
