// Package devfile connects to printers exposed as files: an RFCOMM or serial
// device node, or a plain file that captures the stream for inspection.
package devfile

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/altoke/printship/internal/ports"
)

// Connector opens Path for writing on Connect.
type Connector struct {
	Path string

	// Truncate empties a regular file on connect instead of appending to it.
	Truncate bool
}

// NewConnector creates a connector for path.
func NewConnector(path string, truncate bool) *Connector {
	return &Connector{Path: path, Truncate: truncate}
}

// Connect opens the device.
func (c *Connector) Connect(ctx context.Context) (ports.Endpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if c.Truncate {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	f, err := os.OpenFile(c.Path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Path, err)
	}
	return &Endpoint{w: f, closer: f}, nil
}

// Endpoint writes chunks to an io.Writer.
type Endpoint struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
}

// NewEndpoint wraps w. If w is an io.Closer it is closed on disconnect.
func NewEndpoint(w io.Writer) *Endpoint {
	e := &Endpoint{w: w}
	if c, ok := w.(io.Closer); ok {
		e.closer = c
	}
	return e
}

// WriteChunk writes chunk in full.
func (e *Endpoint) WriteChunk(ctx context.Context, chunk []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.w == nil {
		return os.ErrClosed
	}
	n, err := e.w.Write(chunk)
	if err != nil {
		return err
	}
	if n != len(chunk) {
		return io.ErrShortWrite
	}
	return nil
}

// Close releases the underlying device.
func (e *Endpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.w = nil
	if e.closer == nil {
		return nil
	}
	err := e.closer.Close()
	e.closer = nil
	return err
}
