package ports

import "context"

// Endpoint is the write capability of a connected printer. It is owned by the
// connection manager and borrowed by the transport for one print at a time.
type Endpoint interface {
	// WriteChunk delivers one chunk. The chunk never exceeds the configured
	// maximum transfer size. A non-nil error means the chunk may not have
	// reached the printer.
	WriteChunk(ctx context.Context, chunk []byte) error
}

// Connector establishes a printer connection.
type Connector interface {
	// Connect discovers the printer and returns its write endpoint.
	Connect(ctx context.Context) (Endpoint, error)
}

// Closer is implemented by endpoints that hold resources to release on disconnect.
type Closer interface {
	Close() error
}
