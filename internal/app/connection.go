package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/altoke/printship/internal/domain"
	"github.com/altoke/printship/internal/ports"
)

// ConnState is the state of the printer connection.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

// String returns a human-readable representation of the state.
func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	default:
		return "Unknown"
	}
}

// EventEmitter is called when the connection state changes.
type EventEmitter interface {
	OnStateChange(previous, current ConnState, reason string)
}

// ConnectionManager owns the single printer endpoint. The transport and the
// CLI receive it explicitly instead of reaching into process-wide state.
//
// It does not serialize prints; see Printer.
type ConnectionManager struct {
	mu           sync.RWMutex
	state        ConnState
	endpoint     ports.Endpoint
	connector    ports.Connector
	logger       ports.Logger
	eventEmitter EventEmitter
}

// NewConnectionManager creates a disconnected manager.
func NewConnectionManager(connector ports.Connector, logger ports.Logger, emitter EventEmitter) *ConnectionManager {
	return &ConnectionManager{
		state:        StateDisconnected,
		connector:    connector,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current connection state.
func (m *ConnectionManager) State() ConnState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Endpoint returns the connected endpoint, if any.
func (m *ConnectionManager) Endpoint() (ports.Endpoint, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateConnected || m.endpoint == nil {
		return nil, false
	}
	return m.endpoint, true
}

// Connect discovers the printer and stores its endpoint. Connecting while
// already connected returns the current endpoint. On failure the manager is
// left disconnected.
func (m *ConnectionManager) Connect(ctx context.Context) (ports.Endpoint, error) {
	m.mu.Lock()
	switch m.state {
	case StateConnected:
		ep := m.endpoint
		m.mu.Unlock()
		return ep, nil
	case StateConnecting:
		m.mu.Unlock()
		return nil, domain.ErrConnecting
	}
	if m.connector == nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: no connector configured", domain.ErrInvalidConfig)
	}
	prev := m.state
	m.state = StateConnecting
	m.mu.Unlock()
	m.emit(prev, StateConnecting, "connect requested")

	ep, err := m.connector.Connect(ctx)
	if err == nil && ep == nil {
		err = domain.ErrNoEndpoint
	}

	m.mu.Lock()
	if err != nil {
		m.state = StateDisconnected
		m.endpoint = nil
		m.mu.Unlock()
		m.emit(StateConnecting, StateDisconnected, "connect failed: "+err.Error())
		return nil, fmt.Errorf("connect printer: %w", err)
	}
	m.state = StateConnected
	m.endpoint = ep
	m.mu.Unlock()
	m.emit(StateConnecting, StateConnected, "connected")
	return ep, nil
}

// Disconnect invalidates the current endpoint and releases it. It is a no-op
// when already disconnected.
func (m *ConnectionManager) Disconnect() {
	m.mu.Lock()
	if m.state != StateConnected {
		m.mu.Unlock()
		return
	}
	ep := m.endpoint
	m.endpoint = nil
	m.state = StateDisconnected
	m.mu.Unlock()

	if c, ok := ep.(ports.Closer); ok {
		if err := c.Close(); err != nil {
			m.logger.Warn("closing printer endpoint", ports.Err(err))
		}
	}
	m.emit(StateConnected, StateDisconnected, "disconnected")
}

// emit runs outside the lock.
func (m *ConnectionManager) emit(from, to ConnState, reason string) {
	if m.eventEmitter != nil {
		m.eventEmitter.OnStateChange(from, to, reason)
	}

	m.logger.Info("printer state",
		ports.String("from", from.String()),
		ports.String("to", to.String()),
		ports.String("reason", reason),
	)
}
