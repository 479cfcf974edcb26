package printship

import "time"

// State is the printer connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// String returns a human-readable representation of the state.
func (s State) String() string {
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

// StateChangeEvent is emitted on every connection state transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// PrintSuccessEvent is emitted after a receipt was fully delivered.
type PrintSuccessEvent struct {
	SaleID  int64
	Bytes   int
	Chunks  int
	Retries int
	At      time.Time
}

// PrintErrorEvent is emitted when a print fails.
type PrintErrorEvent struct {
	SaleID int64
	Error  error
}

// EventHandler receives client events.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
	OnPrintSuccess(PrintSuccessEvent)
	OnPrintError(PrintErrorEvent)
}
