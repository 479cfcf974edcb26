package printship

import (
	"time"

	"github.com/altoke/printship/internal/adapters/bluez"
	"github.com/altoke/printship/internal/adapters/devfile"
	"github.com/altoke/printship/internal/ports"
	"github.com/altoke/printship/internal/transport"
	"github.com/altoke/printship/pkg/log"
)

// Logger is the interface for structured logging.
type Logger = log.Logger

// LogField represents a structured log field.
type LogField = log.Field

// Connector establishes a printer connection.
type Connector = ports.Connector

// Endpoint is the write capability of a connected printer.
type Endpoint = ports.Endpoint

// TransportConfig controls chunking, pacing and retries.
type TransportConfig = transport.Config

// DefaultTransportConfig returns 200-byte chunks, 350ms pacing and four
// attempts per chunk, 500ms apart.
func DefaultTransportConfig() TransportConfig {
	return transport.DefaultConfig()
}

// BLEOption configures the BlueZ connector.
type BLEOption = bluez.Option

// Device is a Bluetooth device known to BlueZ.
type Device = bluez.Device

// BlueZ connector options.
var (
	WithDevice         = bluez.WithDevice
	WithUUIDs          = bluez.WithUUIDs
	WithResolveTimeout = bluez.WithResolveTimeout
	WithBLELogger      = bluez.WithLogger
)

// BLE returns a connector reaching the printer over BlueZ on the system bus.
func BLE(opts ...BLEOption) *bluez.Connector {
	return bluez.NewConnector(opts...)
}

// DeviceFile returns a connector writing to an rfcomm/serial node or a file.
func DeviceFile(path string, truncate bool) *devfile.Connector {
	return devfile.NewConnector(path, truncate)
}

// Option configures optional behavior of a Client.
type Option func(*options)

type options struct {
	logger       Logger
	eventHandler EventHandler
	transport    TransportConfig
	sleep        transport.Sleeper
	journalDir   string
	business     BusinessInfo
	location     *time.Location
	autoConnect  bool
}

func defaultOptions() options {
	return options{
		logger:      log.NewNoopLogger(),
		transport:   transport.DefaultConfig(),
		autoConnect: true,
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEventHandler sets a handler for client events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithTransportConfig replaces the chunking and retry settings.
func WithTransportConfig(cfg TransportConfig) Option {
	return func(o *options) {
		o.transport = cfg
	}
}

// WithJournalDir keeps the last printed receipt in dir so it can be reprinted.
func WithJournalDir(dir string) Option {
	return func(o *options) {
		o.journalDir = dir
	}
}

// WithBusiness sets the receipt header used when a job leaves it empty.
func WithBusiness(b BusinessInfo) Option {
	return func(o *options) {
		o.business = b
	}
}

// WithLocation sets the zone sale times are printed in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.location = loc
	}
}

// WithoutAutoConnect makes Print fail with ErrNoEndpoint instead of
// connecting on demand.
func WithoutAutoConnect() Option {
	return func(o *options) {
		o.autoConnect = false
	}
}

// withSleep replaces the pacing and retry sleep.
func withSleep(s transport.Sleeper) Option {
	return func(o *options) {
		o.sleep = s
	}
}
