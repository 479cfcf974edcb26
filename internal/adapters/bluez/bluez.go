// Package bluez reaches BLE thermal printers through the BlueZ D-Bus API on
// Linux. It resolves the printer's GATT write characteristic and sends each
// chunk as a write-with-response.
package bluez

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/altoke/printship/internal/ports"
	"github.com/altoke/printship/pkg/log"
)

const defaultResolveTimeout = 10 * time.Second

const resolvePoll = 250 * time.Millisecond

// Connector connects to a printer over the system bus.
type Connector struct {
	filter         string
	serviceUUID    string
	charUUID       string
	resolveTimeout time.Duration
	logger         ports.Logger
	dial           func() (*dbus.Conn, error)
}

// Option configures a Connector.
type Option func(*Connector)

// WithDevice selects the printer by Bluetooth address or name.
func WithDevice(filter string) Option {
	return func(c *Connector) { c.filter = filter }
}

// WithUUIDs overrides the GATT service and characteristic.
func WithUUIDs(service, characteristic string) Option {
	return func(c *Connector) {
		if service != "" {
			c.serviceUUID = service
		}
		if characteristic != "" {
			c.charUUID = characteristic
		}
	}
}

// WithResolveTimeout bounds the wait for GATT services after connecting.
func WithResolveTimeout(d time.Duration) Option {
	return func(c *Connector) {
		if d > 0 {
			c.resolveTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l ports.Logger) Option {
	return func(c *Connector) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewConnector creates a BlueZ connector.
func NewConnector(opts ...Option) *Connector {
	c := &Connector{
		serviceUUID:    PrinterServiceUUID,
		charUUID:       PrinterCharacteristicUUID,
		resolveTimeout: defaultResolveTimeout,
		logger:         log.NewNoopLogger(),
		dial:           systemBus,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// systemBus opens a private system bus connection. It is not bound to a
// context; the returned endpoint outlives the Connect call.
func systemBus() (*dbus.Conn, error) {
	return dbus.ConnectSystemBus()
}

// Connect finds the printer, connects it if needed and waits until the write
// characteristic is resolved. ctx bounds the discovery calls only.
func (c *Connector) Connect(ctx context.Context) (ports.Endpoint, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, fmt.Errorf("system bus: %w", err)
	}

	ep, err := c.connect(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return ep, nil
}

func (c *Connector) connect(ctx context.Context, conn *dbus.Conn) (*Characteristic, error) {
	objects, err := getManagedObjects(ctx, conn)
	if err != nil {
		return nil, err
	}
	device, err := objects.findDevice(c.filter, c.serviceUUID)
	if err != nil {
		return nil, err
	}

	c.logger.Info("printer found",
		ports.String("address", device.Address),
		ports.String("name", device.Name),
		ports.Bool("connected", device.Connected),
	)

	if !device.Connected {
		call := conn.Object(busName, device.Path).CallWithContext(ctx, ifaceDevice+".Connect", 0)
		if call.Err != nil {
			return nil, fmt.Errorf("connect %s: %w", device.Address, call.Err)
		}
	}

	resolveCtx, cancel := context.WithTimeout(ctx, c.resolveTimeout)
	defer cancel()

	for {
		if path, ok := objects.findCharacteristic(device.Path, c.serviceUUID, c.charUUID); ok {
			c.logger.Debug("write characteristic resolved", ports.String("path", string(path)))
			return &Characteristic{conn: conn, obj: conn.Object(busName, path), path: path}, nil
		}

		select {
		case <-resolveCtx.Done():
			return nil, fmt.Errorf("resolve characteristic %s on %s: %w", c.charUUID, device.Address, resolveCtx.Err())
		case <-time.After(resolvePoll):
		}

		if objects, err = getManagedObjects(ctx, conn); err != nil {
			return nil, err
		}
	}
}

// Devices lists the Bluetooth devices known to BlueZ.
func (c *Connector) Devices(ctx context.Context) ([]Device, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, fmt.Errorf("system bus: %w", err)
	}
	defer conn.Close()

	objects, err := getManagedObjects(ctx, conn)
	if err != nil {
		return nil, err
	}
	return objects.devices(c.serviceUUID), nil
}

func getManagedObjects(ctx context.Context, conn *dbus.Conn) (managedObjects, error) {
	var objects managedObjects
	err := conn.Object(busName, "/").
		CallWithContext(ctx, ifaceObjectManager+".GetManagedObjects", 0).
		Store(&objects)
	if err != nil {
		return nil, fmt.Errorf("list bluez objects: %w", err)
	}
	return objects, nil
}

// Characteristic is the printer's GATT write characteristic.
type Characteristic struct {
	conn *dbus.Conn
	obj  dbus.BusObject
	path dbus.ObjectPath
}

// WriteChunk writes chunk with response.
func (ch *Characteristic) WriteChunk(ctx context.Context, chunk []byte) error {
	opts := map[string]dbus.Variant{"type": dbus.MakeVariant("request")}
	if err := ch.obj.CallWithContext(ctx, ifaceCharacteristic+".WriteValue", 0, chunk, opts).Err; err != nil {
		return fmt.Errorf("write %s: %w", ch.path, err)
	}
	return nil
}

// Close releases the bus connection. The device link is left to BlueZ.
func (ch *Characteristic) Close() error {
	return ch.conn.Close()
}
