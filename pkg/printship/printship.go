package printship

import (
	"context"
	"fmt"

	"github.com/altoke/printship/internal/adapters/fs"
	"github.com/altoke/printship/internal/app"
	"github.com/altoke/printship/internal/domain"
	"github.com/altoke/printship/internal/ports"
	"github.com/altoke/printship/internal/receipt"
	"github.com/altoke/printship/internal/salefile"
	"github.com/altoke/printship/internal/spool"
	"github.com/altoke/printship/internal/transport"
)

// Receipt data model.
type (
	ReceiptOptions = domain.ReceiptOptions
	SaleRecord     = domain.SaleRecord
	SaleLineItem   = domain.SaleLineItem
	PaymentEntry   = domain.PaymentEntry
	BusinessInfo   = domain.BusinessInfo
	PrintJob       = domain.PrintJob
)

// SpoolConfig controls Client.Watch.
type SpoolConfig = spool.Config

// DefaultSpoolConfig returns the watcher defaults for dir.
func DefaultSpoolConfig(dir string) SpoolConfig {
	return spool.DefaultConfig(dir)
}

// Errors. Check with errors.Is.
var (
	ErrNoEndpoint     = domain.ErrNoEndpoint
	ErrConnecting     = domain.ErrConnecting
	ErrWriteFailed    = domain.ErrWriteFailed
	ErrDeviceNotFound = domain.ErrDeviceNotFound
	ErrInvalidConfig  = domain.ErrInvalidConfig
	ErrInvalidSale    = domain.ErrInvalidSale
	ErrNoJournal      = domain.ErrNoJournal
)

// Render encodes a receipt without printing it.
func Render(opts ReceiptOptions) ([]byte, error) {
	return receipt.Generate(opts)
}

// LoadSale reads a JSON or YAML sale document.
func LoadSale(path string) (ReceiptOptions, error) {
	return salefile.Load(path)
}

// Client prints receipts on one printer. It is safe for concurrent use;
// prints are delivered one at a time.
type Client struct {
	opts    options
	conn    *app.ConnectionManager
	printer *app.Printer
	logger  ports.Logger
}

// New creates a disconnected client for the printer reached by connector.
func New(connector Connector, opts ...Option) (*Client, error) {
	if connector == nil {
		return nil, fmt.Errorf("%w: connector is required", domain.ErrInvalidConfig)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.transport.Validate(); err != nil {
		return nil, err
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}
	conn := app.NewConnectionManager(connector, o.logger, emitter)

	trOpts := []transport.Option{transport.WithLogger(o.logger)}
	if o.sleep != nil {
		trOpts = append(trOpts, transport.WithSleep(o.sleep))
	}
	tr := transport.New(o.transport, conn, trOpts...)

	var journal ports.JournalRepository
	if o.journalDir != "" {
		journal = fs.NewJournalFileRepository(o.journalDir)
	}

	printer := app.NewPrinter(app.PrinterConfig{
		Business:    o.business,
		Location:    o.location,
		AutoConnect: o.autoConnect,
	}, conn, tr, journal, o.logger, emitter)

	return &Client{
		opts:    o,
		conn:    conn,
		printer: printer,
		logger:  o.logger,
	}, nil
}

// Connect connects the printer. It is a no-op when already connected.
func (c *Client) Connect(ctx context.Context) error {
	_, err := c.conn.Connect(ctx)
	return err
}

// Disconnect releases the printer.
func (c *Client) Disconnect() {
	c.conn.Disconnect()
}

// Status returns the connection state.
func (c *Client) Status() State {
	return convertState(c.conn.State())
}

// Render encodes a receipt with the client's header and time zone defaults.
func (c *Client) Render(opts ReceiptOptions) ([]byte, error) {
	return c.printer.Render(opts)
}

// Print renders opts and delivers it.
func (c *Client) Print(ctx context.Context, opts ReceiptOptions) (PrintJob, error) {
	return c.printer.Print(ctx, opts)
}

// Reprint delivers the last printed receipt again. It requires WithJournalDir.
func (c *Client) Reprint(ctx context.Context) (PrintJob, error) {
	return c.printer.Reprint(ctx)
}

// Last returns the last printed job. The job is empty when nothing was printed.
func (c *Client) Last(ctx context.Context) (PrintJob, error) {
	return c.printer.Last(ctx)
}

// Watch prints the sale documents dropped into cfg.Dir until ctx is cancelled.
func (c *Client) Watch(ctx context.Context, cfg SpoolConfig) error {
	w := spool.New(cfg, c.printer, c.conn, c.logger)
	return w.Run(ctx)
}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.ConnState, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnPrintSuccess(job domain.PrintJob) {
	if e.handler == nil {
		return
	}
	e.handler.OnPrintSuccess(PrintSuccessEvent{
		SaleID:  job.Options.Sale.ID,
		Bytes:   job.Bytes,
		Chunks:  job.Chunks,
		Retries: job.Retries,
		At:      job.PrintedAt,
	})
}

func (e *eventEmitterWrapper) OnPrintError(err error, saleID int64) {
	if e.handler == nil {
		return
	}
	e.handler.OnPrintError(PrintErrorEvent{SaleID: saleID, Error: err})
}

func convertState(s app.ConnState) State {
	switch s {
	case app.StateConnecting:
		return StateConnecting
	case app.StateConnected:
		return StateConnected
	default:
		return StateDisconnected
	}
}
