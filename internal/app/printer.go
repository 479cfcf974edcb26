package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/altoke/printship/internal/domain"
	"github.com/altoke/printship/internal/ports"
	"github.com/altoke/printship/internal/receipt"
	"github.com/altoke/printship/internal/transport"
)

// PrinterConfig contains receipt defaults and connection behavior.
type PrinterConfig struct {
	// Business fills in the header when a job leaves it empty.
	Business domain.BusinessInfo

	// Location is the zone sale times are printed in. Nil means the shop zone.
	Location *time.Location

	// AutoConnect connects on demand when no printer is connected.
	AutoConnect bool
}

// PrintEventEmitter is called after every print attempt.
type PrintEventEmitter interface {
	OnPrintSuccess(job domain.PrintJob)
	OnPrintError(err error, saleID int64)
}

// Printer renders sales and delivers them, one job at a time.
type Printer struct {
	config    PrinterConfig
	conn      *ConnectionManager
	transport *transport.Transport
	journal   ports.JournalRepository
	logger    ports.Logger
	emitter   PrintEventEmitter

	mu sync.Mutex
}

// NewPrinter creates a printer. journal and emitter may be nil.
func NewPrinter(
	config PrinterConfig,
	conn *ConnectionManager,
	tr *transport.Transport,
	journal ports.JournalRepository,
	logger ports.Logger,
	emitter PrintEventEmitter,
) *Printer {
	return &Printer{
		config:    config,
		conn:      conn,
		transport: tr,
		journal:   journal,
		logger:    logger,
		emitter:   emitter,
	}
}

// Render encodes a receipt with the printer's defaults applied.
func (p *Printer) Render(opts domain.ReceiptOptions) ([]byte, error) {
	return receipt.Generate(p.prepare(opts))
}

// Print renders opts and sends it to the printer. A failed print never
// touches the sale itself; callers report it and move on.
func (p *Printer) Print(ctx context.Context, opts domain.ReceiptOptions) (domain.PrintJob, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	opts = p.prepare(opts)
	data, err := receipt.Generate(opts)
	if err != nil {
		p.fail(err, opts.Sale.ID)
		return domain.PrintJob{}, err
	}
	return p.deliver(ctx, opts, data)
}

// Reprint sends the last journaled receipt again.
func (p *Printer) Reprint(ctx context.Context) (domain.PrintJob, error) {
	if p.journal == nil {
		return domain.PrintJob{}, domain.ErrNoJournal
	}
	last, err := p.journal.Load(ctx)
	if err != nil {
		return domain.PrintJob{}, fmt.Errorf("load journal: %w", err)
	}
	if last.IsEmpty() {
		return domain.PrintJob{}, domain.ErrNoJournal
	}
	p.logger.Info("reprinting receipt", ports.Int64("sale", last.Options.Sale.ID))
	return p.Print(ctx, last.Options)
}

// Last returns the last journaled job.
func (p *Printer) Last(ctx context.Context) (domain.PrintJob, error) {
	if p.journal == nil {
		return domain.PrintJob{}, domain.ErrNoJournal
	}
	return p.journal.Load(ctx)
}

func (p *Printer) deliver(ctx context.Context, opts domain.ReceiptOptions, data []byte) (domain.PrintJob, error) {
	if _, ok := p.conn.Endpoint(); !ok && p.config.AutoConnect {
		if _, err := p.conn.Connect(ctx); err != nil && !errors.Is(err, domain.ErrConnecting) {
			p.fail(err, opts.Sale.ID)
			return domain.PrintJob{}, err
		}
	}

	stats, err := p.transport.WriteWithStats(ctx, data)
	if err != nil {
		p.fail(err, opts.Sale.ID)
		return domain.PrintJob{}, err
	}

	job := domain.PrintJob{
		Options:   opts,
		Bytes:     stats.Bytes,
		Chunks:    stats.Chunks,
		Retries:   stats.Retries,
		PrintedAt: time.Now(),
	}

	p.logger.Info("printed receipt",
		ports.Int64("sale", opts.Sale.ID),
		ports.Int("bytes", stats.Bytes),
		ports.Int("chunks", stats.Chunks),
		ports.Int("retries", stats.Retries),
		ports.Duration("duration", stats.Duration),
	)

	if p.journal != nil {
		if err := p.journal.Save(ctx, job); err != nil {
			p.logger.Error("failed to save print journal", ports.Err(err))
		}
	}
	if p.emitter != nil {
		p.emitter.OnPrintSuccess(job)
	}
	return job, nil
}

func (p *Printer) fail(err error, saleID int64) {
	p.logger.Error("print failed", ports.Int64("sale", saleID), ports.Err(err))
	if p.emitter != nil {
		p.emitter.OnPrintError(err, saleID)
	}
}

// prepare applies printer-level defaults without touching the caller's slices.
func (p *Printer) prepare(opts domain.ReceiptOptions) domain.ReceiptOptions {
	if opts.Business == (domain.BusinessInfo{}) {
		opts.Business = p.config.Business
	}
	opts.Business = opts.Business.WithDefaults()
	if opts.Location == nil {
		opts.Location = p.config.Location
	}
	return opts
}
