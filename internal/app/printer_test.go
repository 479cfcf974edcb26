package app

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/altoke/printship/internal/domain"
	"github.com/altoke/printship/internal/receipt"
	"github.com/altoke/printship/internal/transport"
)

// memJournal keeps the last job in memory.
type memJournal struct {
	job   domain.PrintJob
	saves int
	err   error
}

func (j *memJournal) Load(ctx context.Context) (domain.PrintJob, error) { return j.job, nil }
func (j *memJournal) Save(ctx context.Context, job domain.PrintJob) error {
	j.saves++
	if j.err != nil {
		return j.err
	}
	j.job = job
	return nil
}

type printEvents struct {
	ok     []domain.PrintJob
	failed []error
}

func (e *printEvents) OnPrintSuccess(job domain.PrintJob)   { e.ok = append(e.ok, job) }
func (e *printEvents) OnPrintError(err error, saleID int64) { e.failed = append(e.failed, err) }

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func testSale() domain.ReceiptOptions {
	return domain.ReceiptOptions{
		Sale: domain.SaleRecord{
			ID:        7,
			Total:     23.5,
			TotalPaid: 23.5,
			CreatedAt: time.Date(2025, 1, 2, 10, 30, 0, 0, time.UTC),
			Details: []domain.SaleLineItem{
				{ProductName: "Arroz Costeño 5kg", Quantity: 1, Price: 20},
				{ProductName: "Huevos", Quantity: 1, Price: 3.5, UnitsPerPackage: 6},
			},
		},
		Operator: "Rosa",
		Payments: []domain.PaymentEntry{{Name: "Efectivo", Amount: 20}, {Name: "Yape", Amount: 3.5}},
	}
}

type harness struct {
	ep      *memEndpoint
	conn    *ConnectionManager
	journal *memJournal
	events  *printEvents
	printer *Printer
}

func newHarness(autoConnect bool) *harness {
	ep := &memEndpoint{}
	conn := NewConnectionManager(&stubConnector{ep: ep}, mockLogger{}, nil)
	tr := transport.New(transport.DefaultConfig(), conn, transport.WithSleep(noSleep))
	journal := &memJournal{}
	events := &printEvents{}
	cfg := PrinterConfig{
		Business:    domain.BusinessInfo{Name: "KUSKAS"},
		Location:    time.UTC,
		AutoConnect: autoConnect,
	}
	return &harness{
		ep:      ep,
		conn:    conn,
		journal: journal,
		events:  events,
		printer: NewPrinter(cfg, conn, tr, journal, mockLogger{}, events),
	}
}

func TestPrinter_PrintDeliversRenderedReceipt(t *testing.T) {
	h := newHarness(true)

	job, err := h.printer.Print(context.Background(), testSale())
	if err != nil {
		t.Fatalf("Print() error: %v", err)
	}

	want, err := h.printer.Render(testSale())
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !bytes.Equal(h.ep.data, want) {
		t.Error("printer received different bytes than Render produced")
	}
	if job.Bytes != len(want) || job.Chunks != (len(want)+199)/200 {
		t.Errorf("job = %+v, want %d bytes", job, len(want))
	}
	if h.journal.saves != 1 || h.journal.job.Options.Sale.ID != 7 {
		t.Errorf("journal not updated: %+v", h.journal.job)
	}
	if h.journal.job.Options.Business.Name != "KUSKAS" {
		t.Errorf("journaled business = %q, want configured default", h.journal.job.Options.Business.Name)
	}
	if len(h.events.ok) != 1 || len(h.events.failed) != 0 {
		t.Errorf("events = %+v", h.events)
	}
}

func TestPrinter_RenderUsesConfiguredDefaults(t *testing.T) {
	h := newHarness(false)

	got, err := h.printer.Render(testSale())
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	opts := testSale()
	opts.Business = domain.BusinessInfo{Name: "KUSKAS"}
	opts.Location = time.UTC
	want, err := receipt.Generate(opts)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("Render did not apply printer defaults")
	}
}

func TestPrinter_NoPrinterWithoutAutoConnect(t *testing.T) {
	h := newHarness(false)

	_, err := h.printer.Print(context.Background(), testSale())
	if !errors.Is(err, domain.ErrNoEndpoint) {
		t.Fatalf("Print() error = %v, want ErrNoEndpoint", err)
	}
	if h.ep.writes != 0 {
		t.Error("writes happened without a connection")
	}
	if h.journal.saves != 0 {
		t.Error("failed print was journaled")
	}
	if len(h.events.failed) != 1 {
		t.Errorf("failure events = %d, want 1", len(h.events.failed))
	}
}

func TestPrinter_TerminalFailureDisconnects(t *testing.T) {
	h := newHarness(true)
	h.ep.fail = 1

	_, err := h.printer.Print(context.Background(), testSale())
	if !errors.Is(err, domain.ErrWriteFailed) {
		t.Fatalf("Print() error = %v, want ErrWriteFailed", err)
	}
	if h.conn.State() != StateDisconnected {
		t.Errorf("state = %v, want Disconnected", h.conn.State())
	}
	if h.ep.writes != transport.DefaultMaxAttempts {
		t.Errorf("writes = %d, want %d", h.ep.writes, transport.DefaultMaxAttempts)
	}
}

func TestPrinter_JournalErrorDoesNotFailPrint(t *testing.T) {
	h := newHarness(true)
	h.journal.err = errors.New("disk full")

	if _, err := h.printer.Print(context.Background(), testSale()); err != nil {
		t.Fatalf("Print() error: %v", err)
	}
}

func TestPrinter_Reprint(t *testing.T) {
	h := newHarness(true)

	if _, err := h.printer.Reprint(context.Background()); !errors.Is(err, domain.ErrNoJournal) {
		t.Fatalf("Reprint() before any print error = %v, want ErrNoJournal", err)
	}

	if _, err := h.printer.Print(context.Background(), testSale()); err != nil {
		t.Fatalf("Print() error: %v", err)
	}
	first := append([]byte(nil), h.ep.data...)

	if _, err := h.printer.Reprint(context.Background()); err != nil {
		t.Fatalf("Reprint() error: %v", err)
	}
	if !bytes.Equal(h.ep.data[len(first):], first) {
		t.Error("reprint differs from the original receipt")
	}
}

func TestPrinter_Last(t *testing.T) {
	h := newHarness(true)
	if _, err := h.printer.Print(context.Background(), testSale()); err != nil {
		t.Fatalf("Print() error: %v", err)
	}
	last, err := h.printer.Last(context.Background())
	if err != nil {
		t.Fatalf("Last() error: %v", err)
	}
	if last.Options.Sale.ID != 7 || last.PrintedAt.IsZero() {
		t.Errorf("Last() = %+v", last)
	}
}
