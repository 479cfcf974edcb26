package spool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/altoke/printship/internal/domain"
	"github.com/altoke/printship/internal/ports"
	"github.com/altoke/printship/pkg/log"
)

const saleDoc = `{
  "sale": {
    "id": 99,
    "total": 4,
    "createdAt": "2024-03-05T15:04:00Z",
    "details": [{"productName": "Leche", "quantity": 1, "price": 4}]
  },
  "operator": "Ana"
}`

type fakePrinter struct {
	mu    sync.Mutex
	errs  []error
	calls []int64
}

func (p *fakePrinter) Print(ctx context.Context, opts domain.ReceiptOptions) (domain.PrintJob, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, opts.Sale.ID)
	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		if err != nil {
			return domain.PrintJob{}, err
		}
	}
	return domain.PrintJob{Options: opts, Bytes: 100, Chunks: 1}, nil
}

func (p *fakePrinter) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

type countingConnector struct {
	mu    sync.Mutex
	calls int
}

func (c *countingConnector) Connect(ctx context.Context) (ports.Endpoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil, errors.New("printer off")
}

func noSleep(context.Context, time.Duration) error { return nil }

func newTestWatcher(t *testing.T, printer Printer, conn ports.Connector) (*Watcher, Config) {
	t.Helper()
	cfg := DefaultConfig(t.TempDir())
	cfg.Debounce = 20 * time.Millisecond
	cfg.Attempts = 3
	return New(cfg, printer, conn, log.NewNoopLogger(), WithSleep(noSleep)), cfg
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestProcess_Success(t *testing.T) {
	printer := &fakePrinter{}
	w, cfg := newTestWatcher(t, printer, nil)
	path := writeDoc(t, cfg.Dir, "sale-99.json", saleDoc)

	if err := w.Process(context.Background(), path); err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if printer.callCount() != 1 {
		t.Errorf("prints = %d, want 1", printer.callCount())
	}
	if exists(path) || !exists(filepath.Join(cfg.DoneDir(), "sale-99.json")) {
		t.Error("document not moved to done/")
	}
}

func TestProcess_InvalidDocumentFailsWithoutPrinting(t *testing.T) {
	printer := &fakePrinter{}
	w, cfg := newTestWatcher(t, printer, nil)
	path := writeDoc(t, cfg.Dir, "broken.json", `{"sale": {"id": 1}}`)

	err := w.Process(context.Background(), path)
	if !errors.Is(err, domain.ErrInvalidSale) {
		t.Fatalf("Process() error = %v, want ErrInvalidSale", err)
	}
	if printer.callCount() != 0 {
		t.Error("invalid document was printed")
	}
	if !exists(filepath.Join(cfg.FailedDir(), "broken.json")) {
		t.Error("document not moved to failed/")
	}
}

func TestProcess_RetriesAndReconnects(t *testing.T) {
	printer := &fakePrinter{errs: []error{domain.ErrNoEndpoint, domain.ErrWriteFailed, nil}}
	conn := &countingConnector{}
	w, cfg := newTestWatcher(t, printer, conn)
	path := writeDoc(t, cfg.Dir, "sale.json", saleDoc)

	if err := w.Process(context.Background(), path); err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if printer.callCount() != 3 {
		t.Errorf("prints = %d, want 3", printer.callCount())
	}
	if conn.calls != 2 {
		t.Errorf("reconnects = %d, want 2", conn.calls)
	}
	if !exists(filepath.Join(cfg.DoneDir(), "sale.json")) {
		t.Error("document not moved to done/")
	}
}

func TestProcess_AttemptsExhausted(t *testing.T) {
	printer := &fakePrinter{errs: []error{domain.ErrWriteFailed, domain.ErrWriteFailed, domain.ErrWriteFailed, nil}}
	w, cfg := newTestWatcher(t, printer, nil)
	path := writeDoc(t, cfg.Dir, "sale.json", saleDoc)

	err := w.Process(context.Background(), path)
	if !errors.Is(err, domain.ErrWriteFailed) {
		t.Fatalf("Process() error = %v, want ErrWriteFailed", err)
	}
	if printer.callCount() != 3 {
		t.Errorf("prints = %d, want 3", printer.callCount())
	}
	if !exists(filepath.Join(cfg.FailedDir(), "sale.json")) {
		t.Error("document not moved to failed/")
	}
}

func TestProcess_CancelledKeepsDocument(t *testing.T) {
	printer := &fakePrinter{errs: []error{domain.ErrNoEndpoint}}
	cfg := DefaultConfig(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	w := New(cfg, printer, nil, log.NewNoopLogger(), WithSleep(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}))
	path := writeDoc(t, cfg.Dir, "sale.json", saleDoc)

	if err := w.Process(ctx, path); !errors.Is(err, context.Canceled) {
		t.Fatalf("Process() error = %v, want Canceled", err)
	}
	if !exists(path) {
		t.Error("document left the spool after cancellation")
	}
}

func TestProcess_MissingFile(t *testing.T) {
	w, cfg := newTestWatcher(t, &fakePrinter{}, nil)
	if err := w.Process(context.Background(), filepath.Join(cfg.Dir, "gone.json")); err != nil {
		t.Errorf("Process() of a vanished file error = %v, want nil", err)
	}
}

func TestFile_KeepsExistingName(t *testing.T) {
	w, cfg := newTestWatcher(t, &fakePrinter{}, nil)
	writeDoc(t, cfg.Dir, "a.json", "1")
	os.MkdirAll(cfg.DoneDir(), 0o755)
	writeDoc(t, cfg.DoneDir(), "a.json", "old")

	w.file(filepath.Join(cfg.Dir, "a.json"), cfg.DoneDir())

	entries, err := os.ReadDir(cfg.DoneDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("done/ has %d entries, want 2", len(entries))
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestRun_ExistingAndNewDocuments(t *testing.T) {
	printer := &fakePrinter{}
	w, cfg := newTestWatcher(t, printer, nil)
	writeDoc(t, cfg.Dir, "early.json", saleDoc)
	writeDoc(t, cfg.Dir, "notes.txt", "ignored")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitFor(t, func() bool { return exists(filepath.Join(cfg.DoneDir(), "early.json")) })

	writeDoc(t, cfg.Dir, "late.json", saleDoc)
	waitFor(t, func() bool { return exists(filepath.Join(cfg.DoneDir(), "late.json")) })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop after cancel")
	}

	if printer.callCount() != 2 {
		t.Errorf("prints = %d, want 2", printer.callCount())
	}
	if !exists(filepath.Join(cfg.Dir, "notes.txt")) {
		t.Error("non-document file was touched")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default", mutate: func(*Config) {}},
		{name: "no dir", mutate: func(c *Config) { c.Dir = "" }, wantErr: true},
		{name: "zero attempts", mutate: func(c *Config) { c.Attempts = 0 }, wantErr: true},
		{name: "max below base", mutate: func(c *Config) { c.BackoffMax = time.Millisecond }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("/var/spool/printship")
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}
