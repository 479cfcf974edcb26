// Package spool prints the sale documents the POS drops into a directory.
// Each document is printed once, then moved to done/ or failed/.
package spool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/altoke/printship/internal/domain"
	"github.com/altoke/printship/internal/ports"
	"github.com/altoke/printship/internal/salefile"
	"github.com/altoke/printship/internal/transport"
)

// Printer prints one receipt.
type Printer interface {
	Print(ctx context.Context, opts domain.ReceiptOptions) (domain.PrintJob, error)
}

// Config controls the watcher.
type Config struct {
	// Dir is the spool directory.
	Dir string

	// Debounce is how long a file must stay quiet before it is read.
	Debounce time.Duration

	// Attempts is how many times a document is printed before it is failed.
	Attempts int

	// BackoffBase and BackoffMax bound the wait between attempts.
	BackoffBase time.Duration
	BackoffMax  time.Duration

	// Retention is how long printed documents stay in done/. Zero keeps them.
	Retention       time.Duration
	CleanupInterval time.Duration
}

// DefaultConfig returns the default configuration for dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:         dir,
		Debounce:    250 * time.Millisecond,
		Attempts:    5,
		BackoffBase: time.Second,
		BackoffMax:  30 * time.Second,

		Retention:       30 * 24 * time.Hour,
		CleanupInterval: 24 * time.Hour,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("%w: spool directory is required", domain.ErrInvalidConfig)
	}
	if c.Attempts < 1 {
		return fmt.Errorf("%w: spool attempts must be at least 1", domain.ErrInvalidConfig)
	}
	if c.Debounce < 0 || c.BackoffBase < 0 || c.BackoffMax < c.BackoffBase || c.Retention < 0 {
		return fmt.Errorf("%w: invalid spool timings", domain.ErrInvalidConfig)
	}
	return nil
}

// DoneDir holds printed documents.
func (c Config) DoneDir() string { return filepath.Join(c.Dir, "done") }

// FailedDir holds documents that could not be printed.
func (c Config) FailedDir() string { return filepath.Join(c.Dir, "failed") }

// Watcher processes spool files one at a time.
type Watcher struct {
	cfg       Config
	printer   Printer
	connector ports.Connector
	logger    ports.Logger
	sleep     sleepFunc

	mu     sync.Mutex
	timers map[string]*time.Timer
	queue  []string
	queued map[string]bool
	wake   chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSleep replaces the backoff sleep, for tests.
func WithSleep(s func(ctx context.Context, d time.Duration) error) Option {
	return func(w *Watcher) {
		if s != nil {
			w.sleep = s
		}
	}
}

// New creates a watcher. connector is used to reconnect between attempts and
// may be nil.
func New(cfg Config, printer Printer, connector ports.Connector, logger ports.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		cfg:       cfg,
		printer:   printer,
		connector: connector,
		logger:    logger,
		sleep:     transport.SleepContext,
		timers:    make(map[string]*time.Timer),
		queued:    make(map[string]bool),
		wake:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run prints the documents already in the spool directory, then watches it
// until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.cfg.Validate(); err != nil {
		return err
	}
	for _, dir := range []string{w.cfg.Dir, w.cfg.DoneDir(), w.cfg.FailedDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create spool directory: %w", err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Dir, err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.work(ctx)
	}()
	go func() {
		defer wg.Done()
		w.cleanupLoop(ctx)
	}()

	if err := w.scan(); err != nil {
		w.logger.Error("spool scan failed", ports.Err(err))
	}
	w.logger.Info("watching spool", ports.String("dir", w.cfg.Dir))

	defer func() {
		w.stopTimers()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !salefile.Supported(event.Name) {
				continue
			}
			w.debounce(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("spool watcher error", ports.Err(err))
		}
	}
}

// scan queues the documents already present, oldest name first.
func (w *Watcher) scan() error {
	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && salefile.Supported(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		w.enqueue(filepath.Join(w.cfg.Dir, name))
	}
	return nil
}

func (w *Watcher) debounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.cfg.Debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.enqueue(path)
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) enqueue(path string) {
	w.mu.Lock()
	if w.queued[path] {
		w.mu.Unlock()
		return
	}
	w.queued[path] = true
	w.queue = append(w.queue, path)
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Watcher) dequeue() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.queue) == 0 {
		return "", false
	}
	path := w.queue[0]
	w.queue = w.queue[1:]
	delete(w.queued, path)
	return path, true
}

func (w *Watcher) work(ctx context.Context) {
	for {
		for {
			path, ok := w.dequeue()
			if !ok {
				break
			}
			if err := w.Process(ctx, path); err != nil && ctx.Err() == nil {
				w.logger.Warn("spool document failed", ports.String("file", filepath.Base(path)), ports.Err(err))
			}
			if ctx.Err() != nil {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-w.wake:
		}
	}
}

// Process prints one document and files it away. A document that is gone
// is skipped. A document that cannot be decoded fails without printing.
// When ctx is cancelled mid-retry the document stays in the spool.
func (w *Watcher) Process(ctx context.Context, path string) error {
	opts, err := salefile.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		w.file(path, w.cfg.FailedDir())
		return err
	}

	b := newBackoff(w.cfg.BackoffBase, w.cfg.BackoffMax, w.sleep)
	for attempt := 1; ; attempt++ {
		job, err := w.printer.Print(ctx, opts)
		if err == nil {
			w.logger.Info("spool document printed",
				ports.String("file", filepath.Base(path)),
				ports.Int64("sale", opts.Sale.ID),
				ports.Int("attempt", attempt),
				ports.Int("bytes", job.Bytes),
			)
			w.file(path, w.cfg.DoneDir())
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !retryable(err) || attempt >= w.cfg.Attempts {
			w.file(path, w.cfg.FailedDir())
			return fmt.Errorf("sale %d after %d attempts: %w", opts.Sale.ID, attempt, err)
		}

		w.logger.Warn("spool print failed, retrying",
			ports.String("file", filepath.Base(path)),
			ports.Int("attempt", attempt),
			ports.Int("max_attempts", w.cfg.Attempts),
			ports.Err(err),
		)
		if err := b.Sleep(ctx); err != nil {
			return err
		}
		w.reconnect(ctx)
	}
}

func (w *Watcher) reconnect(ctx context.Context) {
	if w.connector == nil {
		return
	}
	if _, err := w.connector.Connect(ctx); err != nil && !errors.Is(err, domain.ErrConnecting) {
		w.logger.Warn("printer reconnect failed", ports.Err(err))
	}
}

// retryable reports whether another attempt can succeed. Invalid documents
// and configuration cannot.
func retryable(err error) bool {
	return !errors.Is(err, domain.ErrInvalidSale) && !errors.Is(err, domain.ErrInvalidConfig)
}

// file moves path into dir, keeping an existing file of the same name.
func (w *Watcher) file(path, dir string) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		w.logger.Error("spool move failed", ports.String("file", path), ports.Err(err))
		return
	}
	dst := filepath.Join(dir, filepath.Base(path))
	if _, err := os.Stat(dst); err == nil {
		ext := filepath.Ext(dst)
		dst = dst[:len(dst)-len(ext)] + "." + strconv.FormatInt(time.Now().UnixNano(), 10) + ext
	}
	if err := os.Rename(path, dst); err != nil {
		w.logger.Error("spool move failed", ports.String("file", path), ports.Err(err))
	}
}
