package spool

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCleanupOnce_RemovesOnlyExpired(t *testing.T) {
	w, cfg := newTestWatcher(t, &fakePrinter{}, nil)
	w.cfg.Retention = 24 * time.Hour
	if err := os.MkdirAll(cfg.DoneDir(), 0o755); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	ages := map[string]time.Duration{
		"old-1.json":  72 * time.Hour,
		"old-2.json":  25 * time.Hour,
		"fresh.json":  time.Hour,
		"recent.yaml": 23 * time.Hour,
	}
	for name, age := range ages {
		path := writeDoc(t, cfg.DoneDir(), name, saleDoc)
		mt := now.Add(-age)
		if err := os.Chtimes(path, mt, mt); err != nil {
			t.Fatal(err)
		}
	}

	failedPath := filepath.Join(cfg.FailedDir(), "stuck.json")
	os.MkdirAll(cfg.FailedDir(), 0o755)
	writeDoc(t, cfg.FailedDir(), "stuck.json", saleDoc)
	os.Chtimes(failedPath, now.Add(-100*time.Hour), now.Add(-100*time.Hour))

	if removed := w.cleanupOnce(context.Background(), now); removed != 2 {
		t.Errorf("cleanupOnce() removed %d, want 2", removed)
	}
	for name, age := range ages {
		gone := !exists(filepath.Join(cfg.DoneDir(), name))
		if want := age > 24*time.Hour; gone != want {
			t.Errorf("%s removed = %v, want %v", name, gone, want)
		}
	}
	if !exists(failedPath) {
		t.Error("failed/ document was pruned")
	}
}

func TestCleanupOnce_MissingDoneDir(t *testing.T) {
	w, _ := newTestWatcher(t, &fakePrinter{}, nil)
	if removed := w.cleanupOnce(context.Background(), time.Now()); removed != 0 {
		t.Errorf("cleanupOnce() removed %d, want 0", removed)
	}
}

func TestCleanupLoop_DisabledReturns(t *testing.T) {
	w, _ := newTestWatcher(t, &fakePrinter{}, nil)
	w.cfg.Retention = 0

	done := make(chan struct{})
	go func() {
		w.cleanupLoop(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanupLoop() with retention disabled did not return")
	}
}
