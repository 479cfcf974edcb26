package spool

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/altoke/printship/internal/ports"
)

type archived struct {
	path    string
	modTime time.Time
}

// cleanupLoop prunes done/ once at start and then every CleanupInterval.
func (w *Watcher) cleanupLoop(ctx context.Context) {
	if w.cfg.Retention <= 0 || w.cfg.CleanupInterval <= 0 {
		return
	}

	w.cleanupOnce(ctx, time.Now())

	t := time.NewTicker(w.cfg.CleanupInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			w.cleanupOnce(ctx, now)
		}
	}
}

// cleanupOnce removes printed documents older than Retention, oldest first.
// failed/ is left alone; those documents need a person to look at them.
func (w *Watcher) cleanupOnce(ctx context.Context, now time.Time) int {
	docs, err := archivedDocuments(w.cfg.DoneDir())
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Error("spool cleanup: list failed", ports.Err(err))
		}
		return 0
	}

	cutoff := now.Add(-w.cfg.Retention)
	removed := 0
	for _, d := range docs {
		if ctx.Err() != nil || !d.modTime.Before(cutoff) {
			break
		}
		if err := os.Remove(d.path); err != nil {
			w.logger.Error("spool cleanup: remove failed", ports.String("file", d.path), ports.Err(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		w.logger.Info("spool cleanup completed",
			ports.Int("removed", removed),
			ports.Int("remaining", len(docs)-removed),
		)
	}
	return removed
}

func archivedDocuments(dir string) ([]archived, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	docs := make([]archived, 0, len(ents))
	for _, e := range ents {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		docs = append(docs, archived{path: filepath.Join(dir, e.Name()), modTime: info.ModTime()})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].modTime.Before(docs[j].modTime) })
	return docs, nil
}
