package ports

import (
	"context"

	"github.com/altoke/printship/internal/domain"
)

// JournalRepository persists the last successfully printed job.
type JournalRepository interface {
	// Load returns the last job, or an empty job and nil error when none exists.
	Load(ctx context.Context) (domain.PrintJob, error)

	// Save replaces the stored job atomically.
	Save(ctx context.Context, job domain.PrintJob) error
}
