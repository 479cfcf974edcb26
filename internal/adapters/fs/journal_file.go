package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/altoke/printship/internal/domain"
)

const journalFileName = "last-print.json"

// JournalFileRepository implements ports.JournalRepository using a JSON file.
type JournalFileRepository struct {
	dir string
}

// NewJournalFileRepository creates a repository storing its file in dir.
func NewJournalFileRepository(dir string) *JournalFileRepository {
	return &JournalFileRepository{dir: dir}
}

// Load returns the last printed job, or an empty job if none was saved.
func (r *JournalFileRepository) Load(ctx context.Context) (domain.PrintJob, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return domain.PrintJob{}, nil
		}
		return domain.PrintJob{}, err
	}

	var job domain.PrintJob
	if err := json.Unmarshal(data, &job); err != nil {
		return domain.PrintJob{}, err
	}
	return job, nil
}

// Save writes the job to a temp file and renames it into place.
func (r *JournalFileRepository) Save(ctx context.Context, job domain.PrintJob) error {
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}

	path := r.Path()
	tmp := path + ".tmp"

	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Path returns the full path to the journal file.
func (r *JournalFileRepository) Path() string {
	return filepath.Join(r.dir, journalFileName)
}
