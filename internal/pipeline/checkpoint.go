package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/press-dig/broadsheet/internal/home"
	"github.com/press-dig/broadsheet/internal/lockfile"
	"github.com/press-dig/broadsheet/internal/manifest"
	"github.com/press-dig/broadsheet/internal/storage"
)

const (
	// UploadResultsLockName serializes result uploads across workers so
	// the pending directory is drained by one goroutine at a time.
	UploadResultsLockName = "upload.results"

	// RemoteOutputPrefix is the remote directory receiving result files.
	RemoteOutputPrefix = "output"
)

// Checkpointer durably records completed issues. The commit order is
// deliberate: an issue is appended to the processed manifest first, then
// its result file is uploaded and moved to the uploaded holding area. A
// crash between the two leaves the result file pending, where the next
// run's reconciliation pass picks it up.
type Checkpointer struct {
	manifests *manifest.Store
	store     storage.Store
	dir       *home.Dir
	log       *slog.Logger

	// ProcessedName is the processed manifest file name.
	ProcessedName string

	// Suffix is the structure-document suffix, needed to derive each
	// issue's result file name.
	Suffix string
}

// NewCheckpointer creates a checkpointer.
func NewCheckpointer(m *manifest.Store, st storage.Store, dir *home.Dir, log *slog.Logger) *Checkpointer {
	if log == nil {
		log = slog.Default()
	}
	return &Checkpointer{
		manifests:     m,
		store:         st,
		dir:           dir,
		log:           log,
		ProcessedName: "processed.manifest.txt",
		Suffix:        "-METS.xml",
	}
}

// Commit records the issues as processed and uploads their result files.
// Only the batch's own files are touched: other workers may be writing
// their results into the same pending directory at the same time.
// Committing the same issue twice is harmless: the manifest tolerates
// duplicate lines and result uploads overwrite.
func (c *Checkpointer) Commit(ctx context.Context, issueIDs []string) error {
	if len(issueIDs) == 0 {
		return nil
	}
	if err := c.manifests.AppendProcessed(ctx, issueIDs, c.ProcessedName); err != nil {
		return fmt.Errorf("failed to checkpoint %d issues: %w", len(issueIDs), err)
	}

	lock := lockfile.New(c.dir.LocksPath(), UploadResultsLockName)
	return lock.WithLock(ctx, func() error {
		for _, issueID := range issueIDs {
			if err := c.uploadResult(ctx, OutputName(issueID, c.Suffix)); err != nil {
				return err
			}
		}
		return nil
	})
}

// UploadOutstanding pushes every result file still in the pending output
// directory to remote storage, then moves it to the uploaded holding
// area. Run once at startup, before workers fan out, to reconcile files
// a crashed run left behind; while workers are live only Commit's
// batch-scoped uploads touch the directory.
func (c *Checkpointer) UploadOutstanding(ctx context.Context) error {
	lock := lockfile.New(c.dir.LocksPath(), UploadResultsLockName)
	return lock.WithLock(ctx, func() error {
		entries, err := os.ReadDir(c.dir.OutputPath())
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("failed to list pending results: %w", err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
				continue
			}
			if err := c.uploadResult(ctx, entry.Name()); err != nil {
				return err
			}
		}
		return nil
	})
}

// uploadResult pushes one pending result file and moves it to the
// uploaded holding area. A missing file means an earlier pass already
// drained it. Callers hold the upload lock.
func (c *Checkpointer) uploadResult(ctx context.Context, name string) error {
	local := filepath.Join(c.dir.OutputPath(), name)
	data, err := os.ReadFile(local)
	if err != nil {
		if os.IsNotExist(err) {
			c.log.Warn("result file not pending, skipping upload", "file", name)
			return nil
		}
		return fmt.Errorf("failed to read pending result %s: %w", name, err)
	}
	remote := path.Join(RemoteOutputPrefix, name)
	if err := c.store.Upload(ctx, remote, data, true); err != nil {
		return fmt.Errorf("failed to upload result %s: %w", name, err)
	}
	if err := os.Rename(local, filepath.Join(c.dir.UploadedPath(), name)); err != nil {
		return fmt.Errorf("failed to move uploaded result %s: %w", name, err)
	}
	c.log.Info("uploaded result file", "file", name)
	return nil
}
