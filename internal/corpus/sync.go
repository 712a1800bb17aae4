// Package corpus materializes the subset of the remote corpus a run
// needs in the local data directory, and reclaims space held by issues
// that are already processed.
package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/press-dig/broadsheet/internal/home"
	"github.com/press-dig/broadsheet/internal/storage"
)

// Syncer downloads missing issues and evicts processed ones.
type Syncer struct {
	store storage.Store
	dir   *home.Dir
	log   *slog.Logger

	// Suffix identifies an issue's structure document on disk.
	Suffix string
}

// NewSyncer creates a corpus syncer.
func NewSyncer(st storage.Store, dir *home.Dir, log *slog.Logger) *Syncer {
	if log == nil {
		log = slog.Default()
	}
	return &Syncer{store: st, dir: dir, log: log, Suffix: "-METS.xml"}
}

// Sync fetches every requested issue that is not locally present, then
// removes local issues that are already processed. The set computations
// are recomputed fresh on every call: local and remote state can change
// between runs.
func (s *Syncer) Sync(ctx context.Context, requested []string, processed map[string]struct{}) error {
	local, err := s.ListLocal()
	if err != nil {
		return err
	}

	toDownload := ToDownload(requested, local)
	s.log.Info("syncing corpus subset", "requested", len(requested), "local", len(local), "to_download", len(toDownload))
	for _, issueID := range toDownload {
		if err := s.downloadIssue(ctx, issueID); err != nil {
			return fmt.Errorf("failed to download issue %s: %w", issueID, err)
		}
	}

	toEvict := ToEvict(local, processed)
	for _, issueID := range toEvict {
		s.log.Info("evicting processed issue", "issue", issueID)
		if err := os.RemoveAll(s.dir.IssuePath(issueID)); err != nil {
			return fmt.Errorf("failed to evict issue %s: %w", issueID, err)
		}
	}

	return nil
}

// ListLocal enumerates the issue identifiers materialized under the
// data directory, sorted. Pure apart from reading the filesystem.
func (s *Syncer) ListLocal() ([]string, error) {
	root := s.dir.DataPath()
	var issues []string

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), s.Suffix) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		issues = append(issues, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate local issues: %w", err)
	}

	sort.Strings(issues)
	return issues, nil
}

// ToDownload computes requested − locallyPresent, preserving the order
// of requested. Pure.
func ToDownload(requested, local []string) []string {
	localSet := make(map[string]struct{}, len(local))
	for _, id := range local {
		localSet[id] = struct{}{}
	}

	var out []string
	for _, id := range requested {
		if _, ok := localSet[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// ToEvict computes locallyPresent ∩ processed, preserving the order of
// local. Pure.
func ToEvict(local []string, processed map[string]struct{}) []string {
	var out []string
	for _, id := range local {
		if _, ok := processed[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// downloadIssue fetches every remote object under the issue's directory
// prefix, except archival assets not needed for recognition, preserving
// remote relative paths. A pre-existing local directory means a prior
// run already fetched it; re-invocation is a no-op.
func (s *Syncer) downloadIssue(ctx context.Context, issueID string) error {
	localDir := s.dir.IssuePath(issueID)
	if _, err := os.Stat(localDir); err == nil {
		return nil
	}

	prefix := path.Dir(issueID)
	objects, err := s.store.List(ctx, prefix)
	if err != nil {
		return err
	}

	for _, obj := range objects {
		if !requiredForProcessing(obj.Name) {
			continue
		}
		data, err := s.store.Download(ctx, obj.Name)
		if err != nil {
			return err
		}

		localPath := filepath.Join(s.dir.DataPath(), filepath.FromSlash(obj.Name))
		if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(localPath), err)
		}
		if err := os.WriteFile(localPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", localPath, err)
		}
	}
	return nil
}

// requiredForProcessing filters out large archival assets (source PDFs)
// that recognition never reads.
func requiredForProcessing(name string) bool {
	return !strings.HasSuffix(strings.ToLower(name), ".pdf")
}
