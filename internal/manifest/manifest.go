// Package manifest maintains the two durable work lists of the pipeline:
// the corpus manifest (every issue that exists) and the processed manifest
// (every issue that has completed processing). Both are mirrored between
// the local home directory and remote storage.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/press-dig/broadsheet/internal/home"
	"github.com/press-dig/broadsheet/internal/lockfile"
	"github.com/press-dig/broadsheet/internal/storage"
)

// ErrCorpusNotFound is returned when the corpus manifest exists neither
// locally nor remotely. It must be generated first.
var ErrCorpusNotFound = errors.New("corpus manifest not found - need to generate?")

// Store loads, appends to, and regenerates manifests.
type Store struct {
	store storage.Store
	dir   *home.Dir
	log   *slog.Logger

	// Suffix identifies structure documents when regenerating the corpus
	// manifest; ExcludePrefix drops an entire top-level namespace.
	Suffix        string
	ExcludePrefix string
}

// NewStore creates a manifest store.
func NewStore(st storage.Store, dir *home.Dir, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		store:  st,
		dir:    dir,
		log:    log,
		Suffix: "-METS.xml",
	}
}

// LoadCorpus returns the ordered list of issue identifiers in the corpus.
// It reads the local cache, falling back to a remote download. If the
// manifest exists nowhere, ErrCorpusNotFound is returned.
func (s *Store) LoadCorpus(ctx context.Context, name string) ([]string, error) {
	local := s.dir.ManifestPath(name)

	if _, err := os.Stat(local); err != nil {
		if err := s.fetchToLocal(ctx, name, local); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	data, err := os.ReadFile(local)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", name, ErrCorpusNotFound)
		}
		return nil, fmt.Errorf("failed to read corpus manifest: %w", err)
	}

	return parseLines(data), nil
}

// LoadProcessed returns the set of already-processed issue identifiers.
// If the manifest exists neither locally nor remotely, an empty one is
// created in both places: a processed manifest implicitly exists once any
// run begins.
func (s *Store) LoadProcessed(ctx context.Context, name string) (map[string]struct{}, error) {
	local := s.dir.ManifestPath(name)

	if _, err := os.Stat(local); err != nil {
		if err := s.fetchToLocal(ctx, name, local); err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return nil, err
			}
			s.log.Info("processed manifest missing, creating empty", "name", name)
			if err := os.WriteFile(local, nil, 0o644); err != nil {
				return nil, fmt.Errorf("failed to create processed manifest: %w", err)
			}
			if err := s.store.Upload(ctx, name, nil, true); err != nil {
				return nil, err
			}
		}
	}

	data, err := os.ReadFile(local)
	if err != nil {
		return nil, fmt.Errorf("failed to read processed manifest: %w", err)
	}

	// Duplicate lines are tolerated: membership, not count, is the contract.
	set := make(map[string]struct{})
	for _, id := range parseLines(data) {
		set[id] = struct{}{}
	}
	return set, nil
}

// AppendProcessed appends identifiers to the processed manifest under a
// file-scoped lock and uploads the full file. An identifier counts as
// committed only after the remote upload succeeds.
func (s *Store) AppendProcessed(ctx context.Context, ids []string, name string) error {
	if len(ids) == 0 {
		return nil
	}

	lock := lockfile.New(s.dir.LocksPath(), name)
	return lock.WithLock(ctx, func() error {
		local := s.dir.ManifestPath(name)

		f, err := os.OpenFile(local, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open processed manifest: %w", err)
		}
		for _, id := range ids {
			if _, err := fmt.Fprintln(f, id); err != nil {
				f.Close()
				return fmt.Errorf("failed to append to processed manifest: %w", err)
			}
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to flush processed manifest: %w", err)
		}

		data, err := os.ReadFile(local)
		if err != nil {
			return fmt.Errorf("failed to re-read processed manifest: %w", err)
		}
		if err := s.store.Upload(ctx, name, data, true); err != nil {
			return err
		}

		s.log.Info("committed processed issues", "count", len(ids), "manifest", name)
		return nil
	})
}

// Regenerate rewrites the corpus manifest from a remote listing, keeping
// objects matching the configured suffix and dropping the excluded
// top-level namespace, then uploads it.
func (s *Store) Regenerate(ctx context.Context, name string) error {
	objects, err := s.store.List(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to list corpus: %w", err)
	}

	var b strings.Builder
	count := 0
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Name, s.Suffix) {
			continue
		}
		if s.ExcludePrefix != "" && strings.HasPrefix(obj.Name, s.ExcludePrefix) {
			continue
		}
		b.WriteString(obj.Name)
		b.WriteByte('\n')
		count++
	}

	local := s.dir.ManifestPath(name)
	if err := os.WriteFile(local, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write corpus manifest: %w", err)
	}

	s.log.Info("regenerated corpus manifest", "name", name, "issues", count)
	return s.Upload(ctx, name)
}

// Upload pushes the local copy of a manifest to remote storage.
func (s *Store) Upload(ctx context.Context, name string) error {
	data, err := os.ReadFile(s.dir.ManifestPath(name))
	if err != nil {
		return fmt.Errorf("failed to read manifest %s: %w", name, err)
	}
	return s.store.Upload(ctx, name, data, true)
}

// Cleanup removes a manifest locally and remotely.
func (s *Store) Cleanup(ctx context.Context, name string) error {
	local := s.dir.ManifestPath(name)
	if err := os.Remove(local); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove local manifest: %w", err)
	}
	return s.store.Delete(ctx, name)
}

// fetchToLocal downloads a manifest from remote storage to its local path.
func (s *Store) fetchToLocal(ctx context.Context, name, local string) error {
	data, err := s.store.Download(ctx, name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(local, data, 0o644); err != nil {
		return fmt.Errorf("failed to cache manifest locally: %w", err)
	}
	return nil
}

// parseLines splits newline-delimited manifest content, dropping blanks.
func parseLines(data []byte) []string {
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
