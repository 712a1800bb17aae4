package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the broadsheet home directory.
	DefaultDirName = ".broadsheet"

	// DataDirName is the subdirectory holding the local corpus cache.
	DataDirName = "data"

	// OutputDirName is the subdirectory holding per-issue result files
	// that have not been uploaded yet.
	OutputDirName = "output"

	// UploadedDirName is the holding area for result files that have been
	// uploaded to remote storage. Files are moved here so a later
	// reconciliation pass does not resend them.
	UploadedDirName = "output_uploaded"

	// LocksDirName is the subdirectory for advisory lock files.
	LocksDirName = "locks"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the broadsheet home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.broadsheet).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// DataPath returns the path to the local corpus cache.
func (d *Dir) DataPath() string {
	return filepath.Join(d.path, DataDirName)
}

// OutputPath returns the path to the pending-results directory.
func (d *Dir) OutputPath() string {
	return filepath.Join(d.path, OutputDirName)
}

// UploadedPath returns the path to the uploaded-results holding area.
func (d *Dir) UploadedPath() string {
	return filepath.Join(d.path, UploadedDirName)
}

// LocksPath returns the path to the lock file directory.
func (d *Dir) LocksPath() string {
	return filepath.Join(d.path, LocksDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// ManifestPath returns the local cache path for a manifest file.
func (d *Dir) ManifestPath(name string) string {
	return filepath.Join(d.path, name)
}

// IssuePath returns the local path of an issue's directory given its
// corpus identifier (the path of its structure document).
func (d *Dir) IssuePath(issueID string) string {
	return filepath.Join(d.DataPath(), filepath.Dir(filepath.FromSlash(issueID)))
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, p := range []string{d.DataPath(), d.OutputPath(), d.UploadedPath(), d.LocksPath()} {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", p, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
