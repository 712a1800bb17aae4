package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("with explicit path", func(t *testing.T) {
		dir, err := New("/tmp/test-broadsheet")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir.Path() != "/tmp/test-broadsheet" {
			t.Errorf("expected path /tmp/test-broadsheet, got %s", dir.Path())
		}
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		dir, err := New("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, DefaultDirName)
		if dir.Path() != expected {
			t.Errorf("expected path %s, got %s", expected, dir.Path())
		}
	})
}

func TestDir_Paths(t *testing.T) {
	dir, _ := New("/tmp/test-broadsheet")

	t.Run("DataPath", func(t *testing.T) {
		if got := dir.DataPath(); got != "/tmp/test-broadsheet/data" {
			t.Errorf("unexpected data path: %s", got)
		}
	})

	t.Run("UploadedPath", func(t *testing.T) {
		if got := dir.UploadedPath(); got != "/tmp/test-broadsheet/output_uploaded" {
			t.Errorf("unexpected uploaded path: %s", got)
		}
	})

	t.Run("ManifestPath", func(t *testing.T) {
		if got := dir.ManifestPath("corpus.manifest.txt"); got != "/tmp/test-broadsheet/corpus.manifest.txt" {
			t.Errorf("unexpected manifest path: %s", got)
		}
	})

	t.Run("IssuePath strips the document component", func(t *testing.T) {
		got := dir.IssuePath("Davar/1957/01/01_01/19570101_01-METS.xml")
		if got != "/tmp/test-broadsheet/data/Davar/1957/01/01_01" {
			t.Errorf("unexpected issue path: %s", got)
		}
	})
}

func TestDir_EnsureExists(t *testing.T) {
	tmpDir := t.TempDir()
	dir, err := New(filepath.Join(tmpDir, "bs-test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dir.Exists() {
		t.Error("directory should not exist before EnsureExists")
	}

	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}

	for _, p := range []string{dir.DataPath(), dir.OutputPath(), dir.UploadedPath(), dir.LocksPath()} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			t.Errorf("%s should exist after EnsureExists", p)
		}
	}
}
