package progress

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/press-dig/broadsheet/internal/home"
	"github.com/press-dig/broadsheet/internal/manifest"
	"github.com/press-dig/broadsheet/internal/storage"
)

func newTestReporter(t *testing.T) (*Reporter, *home.Dir) {
	t.Helper()
	dir, err := home.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := dir.EnsureExists(); err != nil {
		t.Fatal(err)
	}
	store := manifest.NewStore(storage.NewMemStore(), dir, nil)
	return NewReporter(store, nil), dir
}

func writeManifest(t *testing.T, dir *home.Dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(dir.ManifestPath(name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReport(t *testing.T) {
	ctx := context.Background()

	t.Run("counts only corpus members", func(t *testing.T) {
		r, dir := newTestReporter(t)
		writeManifest(t, dir, "corpus.manifest.txt", "A\nB\nC\nD\n")
		writeManifest(t, dir, "processed.manifest.txt", "A\nC\nGONE\n")

		snap, err := r.Report(ctx, "corpus.manifest.txt", "processed.manifest.txt")
		if err != nil {
			t.Fatalf("report failed: %v", err)
		}
		if snap.Total != 4 || snap.Processed != 2 {
			t.Errorf("expected 2/4, got %d/%d", snap.Processed, snap.Total)
		}
		if snap.Percent != 50 {
			t.Errorf("expected 50%%, got %f", snap.Percent)
		}
	})

	t.Run("empty corpus does not divide by zero", func(t *testing.T) {
		r, dir := newTestReporter(t)
		writeManifest(t, dir, "corpus.manifest.txt", "")
		writeManifest(t, dir, "processed.manifest.txt", "")

		snap, err := r.Report(ctx, "corpus.manifest.txt", "processed.manifest.txt")
		if err != nil {
			t.Fatalf("report failed: %v", err)
		}
		if snap.Percent != 0 {
			t.Errorf("expected 0%%, got %f", snap.Percent)
		}
	})

	t.Run("missing corpus manifest surfaces the sentinel", func(t *testing.T) {
		r, _ := newTestReporter(t)
		_, err := r.Report(ctx, "corpus.manifest.txt", "processed.manifest.txt")
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected corpus-not-found error, got %v", err)
		}
	})
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, Snapshot{Total: 10, Processed: 5, Percent: 50})
	if !strings.Contains(buf.String(), "5") || !strings.Contains(buf.String(), "50.00%") {
		t.Errorf("unexpected render output: %q", buf.String())
	}
}
