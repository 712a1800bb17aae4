// Package progress computes and renders how far through the corpus the
// pipeline has gotten, from the two manifests alone.
package progress

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"

	"github.com/press-dig/broadsheet/internal/manifest"
)

// Snapshot is a point-in-time view of corpus completion.
type Snapshot struct {
	Total     int
	Processed int
	Percent   float64
}

// Reporter derives completion state from the manifests.
type Reporter struct {
	manifests *manifest.Store
	log       *slog.Logger
}

// NewReporter creates a progress reporter.
func NewReporter(m *manifest.Store, log *slog.Logger) *Reporter {
	if log == nil {
		log = slog.Default()
	}
	return &Reporter{manifests: m, log: log}
}

// Report loads both manifests and returns a completion snapshot. Only
// processed entries that are actually in the corpus count: stale entries
// for issues removed from the corpus do not inflate the percentage.
func (r *Reporter) Report(ctx context.Context, corpusName, processedName string) (Snapshot, error) {
	corpus, err := r.manifests.LoadCorpus(ctx, corpusName)
	if err != nil {
		return Snapshot{}, err
	}
	processed, err := r.manifests.LoadProcessed(ctx, processedName)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Total: len(corpus)}
	for _, id := range corpus {
		if _, ok := processed[id]; ok {
			snap.Processed++
		}
	}
	if snap.Total > 0 {
		snap.Percent = float64(snap.Processed) / float64(snap.Total) * 100
	}
	return snap, nil
}

// Log emits the snapshot through structured logging.
func (r *Reporter) Log(snap Snapshot) {
	r.log.Info("corpus progress",
		"processed", snap.Processed,
		"total", snap.Total,
		"percent", fmt.Sprintf("%.2f", snap.Percent),
	)
}

// Render writes a human-readable progress line, colorized for terminals.
func Render(w io.Writer, snap Snapshot) {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(w, "%s %s of %s issues (%s)\n",
		bold("processed:"),
		green(fmt.Sprintf("%d", snap.Processed)),
		fmt.Sprintf("%d", snap.Total),
		fmt.Sprintf("%.2f%%", snap.Percent),
	)
}
