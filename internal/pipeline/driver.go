package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/press-dig/broadsheet/internal/corpus"
	"github.com/press-dig/broadsheet/internal/manifest"
	"github.com/press-dig/broadsheet/internal/metrics"
	"github.com/press-dig/broadsheet/internal/progress"
)

// Driver orchestrates one run: load the manifests, reconcile leftover
// uploads, sync the corpus subset, then fan pending issues out across
// workers with periodic checkpoints.
type Driver struct {
	manifests    *manifest.Store
	syncer       *corpus.Syncer
	checkpointer *Checkpointer
	reporter     *progress.Reporter
	processor    IssueProcessor
	rec          *metrics.Recorder
	log          *slog.Logger

	// CorpusName and ProcessedName are the manifest file names.
	CorpusName    string
	ProcessedName string

	// Workers is the parallel chunk count.
	Workers int

	// MaxIssues caps the pending list per run; 0 means unlimited.
	MaxIssues int

	// CheckpointEvery is how many completed issues a worker batches
	// before committing; values below 1 mean every issue.
	CheckpointEvery int
}

// DriverOptions carries the driver's collaborators.
type DriverOptions struct {
	Manifests    *manifest.Store
	Syncer       *corpus.Syncer
	Checkpointer *Checkpointer
	Reporter     *progress.Reporter
	Processor    IssueProcessor
	Recorder     *metrics.Recorder
	Log          *slog.Logger
}

// NewDriver creates a pipeline driver with defaults matching the
// standard manifest names.
func NewDriver(opts DriverOptions) *Driver {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	return &Driver{
		manifests:       opts.Manifests,
		syncer:          opts.Syncer,
		checkpointer:    opts.Checkpointer,
		reporter:        opts.Reporter,
		processor:       opts.Processor,
		rec:             opts.Recorder,
		log:             log,
		CorpusName:      "corpus.manifest.txt",
		ProcessedName:   "processed.manifest.txt",
		Workers:         4,
		CheckpointEvery: 1,
	}
}

// Run executes one pipeline run. Issue-level failures are contained and
// logged; Run itself fails only on structural problems (missing corpus
// manifest, storage errors, checkpoint failures) or context cancellation.
func (d *Driver) Run(ctx context.Context) error {
	runID := uuid.NewString()
	log := d.log.With("run", runID)
	log.Info("starting pipeline run", "workers", d.Workers, "max_issues", d.MaxIssues)

	corpusIDs, err := d.manifests.LoadCorpus(ctx, d.CorpusName)
	if err != nil {
		return err
	}
	processed, err := d.manifests.LoadProcessed(ctx, d.ProcessedName)
	if err != nil {
		return err
	}

	snap, err := d.reporter.Report(ctx, d.CorpusName, d.ProcessedName)
	if err != nil {
		return err
	}
	d.reporter.Log(snap)

	// Reconcile result files a crashed run recorded in the manifest but
	// never uploaded.
	if err := d.checkpointer.UploadOutstanding(ctx); err != nil {
		return err
	}

	pending := pendingIssues(corpusIDs, processed)
	if d.MaxIssues > 0 && len(pending) > d.MaxIssues {
		pending = pending[:d.MaxIssues]
	}
	if len(pending) == 0 {
		log.Info("no pending issues, nothing to do")
		return nil
	}
	log.Info("selected pending issues", "count", len(pending))

	if err := d.syncer.Sync(ctx, pending, processed); err != nil {
		return err
	}

	workers := d.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range Chunk(pending, workers) {
		g.Go(func() error {
			return d.runChunk(gctx, log.With("worker", i), chunk)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("pipeline run %s failed: %w", runID, err)
	}

	if snap, err = d.reporter.Report(ctx, d.CorpusName, d.ProcessedName); err == nil {
		d.reporter.Log(snap)
	}
	d.logRunSummary(log)
	return nil
}

// runChunk processes one worker's chunk sequentially, checkpointing
// every CheckpointEvery completed issues. A failed issue is logged and
// skipped; it stays pending for a later run.
func (d *Driver) runChunk(ctx context.Context, log *slog.Logger, issueIDs []string) error {
	every := d.CheckpointEvery
	if every < 1 {
		every = 1
	}

	var batch []string
	for _, issueID := range issueIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.processor.ProcessIssue(ctx, issueID); err != nil {
			log.Error("issue failed, continuing chunk", "issue", issueID, "error", err)
			d.rec.ErrorContained("issue_failure")
			continue
		}
		batch = append(batch, issueID)
		if len(batch) >= every {
			if err := d.checkpointer.Commit(ctx, batch); err != nil {
				return err
			}
			batch = nil
		}
	}
	return d.checkpointer.Commit(ctx, batch)
}

func (d *Driver) logRunSummary(log *slog.Logger) {
	m := d.rec.Snapshot()
	contained := int64(0)
	for _, n := range m.ErrorsByClass {
		contained += n
	}
	log.Info("run complete",
		"issues", m.Issues,
		"pages", m.Pages,
		"regions", m.Regions,
		"issue_time", m.IssueTime,
		"contained_errors", contained,
	)
	for class, n := range m.ErrorsByClass {
		log.Info("contained errors by class", "class", class, "count", n)
	}
}

// pendingIssues computes corpus − processed, preserving corpus order.
func pendingIssues(corpusIDs []string, processed map[string]struct{}) []string {
	var out []string
	for _, id := range corpusIDs {
		if _, ok := processed[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
