package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/press-dig/broadsheet/internal/align"
	"github.com/press-dig/broadsheet/internal/alto"
	"github.com/press-dig/broadsheet/internal/home"
	"github.com/press-dig/broadsheet/internal/mets"
	"github.com/press-dig/broadsheet/internal/metrics"
	"github.com/press-dig/broadsheet/internal/raster"
	"github.com/press-dig/broadsheet/internal/recognize"
)

// AltoDirName is the directory holding layout documents within an issue.
const AltoDirName = "ALTO"

// IssueProcessor processes one issue end to end. Satisfied by Worker;
// the driver depends only on this.
type IssueProcessor interface {
	ProcessIssue(ctx context.Context, issueID string) error
}

// Worker turns one locally materialized issue into a result file:
// structure parsing, layout parsing, region recognition, article
// assembly, and the CSV write.
//
// Error containment follows granularity: a failed region keeps empty
// text, a failed page keeps whatever text its layout document embeds,
// and only structural failures (unreadable structure document, no
// regions anywhere) fail the whole issue.
type Worker struct {
	dir     *home.Dir
	engine  recognize.Engine
	aligner *align.Aligner
	rec     *metrics.Recorder
	log     *slog.Logger

	// Suffix is the structure-document suffix used for result naming.
	Suffix string

	// DryRun skips raster loading and recognition; image-only regions
	// get the dry-run sentinel instead of text.
	DryRun bool
}

// NewWorker creates an issue worker.
func NewWorker(dir *home.Dir, engine recognize.Engine, rec *metrics.Recorder, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		dir:     dir,
		engine:  engine,
		aligner: align.New(log),
		rec:     rec,
		log:     log,
		Suffix:  "-METS.xml",
	}
}

// ProcessIssue runs the full per-issue pipeline and writes the result
// file to the pending output directory. The caller checkpoints.
func (w *Worker) ProcessIssue(ctx context.Context, issueID string) error {
	start := time.Now()
	log := w.log.With("issue", issueID)

	structPath := filepath.Join(w.dir.DataPath(), filepath.FromSlash(issueID))
	f, err := os.Open(structPath)
	if err != nil {
		return fmt.Errorf("failed to open structure document: %w", err)
	}
	articles, err := mets.ParseIssue(f, log)
	f.Close()
	if err != nil {
		return err
	}

	issueDir := w.dir.IssuePath(issueID)
	layoutPaths, err := layoutDocuments(issueDir)
	if err != nil {
		return err
	}

	var pages []alto.PageReader
	for _, p := range layoutPaths {
		reader, err := alto.DetectReader(p)
		if err != nil {
			log.Warn("skipping unreadable layout document", "path", p, "error", err)
			w.rec.ErrorContained("page_failure")
			continue
		}
		pages = append(pages, reader)
	}

	issue, err := w.aligner.Align(articles, pages)
	if err != nil {
		return err
	}

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.recognizePage(ctx, log, issueDir, page, issue)
	}

	for i := range issue.Articles {
		issue.Articles[i].Text = w.aligner.AssembleText(&issue.Articles[i], issue)
	}

	name := OutputName(issueID, w.Suffix)
	if err := WriteIssueCSV(w.dir.OutputPath(), name, issue.Articles); err != nil {
		return err
	}

	w.rec.IssueDone(time.Since(start))
	log.Info("issue processed", "articles", len(issue.Articles), "pages", len(pages), "took", time.Since(start))
	return nil
}

// recognizePage fills in text for the page's image-only regions. Regions
// whose layout document already embeds text are left alone.
func (w *Worker) recognizePage(ctx context.Context, log *slog.Logger, issueDir string, page alto.PageReader, issue *align.Issue) {
	start := time.Now()
	defer func() { w.rec.PageDone(time.Since(start)) }()

	var ras *raster.Page
	var scale float64
	if !w.DryRun {
		var err error
		ras, err = raster.LoadPage(issueDir, page.PageNumber())
		if err != nil {
			log.Warn("page raster unavailable, keeping embedded text only", "page", page.PageNumber(), "error", err)
			w.rec.ErrorContained("page_failure")
			return
		}
		_, pageHeight := page.PageSize()
		scale = alto.ScaleFor(pageHeight, ras.Height())
	}

	for _, region := range page.Regions() {
		if region.Text != "" {
			continue
		}
		if w.DryRun {
			issue.SetRegionText(region.ID, recognize.DryRunSentinel)
			continue
		}

		regionStart := time.Now()
		img, err := ras.CropRegion(region.Rect, scale)
		if err != nil {
			log.Warn("region crop failed, text left empty", "region", region.ID, "error", err)
			w.rec.ErrorContained("recognition_failure")
			continue
		}
		fragments, err := w.engine.Recognize(ctx, img)
		if err != nil {
			log.Warn("recognition failed, text left empty", "region", region.ID, "engine", w.engine.Name(), "error", err)
			w.rec.ErrorContained("recognition_failure")
			continue
		}
		issue.SetRegionText(region.ID, strings.Join(fragments, "\n"))
		w.rec.RegionDone(time.Since(regionStart))
	}
}

// layoutDocuments lists the issue's layout document paths, sorted. The
// modern corpus keeps them under an ALTO subdirectory; the legacy one
// keeps Pg-prefixed page files beside the structure document.
func layoutDocuments(issueDir string) ([]string, error) {
	altoDir := filepath.Join(issueDir, AltoDirName)
	if info, err := os.Stat(altoDir); err == nil && info.IsDir() {
		matches, err := filepath.Glob(filepath.Join(altoDir, "*.xml"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		return matches, nil
	}

	matches, err := filepath.Glob(filepath.Join(issueDir, "Pg*.xml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
