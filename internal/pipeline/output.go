package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/press-dig/broadsheet/internal/mets"
)

// outputColumns is the fixed column order of issue result files.
var outputColumns = []string{"article_id", "title", "content_type", "page_number", "text"}

// OutputName derives the result file name for an issue: the publication
// title (the first path element of the identifier) joined with the bare
// issue name, e.g. "Davar/1957/01/01_01/19570101_01-METS.xml" ->
// "Davar_19570101_01.csv".
func OutputName(issueID, suffix string) string {
	base := mets.IssueSuffix(issueID, suffix)
	title, _, found := strings.Cut(issueID, "/")
	if !found {
		return base + ".csv"
	}
	return title + "_" + base + ".csv"
}

// WriteIssueCSV writes the issue's articles to dir/name, overwriting any
// previous file. The content lands in a temp file first and is renamed
// into place, so a concurrent reader of the directory never observes a
// half-written result. Reprocessing an issue regenerates its result
// file, so the write is idempotent by construction.
func WriteIssueCSV(dir, name string, articles []mets.Article) error {
	f, err := os.CreateTemp(dir, name+".tmp")
	if err != nil {
		return fmt.Errorf("failed to create result file: %w", err)
	}
	tmp := f.Name()
	fail := func(err error) error {
		f.Close()
		os.Remove(tmp)
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(outputColumns); err != nil {
		return fail(fmt.Errorf("failed to write result header: %w", err))
	}
	for _, art := range articles {
		row := []string{art.ID, art.Title, art.Type, strconv.Itoa(art.Page), art.Text}
		if err := w.Write(row); err != nil {
			return fail(fmt.Errorf("failed to write article %s: %w", art.ID, err))
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fail(fmt.Errorf("failed to flush result file: %w", err))
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to flush result file: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, name)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize result file: %w", err)
	}
	return nil
}
