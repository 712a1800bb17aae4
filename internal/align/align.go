// Package align binds the logical article structure of an issue to its
// physical page regions and assembles per-article text.
package align

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/press-dig/broadsheet/internal/alto"
	"github.com/press-dig/broadsheet/internal/mets"
)

// ErrNoRegions signals that no physical regions were discovered across
// any of an issue's layout documents: a structurally unreadable or
// unsupported document variant. Fatal for the issue, caught by the
// driver, never by the aligner's callers mid-article.
var ErrNoRegions = errors.New("no physical regions discovered")

// Issue is the aligned view of one newspaper issue.
type Issue struct {
	Articles []mets.Article
	Regions  map[string]alto.Region
}

// Aligner combines parsed structure and layout documents.
type Aligner struct {
	log *slog.Logger
}

// New creates an aligner.
func New(log *slog.Logger) *Aligner {
	if log == nil {
		log = slog.Default()
	}
	return &Aligner{log: log}
}

// Align builds the region lookup across every page of the issue. The
// order pages are scanned does not affect article assembly, which
// follows each article's own reference order.
func (a *Aligner) Align(articles []mets.Article, pages []alto.PageReader) (*Issue, error) {
	regions := make(map[string]alto.Region)
	for _, page := range pages {
		for _, region := range page.Regions() {
			if _, dup := regions[region.ID]; dup {
				a.log.Warn("duplicate region identifier, keeping first", "region", region.ID)
				continue
			}
			regions[region.ID] = region
		}
	}

	if len(regions) == 0 {
		return nil, fmt.Errorf("%w across %d layout documents", ErrNoRegions, len(pages))
	}

	return &Issue{Articles: articles, Regions: regions}, nil
}

// SetRegionText replaces a region's text, typically with the output of
// the recognition engine.
func (i *Issue) SetRegionText(regionID, text string) {
	if region, ok := i.Regions[regionID]; ok {
		region.Text = text
		i.Regions[regionID] = region
	}
}

// AssembleText concatenates the article's resolved region texts in
// reference order. A reference with no matching region is skipped and
// logged; it is never fatal to the article.
func (a *Aligner) AssembleText(article *mets.Article, issue *Issue) string {
	var parts []string
	for _, ref := range article.RegionRefs {
		region, ok := issue.Regions[ref]
		if !ok {
			a.log.Warn("region reference not found", "article", article.ID, "region", ref)
			continue
		}
		if region.Text != "" {
			parts = append(parts, region.Text)
		}
	}
	return strings.Join(parts, " ")
}
