// Package alto parses the physical-layout documents of an issue: the
// geometric page regions carrying recognized (or recognizable) text.
// Three historical dialects exist in the corpus, each behind the same
// PageReader capability interface; the dialect is picked once per
// document by probing its shape, never deep inside shared logic.
package alto

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/press-dig/broadsheet/internal/xmltree"
)

// Known ALTO namespaces: the loc.gov v3 schema and the legacy vendor one.
const (
	NamespaceV3     = "http://www.loc.gov/standards/alto/ns-v3#"
	NamespaceLegacy = "http://schema.ccs-gmbh.com/ALTO"
)

// Region types that open a new visual group.
const (
	TypeHeadline             = "Headline"
	TypeContinuationHeadline = "ContinuationHeadline"
)

// Rect is a region bounding box in the layout document's native
// coordinate units (not raster pixels).
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Scaled converts the rect to raster pixel space given a scale factor
// (native units per raster pixel).
func (r Rect) Scaled(factor float64) Rect {
	if factor == 0 {
		return r
	}
	return Rect{
		X0: r.X0 / factor,
		Y0: r.Y0 / factor,
		X1: r.X1 / factor,
		Y1: r.Y1 / factor,
	}
}

// Region is one geometrically bounded area of a page.
type Region struct {
	ID    string
	Rect  Rect
	Type  string
	Group int
	Text  string // text embedded in the layout document, if any
}

// PageReader is the capability interface implemented once per dialect.
type PageReader interface {
	// Regions returns the page's regions in document order, with group
	// indexes assigned.
	Regions() []Region

	// PageSize returns the declared page width and height in native units.
	PageSize() (w, h float64)

	// PageNumber returns the page number derived from the document name.
	PageNumber() int
}

// DetectReader opens a layout document and selects the dialect reader by
// probing the document shape.
func DetectReader(path string) (PageReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open layout document: %w", err)
	}
	defer f.Close()

	root, err := xmltree.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout document %s: %w", path, err)
	}

	if root.Local == "alto" {
		switch root.Space {
		case NamespaceV3, NamespaceLegacy:
			return newNSReader(path, root), nil
		default:
			return newSimpleReader(path, root), nil
		}
	}

	// Anything else is the legacy tabular-primitive layout.
	return newOliveReader(path, root), nil
}

// ScaleFor computes the factor bridging native layout units and raster
// pixels: declared page height divided by the raster image pixel height.
// Uniform horizontal/vertical scaling is assumed.
func ScaleFor(pageHeight float64, rasterHeight int) float64 {
	if rasterHeight <= 0 {
		return 1
	}
	return pageHeight / float64(rasterHeight)
}

// assignGroups increments the group index on every headline or
// continuation-headline boundary, clustering a headline with the body
// regions that visually follow it.
func assignGroups(regions []Region) {
	group := 0
	for i := range regions {
		if regions[i].Type == TypeHeadline || regions[i].Type == TypeContinuationHeadline {
			group++
		}
		regions[i].Group = group
	}
}

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// pageNumberFromPath extracts the page number from a layout document
// file name, e.g. "0001.xml" or "Pg001.xml" -> 1.
func pageNumberFromPath(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m := trailingDigits.FindString(base)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

func parseFloatAttr(n *xmltree.Node, name string) float64 {
	v, err := strconv.ParseFloat(n.Attr(name), 64)
	if err != nil {
		return 0
	}
	return v
}
