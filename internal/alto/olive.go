package alto

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/press-dig/broadsheet/internal/xmltree"
)

// oliveReader handles the legacy tabular-primitive layout: a page
// document whose children reference per-entity documents next to it,
// each holding HedLine/Content elements composed of Primitive blocks
// with a BOX geometry attribute and W/QW word elements.
type oliveReader struct {
	path string
	root *xmltree.Node
}

func newOliveReader(path string, root *xmltree.Node) *oliveReader {
	return &oliveReader{path: path, root: root}
}

// Regions loads every referenced entity document and collects its
// primitive blocks. Entities that fail to load are skipped: partial
// page damage must not lose the rest of the page.
func (r *oliveReader) Regions() []Region {
	var regions []Region
	dir := filepath.Dir(r.path)

	for _, child := range r.root.Children {
		entityID := child.Attr("ID")
		if entityID == "" {
			continue
		}
		entityPath := filepath.Join(dir, entityID+".xml")
		entityRegions, err := parseOliveEntity(entityPath, entityID)
		if err != nil {
			continue
		}
		regions = append(regions, entityRegions...)
	}

	assignGroups(regions)
	return regions
}

// PageSize is not declared in the tabular-primitive layout; geometry is
// already in pixels of the highest-resolution raster.
func (r *oliveReader) PageSize() (float64, float64) {
	return 0, 0
}

// PageNumber derives the page number from the document file name.
func (r *oliveReader) PageNumber() int {
	return pageNumberFromPath(r.path)
}

func parseOliveEntity(path, entityID string) ([]Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open entity document: %w", err)
	}
	defer f.Close()

	root, err := xmltree.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse entity document %s: %w", path, err)
	}

	var regions []Region
	collect := func(parent *xmltree.Node, regionType string) {
		for _, prim := range parent.FindAll(xmltree.ByName("Primitive")) {
			rect, err := parseBox(prim.Attr("BOX"))
			if err != nil {
				continue
			}
			seq := prim.Attr("SEQ_NO")
			regions = append(regions, Region{
				ID:   fmt.Sprintf("%s_%s", entityID, seq),
				Rect: rect,
				Type: regionType,
				Text: strings.Join(oliveWords(prim), " "),
			})
		}
	}

	for _, headline := range root.FindAll(xmltree.ByName("HedLine_hl1")) {
		collect(headline, TypeHeadline)
	}
	for _, content := range root.FindAll(xmltree.ByName("Content")) {
		collect(content, "Textblock")
	}
	return regions, nil
}

// parseBox parses the space-separated "x0 y0 x1 y1" BOX attribute.
func parseBox(box string) (Rect, error) {
	fields := strings.Fields(box)
	if len(fields) != 4 {
		return Rect{}, fmt.Errorf("malformed BOX attribute: %q", box)
	}
	var vals [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Rect{}, fmt.Errorf("malformed BOX coordinate %q: %w", f, err)
		}
		vals[i] = v
	}
	return Rect{X0: vals[0], Y0: vals[1], X1: vals[2], Y1: vals[3]}, nil
}

// oliveWords collects the words of W and QW elements in document order.
func oliveWords(n *xmltree.Node) []string {
	var words []string
	for _, w := range n.FindAll(func(d *xmltree.Node) bool {
		return (d.Local == "W" || d.Local == "QW") && d.Text != ""
	}) {
		words = append(words, w.Text)
	}
	return words
}
