package alto

import (
	"strings"

	"github.com/press-dig/broadsheet/internal/xmltree"
)

// simpleReader handles ALTO documents carrying no recognized namespace.
// It scans TextBlock elements anywhere in the document and aggregates
// line text from CONTENT attributes of all nested elements, which keeps
// it tolerant of schema drift in undeclared variants.
type simpleReader struct {
	path string
	root *xmltree.Node
	tags map[string]string
}

func newSimpleReader(path string, root *xmltree.Node) *simpleReader {
	r := &simpleReader{path: path, root: root, tags: make(map[string]string)}
	for _, tag := range root.FindAll(xmltree.ByName("LayoutTag")) {
		r.tags[tag.Attr("ID")] = tag.Attr("LABEL")
	}
	return r
}

// Regions returns every text block in document order.
func (r *simpleReader) Regions() []Region {
	var regions []Region
	for _, block := range r.root.FindAll(xmltree.ByName("TextBlock")) {
		x := parseFloatAttr(block, "HPOS")
		y := parseFloatAttr(block, "VPOS")

		var lines []string
		for _, line := range block.FindAll(xmltree.ByName("TextLine")) {
			lines = append(lines, contentText(line))
		}

		region := Region{
			ID: block.Attr("ID"),
			Rect: Rect{
				X0: x,
				Y0: y,
				X1: x + parseFloatAttr(block, "WIDTH"),
				Y1: y + parseFloatAttr(block, "HEIGHT"),
			},
			Type: r.tagLabel(block.Attr("TAGREFS")),
			Text: strings.Join(lines, "\n"),
		}
		regions = append(regions, region)
	}

	assignGroups(regions)
	return regions
}

// PageSize returns the declared dimensions of the first Page element.
func (r *simpleReader) PageSize() (float64, float64) {
	page := r.root.Find(xmltree.ByName("Page"))
	if page == nil {
		return 0, 0
	}
	return parseFloatAttr(page, "WIDTH"), parseFloatAttr(page, "HEIGHT")
}

// PageNumber derives the page number from the document file name.
func (r *simpleReader) PageNumber() int {
	return pageNumberFromPath(r.path)
}

func (r *simpleReader) tagLabel(tagRef string) string {
	if label, ok := r.tags[tagRef]; ok {
		return label
	}
	return "Unknown"
}

// contentText joins the CONTENT attributes of a node and all its
// descendants in document order.
func contentText(n *xmltree.Node) string {
	var words []string
	for _, d := range n.FindAll(func(d *xmltree.Node) bool { return d.Attr("CONTENT") != "" }) {
		words = append(words, d.Attr("CONTENT"))
	}
	return strings.Join(words, " ")
}
