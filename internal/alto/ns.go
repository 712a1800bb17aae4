package alto

import (
	"strings"

	"github.com/press-dig/broadsheet/internal/xmltree"
)

// nsReader handles namespace-qualified ALTO documents, both the loc.gov
// v3 schema and the legacy vendor namespace. Region types are resolved
// through the document's LayoutTag table.
type nsReader struct {
	path string
	root *xmltree.Node
	tags map[string]string // tag id -> human label ("Headline", "Textblock", ...)
}

func newNSReader(path string, root *xmltree.Node) *nsReader {
	r := &nsReader{path: path, root: root, tags: make(map[string]string)}
	for _, tag := range root.FindAll(xmltree.ByName("LayoutTag")) {
		r.tags[tag.Attr("ID")] = tag.Attr("LABEL")
	}
	return r
}

// Regions returns the page's text blocks in document order.
func (r *nsReader) Regions() []Region {
	layout := r.root.Find(xmltree.ByName("Layout"))
	if layout == nil {
		return nil
	}
	printSpace := layout.Find(xmltree.ByName("PrintSpace"))
	if printSpace == nil {
		return nil
	}

	var regions []Region
	for _, block := range printSpace.FindAll(xmltree.ByName("TextBlock")) {
		x := parseFloatAttr(block, "HPOS")
		y := parseFloatAttr(block, "VPOS")
		region := Region{
			ID: block.Attr("ID"),
			Rect: Rect{
				X0: x,
				Y0: y,
				X1: x + parseFloatAttr(block, "WIDTH"),
				Y1: y + parseFloatAttr(block, "HEIGHT"),
			},
			Type: r.tagLabel(block.Attr("TAGREFS")),
			Text: blockText(block),
		}
		regions = append(regions, region)
	}

	assignGroups(regions)
	return regions
}

// PageSize returns the declared layout dimensions of the first page.
func (r *nsReader) PageSize() (float64, float64) {
	page := r.root.Find(xmltree.ByName("Page"))
	if page == nil {
		return 0, 0
	}
	return parseFloatAttr(page, "WIDTH"), parseFloatAttr(page, "HEIGHT")
}

// PageNumber derives the page number from the document file name.
func (r *nsReader) PageNumber() int {
	return pageNumberFromPath(r.path)
}

func (r *nsReader) tagLabel(tagRef string) string {
	if label, ok := r.tags[tagRef]; ok {
		return label
	}
	return "Unknown"
}

// blockText assembles the block's embedded text: words of a line joined
// with spaces, lines joined with newlines. A HYP element at line end
// marks hyphenation, so the following line continues the word.
func blockText(block *xmltree.Node) string {
	var lines []string
	for _, line := range block.FindAll(xmltree.ByName("TextLine")) {
		var words []string
		hyphenated := false
		for _, child := range line.Children {
			switch child.Local {
			case "String":
				if c := child.Attr("CONTENT"); c != "" {
					words = append(words, c)
				}
			case "HYP":
				hyphenated = true
			}
		}
		text := strings.Join(words, " ")
		if hyphenated {
			text += "-"
		}
		lines = append(lines, text)
	}
	return strings.Join(lines, "\n")
}
