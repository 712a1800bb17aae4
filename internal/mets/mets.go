// Package mets parses the logical-structure document of a newspaper
// issue: the article hierarchy and the references binding each article to
// physical page regions.
package mets

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/press-dig/broadsheet/internal/xmltree"
)

// Article is one logical article of an issue. RegionRefs lists the
// physical region identifiers composing the article body, in reading
// order; Text stays empty until recognition fills it in.
type Article struct {
	ID         string
	Title      string
	Type       string
	Page       int
	RegionRefs []string
	Text       string
}

// underscorePageRef matches the newer region-id encoding where the page
// token is a P-prefixed number before the first underscore, e.g.
// "P12_Ar0120502" -> page 12.
var underscorePageRef = regexp.MustCompile(`^P(\d+)_`)

// ParseIssue extracts the articles of one issue from its logical
// structure document. Articles without a body-content subtree are
// unrepresentable and dropped with a log line; this is a deliberate
// degenerate case, not an error.
func ParseIssue(r io.Reader, log *slog.Logger) ([]Article, error) {
	if log == nil {
		log = slog.Default()
	}

	root, err := xmltree.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse structure document: %w", err)
	}

	var articles []Article
	for _, structMap := range root.Children {
		if structMap.Local != "structMap" || structMap.Attr("TYPE") != "LOGICAL" {
			continue
		}
		divl3 := structMap.Find(xmltree.ByNameAttr("div", "ID", "DIVL3"))
		if divl3 == nil {
			continue
		}
		for _, contentDiv := range divl3.Children {
			if contentDiv.Attr("TYPE") != "CONTENT" {
				continue
			}
			for _, articleDiv := range contentDiv.Children {
				art, ok := parseArticle(articleDiv, log)
				if ok {
					articles = append(articles, art)
				}
			}
		}
	}
	return articles, nil
}

func parseArticle(div *xmltree.Node, log *slog.Logger) (Article, bool) {
	art := Article{
		ID:    div.Attr("ID"),
		Title: div.Attr("LABEL"),
		Type:  div.Attr("TYPE"),
	}

	body := div.Find(xmltree.ByNameAttr("div", "TYPE", "BODY_CONTENT"))
	if body == nil {
		log.Info("article has no body content, skipped", "article", art.ID)
		return Article{}, false
	}

	// Only identifier references bind an article to regions; other
	// reference types (coordinate-based) are ignored.
	for _, child := range body.Children {
		for _, area := range child.FindAll(xmltree.ByNameAttr("area", "BETYPE", "IDREF")) {
			if begin := area.Attr("BEGIN"); begin != "" {
				art.RegionRefs = append(art.RegionRefs, begin)
			}
		}
	}

	if len(art.RegionRefs) > 0 {
		page, err := DecodePageNumber(art.RegionRefs[0])
		if err != nil {
			log.Warn("could not decode page number", "article", art.ID, "ref", art.RegionRefs[0], "error", err)
		} else {
			art.Page = page
		}
	}

	return art, true
}

// DecodePageNumber derives the page number from a region identifier.
// Two historical encodings exist: the newer one carries the page as a
// P-prefixed number before an underscore ("P12_Ar0120502" -> 12), the
// legacy one as a single digit in the second character position
// ("X3004" -> 3). The underscore-delimited shape wins when present.
func DecodePageNumber(ref string) (int, error) {
	if m := underscorePageRef.FindStringSubmatch(ref); m != nil {
		return strconv.Atoi(m[1])
	}
	if len(ref) >= 2 {
		if page, err := strconv.Atoi(ref[1:2]); err == nil {
			return page, nil
		}
	}
	return 0, fmt.Errorf("unrecognized region identifier shape: %q", ref)
}

// IssueSuffix strips the structure-document suffix from an issue
// identifier, leaving the bare issue name, e.g.
// "Davar/1957/01/01_01/19570101_01-METS.xml" -> "19570101_01".
func IssueSuffix(issueID, suffix string) string {
	base := issueID
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, suffix)
}
