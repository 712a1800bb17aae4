package align

import (
	"errors"
	"testing"

	"github.com/press-dig/broadsheet/internal/alto"
	"github.com/press-dig/broadsheet/internal/mets"
)

// fakePage implements alto.PageReader with fixed regions.
type fakePage struct {
	regions []alto.Region
	number  int
}

func (f *fakePage) Regions() []alto.Region        { return f.regions }
func (f *fakePage) PageSize() (float64, float64)  { return 0, 0 }
func (f *fakePage) PageNumber() int               { return f.number }

func TestAlign_AssemblesInReferenceOrder(t *testing.T) {
	articles := []mets.Article{
		{ID: "Ar01", RegionRefs: []string{"R1", "R2"}},
	}
	// Pages scanned in an order that differs from reference order.
	pages := []alto.PageReader{
		&fakePage{number: 2, regions: []alto.Region{{ID: "R2", Text: "B"}}},
		&fakePage{number: 1, regions: []alto.Region{{ID: "R1", Text: "A"}}},
	}

	a := New(nil)
	issue, err := a.Align(articles, pages)
	if err != nil {
		t.Fatalf("align failed: %v", err)
	}

	got := a.AssembleText(&issue.Articles[0], issue)
	if got != "A B" {
		t.Errorf("expected %q, got %q", "A B", got)
	}
}

func TestAlign_DanglingReferenceTolerated(t *testing.T) {
	articles := []mets.Article{
		{ID: "Ar01", RegionRefs: []string{"R1", "R9"}},
	}
	pages := []alto.PageReader{
		&fakePage{number: 1, regions: []alto.Region{{ID: "R1", Text: "A"}}},
	}

	a := New(nil)
	issue, err := a.Align(articles, pages)
	if err != nil {
		t.Fatalf("align failed: %v", err)
	}

	got := a.AssembleText(&issue.Articles[0], issue)
	if got != "A" {
		t.Errorf("expected text of R1 alone, got %q", got)
	}
}

func TestAlign_NoRegionsIsFatal(t *testing.T) {
	a := New(nil)
	_, err := a.Align(nil, []alto.PageReader{&fakePage{number: 1}})
	if !errors.Is(err, ErrNoRegions) {
		t.Errorf("expected ErrNoRegions, got %v", err)
	}
}

func TestAlign_DuplicateRegionKeepsFirst(t *testing.T) {
	pages := []alto.PageReader{
		&fakePage{number: 1, regions: []alto.Region{{ID: "R1", Text: "first"}}},
		&fakePage{number: 2, regions: []alto.Region{{ID: "R1", Text: "second"}}},
	}

	a := New(nil)
	issue, err := a.Align(nil, pages)
	if err != nil {
		t.Fatal(err)
	}
	if issue.Regions["R1"].Text != "first" {
		t.Errorf("expected first occurrence kept, got %q", issue.Regions["R1"].Text)
	}
}

func TestIssue_SetRegionText(t *testing.T) {
	issue := &Issue{Regions: map[string]alto.Region{"R1": {ID: "R1", Text: "old"}}}

	issue.SetRegionText("R1", "new")
	if issue.Regions["R1"].Text != "new" {
		t.Errorf("expected new, got %q", issue.Regions["R1"].Text)
	}

	// Unknown region is a no-op.
	issue.SetRegionText("R9", "x")
	if len(issue.Regions) != 1 {
		t.Error("unknown region must not be created")
	}
}

func TestAssembleText_EmptyRegionTextSkipped(t *testing.T) {
	a := New(nil)
	issue := &Issue{Regions: map[string]alto.Region{
		"R1": {ID: "R1", Text: "A"},
		"R2": {ID: "R2", Text: ""},
		"R3": {ID: "R3", Text: "C"},
	}}
	article := &mets.Article{ID: "Ar01", RegionRefs: []string{"R1", "R2", "R3"}}

	if got := a.AssembleText(article, issue); got != "A C" {
		t.Errorf("expected %q, got %q", "A C", got)
	}
}
