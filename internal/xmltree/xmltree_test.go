package xmltree

import (
	"strings"
	"testing"
)

const sample = `<?xml version="1.0"?>
<root type="top">
  <child id="c1"><grand id="g1"/></child>
  <child id="c2">hello</child>
</root>`

func TestParse(t *testing.T) {
	root, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if root.Local != "root" || root.Attr("type") != "top" {
		t.Errorf("unexpected root: %+v", root)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}
	if root.Children[1].Text != "hello" {
		t.Errorf("expected text hello, got %q", root.Children[1].Text)
	}
}

func TestParse_Empty(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); err == nil {
		t.Error("expected error for empty document")
	}
}

func TestFindAll_DocumentOrder(t *testing.T) {
	root, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}

	var ids []string
	for _, n := range root.FindAll(func(n *Node) bool { return n.Attr("id") != "" }) {
		ids = append(ids, n.Attr("id"))
	}
	want := []string{"c1", "g1", "c2"}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], ids[i])
		}
	}
}

func TestFind_Predicates(t *testing.T) {
	root, _ := Parse(strings.NewReader(sample))

	if n := root.Find(ByName("grand")); n == nil || n.Attr("id") != "g1" {
		t.Errorf("ByName failed: %+v", n)
	}
	if n := root.Find(ByNameAttr("child", "id", "c2")); n == nil || n.Text != "hello" {
		t.Errorf("ByNameAttr failed: %+v", n)
	}
	if n := root.Find(ByName("missing")); n != nil {
		t.Errorf("expected nil for missing element, got %+v", n)
	}
}

func TestParse_DeepNesting(t *testing.T) {
	// The walk must not recurse, so very deep documents are fine.
	var b strings.Builder
	const depth = 20000
	for i := 0; i < depth; i++ {
		b.WriteString("<n>")
	}
	b.WriteString(`<leaf id="bottom"/>`)
	for i := 0; i < depth; i++ {
		b.WriteString("</n>")
	}

	root, err := Parse(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if n := root.Find(ByName("leaf")); n == nil || n.Attr("id") != "bottom" {
		t.Error("deep leaf not found")
	}
}
