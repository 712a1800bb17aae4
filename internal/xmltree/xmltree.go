// Package xmltree parses XML into a generic node tree and offers
// iterative traversal helpers. Documents in the corpus can be deeply
// nested or malformed, so all walks use an explicit stack instead of
// recursion.
package xmltree

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Node is one XML element with its attributes and children.
type Node struct {
	Space    string
	Local    string
	Attrs    map[string]string
	Text     string
	Children []*Node
}

// Attr returns the value of the named attribute, or "".
func (n *Node) Attr(name string) string {
	return n.Attrs[name]
}

// Parse reads an XML document into a node tree.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)

	var root *Node
	var stack []*Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xml parse error: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{
				Space: t.Name.Space,
				Local: t.Name.Local,
				Attrs: make(map[string]string, len(t.Attr)),
			}
			for _, a := range t.Attr {
				node.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				text := strings.TrimSpace(string(t))
				if text != "" {
					cur := stack[len(stack)-1]
					if cur.Text != "" {
						cur.Text += " "
					}
					cur.Text += text
				}
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("xml parse error: empty document")
	}
	return root, nil
}

// Find returns the first descendant (including n itself) matching pred,
// in document order.
func (n *Node) Find(pred func(*Node) bool) *Node {
	for _, d := range n.FindAll(pred) {
		return d
	}
	return nil
}

// FindAll returns every descendant (including n itself) matching pred,
// in document order.
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if pred(cur) {
			out = append(out, cur)
		}
		// Push children reversed so traversal stays in document order.
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
	return out
}

// ByName matches elements on local name, ignoring namespace.
func ByName(local string) func(*Node) bool {
	return func(n *Node) bool { return n.Local == local }
}

// ByNameAttr matches elements on local name and one attribute value.
func ByNameAttr(local, attr, value string) func(*Node) bool {
	return func(n *Node) bool { return n.Local == local && n.Attrs[attr] == value }
}
