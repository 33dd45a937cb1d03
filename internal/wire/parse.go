package wire

import (
	"github.com/beevik/etree"

	"github.com/billfold/szamlazz-go/internal/model"
)

// Node is one element of a parsed response: its text content plus named
// children. A child name maps to either a single *Node or a []*Node,
// mirroring the wire format's ambiguous one-vs-many encoding; use Seq or
// NormalizeSeq wherever a field is logically repeatable.
type Node struct {
	Name string
	Text string

	kids map[string]any
}

// Parse converts raw XML into a Node tree rooted at the document element.
func Parse(data []byte) (*Node, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &model.ParseError{Op: "response", Message: "not well-formed XML", Cause: err}
	}
	root := doc.Root()
	if root == nil {
		return nil, &model.ParseError{Op: "response", Message: "empty document"}
	}
	return fromElement(root), nil
}

func fromElement(el *etree.Element) *Node {
	n := &Node{Name: el.Tag, Text: el.Text()}
	for _, child := range el.ChildElements() {
		n.add(child.Tag, fromElement(child))
	}
	return n
}

func (n *Node) add(name string, child *Node) {
	if n.kids == nil {
		n.kids = make(map[string]any)
	}
	switch existing := n.kids[name].(type) {
	case nil:
		n.kids[name] = child
	case *Node:
		n.kids[name] = []*Node{existing, child}
	case []*Node:
		n.kids[name] = append(existing, child)
	}
}

// Get returns the raw child value: nil, *Node or []*Node.
func (n *Node) Get(name string) any {
	if n == nil || n.kids == nil {
		return nil
	}
	return n.kids[name]
}

// Child returns the named child, or the first one when several exist.
func (n *Node) Child(name string) *Node {
	switch v := n.Get(name).(type) {
	case *Node:
		return v
	case []*Node:
		if len(v) > 0 {
			return v[0]
		}
	}
	return nil
}

// Has reports whether a child with this name exists.
func (n *Node) Has(name string) bool {
	return n.Get(name) != nil
}

// Value returns the text of the named child, or "" when absent.
func (n *Node) Value(name string) string {
	if c := n.Child(name); c != nil {
		return c.Text
	}
	return ""
}

// Seq returns the named child normalized to a sequence.
func (n *Node) Seq(name string) []*Node {
	return NormalizeSeq(n.Get(name))
}

// NormalizeSeq resolves the single-vs-many ambiguity: a lone node becomes a
// one-element sequence, a sequence passes through unchanged, absence is an
// empty sequence. Applying it twice equals applying it once.
func NormalizeSeq(v any) []*Node {
	switch t := v.(type) {
	case *Node:
		if t == nil {
			return nil
		}
		return []*Node{t}
	case []*Node:
		return t
	default:
		return nil
	}
}
