package nmap

import (
	"encoding/xml"
	"strings"
)

// Node is a schema-free view of one XML element. Scan reports vary by
// scanner version and script set, so the tree keeps every element and
// attribute instead of binding to a fixed struct shape.
type Node struct {
	XMLName  xml.Name   `xml:""`
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []Node     `xml:",any"`
	Text     string     `xml:",chardata"`
}

func (n *Node) Tag() string {
	return n.XMLName.Local
}

// Attr returns the named attribute and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *Node) AttrDefault(name, fallback string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return fallback
}

// First resolves a slash-separated child path ("hostnames/hostname")
// and returns the first element matching the full path in document
// order, or nil when no branch matches. Absence is a normal value.
func (n *Node) First(path string) *Node {
	segments := strings.Split(path, "/")
	return n.findPath(segments)
}

func (n *Node) findPath(segments []string) *Node {
	if len(segments) == 0 {
		return n
	}
	for i := range n.Children {
		child := &n.Children[i]
		if child.Tag() != segments[0] {
			continue
		}
		if found := child.findPath(segments[1:]); found != nil {
			return found
		}
	}
	return nil
}

// ChildrenNamed returns the direct children with the given tag, in
// document order.
func (n *Node) ChildrenNamed(name string) []*Node {
	var out []*Node
	for i := range n.Children {
		if n.Children[i].Tag() == name {
			out = append(out, &n.Children[i])
		}
	}
	return out
}

// Descendants returns every element with the given tag at any depth,
// in depth-first pre-order. The receiver itself is included when its
// own tag matches.
func (n *Node) Descendants(name string) []*Node {
	var out []*Node
	n.walk(func(d *Node) {
		if d.Tag() == name {
			out = append(out, d)
		}
	})
	return out
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for i := range n.Children {
		n.Children[i].walk(fn)
	}
}
