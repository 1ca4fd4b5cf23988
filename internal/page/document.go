// Package page wraps the parsed HTML of a visitor's current page and patches
// named regions of it from server-rendered fragments. The document tree is the
// single mutable resource shared by the cart pipelines; callers serialize
// access per session.
package page

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a mutable parsed HTML tree.
type Document struct {
	root *html.Node
}

// Parse builds a Document from a full or partial HTML string. x/net/html
// tolerates fragments by wrapping them in html/body, which is fine here: all
// lookups go by identifier, not by structure.
func Parse(src string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

// Render serializes the document back to HTML.
func (d *Document) Render() string {
	var b strings.Builder
	_ = html.Render(&b, d.root)
	return b.String()
}

// ByID returns the first element with the given id, or nil.
func (d *Document) ByID(id string) *html.Node {
	return findFirst(d.root, func(n *html.Node) bool {
		v, ok := Attr(n, "id")
		return ok && v == id
	})
}

// ByAttr returns all elements carrying the attribute with the given value.
// An empty value matches any element that has the attribute at all.
func (d *Document) ByAttr(key, val string) []*html.Node {
	var out []*html.Node
	walk(d.root, func(n *html.Node) {
		if v, ok := Attr(n, key); ok && (val == "" || v == val) {
			out = append(out, n)
		}
	})
	return out
}

// Attr reads an attribute from an element node.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute on an element node.
func SetAttr(n *html.Node, key, val string) {
	if n == nil || n.Type != html.ElementNode {
		return
	}
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr drops an attribute if present.
func RemoveAttr(n *html.Node, key string) {
	if n == nil || n.Type != html.ElementNode {
		return
	}
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// Text returns the concatenated text content of a node.
func Text(n *html.Node) string {
	var b strings.Builder
	walkFrom(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}

// SetText replaces a node's children with a single text node.
func SetText(n *html.Node, s string) {
	if n == nil {
		return
	}
	removeChildren(n)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
}

// InnerHTML serializes a node's children.
func InnerHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return b.String()
}

// ReplaceChildren swaps dst's children for deep clones of src's children.
// Clones keep the source document untouched and avoid cross-tree node
// ownership.
func ReplaceChildren(dst, src *html.Node) {
	if dst == nil || src == nil {
		return
	}
	removeChildren(dst)
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		dst.AppendChild(cloneNode(c))
	}
}

// Closest walks up from n to the nearest ancestor-or-self matching the tag
// name, mirroring element.closest for the delegation layer.
func Closest(n *html.Node, tag string) *html.Node {
	a := atom.Lookup([]byte(tag))
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode && (cur.DataAtom == a || cur.Data == tag) {
			return cur
		}
	}
	return nil
}

// FindTag returns the first descendant element with the given tag name.
func FindTag(n *html.Node, tag string) *html.Node {
	if n == nil {
		return nil
	}
	a := atom.Lookup([]byte(tag))
	return findFirst(n, func(c *html.Node) bool {
		return c.DataAtom == a || c.Data == tag
	})
}

// HasClass reports whether the element's class list contains name.
func HasClass(n *html.Node, name string) bool {
	v, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass appends a class if absent.
func AddClass(n *html.Node, name string) {
	if HasClass(n, name) {
		return
	}
	v, _ := Attr(n, "class")
	SetAttr(n, "class", strings.TrimSpace(v+" "+name))
}

// DropClass removes a class if present.
func DropClass(n *html.Node, name string) {
	v, ok := Attr(n, "class")
	if !ok {
		return
	}
	fields := strings.Fields(v)
	kept := fields[:0]
	for _, c := range fields {
		if c != name {
			kept = append(kept, c)
		}
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

func cloneNode(n *html.Node) *html.Node {
	cp := &html.Node{
		Type:     n.Type,
		DataAtom: n.DataAtom,
		Data:     n.Data,
		Attr:     append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		cp.AppendChild(cloneNode(c))
	}
	return cp
}

func removeChildren(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	var rec func(*html.Node) bool
	rec = func(n *html.Node) bool {
		if n.Type == html.ElementNode && match(n) {
			found = n
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if rec(c) {
				return true
			}
		}
		return false
	}
	rec(root)
	return found
}

func walk(root *html.Node, visit func(*html.Node)) {
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.ElementNode {
			visit(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(root)
}

func walkFrom(root *html.Node, visit func(*html.Node)) {
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		visit(n)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	if root != nil {
		rec(root)
	}
}
