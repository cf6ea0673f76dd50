package web

import (
	"html"
	"io"
	"strings"
)

// Attr is a single attribute. Attributes render in the order they were added.
type Attr struct {
	Key   string
	Value string
}

// Node is an element or a text node. A Node with an empty Tag is text.
type Node struct {
	Tag      string
	Attrs    []Attr
	Children []Node
	Text     string
}

// voidElements never have children or a closing tag.
var voidElements = map[string]bool{
	"br": true, "hr": true, "img": true, "input": true, "meta": true, "link": true,
}

// El builds an element.
func El(tag string, attrs []Attr, children ...Node) Node {
	return Node{Tag: tag, Attrs: attrs, Children: children}
}

// Text builds a text node.
func Text(s string) Node {
	return Node{Text: s}
}

// A is shorthand for an attribute list built from key/value pairs. A trailing odd key is dropped.
func A(kv ...string) []Attr {
	attrs := make([]Attr, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs = append(attrs, Attr{Key: kv[i], Value: kv[i+1]})
	}
	return attrs
}

// Class joins the non-empty class names.
func Class(names ...string) string {
	var b strings.Builder
	for _, n := range names {
		if n == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(n)
	}
	return b.String()
}

// Get returns the value of attribute key.
func (n Node) Get(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// HasClass reports whether the class attribute contains name.
func (n Node) HasClass(name string) bool {
	class, _ := n.Get("class")
	for _, c := range strings.Fields(class) {
		if c == name {
			return true
		}
	}
	return false
}

// Find returns every node in the tree, n included, for which match is true, in document order.
func (n Node) Find(match func(Node) bool) []Node {
	var found []Node
	var walk func(Node)
	walk = func(cur Node) {
		if match(cur) {
			found = append(found, cur)
		}
		for _, c := range cur.Children {
			walk(c)
		}
	}
	walk(n)
	return found
}

// ByID returns the first element whose id attribute is id.
func (n Node) ByID(id string) (Node, bool) {
	found := n.Find(func(c Node) bool {
		v, ok := c.Get("id")
		return ok && v == id
	})
	if len(found) == 0 {
		return Node{}, false
	}
	return found[0], true
}

// TextContent concatenates the text of n and its descendants.
func (n Node) TextContent() string {
	var b strings.Builder
	for _, t := range n.Find(func(c Node) bool { return c.Tag == "" }) {
		b.WriteString(t.Text)
	}
	return b.String()
}

// Render writes n as HTML. Text and attribute values are escaped.
func Render(w io.Writer, n Node) error {
	sw := &stickyWriter{w: w}
	render(sw, n)
	return sw.err
}

// String renders n to a string.
func (n Node) String() string {
	var b strings.Builder
	_ = Render(&b, n)
	return b.String()
}

func render(w *stickyWriter, n Node) {
	if n.Tag == "" {
		w.write(html.EscapeString(n.Text))
		return
	}

	w.write("<" + n.Tag)
	for _, a := range n.Attrs {
		w.write(" " + a.Key + `="` + html.EscapeString(a.Value) + `"`)
	}
	w.write(">")
	if voidElements[n.Tag] {
		return
	}
	for _, c := range n.Children {
		render(w, c)
	}
	w.write("</" + n.Tag + ">")
}

// stickyWriter keeps the first write error and skips later writes.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) write(str string) {
	if s.err != nil {
		return
	}
	_, s.err = io.WriteString(s.w, str)
}
