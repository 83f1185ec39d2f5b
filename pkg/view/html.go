package view

import (
	"fmt"
	"html"
	"io"
	"sort"
	"strings"
)

var voidElements = map[string]bool{
	"br":    true,
	"hr":    true,
	"img":   true,
	"input": true,
	"meta":  true,
	"link":  true,
}

// HTMLWriter renders view trees as HTML.
type HTMLWriter struct {
	w   io.Writer
	err error
}

// NewHTMLWriter creates a writer targeting w.
func NewHTMLWriter(w io.Writer) *HTMLWriter {
	return &HTMLWriter{w: w}
}

// Write renders n. Attributes are written in key order.
func (h *HTMLWriter) Write(n *Node) error {
	if n == nil {
		return nil
	}
	h.node(n)
	return h.err
}

func (h *HTMLWriter) write(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *HTMLWriter) node(n *Node) {
	if h.err != nil {
		return
	}
	switch n.Kind {
	case KindText:
		h.write(html.EscapeString(n.Text))
	case KindElement:
		h.element(n)
	case KindFragment:
		for i := range n.Kids {
			h.node(&n.Kids[i])
		}
	}
}

func (h *HTMLWriter) element(n *Node) {
	h.write("<")
	h.write(n.Tag)

	keys := make([]string, 0, len(n.Props))
	for k := range n.Props {
		if isEventProp(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := n.Props[k].(type) {
		case bool:
			if v {
				h.write(" ")
				h.write(k)
			}
		case nil:
		default:
			val := fmt.Sprintf("%v", v)
			if k == "href" && strings.HasPrefix(strings.ToLower(val), "javascript:") {
				val = "#"
			}
			h.write(" ")
			h.write(k)
			h.write(`="`)
			h.write(html.EscapeString(val))
			h.write(`"`)
		}
	}
	h.write(">")

	if voidElements[n.Tag] {
		return
	}
	for i := range n.Kids {
		h.node(&n.Kids[i])
	}
	h.write("</")
	h.write(n.Tag)
	h.write(">")
}

// RenderString renders n to a string.
func RenderString(n *Node) (string, error) {
	var b strings.Builder
	if err := NewHTMLWriter(&b).Write(n); err != nil {
		return "", err
	}
	return b.String(), nil
}
