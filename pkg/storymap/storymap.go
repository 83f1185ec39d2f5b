// Package storymap holds the story map payload returned by the game API and
// turns it into diagram definitions and layouts.
package storymap

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrEmptyMap is returned when a map has no nodes to draw.
var ErrEmptyMap = errors.New("storymap: map has no nodes")

// Node is one plot point of the story.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Edge connects two plot points.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// Map is the branching structure of a story.
type Map struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges,omitempty"`
}

// Has reports whether the map contains a node with the given id.
func (m *Map) Has(id string) bool {
	if m == nil {
		return false
	}
	for _, n := range m.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

var labelEscaper = strings.NewReplacer(
	"#", "#35;",
	`"`, "#quot;",
	"\r\n", "<br/>",
	"\n", "<br/>",
)

// EscapeLabel makes text safe inside a quoted Mermaid label. Quotes and '#'
// become entity codes and newlines become line breaks; everything else is
// kept as is.
func EscapeLabel(s string) string {
	return labelEscaper.Replace(s)
}

// Definition renders the map as a top-down Mermaid flowchart.
func Definition(m *Map) (string, error) {
	if m == nil || len(m.Nodes) == 0 {
		return "", ErrEmptyMap
	}

	var b strings.Builder
	b.WriteString("graph TD;\n")
	for _, n := range m.Nodes {
		if n.ID == "" {
			return "", fmt.Errorf("storymap: node with empty id (label %q)", n.Label)
		}
		fmt.Fprintf(&b, "    %s[\"%s\"];\n", n.ID, EscapeLabel(n.Label))
	}
	for _, e := range m.Edges {
		if e.From == "" || e.To == "" {
			return "", fmt.Errorf("storymap: edge %q is missing an endpoint", e.Label)
		}
		fmt.Fprintf(&b, "    %s -- \"%s\" --> %s;\n", e.From, EscapeLabel(e.Label), e.To)
	}
	return b.String(), nil
}

var translateRe = regexp.MustCompile(`translate\(\s*([-+0-9.eE]+)\s*[, ]\s*([-+0-9.eE]+)\s*\)`)

// ParseTranslate extracts the offsets of an SVG "translate(x, y)" transform
// attribute.
func ParseTranslate(attr string) (x, y float64, ok bool) {
	m := translateRe.FindStringSubmatch(attr)
	if m == nil {
		return 0, 0, false
	}
	x, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, 0, false
	}
	y, err = strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, 0, false
	}
	return x, y, true
}
