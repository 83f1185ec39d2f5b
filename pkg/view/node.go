// Package view is a small element/text tree for the story page. Trees are
// built by the scene renderer and either written as HTML or mounted into the
// browser DOM.
package view

// Kind represents the type of node
type Kind uint8

const (
	// KindElement is an element with a tag, props and children
	KindElement Kind = iota
	// KindText is a text node
	KindText
	// KindFragment groups children without a parent element
	KindFragment
)

// Props holds attributes and event handlers. Keys starting with "on" are
// handlers (func()) and are never written as attributes. Boolean attributes
// take a bool value.
type Props map[string]any

// Node is one node of a view tree.
type Node struct {
	Kind  Kind
	Tag   string
	Props Props
	Kids  []Node
	Text  string
}

// El creates an element node. Nil children are skipped.
func El(tag string, props Props, children ...*Node) *Node {
	return &Node{
		Kind:  KindElement,
		Tag:   tag,
		Props: props,
		Kids:  collect(children),
	}
}

// Text creates a text node.
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// Fragment groups children.
func Fragment(children ...*Node) *Node {
	return &Node{Kind: KindFragment, Kids: collect(children)}
}

func collect(children []*Node) []Node {
	kids := make([]Node, 0, len(children))
	for _, c := range children {
		if c != nil {
			kids = append(kids, *c)
		}
	}
	return kids
}

// Class returns the node's class attribute.
func (n *Node) Class() string {
	if n == nil || n.Props == nil {
		return ""
	}
	s, _ := n.Props["class"].(string)
	return s
}

// Attr returns a string attribute.
func (n *Node) Attr(key string) (string, bool) {
	if n == nil || n.Props == nil {
		return "", false
	}
	s, ok := n.Props[key].(string)
	return s, ok
}

// Disabled reports whether the disabled flag is set.
func (n *Node) Disabled() bool {
	if n == nil || n.Props == nil {
		return false
	}
	b, _ := n.Props["disabled"].(bool)
	return b
}

// Handler returns the func() stored for an event prop such as "onclick".
func (n *Node) Handler(event string) func() {
	if n == nil || n.Props == nil {
		return nil
	}
	fn, _ := n.Props[event].(func())
	return fn
}

// TextContent concatenates all text below n.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	if n.Kind == KindText {
		return n.Text
	}
	var s string
	for i := range n.Kids {
		s += n.Kids[i].TextContent()
	}
	return s
}

// Find returns the nodes below (and including) n that match.
func (n *Node) Find(match func(*Node) bool) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(x *Node) {
		if match(x) {
			out = append(out, x)
		}
		for i := range x.Kids {
			walk(&x.Kids[i])
		}
	}
	if n != nil {
		walk(n)
	}
	return out
}

// ByTag is a Find matcher for element tags.
func ByTag(tag string) func(*Node) bool {
	return func(n *Node) bool { return n.Kind == KindElement && n.Tag == tag }
}

func isEventProp(key string) bool {
	return len(key) > 2 && key[0] == 'o' && key[1] == 'n'
}
