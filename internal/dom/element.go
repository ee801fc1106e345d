package dom

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attribute is an HTML attribute on a built node.
type Attribute = html.Attribute

// Attachment is a live object bound to an element, such as a chart, that must
// be released before it is replaced.
type Attachment interface {
	Destroy()
}

// Element is a handle on one node of a Document. Handles are stable: looking
// up the same node twice yields the same *Element, so attachments persist.
type Element struct {
	node       *html.Node
	doc        *Document
	changed    uint64
	attachment Attachment
}

func (e *Element) ID() string {
	v, _ := attr(e.node, "id")
	return v
}

func (e *Element) Tag() string {
	return e.node.Data
}

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(key string) (string, bool) {
	return attr(e.node, key)
}

func (e *Element) SetAttr(key, val string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			if a.Val == val {
				return
			}
			e.node.Attr[i].Val = val
			e.doc.touch(e)
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: val})
	e.doc.touch(e)
}

func (e *Element) RemoveAttr(key string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			e.node.Attr = append(e.node.Attr[:i], e.node.Attr[i+1:]...)
			e.doc.touch(e)
			return
		}
	}
}

// Data returns a data-* attribute, e.g. Data("section").
func (e *Element) Data(name string) string {
	v, _ := attr(e.node, "data-"+name)
	return v
}

func (e *Element) HasClass(class string) bool {
	return hasClass(e.node, class)
}

func (e *Element) AddClass(class string) {
	if e.HasClass(class) {
		return
	}
	v, _ := attr(e.node, "class")
	e.SetAttr("class", strings.TrimSpace(v+" "+class))
}

func (e *Element) RemoveClass(class string) {
	if !e.HasClass(class) {
		return
	}
	v, _ := attr(e.node, "class")
	var kept []string
	for _, c := range strings.Fields(v) {
		if c != class {
			kept = append(kept, c)
		}
	}
	e.SetAttr("class", strings.Join(kept, " "))
}

func (e *Element) Disabled() bool {
	_, ok := attr(e.node, "disabled")
	return ok
}

func (e *Element) SetDisabled(disabled bool) {
	if disabled {
		if !e.Disabled() {
			e.SetAttr("disabled", "")
		}
		return
	}
	e.RemoveAttr("disabled")
}

// Text returns the concatenated text content.
func (e *Element) Text() string {
	var b strings.Builder
	collectText(e.node, &b)
	return b.String()
}

// SetText replaces all children with a single text node.
func (e *Element) SetText(text string) {
	e.ReplaceChildren(TextNode(text))
}

// ReplaceChildren swaps the element's children for nodes.
func (e *Element) ReplaceChildren(nodes ...*html.Node) {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.forget(c)
		e.node.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	e.doc.touch(e)
}

// Children returns handles on the element's child elements.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.doc.wrap(c))
		}
	}
	return out
}

// Value is the current value of an input or select.
func (e *Element) Value() string {
	if e.node.DataAtom != atom.Select {
		v, _ := attr(e.node, "value")
		return v
	}
	options := e.options()
	for _, o := range options {
		if _, ok := attr(o, "selected"); ok {
			return optionValue(o)
		}
	}
	if len(options) > 0 {
		return optionValue(options[0])
	}
	return ""
}

// SyncValue records a value the browser already shows. It does not count as a
// change, so the control is not re-sent while the user is typing.
func (e *Element) SyncValue(v string) {
	if e.node.DataAtom != atom.Select {
		setAttrQuiet(e.node, "value", v)
		return
	}
	for _, o := range e.options() {
		if optionValue(o) == v {
			setAttrQuiet(o, "selected", "")
		} else {
			removeAttrQuiet(o, "selected")
		}
	}
}

// Attachment returns what is currently bound to the element, if anything.
func (e *Element) Attachment() Attachment {
	return e.attachment
}

func (e *Element) SetAttachment(a Attachment) {
	e.attachment = a
}

// InnerHTML renders the element's children.
func (e *Element) InnerHTML() string {
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// OuterHTML renders the element itself.
func (e *Element) OuterHTML() string {
	var buf bytes.Buffer
	_ = html.Render(&buf, e.node)
	return buf.String()
}

// RenderWith writes the element with extra attributes added to the copy being
// rendered, leaving the document untouched.
func (e *Element) RenderWith(w io.Writer, extra ...html.Attribute) error {
	clone := *e.node
	clone.Parent, clone.PrevSibling, clone.NextSibling = nil, nil, nil
	clone.Attr = append(append([]html.Attribute(nil), e.node.Attr...), extra...)
	return html.Render(w, &clone)
}

func (e *Element) options() []*html.Node {
	var out []*html.Node
	walk(e.node, func(n *html.Node) bool {
		if n.DataAtom == atom.Option {
			out = append(out, n)
		}
		return true
	})
	return out
}

func (e *Element) forget(n *html.Node) {
	walk(n, func(c *html.Node) bool {
		delete(e.doc.elements, c)
		return true
	})
}

// NewNode builds an element node.
func NewNode(tag string, attrs []Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// TextNode builds a text node; content is escaped on render.
func TextNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// A is shorthand for an attribute literal.
func A(key, val string) Attribute {
	return Attribute{Key: key, Val: val}
}

func optionValue(n *html.Node) string {
	if v, ok := attr(n, "value"); ok {
		return v
	}
	var b strings.Builder
	collectText(n, &b)
	return b.String()
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

func setAttrQuiet(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttrQuiet(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}
