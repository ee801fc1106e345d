// Package dom holds the server-side copy of a dashboard page.
//
// A Document is parsed once from the rendered page template and then mutated
// by the dashboard controller. Every change bumps the document version, so a
// request can send back exactly the elements changed since it started.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Document is a parsed HTML page. It is not safe for concurrent use; the
// owner serialises access.
type Document struct {
	root     *html.Node
	elements map[*html.Node]*Element
	version  uint64
	alerts   []alert
}

type alert struct {
	version uint64
	message string
}

// alerts older than this many entries are dropped.
const maxAlerts = 32

// Parse reads a complete HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{
		root:     root,
		elements: make(map[*html.Node]*Element),
	}, nil
}

// ParseString is Parse for in-memory markup.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// ByID returns the element with the given id, or nil when the page has none.
func (d *Document) ByID(id string) *Element {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if v, ok := attr(n, "id"); ok && v == id {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil
	}
	return d.wrap(found)
}

// ByClass returns every element carrying class, in document order.
func (d *Document) ByClass(class string) []*Element {
	var out []*Element
	walk(d.root, func(n *html.Node) bool {
		if hasClass(n, class) {
			out = append(out, d.wrap(n))
		}
		return true
	})
	return out
}

// Version identifies the document state. It grows with every change.
func (d *Document) Version() uint64 {
	return d.version
}

// Alert queues a blocking message for the user.
func (d *Document) Alert(message string) {
	d.version++
	d.alerts = append(d.alerts, alert{version: d.version, message: message})
	if len(d.alerts) > maxAlerts {
		d.alerts = d.alerts[len(d.alerts)-maxAlerts:]
	}
}

// AlertsSince returns the alerts raised after version v, oldest first.
func (d *Document) AlertsSince(v uint64) []string {
	var out []string
	for _, a := range d.alerts {
		if a.version > v {
			out = append(out, a.message)
		}
	}
	return out
}

// ChangedSince returns the attached elements changed after version v, ordered
// by their most recent change.
func (d *Document) ChangedSince(v uint64) []*Element {
	var out []*Element
	for _, e := range d.elements {
		if e.changed > v {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].changed < out[j].changed })
	return out
}

// Render writes the whole document.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the whole document.
func (d *Document) String() string {
	var buf bytes.Buffer
	_ = html.Render(&buf, d.root)
	return buf.String()
}

func (d *Document) wrap(n *html.Node) *Element {
	if e, ok := d.elements[n]; ok {
		return e
	}
	e := &Element{node: n, doc: d}
	d.elements[n] = e
	return e
}

func (d *Document) touch(e *Element) {
	d.version++
	e.changed = d.version
}

// walk visits element nodes depth-first until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if n.Type == html.ElementNode && !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	v, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}
