package dashboard

import (
	"bytes"
	"io"

	"momodash/internal/dom"
)

// Update is what changed on the page since a Mark.
type Update struct {
	// Fragments are changed elements rendered for an out-of-band swap.
	Fragments []string
	Alerts    []string
}

func (u Update) Empty() bool {
	return len(u.Fragments) == 0 && len(u.Alerts) == 0
}

// HTML joins the fragments into one response body.
func (u Update) HTML() string {
	var buf bytes.Buffer
	for _, f := range u.Fragments {
		buf.WriteString(f)
		buf.WriteByte('\n')
	}
	return buf.String()
}

// Mark returns the current page version, to pass to UpdatesSince later.
func (c *Controller) Mark() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Version()
}

// UpdatesSince renders the elements changed and the alerts raised after mark.
func (c *Controller) UpdatesSince(mark uint64) (Update, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var u Update
	for _, el := range c.doc.ChangedSince(mark) {
		if el.ID() == "" {
			continue
		}
		var buf bytes.Buffer
		if err := el.RenderWith(&buf, dom.A("hx-swap-oob", "true")); err != nil {
			return Update{}, err
		}
		u.Fragments = append(u.Fragments, buf.String())
	}
	u.Alerts = c.doc.AlertsSince(mark)
	return u, nil
}

// RenderPage writes the whole page in its current state.
func (c *Controller) RenderPage(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Render(w)
}
