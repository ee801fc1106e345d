package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"

	"momodash/internal/dom"
)

const pageTemplate = "dashboard.html"

// PageData fills the dashboard template.
type PageData struct {
	Title    string
	Currency string
	Locale   string
}

// Page is the rendered dashboard template. Every session starts from its own
// parsed copy.
type Page struct {
	markup []byte
}

// NewPage executes the embedded template once.
func NewPage(fsys fs.FS, data PageData) (*Page, error) {
	t, err := template.ParseFS(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, pageTemplate, data); err != nil {
		return nil, fmt.Errorf("execute %s: %w", pageTemplate, err)
	}
	return &Page{markup: buf.Bytes()}, nil
}

// Document parses a fresh copy of the page.
func (p *Page) Document() (*dom.Document, error) {
	return dom.Parse(bytes.NewReader(p.markup))
}
