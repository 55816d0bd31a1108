// Package views holds the HTML templates of the site.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"portfolio/app/models"
)

//go:embed templates
var files embed.FS

// Page is embedded by every page's data so the layout can show the viewer
type Page struct {
	User *models.User
}

var pages = map[string][]string{
	"posts/index":     {"templates/layout.html", "templates/posts/index.html"},
	"posts/show":      {"templates/layout.html", "templates/posts/show.html"},
	"posts/new":       {"templates/layout.html", "templates/posts/new.html"},
	"projects/index":  {"templates/layout.html", "templates/projects/index.html"},
	"learnings/index": {"templates/layout.html", "templates/learnings/index.html"},
	"learnings/show":  {"templates/layout.html", "templates/learnings/show.html"},
	"about/index":     {"templates/layout.html", "templates/about/index.html"},
	"auth/signin":     {"templates/layout.html", "templates/auth/signin.html"},
}

var funcs = template.FuncMap{
	"render":   func(b models.Body) (template.HTML, error) { return b.Render() },
	"markdown": func(s string) (template.HTML, error) { return models.TextBody(s).Render() },
	"join":     strings.Join,
	"date": func(t time.Time) string {
		return t.Format("January 2, 2006")
	},
	"dateInput": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	},
}

// Renderer executes the parsed page templates
type Renderer struct {
	templates map[string]*template.Template
}

// New parses every page template
func New() (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pages))
	for name, paths := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(files, paths...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		templates[name] = t
	}
	return &Renderer{templates: templates}, nil
}

// Must is like New but panics on error
func Must() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Render writes the named page. Output is buffered so a failing template never
// leaves a half written page behind.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
