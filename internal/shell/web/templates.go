package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/artpar/yatube/internal/shell/media"
)

//go:embed templates
var templateFS embed.FS

// Page template names.
const (
	tmplPosts              = "posts_view.html"
	tmplPost               = "post_view.html"
	tmplPostForm           = "post_form.html"
	tmplSignup             = "signup.html"
	tmplLogin              = "login.html"
	tmplLoggedOut          = "logged_out.html"
	tmplPasswordChange     = "password_change.html"
	tmplPasswordChangeDone = "password_change_done.html"
	tmplAbout              = "about.html"
	tmplNotFound           = "misc/404.html"
	tmplServerError        = "misc/500.html"
)

var pageTemplates = []string{
	tmplPosts, tmplPost, tmplPostForm, tmplSignup, tmplLogin, tmplLoggedOut,
	tmplPasswordChange, tmplPasswordChangeDone, tmplAbout, tmplNotFound, tmplServerError,
}

var templateFuncs = template.FuncMap{
	"mediaURL": media.URL,
	"date": func(t time.Time) string {
		return t.Format("02 Jan 2006 15:04")
	},
	"isodate": func(t time.Time) string {
		return t.UTC().Format(time.RFC3339)
	},
}

// Templates holds one parsed set per page, each with the base layout and
// the shared includes.
type Templates struct {
	pages map[string]*template.Template
}

// LoadTemplates parses the embedded page templates.
func LoadTemplates() (*Templates, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}

	t := &Templates{pages: make(map[string]*template.Template, len(pageTemplates))}
	for _, name := range pageTemplates {
		page, err := template.New(name).Funcs(templateFuncs).ParseFS(sub, "base.html", "includes/*.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		t.pages[name] = page
	}
	return t, nil
}

// Render executes page into w with status. The page is rendered to a buffer
// first so that template errors never produce half-written responses.
func (t *Templates) Render(w http.ResponseWriter, status int, name string, data any) error {
	page, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := page.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
