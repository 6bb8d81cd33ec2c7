// Package render provides HTML template rendering for the public site.
// Page templates are embedded at compile time and paired with a shared
// base layout.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"eventpress/internal/markdown"
)

//go:embed templates/public/*.html
var publicFS embed.FS

// PageData holds all data passed to public templates.
type PageData struct {
	Title string // Page title for <title> tag
	Data  any    // Page-specific data
}

// Renderer handles template parsing and execution for public pages.
type Renderer struct {
	templates map[string]*template.Template
}

// New creates a Renderer by parsing all public page templates from the
// embedded filesystem, each paired with the base layout.
func New() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template)}

	funcMap := template.FuncMap{
		// deref safely dereferences a string pointer for use in templates.
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		// fmtPrice formats a price the Turkish way: 12500 → "12.500,00 TRY".
		"fmtPrice": FormatPrice,
		// md renders a Markdown description to HTML. Descriptions are
		// admin-authored, so the output is trusted.
		"md": func(s *string) template.HTML {
			if s == nil {
				return ""
			}
			out, err := markdown.Render(*s)
			if err != nil {
				slog.Error("markdown render failed", "error", err)
				return template.HTML(template.HTMLEscapeString(*s))
			}
			return template.HTML(out)
		},
	}

	entries, err := publicFS.ReadDir("templates/public")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" {
			continue
		}

		tmpl, err := template.New("base.html").Funcs(funcMap).ParseFS(
			publicFS,
			"templates/public/base.html",
			"templates/public/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}

		key := strings.TrimSuffix(name, ".html")
		r.templates[key] = tmpl
	}

	return r, nil
}

// Page renders a named page template with the base layout.
func (r *Renderer) Page(w http.ResponseWriter, name string, data *PageData) {
	tmpl, ok := r.templates[name]
	if !ok {
		slog.Error("unknown template", "name", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		slog.Error("template execute failed", "name", name, "error", err)
	}
}

// FormatPrice renders an amount with Turkish digit grouping and the
// currency code appended: 12500 → "12.500,00 TRY".
func FormatPrice(amount float64, currency string) string {
	if currency == "" {
		currency = "TRY"
	}

	neg := amount < 0
	if neg {
		amount = -amount
	}

	whole := int64(amount)
	cents := int64(amount*100+0.5) % 100

	digits := fmt.Sprintf("%d", whole)
	var grouped strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(d)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%s,%02d %s", sign, grouped.String(), cents, currency)
}
