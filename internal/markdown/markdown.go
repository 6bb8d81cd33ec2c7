// Package markdown converts Markdown source text into HTML using goldmark.
// Service and category descriptions are written in Markdown in the admin
// console and rendered to HTML on the public pages.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		// Descriptions come from authenticated admins only, and some
		// existing copy contains raw HTML.
		html.WithUnsafe(),
	),
)

// Render converts Markdown source to HTML.
func Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
