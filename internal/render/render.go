// Package render converts document bodies to HTML.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer renders markdown with GitHub-flavoured extensions. It is safe for
// concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// Option configures a Renderer.
type Option func(*rendererOptions)

type rendererOptions struct {
	unsafe    bool
	hardWraps bool
}

// WithUnsafeHTML passes raw HTML in the source through to the output.
func WithUnsafeHTML() Option { return func(o *rendererOptions) { o.unsafe = true } }

// WithHardWraps renders single newlines as <br>.
func WithHardWraps() Option { return func(o *rendererOptions) { o.hardWraps = true } }

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	var o rendererOptions
	for _, fn := range opts {
		fn(&o)
	}

	var htmlOpts []renderer.Option
	if o.unsafe {
		htmlOpts = append(htmlOpts, html.WithUnsafe())
	}
	if o.hardWraps {
		htmlOpts = append(htmlOpts, html.WithHardWraps())
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(htmlOpts...),
	)
	return &Renderer{md: md}
}

// Render converts a markdown body to HTML.
func (r *Renderer) Render(body string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return buf.String(), nil
}
