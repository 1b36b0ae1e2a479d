package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// ErrUnknownExtension indicates an extension name not in KnownExtensions.
var ErrUnknownExtension = errors.New("unknown markdown extension")

// Extension names accepted in MarkdownOptions.Extensions.
const (
	ExtStrikethrough = "strikethrough"
	ExtTable         = "table"
	ExtTaskList      = "tasklist"
	ExtLinkify       = "linkify"
	ExtFootnote      = "footnote"
	ExtGFM           = "gfm"
)

// DefaultHighlightStyle is the chroma style used when none is configured.
const DefaultHighlightStyle = "github"

var knownExtensions = map[string]goldmark.Extender{
	ExtStrikethrough: extension.Strikethrough,
	ExtTable:         extension.Table,
	ExtTaskList:      extension.TaskList,
	ExtLinkify:       extension.Linkify,
	ExtFootnote:      extension.Footnote,
	ExtGFM:           extension.GFM,
}

// KnownExtensions returns the accepted extension names, sorted.
func KnownExtensions() []string {
	names := make([]string, 0, len(knownExtensions))
	for name := range knownExtensions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarkdownOptions configures the goldmark engine.
type MarkdownOptions struct {
	Extensions     []string // nil means DefaultExtensions
	Safe           bool     // omit raw HTML instead of passing it through
	Highlight      bool     // chroma highlighting for fenced code
	HighlightStyle string   // chroma style name, DefaultHighlightStyle if empty
}

// DefaultExtensions enables strikethrough only, like the reference
// CommonMark converter the output is compared against.
func DefaultExtensions() []string {
	return []string{ExtStrikethrough}
}

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter converts Markdown to an HTML fragment using goldmark.
// Safe for concurrent use.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a GoldmarkConverter with the default options.
func NewGoldmarkConverter() *GoldmarkConverter {
	c, _ := NewGoldmarkConverterWithOptions(MarkdownOptions{})
	return c
}

// NewGoldmarkConverterWithOptions builds a converter from opts.
// Returns ErrUnknownExtension for an unrecognized extension name.
func NewGoldmarkConverterWithOptions(opts MarkdownOptions) (*GoldmarkConverter, error) {
	names := opts.Extensions
	if names == nil {
		names = DefaultExtensions()
	}

	var exts []goldmark.Extender
	for _, name := range names {
		ext, ok := knownExtensions[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownExtension, name)
		}
		exts = append(exts, ext)
	}

	if opts.Highlight {
		style := opts.HighlightStyle
		if style == "" {
			style = DefaultHighlightStyle
		}
		exts = append(exts, highlighting.NewHighlighting(
			highlighting.WithStyle(style),
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(true),
			),
		))
	}

	// XHTML matches the reference converter's void elements (<hr />, <img ... />).
	rendererOptions := []renderer.Option{html.WithXHTML()}
	if !opts.Safe {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithRendererOptions(rendererOptions...),
	)
	return &GoldmarkConverter{md: md}, nil
}

// ToHTML converts Markdown content to an HTML fragment.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}
