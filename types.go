package md2site

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/alnah/go-md2site/internal/pipeline"
)

// Document is a parsed Markdown source. Immutable after construction.
type Document struct {
	source      string
	title       string
	author      string
	publishedAt string
	tags        []string
	categories  []string
	html        string
}

// Source returns the path the document was read from.
func (d *Document) Source() string { return d.source }

// Title returns the front-matter title, "" when absent.
func (d *Document) Title() string { return d.title }

// Author returns the front-matter author, "" when absent.
func (d *Document) Author() string { return d.author }

// PublishedAt returns the front-matter datetime as written, "" when absent.
func (d *Document) PublishedAt() string { return d.publishedAt }

// Tags returns a copy of the front-matter tags. Never nil.
func (d *Document) Tags() []string { return append([]string{}, d.tags...) }

// Categories returns a copy of the front-matter categories. Never nil.
func (d *Document) Categories() []string { return append([]string{}, d.categories...) }

// HTML returns the Markdown body rendered as an HTML fragment.
func (d *Document) HTML() string { return d.html }

// Page is a document paired with its rendered output.
// Err is non-nil when rendering failed; HTML is then empty.
type Page struct {
	Document *Document
	HTML     string
	Err      error
}

// Failure records a document that could not be rendered.
type Failure struct {
	Source string
	Err    error
}

// Report summarizes a build.
type Report struct {
	Documents int       // documents loaded
	Written   []string  // output file paths, in load order
	Untitled  []string  // sources rendered but skipped for an empty title
	Failures  []Failure // render failures tolerated by RenderErrorSkip
}

// RenderErrorPolicy decides what a build does when a page fails to render.
type RenderErrorPolicy int

const (
	// RenderErrorSkip logs the failure, records it and continues.
	RenderErrorSkip RenderErrorPolicy = iota
	// RenderErrorFail aborts the build before any output is written.
	RenderErrorFail
)

// String returns the policy name used in configuration files.
func (p RenderErrorPolicy) String() string {
	switch p {
	case RenderErrorSkip:
		return "skip"
	case RenderErrorFail:
		return "fail"
	default:
		return fmt.Sprintf("RenderErrorPolicy(%d)", int(p))
	}
}

// ParseRenderErrorPolicy converts "skip" or "fail" (case-insensitive).
func ParseRenderErrorPolicy(s string) (RenderErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "skip":
		return RenderErrorSkip, nil
	case "fail":
		return RenderErrorFail, nil
	default:
		return 0, fmt.Errorf("%w: %q (want skip or fail)", ErrInvalidPolicy, s)
	}
}

// Defaults for the classic site layout.
const (
	DefaultSourceDir    = "markdown_files"
	DefaultOutputDir    = "output"
	DefaultTemplateName = "post.html"

	// MaxWorkers caps render concurrency.
	MaxWorkers = 64
)

// Option configures a Generator or a Renderer. Options that do not apply to
// a Renderer are ignored by NewRenderer.
type Option func(*options)

// options holds the settings shared by Generator and Renderer.
type options struct {
	sourceDir    string
	outputDir    string
	templateDir  string
	templateName string
	converter    pipeline.HTMLConverter
	workers      int
	policy       RenderErrorPolicy
	logger       *slog.Logger
	slugify      bool
}

func defaultOptions() options {
	return options{
		sourceDir:    DefaultSourceDir,
		outputDir:    DefaultOutputDir,
		templateName: DefaultTemplateName,
		workers:      1,
		policy:       RenderErrorSkip,
	}
}

func (o *options) apply(opts []Option) error {
	for _, opt := range opts {
		opt(o)
	}
	if o.workers < 0 || o.workers > MaxWorkers {
		return fmt.Errorf("%w: %d (want 0..%d)", ErrInvalidWorkers, o.workers, MaxWorkers)
	}
	if o.policy != RenderErrorSkip && o.policy != RenderErrorFail {
		return fmt.Errorf("%w: %s", ErrInvalidPolicy, o.policy)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return nil
}

// WithSourceDir sets the directory scanned for *.md files.
func WithSourceDir(dir string) Option {
	return func(o *options) { o.sourceDir = dir }
}

// WithOutputDir sets the directory pages are written to. It must exist.
func WithOutputDir(dir string) Option {
	return func(o *options) { o.outputDir = dir }
}

// WithTemplateDir sets a custom template directory. When empty or absent on
// disk the default "templates" directory is used.
func WithTemplateDir(dir string) Option {
	return func(o *options) { o.templateDir = dir }
}

// WithTemplateName sets the template rendered for each document.
func WithTemplateName(name string) Option {
	return func(o *options) { o.templateName = name }
}

// WithConverter replaces the default goldmark converter.
func WithConverter(conv pipeline.HTMLConverter) Option {
	return func(o *options) { o.converter = conv }
}

// WithWorkers sets render concurrency. 0 means one worker per available CPU,
// capped at MaxWorkers.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRenderErrorPolicy sets how render failures are handled.
func WithRenderErrorPolicy(p RenderErrorPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithLogger sets the logger used for build progress. Discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSlugify writes pages under a slug of their title instead of the title
// itself.
func WithSlugify(enabled bool) Option {
	return func(o *options) { o.slugify = enabled }
}
