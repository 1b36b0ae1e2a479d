package md2site

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alnah/go-md2site/internal/pipeline"
	"github.com/alnah/go-md2site/internal/templating"
)

// Generator builds a site: load, compile, render, write.
// Create with NewGenerator, run with Build.
type Generator struct {
	opts options
}

// NewGenerator creates a Generator for the classic layout, customized by
// opts. Returns ErrInvalidWorkers or ErrInvalidPolicy for bad options.
func NewGenerator(opts ...Option) (*Generator, error) {
	o := defaultOptions()
	if err := o.apply(opts); err != nil {
		return nil, err
	}
	if o.converter == nil {
		o.converter = pipeline.NewGoldmarkConverter()
	}
	return &Generator{opts: o}, nil
}

// TemplateDir returns the template directory a build will compile.
func (g *Generator) TemplateDir() string {
	return templating.ResolveDir(g.opts.templateDir, templating.DefaultDir)
}

// Build runs the whole pipeline once. Render failures follow the configured
// policy; every other failure is returned. No step is retried.
func (g *Generator) Build(ctx context.Context) (*Report, error) {
	log := g.opts.logger
	start := time.Now()

	docs, err := LoadDocuments(ctx, g.opts.sourceDir, g.opts.converter)
	if err != nil {
		return nil, err
	}
	log.Debug("loaded documents", "dir", g.opts.sourceDir, "count", len(docs))
	if len(docs) == 0 {
		log.Warn("no markdown sources found", "dir", g.opts.sourceDir)
	}

	tplDir := g.TemplateDir()
	renderer, err := NewRenderer(tplDir,
		WithTemplateName(g.opts.templateName),
		WithWorkers(g.opts.workers),
	)
	if err != nil {
		return nil, err
	}
	log.Debug("compiled templates", "dir", tplDir, "templates", renderer.Templates())

	pages := renderer.RenderAll(ctx, docs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{Documents: len(docs)}
	for _, p := range pages {
		if p.Err == nil {
			continue
		}
		if g.opts.policy == RenderErrorFail {
			return nil, p.Err
		}
		log.Warn("skipping page", "source", p.Document.Source(), "error", p.Err)
		report.Failures = append(report.Failures, Failure{Source: p.Document.Source(), Err: p.Err})
	}

	w := Writer{Dir: g.opts.outputDir, Slugify: g.opts.slugify}
	res, err := w.WriteAll(pages)
	report.Written = res.Written
	report.Untitled = res.Untitled
	if err != nil {
		return report, err
	}

	for _, src := range report.Untitled {
		log.Debug("skipping untitled page", "source", src)
	}
	for _, path := range report.Written {
		log.Debug("wrote page", "path", path)
	}
	log.Info("build complete",
		"documents", report.Documents,
		"written", len(report.Written),
		"failed", len(report.Failures),
		"duration", time.Since(start),
	)
	return report, nil
}

// IsContentError reports whether err comes from document or template
// content rather than the file system.
func IsContentError(err error) bool {
	return errors.Is(err, ErrFrontMatter) ||
		errors.Is(err, ErrTemplateCompile) ||
		errors.Is(err, ErrRender) ||
		errors.Is(err, pipeline.ErrHTMLConversion)
}

// IsIOError reports whether err comes from reading sources or writing pages.
func IsIOError(err error) bool {
	return errors.Is(err, ErrListSources) ||
		errors.Is(err, ErrReadSource) ||
		errors.Is(err, ErrWriteOutput)
}

// String formats a one-line summary of the report.
func (r *Report) String() string {
	return fmt.Sprintf("%d documents, %d written, %d untitled, %d failed",
		r.Documents, len(r.Written), len(r.Untitled), len(r.Failures))
}
