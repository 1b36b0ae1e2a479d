package md2site

import (
	"context"
	"fmt"

	"github.com/alnah/go-md2site/internal/templating"
)

// Template context keys.
const (
	keyTitle      = "title"
	keyAuthor     = "author"
	keyDatetime   = "datetime"
	keyTags       = "tags"
	keyCategories = "categories"
	keyContent    = "content"
)

// Renderer renders documents through a compiled template directory.
// Safe for concurrent use.
type Renderer struct {
	set     *templating.Set
	name    string
	workers int
}

// NewRenderer compiles every template under dir. Uses the template name and
// worker options; other options are ignored.
func NewRenderer(dir string, opts ...Option) (*Renderer, error) {
	o := defaultOptions()
	if err := o.apply(opts); err != nil {
		return nil, err
	}

	set, err := templating.Compile(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplateCompile, err)
	}

	return &Renderer{
		set:     set,
		name:    o.templateName,
		workers: ResolveWorkers(o.workers),
	}, nil
}

// Templates lists the compiled template names.
func (r *Renderer) Templates() []string {
	return r.set.Names()
}

// Render renders one document. Rendering the same document twice yields the
// same string.
func (r *Renderer) Render(doc *Document) (string, error) {
	out, err := r.set.Render(r.name, documentContext(doc))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRender, doc.Source(), err)
	}
	return out, nil
}

// RenderAll renders docs and returns one Page per document, in input order.
// Failures are carried in Page.Err. Documents not started before ctx is
// cancelled get ctx.Err().
func (r *Renderer) RenderAll(ctx context.Context, docs []*Document) []Page {
	pages := make([]Page, len(docs))
	forEach(len(docs), r.workers, func(i int) {
		pages[i].Document = docs[i]
		if err := ctx.Err(); err != nil {
			pages[i].Err = err
			return
		}
		pages[i].HTML, pages[i].Err = r.Render(docs[i])
	})
	return pages
}

func documentContext(doc *Document) templating.Context {
	return templating.Context{
		keyTitle:      doc.Title(),
		keyAuthor:     doc.Author(),
		keyDatetime:   doc.PublishedAt(),
		keyTags:       doc.Tags(),
		keyCategories: doc.Categories(),
		keyContent:    templating.Safe(doc.HTML()),
	}
}
