package md2site

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-md2site/internal/frontmatter"
	"github.com/alnah/go-md2site/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.Markdown)(nil)
)

// sourcePattern matches the Markdown sources of a directory, non-recursively.
const sourcePattern = "*.md"

// ParseDocument builds a Document from the raw text of source.
// A nil conv uses the default goldmark converter.
func ParseDocument(ctx context.Context, source, raw string, conv pipeline.HTMLConverter) (*Document, error) {
	fields, body, err := frontmatter.Extract(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFrontMatter, source, err)
	}

	if conv == nil {
		conv = pipeline.NewGoldmarkConverter()
	}
	html, err := pipeline.NewMarkdown(conv).ToHTML(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", source, err)
	}

	return &Document{
		source:      source,
		title:       fields.Title,
		author:      fields.Author,
		publishedAt: fields.Datetime,
		tags:        fields.Tags,
		categories:  fields.Categories,
		html:        html,
	}, nil
}

// ListSources returns the *.md files directly inside dir, in lexical order.
// A missing directory yields no sources.
func ListSources(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, sourcePattern))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrListSources, dir, err)
	}

	files := paths[:0]
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrListSources, err)
		}
		if !info.IsDir() {
			files = append(files, p)
		}
	}
	return files, nil
}

// LoadDocuments parses every *.md file in dir. The first failure aborts the
// load; no partial result is returned.
func LoadDocuments(ctx context.Context, dir string, conv pipeline.HTMLConverter) ([]*Document, error) {
	paths, err := ListSources(dir)
	if err != nil {
		return nil, err
	}

	if conv == nil {
		conv = pipeline.NewGoldmarkConverter()
	}

	docs := make([]*Document, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := os.ReadFile(path) // #nosec G304 -- path comes from globbing the source directory
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadSource, err)
		}

		doc, err := ParseDocument(ctx, path, string(raw), conv)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
