package pipeline

import (
	"context"
	"regexp"
)

var crlfOrCR = regexp.MustCompile(`\r\n?`)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// CommonMarkPreprocessor prepares Markdown for conversion. It only normalizes
// line endings; any further rewrite would change the converter's output.
type CommonMarkPreprocessor struct{}

// PreprocessMarkdown converts \r\n and \r to \n.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// Markdown runs preprocessing then conversion.
type Markdown struct {
	Preprocessor MarkdownPreprocessor
	Converter    HTMLConverter
}

// NewMarkdown pairs the CommonMark preprocessor with conv.
func NewMarkdown(conv HTMLConverter) *Markdown {
	return &Markdown{Preprocessor: &CommonMarkPreprocessor{}, Converter: conv}
}

// ToHTML implements HTMLConverter.
func (m *Markdown) ToHTML(ctx context.Context, content string) (string, error) {
	if m.Preprocessor != nil {
		content = m.Preprocessor.PreprocessMarkdown(ctx, content)
	}
	return m.Converter.ToHTML(ctx, content)
}
