// Package frontmatter splits a raw document into its YAML metadata block and
// Markdown body, and projects the metadata onto the fixed set of document
// fields.
//
// Splitting is deliberately literal: the text is cut on the "---" delimiter
// into at most three segments. Segment 1 is the metadata, segment 2 the body.
package frontmatter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-md2site/internal/yamlutil"
)

// Delimiter separates the metadata block from the body.
const Delimiter = "---"

// maxSegments bounds the split: leading text, metadata, body.
const maxSegments = 3

// ErrParse indicates a present metadata block is not valid YAML mapping data.
var ErrParse = errors.New("invalid front-matter")

// Kind tags the shape of a metadata value.
type Kind int

const (
	KindOther Kind = iota
	KindString
	KindList
)

// Value is a metadata value reduced to the shapes the projection consumes.
// Str is set for KindString, List for KindList.
type Value struct {
	Kind Kind
	Str  string
	List []string
}

// Metadata maps front-matter keys to their tagged values.
type Metadata map[string]Value

// Fields holds the projected document fields. Slices are never nil.
type Fields struct {
	Title      string
	Author     string
	Datetime   string
	Tags       []string
	Categories []string
}

// Split cuts raw into metadata block and body.
// Text without any delimiter is all body. A single line break right after the
// closing delimiter belongs to the delimiter line, not the body.
func Split(raw string) (meta, body string) {
	if !strings.Contains(raw, Delimiter) {
		return "", raw
	}

	segments := strings.SplitN(raw, Delimiter, maxSegments)
	if len(segments) > 1 {
		meta = segments[1]
	}
	if len(segments) > 2 {
		body = trimLeadingLineBreak(segments[2])
	}
	return meta, body
}

func trimLeadingLineBreak(s string) string {
	if strings.HasPrefix(s, "\r\n") {
		return s[2:]
	}
	return strings.TrimPrefix(s, "\n")
}

// Parse decodes a metadata block. A blank block yields an empty Metadata.
func Parse(meta string) (Metadata, error) {
	if strings.TrimSpace(meta) == "" {
		return Metadata{}, nil
	}

	raw, err := yamlutil.UnmarshalMapping([]byte(meta))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	md := make(Metadata, len(raw))
	for key, v := range raw {
		md[key] = toValue(v)
	}
	return md, nil
}

func toValue(v any) Value {
	switch t := v.(type) {
	case string:
		return Value{Kind: KindString, Str: t}
	case []any:
		list := make([]string, len(t))
		for i, elem := range t {
			if s, ok := elem.(string); ok {
				list[i] = s
			}
		}
		return Value{Kind: KindList, List: list}
	default:
		return Value{Kind: KindOther}
	}
}

// String returns the value for key when it is a string, "" otherwise.
func (m Metadata) String(key string) string {
	if v, ok := m[key]; ok && v.Kind == KindString {
		return v.Str
	}
	return ""
}

// List returns a copy of the value for key when it is a sequence,
// an empty slice otherwise.
func (m Metadata) List(key string) []string {
	if v, ok := m[key]; ok && v.Kind == KindList {
		return append([]string{}, v.List...)
	}
	return []string{}
}

// Project maps metadata onto document fields. It never fails; unknown keys
// are dropped and unexpected shapes fall back to empty defaults.
func Project(m Metadata) Fields {
	return Fields{
		Title:      m.String("title"),
		Author:     m.String("author"),
		Datetime:   m.String("datetime"),
		Tags:       m.List("tags"),
		Categories: m.List("categories"),
	}
}

// Extract splits, parses and projects raw in one step, returning the fields
// and the Markdown body.
func Extract(raw string) (Fields, string, error) {
	meta, body := Split(raw)
	md, err := Parse(meta)
	if err != nil {
		return Fields{}, "", err
	}
	return Project(md), body, nil
}
