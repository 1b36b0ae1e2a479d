package templating

import (
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/flosch/pongo2/v6"
)

// undefinedFilter replaces an output tag whose variable is not defined.
// It always fails, so the error only surfaces when the tag executes.
const undefinedFilter = "md2site_undefined"

func init() {
	if !pongo2.FilterExists(undefinedFilter) {
		_ = pongo2.RegisterFilter(undefinedFilter, filterUndefined)
	}
}

func filterUndefined(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return nil, &pongo2.Error{
		Sender:    "filter:" + undefinedFilter,
		OrigError: fmt.Errorf("%w: %q", ErrUndefined, in.String()),
	}
}

// builtins are names pongo2 itself provides to templates.
var builtins = map[string]bool{"forloop": true, "pongo2": true}

var keywords = map[string]bool{
	"in": true, "and": true, "or": true, "not": true,
	"true": true, "false": true, "True": true, "False": true,
	"nil": true, "None": true,
}

// guardFilters accept an undefined input.
var guardFilters = map[string]bool{"default": true, "default_if_none": true}

// rawBlocks hold text that is never parsed as template code.
var rawBlocks = map[string]*regexp.Regexp{
	"comment":  regexp.MustCompile(`\{%-?\s*endcomment\s*-?%\}`),
	"verbatim": regexp.MustCompile(`\{%-?\s*endverbatim\s*-?%\}`),
}

// outputTag is one "{{ ... }}" and the variables it must find defined.
type outputTag struct {
	start, end int
	roots      []string
}

// dependency is a template pulled in by include or extends, with the names
// passed through "with a=b".
type dependency struct {
	name  string
	binds []string
}

// scope is what a template reads and binds. Bindings (loop variables, with,
// set, macro and import names) count for the whole template.
type scope struct {
	outputs []outputTag
	locals  map[string]bool
	deps    []dependency
}

// analyze scans template source for output tags, bindings and
// dependencies. It never fails; pongo2 reports syntax errors.
func analyze(src string) *scope {
	s := &scope{locals: make(map[string]bool)}

	for i := 0; i < len(src); {
		j := strings.IndexByte(src[i:], '{')
		if j < 0 || i+j+1 >= len(src) {
			break
		}
		pos := i + j

		switch src[pos+1] {
		case '{':
			end := findClose(src, pos+2, "}}")
			if end < 0 {
				return s
			}
			if roots := outputRoots(tokenize(trimMarkers(src[pos+2 : end]))); len(roots) > 0 {
				s.outputs = append(s.outputs, outputTag{start: pos, end: end + 2, roots: roots})
			}
			i = end + 2

		case '%':
			end := findClose(src, pos+2, "%}")
			if end < 0 {
				return s
			}
			toks := tokenize(trimMarkers(src[pos+2 : end]))
			i = end + 2
			if len(toks) == 0 || toks[0].kind != tokIdent {
				continue
			}
			if re, ok := rawBlocks[toks[0].val]; ok {
				loc := re.FindStringIndex(src[i:])
				if loc == nil {
					return s
				}
				i += loc[1]
				continue
			}
			s.tag(toks[0].val, toks[1:])

		case '#':
			end := strings.Index(src[pos+2:], "#}")
			if end < 0 {
				return s
			}
			i = pos + 2 + end + 2

		default:
			i = pos + 1
		}
	}
	return s
}

func (s *scope) tag(name string, args []token) {
	switch name {
	case "for":
		for _, t := range args {
			if t.kind == tokIdent && t.val == "in" {
				break
			}
			if t.kind == tokIdent {
				s.locals[t.val] = true
			}
		}
	case "with", "set":
		if k := indexIdent(args, "as"); k >= 0 {
			s.bind(args[k+1:])
			return
		}
		for i := range args {
			if isKwarg(args, i) {
				s.locals[args[i].val] = true
			}
		}
	case "macro", "import":
		s.bind(args)
	case "cycle", "now":
		if k := indexIdent(args, "as"); k >= 0 && k+1 < len(args) && args[k+1].kind == tokIdent {
			s.locals[args[k+1].val] = true
		}
	case "include", "extends":
		if len(args) == 0 || args[0].kind != tokString {
			return
		}
		dep := dependency{name: path.Clean(args[0].val)}
		for i := range args {
			if isKwarg(args, i) {
				dep.binds = append(dep.binds, args[i].val)
			}
		}
		s.deps = append(s.deps, dep)
	}
}

func (s *scope) bind(toks []token) {
	for _, t := range toks {
		if t.kind == tokIdent && !keywords[t.val] && t.val != "as" && t.val != "export" {
			s.locals[t.val] = true
		}
	}
}

// rewrite replaces every output tag reading a variable that defined rejects.
func (s *scope) rewrite(src string, defined func(string) bool) (string, bool) {
	var b strings.Builder
	last, changed := 0, false

	for _, out := range s.outputs {
		for _, root := range out.roots {
			if defined(root) {
				continue
			}
			b.WriteString(src[last:out.start])
			fmt.Fprintf(&b, "{{ %q|%s }}", root, undefinedFilter)
			last, changed = out.end, true
			break
		}
	}
	if !changed {
		return src, false
	}
	b.WriteString(src[last:])
	return b.String(), true
}

// outputRoots returns the variables an output expression reads, leaving out
// attributes, filter names, keyword arguments and default-guarded values.
func outputRoots(toks []token) []string {
	var roots []string
	for i, t := range toks {
		if t.kind != tokIdent || keywords[t.val] || isKwarg(toks, i) {
			continue
		}
		if i > 0 && toks[i-1].kind == tokSymbol && (toks[i-1].val == "." || toks[i-1].val == "|") {
			continue
		}
		if guarded(toks, i) {
			continue
		}
		roots = append(roots, t.val)
	}
	return roots
}

// guarded reports whether the variable at i, after its attribute chain, is
// piped into a filter that accepts undefined input.
func guarded(toks []token, i int) bool {
	k := i + 1
	for k < len(toks) && toks[k].kind == tokSymbol {
		switch toks[k].val {
		case ".":
			k += 2
			continue
		case "[":
			depth := 0
			for ; k < len(toks); k++ {
				if toks[k].kind != tokSymbol {
					continue
				}
				if toks[k].val == "[" {
					depth++
				} else if toks[k].val == "]" {
					depth--
					if depth == 0 {
						break
					}
				}
			}
			k++
			continue
		case "|":
			return k+1 < len(toks) && guardFilters[toks[k+1].val]
		}
		break
	}
	return false
}

func isKwarg(toks []token, i int) bool {
	if toks[i].kind != tokIdent || i+1 >= len(toks) {
		return false
	}
	if toks[i+1].kind != tokSymbol || toks[i+1].val != "=" {
		return false
	}
	return i+2 >= len(toks) || toks[i+2].kind != tokSymbol || toks[i+2].val != "="
}

func indexIdent(toks []token, word string) int {
	for i, t := range toks {
		if t.kind == tokIdent && t.val == word {
			return i
		}
	}
	return -1
}

func trimMarkers(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "-")
	return strings.TrimSuffix(s, "-")
}

// findClose returns the index of closing at or after from, skipping quoted
// strings, or -1.
func findClose(src string, from int, closing string) int {
	for j := from; j < len(src); j++ {
		switch c := src[j]; {
		case c == '"' || c == '\'':
			j = skipString(src, j) - 1
		case strings.HasPrefix(src[j:], closing):
			return j
		}
	}
	return -1
}

// skipString returns the index just past the string literal opening at i.
func skipString(src string, i int) int {
	quote := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(src)
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokNumber
	tokSymbol
)

type token struct {
	kind tokenKind
	val  string
}

func tokenize(src string) []token {
	var toks []token
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '"' || c == '\'':
			end := skipString(src, i)
			val := src[i+1 : end]
			if end > i+1 && src[end-1] == c {
				val = src[i+1 : end-1]
			}
			toks = append(toks, token{kind: tokString, val: val})
			i = end
		case isIdentByte(c) && !isDigit(c):
			j := i + 1
			for j < len(src) && isIdentByte(src[j]) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, val: src[i:j]})
			i = j
		case isDigit(c):
			j := i + 1
			for j < len(src) && (isDigit(src[j]) || src[j] == '.') {
				j++
			}
			toks = append(toks, token{kind: tokNumber, val: src[i:j]})
			i = j
		default:
			toks = append(toks, token{kind: tokSymbol, val: string(c)})
			i++
		}
	}
	return toks
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentByte(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

// memoryLoader serves template sources held in memory, with optional
// per-name overrides. Names are slash paths relative to the template
// directory, as with pongo2's local loader rooted there.
type memoryLoader struct {
	sources   map[string]string
	overrides map[string]string
}

func (l *memoryLoader) Abs(_, name string) string {
	return path.Clean(strings.ReplaceAll(name, "\\", "/"))
}

func (l *memoryLoader) Get(name string) (io.Reader, error) {
	if src, ok := l.overrides[name]; ok {
		return strings.NewReader(src), nil
	}
	if src, ok := l.sources[name]; ok {
		return strings.NewReader(src), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
}

// overrideKey identifies a set of rewritten sources for caching.
func overrideKey(entry string, overrides map[string]string) string {
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(entry)
	for _, name := range names {
		b.WriteString("\x00" + name + "\x00" + overrides[name])
	}
	return b.String()
}
