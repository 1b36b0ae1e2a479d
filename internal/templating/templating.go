// Package templating compiles a directory of page templates and renders them
// by name.
//
// Templates use the Django/Jinja syntax of pongo2 ({{ title }},
// {% for tag in tags %}). Every regular file under the template directory is
// compiled up front; one syntax error anywhere fails the whole set. Names are
// slash-separated paths relative to the directory, so "post.html" or
// "partials/head.html".
//
// An output tag reading a variable that is not defined fails when it
// executes. Conditions and the default filter still see such a variable as
// empty, so {% if summary %}{{ summary }}{% endif %} renders nothing.
package templating

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/alnah/go-md2site/internal/fileutil"
)

// DefaultDir is used when no custom template directory is configured or the
// configured one does not exist.
const DefaultDir = "templates"

// Sentinel errors for template operations.
var (
	// ErrCompile indicates the template directory could not be compiled.
	ErrCompile = errors.New("template compilation failed")

	// ErrTemplateNotFound indicates no compiled template has the requested name.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrExecute indicates a template failed while rendering.
	ErrExecute = errors.New("template execution failed")

	// ErrUndefined indicates an output tag read a variable that is not defined.
	ErrUndefined = errors.New("undefined variable")

	// ErrInvalidName indicates a template name that escapes the directory.
	ErrInvalidName = errors.New("invalid template name")
)

// Context is the set of values exposed to a template.
type Context = map[string]any

// Safe marks s as trusted HTML so it is not autoescaped.
func Safe(s string) any {
	return pongo2.AsSafeValue(s)
}

// ResolveDir returns custom when it is set and exists on disk, fallback
// otherwise.
func ResolveDir(custom, fallback string) string {
	if custom != "" && fileutil.DirExists(custom) {
		return custom
	}
	return fallback
}

// Set is a compiled template directory. Safe for concurrent rendering.
type Set struct {
	dir       string
	sources   map[string]string
	scopes    map[string]*scope
	templates map[string]*pongo2.Template

	mu     sync.Mutex
	strict map[string]*pongo2.Template
}

// Compile walks dir recursively and compiles every regular file. A missing
// dir compiles to an empty set, so rendering reports ErrTemplateNotFound.
func Compile(dir string) (*Set, error) {
	s := &Set{
		dir:       dir,
		sources:   make(map[string]string),
		scopes:    make(map[string]*scope),
		templates: make(map[string]*pongo2.Template),
		strict:    make(map[string]*pongo2.Template),
	}

	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompile, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrCompile, dir)
	}

	walkErr := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p) // #nosec G304 -- walking the configured template dir
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		s.sources[name] = string(data)
		s.scopes[name] = analyze(string(data))
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompile, walkErr)
	}

	tplSet := pongo2.NewSet(filepath.Base(dir), &memoryLoader{sources: s.sources})
	for _, name := range s.Names() {
		tpl, err := tplSet.FromFile(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCompile, name, err)
		}
		s.templates[name] = tpl
	}

	return s, nil
}

// Dir returns the directory the set was compiled from.
func (s *Set) Dir() string {
	return s.dir
}

// Names lists template names in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.sources))
	for name := range s.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a template named name was compiled.
func (s *Set) Has(name string) bool {
	_, ok := s.templates[name]
	return ok
}

// Render executes the template called name with ctx.
func (s *Set) Render(name string, ctx Context) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	tpl, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}

	if overrides := s.undefinedOutputs(name, ctx); len(overrides) > 0 {
		strictTpl, err := s.strictTemplate(name, overrides)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrExecute, name, err)
		}
		tpl = strictTpl
	}

	out, err := tpl.Execute(pongo2.Context(ctx))
	if err != nil {
		var perr *pongo2.Error
		if errors.As(err, &perr) && errors.Is(perr.OrigError, ErrUndefined) {
			return "", fmt.Errorf("%w: %s: %w", ErrExecute, name, perr.OrigError)
		}
		return "", fmt.Errorf("%w: %s: %v", ErrExecute, name, err)
	}
	return out, nil
}

// undefinedOutputs returns rewritten sources for the template called entry
// and the templates it includes or extends, for every one holding an output
// tag that reads a name neither ctx nor the templates define.
func (s *Set) undefinedOutputs(entry string, ctx Context) map[string]string {
	overrides := make(map[string]string)
	visited := make(map[string]bool)

	var walk func(name string, inherited map[string]bool)
	walk = func(name string, inherited map[string]bool) {
		sc, ok := s.scopes[name]
		if !ok || visited[name] {
			return
		}
		visited[name] = true

		defined := func(v string) bool {
			if _, ok := ctx[v]; ok {
				return true
			}
			return builtins[v] || sc.locals[v] || inherited[v]
		}
		if src, changed := sc.rewrite(s.sources[name], defined); changed {
			overrides[name] = src
		}

		for _, dep := range sc.deps {
			inner := make(map[string]bool, len(inherited)+len(sc.locals)+len(dep.binds))
			for k := range inherited {
				inner[k] = true
			}
			for k := range sc.locals {
				inner[k] = true
			}
			for _, b := range dep.binds {
				inner[b] = true
			}
			walk(dep.name, inner)
		}
	}
	walk(entry, nil)

	return overrides
}

// strictTemplate compiles entry against the rewritten sources, once per
// distinct set of rewrites.
func (s *Set) strictTemplate(entry string, overrides map[string]string) (*pongo2.Template, error) {
	key := overrideKey(entry, overrides)

	s.mu.Lock()
	defer s.mu.Unlock()

	if tpl, ok := s.strict[key]; ok {
		return tpl, nil
	}
	set := pongo2.NewSet(filepath.Base(s.dir)+"-strict", &memoryLoader{sources: s.sources, overrides: overrides})
	tpl, err := set.FromFile(entry)
	if err != nil {
		return nil, err
	}
	s.strict[key] = tpl
	return tpl, nil
}

// ValidateName rejects empty names, absolute paths and parent traversal.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	return nil
}
