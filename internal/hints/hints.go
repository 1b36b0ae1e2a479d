// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import "strings"

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and the conventional config/config.toml location.
func ForConfigNotFound(defaultPath string) string {
	hint := "use --config /path/to/site.yaml"
	if defaultPath != "" {
		hint += " or create " + defaultPath
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output write errors.
// The output directory is never created implicitly.
func ForOutputDirectory(dir string) string {
	if dir == "" {
		return format("check the output directory exists and is writable")
	}
	return format("create " + dir + " first or pass --output")
}

// ForTemplates returns hints for template compilation errors.
func ForTemplates(dir string) string {
	return formatHints([]string{
		"every file under " + dir + " is compiled",
		"use --templates to point elsewhere",
	})
}

// ForRenderFailure returns hints for render errors under the fail policy.
func ForRenderFailure() string {
	return format("use --on-render-error skip to build the remaining pages")
}

// ForFrontMatter returns hints for front-matter parse errors.
func ForFrontMatter() string {
	return format("front-matter is a YAML mapping between two --- lines")
}

// ForUnknownExtension returns hints listing valid markdown extensions.
func ForUnknownExtension(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
