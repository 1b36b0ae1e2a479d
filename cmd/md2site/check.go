package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/pipeline"
	"github.com/alnah/go-md2site/internal/templating"
)

// Check statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// checkResult holds all diagnostic information about a site layout.
type checkResult struct {
	Status    string        `json:"status"` // "ready", "warnings", "errors"
	Sources   sourcesInfo   `json:"sources"`
	Templates templatesInfo `json:"templates"`
	Output    outputInfo    `json:"output"`
	System    systemInfo    `json:"system"`
	Warnings  []string      `json:"warnings,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
}

// sourcesInfo holds source directory results.
type sourcesInfo struct {
	Dir       string `json:"dir"`
	Found     bool   `json:"found"`
	Documents int    `json:"documents"`
	Untitled  int    `json:"untitled"`
}

// templatesInfo holds template compilation results.
type templatesInfo struct {
	Dir      string   `json:"dir"`
	Compiled []string `json:"compiled,omitempty"`
	Entry    string   `json:"entry"`
	HasEntry bool     `json:"has_entry"`
}

// outputInfo holds output directory results.
type outputInfo struct {
	Dir      string `json:"dir"`
	Writable bool   `json:"writable"`
}

// systemInfo holds platform details.
type systemInfo struct {
	OS      string `json:"os"`
	Arch    string `json:"arch"`
	Workers int    `json:"workers"`
}

// runCheckCmd executes the check command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags
// or config.
func runCheckCmd(ctx context.Context, args []string, env *Environment) int {
	flags, err := parseCheckFlags(args)
	if err != nil {
		printError(env.Stderr, err)
		return exitCodeFor(err)
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		printError(env.Stderr, err)
		return exitCodeFor(err)
	}

	result := runCheck(ctx, cfg)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printCheckResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runCheck performs all diagnostic checks without writing any page.
func runCheck(ctx context.Context, cfg *config.Config) *checkResult {
	workers := cfg.Build.Workers
	if workers == config.AutoWorkers {
		workers = 0
	}

	result := &checkResult{
		Status: statusReady,
		System: systemInfo{
			OS:      runtime.GOOS,
			Arch:    runtime.GOARCH,
			Workers: md2site.ResolveWorkers(workers),
		},
	}

	checkSources(ctx, cfg, result)
	checkTemplates(cfg, result)
	checkOutput(cfg, result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}

	return result
}

// checkSources loads every document, which validates front-matter.
func checkSources(ctx context.Context, cfg *config.Config, result *checkResult) {
	result.Sources.Dir = cfg.Source.Dir

	info, err := os.Stat(cfg.Source.Dir)
	if err != nil || !info.IsDir() {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Source directory not found: %s", cfg.Source.Dir))
		return
	}
	result.Sources.Found = true

	conv, err := pipeline.NewGoldmarkConverterWithOptions(cfg.MarkdownOptions())
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}

	docs, err := md2site.LoadDocuments(ctx, cfg.Source.Dir, conv)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}

	result.Sources.Documents = len(docs)
	for _, d := range docs {
		if d.Title() == "" {
			result.Sources.Untitled++
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s has no title and will not be written", d.Source()))
		}
	}
	if len(docs) == 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("No *.md files in %s", cfg.Source.Dir))
	}
}

// checkTemplates compiles the template directory and looks for the entry
// template.
func checkTemplates(cfg *config.Config, result *checkResult) {
	dir := cfg.TemplateDir()
	result.Templates.Dir = dir
	result.Templates.Entry = cfg.Templates.Name

	if cfg.Templates.Path != "" && dir != cfg.Templates.Path {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Template directory %s not found, using %s", cfg.Templates.Path, dir))
	}

	set, err := templating.Compile(dir)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}

	result.Templates.Compiled = set.Names()
	result.Templates.HasEntry = set.Has(cfg.Templates.Name)
	if !result.Templates.HasEntry {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Template %s not found in %s", cfg.Templates.Name, dir))
	}
}

// checkOutput verifies the output directory exists and accepts files.
func checkOutput(cfg *config.Config, result *checkResult) {
	result.Output.Dir = cfg.Output.Dir

	testFile := filepath.Join(cfg.Output.Dir, ".md2site-check")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Output directory not writable: %s", cfg.Output.Dir))
		return
	}
	_ = os.Remove(testFile)
	result.Output.Writable = true
}

// printCheckResult outputs human-readable diagnostic results.
func printCheckResult(w io.Writer, r *checkResult) {
	fmt.Fprintln(w, "md2site check")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Sources")
	if r.Sources.Found {
		fmt.Fprintf(w, "  [OK] Directory: %s\n", r.Sources.Dir)
		fmt.Fprintf(w, "  [OK] Documents: %d\n", r.Sources.Documents)
	} else {
		fmt.Fprintf(w, "  [ERROR] Directory: %s\n", r.Sources.Dir)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Templates")
	if len(r.Templates.Compiled) > 0 || r.Templates.HasEntry {
		fmt.Fprintf(w, "  [OK] Directory: %s (%d compiled)\n", r.Templates.Dir, len(r.Templates.Compiled))
	} else {
		fmt.Fprintf(w, "  [ERROR] Directory: %s\n", r.Templates.Dir)
	}
	if r.Templates.HasEntry {
		fmt.Fprintf(w, "  [OK] Entry: %s\n", r.Templates.Entry)
	} else {
		fmt.Fprintf(w, "  [ERROR] Entry: %s\n", r.Templates.Entry)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Output")
	if r.Output.Writable {
		fmt.Fprintf(w, "  [OK] Directory: %s (writable)\n", r.Output.Dir)
	} else {
		fmt.Fprintf(w, "  [ERROR] Directory: %s (not writable)\n", r.Output.Dir)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.System.OS, r.System.Arch)
	fmt.Fprintf(w, "  [OK] Workers: %d\n", r.System.Workers)
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to build")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
