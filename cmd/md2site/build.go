package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/pipeline"
)

// runBuild loads configuration, applies flag overrides and builds the site.
func runBuild(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseBuildFlags(args)
	if err != nil {
		return err
	}
	if flags.version {
		printVersion(env.Stdout)
		return nil
	}
	if len(positional) > 0 {
		return usageError(errUnexpectedArgs(positional))
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	opts, err := generatorOptions(cfg, logger)
	if err != nil {
		return err
	}

	gen, err := md2site.NewGenerator(opts...)
	if err != nil {
		return err
	}

	start := env.Now()
	report, err := gen.Build(ctx)
	if err != nil {
		return err
	}

	printReport(env.Stdout, report, env.Now().Sub(start), flags.common.quiet, flags.common.verbose)
	return nil
}

// loadConfig resolves the configuration: --config when given, else
// config.DefaultConfigPath when it exists, else built-in defaults. Flag
// overrides are applied and the result validated.
func loadConfig(flags *buildFlags) (*config.Config, error) {
	var cfg *config.Config
	var err error

	switch {
	case flags.common.config != "":
		cfg, err = config.LoadConfig(flags.common.config)
	case fileutil.FileExists(config.DefaultConfigPath):
		cfg, err = config.LoadConfig(config.DefaultConfigPath)
	default:
		cfg = config.DefaultConfig()
	}
	if err != nil {
		return nil, err
	}

	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFlags applies CLI flags over config values. Flags take precedence.
func mergeFlags(flags *buildFlags, cfg *config.Config) {
	changed := flags.changed
	if changed == nil {
		changed = func(string) bool { return false }
	}

	if flags.layout.source != "" {
		cfg.Source.Dir = flags.layout.source
	}
	if flags.layout.templates != "" {
		cfg.Templates.Path = flags.layout.templates
	}
	if flags.layout.output != "" {
		cfg.Output.Dir = flags.layout.output
	}

	if changed("workers") {
		if flags.render.workers == 0 {
			cfg.Build.Workers = config.AutoWorkers
		} else {
			cfg.Build.Workers = flags.render.workers
		}
	}
	if flags.render.onRenderError != "" {
		cfg.Build.OnRenderError = flags.render.onRenderError
	}
	if flags.render.slugify {
		cfg.Output.Slugify = true
	}
	if flags.render.highlight {
		cfg.Markdown.Highlight = true
	}
}

// generatorOptions translates a validated config into generator options.
func generatorOptions(cfg *config.Config, logger *slog.Logger) ([]md2site.Option, error) {
	conv, err := pipeline.NewGoldmarkConverterWithOptions(cfg.MarkdownOptions())
	if err != nil {
		return nil, err
	}

	policy, err := md2site.ParseRenderErrorPolicy(cfg.Build.OnRenderError)
	if err != nil {
		return nil, err
	}

	workers := cfg.Build.Workers
	if workers == config.AutoWorkers {
		workers = 0
	}

	return []md2site.Option{
		md2site.WithSourceDir(cfg.Source.Dir),
		md2site.WithTemplateDir(cfg.Templates.Path),
		md2site.WithTemplateName(cfg.Templates.Name),
		md2site.WithOutputDir(cfg.Output.Dir),
		md2site.WithSlugify(cfg.Output.Slugify),
		md2site.WithConverter(conv),
		md2site.WithWorkers(workers),
		md2site.WithRenderErrorPolicy(policy),
		md2site.WithLogger(logger),
	}, nil
}

// newLogger builds the text logger written to stderr.
// -q keeps errors only, -v adds debug records.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// printReport writes the human summary of a build.
func printReport(w io.Writer, r *md2site.Report, elapsed time.Duration, quiet, verbose bool) {
	if quiet {
		return
	}

	if verbose {
		for _, path := range r.Written {
			fmt.Fprintf(w, "  wrote %s\n", path)
		}
		for _, src := range r.Untitled {
			fmt.Fprintf(w, "  skipped %s (no title)\n", src)
		}
	}
	for _, f := range r.Failures {
		fmt.Fprintf(w, "  failed %s: %v\n", f.Source, f.Err)
	}

	fmt.Fprintf(w, "Built %d page(s) from %d document(s) in %s",
		len(r.Written), r.Documents, elapsed.Round(time.Millisecond))
	if n := len(r.Failures); n > 0 {
		fmt.Fprintf(w, ", %d failed", n)
	}
	if n := len(r.Untitled); n > 0 {
		fmt.Fprintf(w, ", %d untitled", n)
	}
	fmt.Fprintln(w)
}
