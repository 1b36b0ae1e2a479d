package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// layoutFlags holds the site directory overrides.
type layoutFlags struct {
	source    string
	templates string
	output    string
}

// renderFlags holds rendering and execution flags.
type renderFlags struct {
	workers       int
	onRenderError string
	slugify       bool
	highlight     bool
}

// buildFlags holds all flags for the build command.
type buildFlags struct {
	common  commonFlags
	layout  layoutFlags
	render  renderFlags
	version bool
	json    bool // check only

	// changed reports whether a flag was given on the command line.
	changed func(name string) bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show every page written")
}

// addLayoutFlags adds directory flags to a FlagSet.
func addLayoutFlags(fs *flag.FlagSet, f *layoutFlags) {
	fs.StringVarP(&f.source, "source", "s", "", "markdown source directory")
	fs.StringVarP(&f.templates, "templates", "t", "", "template directory")
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
}

// addRenderFlags adds rendering flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.IntVarP(&f.workers, "workers", "w", 1, "parallel render workers (0 = auto)")
	fs.StringVar(&f.onRenderError, "on-render-error", "", "render failure policy: skip, fail")
	fs.BoolVar(&f.slugify, "slugify", false, "name output files after a slug of the title")
	fs.BoolVar(&f.highlight, "highlight", false, "syntax highlight fenced code blocks")
}

// newBuildFlagSet registers every build flag on a fresh FlagSet.
// Shared by parsing and completion so both see the same flags.
func newBuildFlagSet(name string, f *buildFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	addCommonFlags(fs, &f.common)
	addLayoutFlags(fs, &f.layout)
	addRenderFlags(fs, &f.render)
	fs.BoolVar(&f.version, "version", false, "show version information")

	return fs
}

// parseBuildFlags parses build command flags and returns positional args.
func parseBuildFlags(args []string) (*buildFlags, []string, error) {
	f := &buildFlags{}
	fs := newBuildFlagSet("build", f)

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}

	f.changed = fs.Changed
	return f, fs.Args(), nil
}

// parseCheckFlags parses check command flags: the build flags plus --json.
func parseCheckFlags(args []string) (*buildFlags, error) {
	f := &buildFlags{}
	fs := newBuildFlagSet("check", f)
	fs.BoolVar(&f.json, "json", false, "print results as JSON")

	if err := fs.Parse(args); err != nil {
		return nil, usageError(err)
	}
	if fs.NArg() > 0 {
		return nil, usageError(errUnexpectedArgs(fs.Args()))
	}

	f.changed = fs.Changed
	return f, nil
}
