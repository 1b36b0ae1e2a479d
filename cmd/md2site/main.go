package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/hints"
	"github.com/alnah/go-md2site/internal/pipeline"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	verbose := hasFlag(os.Args[1:], "-v", "--verbose")

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], DefaultEnv())
	stop()
	os.Exit(code)
}

// run dispatches a command and returns the process exit code.
// Without a command name the site is built, so "md2site -o public" works.
func run(ctx context.Context, args []string, env *Environment) int {
	cmd, rest := "build", args
	if len(args) > 0 && isCommand(args[0]) {
		cmd, rest = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "build":
		err = runBuild(ctx, rest, env)
		if errors.Is(err, flag.ErrHelp) {
			printBuildUsage(env.Stdout)
			return ExitSuccess
		}
	case "check":
		if hasFlag(rest, "-h", "--help") {
			printCheckUsage(env.Stdout)
			return ExitSuccess
		}
		return runCheckCmd(ctx, rest, env)
	case "completion":
		err = runCompletion(rest, env)
	case "version":
		printVersion(env.Stdout)
	case "help":
		return runHelp(rest, env)
	}

	if err != nil {
		printError(env.Stderr, err)
		if errors.Is(err, ErrUsage) {
			fmt.Fprintln(env.Stderr, "Run 'md2site help' for usage.")
		}
	}
	return exitCodeFor(err)
}

// isCommand reports whether arg names a subcommand rather than a flag.
func isCommand(arg string) bool {
	switch arg {
	case "build", "check", "completion", "version", "help":
		return true
	}
	return false
}

// hasFlag reports whether any of names appears in args before "--".
func hasFlag(args []string, names ...string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		for _, n := range names {
			if a == n {
				return true
			}
		}
	}
	return false
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "go-md2site %s\n", Version)
}

// printError writes one diagnostic line plus an actionable hint when one
// applies.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v%s\n", err, hintFor(err))
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.DefaultConfigPath)
	case errors.Is(err, md2site.ErrWriteOutput):
		return hints.ForOutputDirectory("")
	case errors.Is(err, md2site.ErrTemplateCompile):
		return hints.ForTemplates("the template directory")
	case errors.Is(err, md2site.ErrRender):
		return hints.ForRenderFailure()
	case errors.Is(err, md2site.ErrFrontMatter):
		return hints.ForFrontMatter()
	case errors.Is(err, pipeline.ErrUnknownExtension):
		return hints.ForUnknownExtension(pipeline.KnownExtensions())
	}
	return ""
}
