package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site [command] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build        Build the site (default)")
	fmt.Fprintln(w, "  check        Validate sources, templates and output without writing")
	fmt.Fprintln(w, "  completion   Generate shell completion script")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w, "  help         Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2site help <command>' for details on a specific command.")
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site [build] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render every *.md file of the source directory through the post")
	fmt.Fprintln(w, "template and write <output>/<title>.html.")
	fmt.Fprintln(w)
	printSiteFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0  success")
	fmt.Fprintln(w, "  1  general error")
	fmt.Fprintln(w, "  2  invalid flags or configuration")
	fmt.Fprintln(w, "  3  sources unreadable or output unwritable")
	fmt.Fprintln(w, "  4  bad front-matter, template error, or render failure")
}

// printCheckUsage prints usage for the check command.
func printCheckUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site check [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Load every document and compile every template without writing pages.")
	fmt.Fprintln(w)
	printSiteFlags(w)
	fmt.Fprintln(w, "      --json                Print results as JSON")
}

// printSiteFlags prints the flags shared by build and check.
func printSiteFlags(w io.Writer) {
	fmt.Fprintln(w, "Layout:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (default: config/config.toml if present)")
	fmt.Fprintln(w, "  -s, --source <dir>        Markdown source directory (default: markdown_files)")
	fmt.Fprintln(w, "  -t, --templates <dir>     Template directory (default: templates)")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory, must exist (default: output)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel render workers (0 = auto)")
	fmt.Fprintln(w, "      --on-render-error <s> Render failure policy: skip, fail")
	fmt.Fprintln(w, "      --slugify             Name output files after a slug of the title")
	fmt.Fprintln(w, "      --highlight           Syntax highlight fenced code blocks")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show every page written")
	fmt.Fprintln(w, "      --version             Show version information")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "check":
		printCheckUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: md2site version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: md2site help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
