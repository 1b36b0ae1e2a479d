package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name  string
	Desc  string
	Flags []flagDef
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"on-render-error": {Values: []string{"skip", "fail"}},
	"config":          {FileGlob: "*.yaml,*.yml,*.toml"},
	"source":          {IsDir: true},
	"templates":       {IsDir: true},
	"output":          {IsDir: true},
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSets.
func getCommands() []commandDef {
	buildFS := newBuildFlagSet("build", &buildFlags{})
	checkFS := newBuildFlagSet("check", &buildFlags{})
	checkFS.Bool("json", false, "print results as JSON")

	return []commandDef{
		{Name: "build", Desc: "Build the site", Flags: extractFlagsFromFlagSet(buildFS)},
		{Name: "check", Desc: "Validate the site layout", Flags: extractFlagsFromFlagSet(checkFS)},
		{Name: "completion", Desc: "Generate shell completion script"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
}

// flagWords lists "--long" and "-s" spellings of every flag.
func flagWords(flags []flagDef) string {
	words := make([]string, 0, len(flags)*2)
	for _, f := range flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return strings.Join(words, " ")
}

func commandNames(cmds []commandDef) string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return strings.Join(names, " ")
}

func generateBash(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# bash completion for md2site\n")
	b.WriteString("_md2site() {\n")
	b.WriteString("  local cur prev cmd\n")
	b.WriteString("  cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("  prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("  cmd=build\n")
	b.WriteString("  case \"${COMP_WORDS[1]}\" in\n")
	fmt.Fprintf(&b, "    %s) cmd=\"${COMP_WORDS[1]}\" ;;\n", strings.ReplaceAll(commandNames(cmds), " ", "|"))
	b.WriteString("  esac\n")

	b.WriteString("  case \"$prev\" in\n")
	for _, f := range cmds[0].Flags {
		pattern := "--" + f.Long
		if f.Short != "" {
			pattern += "|-" + f.Short
		}
		switch f.Type {
		case flagEnum:
			fmt.Fprintf(&b, "    %s) COMPREPLY=($(compgen -W %q -- \"$cur\")); return ;;\n", pattern, strings.Join(f.Values, " "))
		case flagDir:
			fmt.Fprintf(&b, "    %s) COMPREPLY=($(compgen -d -- \"$cur\")); return ;;\n", pattern)
		case flagFile:
			fmt.Fprintf(&b, "    %s) COMPREPLY=($(compgen -f -- \"$cur\")); return ;;\n", pattern)
		}
	}
	b.WriteString("  esac\n")

	b.WriteString("  case \"$cmd\" in\n")
	for _, c := range cmds {
		words := flagWords(c.Flags)
		switch c.Name {
		case "completion":
			words = "bash zsh fish"
		case "help":
			words = commandNames(cmds)
		}
		fmt.Fprintf(&b, "    %s) COMPREPLY=($(compgen -W %q -- \"$cur\")) ;;\n", c.Name, words)
	}
	b.WriteString("  esac\n")
	b.WriteString("  if [[ $COMP_CWORD -eq 1 && \"$cur\" != -* ]]; then\n")
	fmt.Fprintf(&b, "    COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", commandNames(cmds))
	b.WriteString("  fi\n")
	b.WriteString("}\n")
	b.WriteString("complete -F _md2site md2site\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func generateZsh(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("#compdef md2site\n\n")
	b.WriteString("_md2site() {\n")
	b.WriteString("  local -a commands\n")
	b.WriteString("  commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "    '%s:%s'\n", c.Name, c.Desc)
	}
	b.WriteString("  )\n")
	b.WriteString("  _arguments \\\n")
	for _, f := range cmds[0].Flags {
		fmt.Fprintf(&b, "    '--%s[%s]%s' \\\n", f.Long, zshEscape(f.Desc), zshAction(f))
	}
	b.WriteString("    '1: :{_describe command commands}'\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _md2site md2site\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func zshAction(f flagDef) string {
	switch f.Type {
	case flagEnum:
		return ":value:(" + strings.Join(f.Values, " ") + ")"
	case flagDir:
		return ":directory:_files -/"
	case flagFile:
		return ":file:_files"
	case flagString, flagInt:
		return ":value:"
	default:
		return ""
	}
}

func zshEscape(s string) string {
	r := strings.NewReplacer("'", "'\\''", "[", "\\[", "]", "\\]", ":", "\\:")
	return r.Replace(s)
}

func generateFish(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# fish completion for md2site\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c md2site -n '__fish_use_subcommand' -a %s -d '%s'\n", c.Name, c.Desc)
	}
	for _, f := range cmds[0].Flags {
		line := "complete -c md2site -l " + f.Long
		if f.Short != "" {
			line += " -s " + f.Short
		}
		switch f.Type {
		case flagEnum:
			line += " -x -a '" + strings.Join(f.Values, " ") + "'"
		case flagDir:
			line += " -x -a '(__fish_complete_directories)'"
		case flagFile:
			line += " -r -F"
		case flagString, flagInt:
			line += " -r"
		}
		line += " -d '" + strings.ReplaceAll(f.Desc, "'", "\\'") + "'"
		b.WriteString(line + "\n")
	}
	b.WriteString("complete -c md2site -n '__fish_seen_subcommand_from check' -l json -d 'print results as JSON'\n")
	b.WriteString("complete -c md2site -n '__fish_seen_subcommand_from completion' -x -a 'bash zsh fish'\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}

	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(md2site completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(md2site completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    md2site completion fish > ~/.config/fish/completions/md2site.fish")
}
