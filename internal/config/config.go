package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/chroma/v2/styles"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/pipeline"
	"github.com/alnah/go-md2site/internal/templating"
	"github.com/alnah/go-md2site/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidConfig   = errors.New("invalid config")
)

// Render error policies.
const (
	PolicySkip = "skip"
	PolicyFail = "fail"
)

// Defaults mirror the directory layout the generator has always used.
const (
	DefaultConfigPath   = "config/config.toml"
	DefaultSourceDir    = "markdown_files"
	DefaultOutputDir    = "output"
	DefaultTemplateName = "post.html"
	DefaultWorkers      = 1
	AutoWorkers         = -1
	MaxWorkers          = 64
	MaxPathLength       = 4096
)

// Config holds all configuration for a site build.
type Config struct {
	Source    SourceConfig    `yaml:"source" toml:"source"`
	Templates TemplatesConfig `yaml:"templates" toml:"templates"`
	Output    OutputConfig    `yaml:"output" toml:"output"`
	Markdown  MarkdownConfig  `yaml:"markdown" toml:"markdown"`
	Build     BuildConfig     `yaml:"build" toml:"build"`
}

// SourceConfig defines where Markdown files are read from.
type SourceConfig struct {
	Dir string `yaml:"dir" toml:"dir"`
}

// TemplatesConfig defines the template directory override and entry template.
type TemplatesConfig struct {
	Path string `yaml:"path" toml:"path"` // Empty or missing on disk = templating.DefaultDir
	Name string `yaml:"name" toml:"name"` // Template rendered per document
}

// OutputConfig defines the output directory and file naming.
type OutputConfig struct {
	Dir     string `yaml:"dir" toml:"dir"`
	Slugify bool   `yaml:"slugify" toml:"slugify"`
}

// MarkdownConfig defines goldmark options.
type MarkdownConfig struct {
	Extensions     []string `yaml:"extensions" toml:"extensions"`
	Safe           bool     `yaml:"safe" toml:"safe"`
	Highlight      bool     `yaml:"highlight" toml:"highlight"`
	HighlightStyle string   `yaml:"highlightStyle" toml:"highlightStyle"`
}

// BuildConfig defines execution options.
type BuildConfig struct {
	Workers       int    `yaml:"workers" toml:"workers"`             // AutoWorkers = one per CPU
	OnRenderError string `yaml:"onRenderError" toml:"onRenderError"` // "skip" or "fail"
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Source:    SourceConfig{Dir: DefaultSourceDir},
		Templates: TemplatesConfig{Path: "", Name: DefaultTemplateName},
		Output:    OutputConfig{Dir: DefaultOutputDir},
		Markdown: MarkdownConfig{
			Extensions:     pipeline.DefaultExtensions(),
			HighlightStyle: pipeline.DefaultHighlightStyle,
		},
		Build: BuildConfig{Workers: DefaultWorkers, OnRenderError: PolicySkip},
	}
}

// applyDefaults fills fields a partial file left empty.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Source.Dir == "" {
		c.Source.Dir = def.Source.Dir
	}
	if c.Templates.Name == "" {
		c.Templates.Name = def.Templates.Name
	}
	if c.Output.Dir == "" {
		c.Output.Dir = def.Output.Dir
	}
	if c.Markdown.HighlightStyle == "" {
		c.Markdown.HighlightStyle = def.Markdown.HighlightStyle
	}
	if c.Build.Workers == 0 {
		c.Build.Workers = def.Build.Workers
	}
	if c.Build.OnRenderError == "" {
		c.Build.OnRenderError = def.Build.OnRenderError
	}
}

// TemplateDir resolves the configured template path, falling back to
// templating.DefaultDir when unset or absent on disk.
func (c *Config) TemplateDir() string {
	return templating.ResolveDir(c.Templates.Path, templating.DefaultDir)
}

// MarkdownOptions converts the markdown section into pipeline options.
func (c *Config) MarkdownOptions() pipeline.MarkdownOptions {
	return pipeline.MarkdownOptions{
		Extensions:     c.Markdown.Extensions,
		Safe:           c.Markdown.Safe,
		Highlight:      c.Markdown.Highlight,
		HighlightStyle: c.Markdown.HighlightStyle,
	}
}

// Validate checks value ranges and enumerations.
// Called automatically by LoadConfig, but available for callers that build a
// Config by hand or merge flags into one.
func (c *Config) Validate() error {
	sections := []struct {
		name string
		err  error
	}{
		{"source", validation.ValidateStruct(&c.Source,
			validation.Field(&c.Source.Dir, validation.Length(0, MaxPathLength)),
		)},
		{"templates", validation.ValidateStruct(&c.Templates,
			validation.Field(&c.Templates.Path, validation.Length(0, MaxPathLength)),
			validation.Field(&c.Templates.Name, validation.By(optional(templating.ValidateName))),
		)},
		{"output", validation.ValidateStruct(&c.Output,
			validation.Field(&c.Output.Dir, validation.Length(0, MaxPathLength)),
		)},
		{"markdown", validation.ValidateStruct(&c.Markdown,
			validation.Field(&c.Markdown.Extensions, validation.Each(validation.In(toAny(pipeline.KnownExtensions())...))),
			validation.Field(&c.Markdown.HighlightStyle, validation.By(optional(validateStyle))),
		)},
		{"build", validation.ValidateStruct(&c.Build,
			validation.Field(&c.Build.Workers, validation.Min(AutoWorkers), validation.Max(MaxWorkers)),
			validation.Field(&c.Build.OnRenderError, validation.In(PolicySkip, PolicyFail)),
		)},
	}

	for _, s := range sections {
		if s.err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, s.name, s.err)
		}
	}
	return nil
}

// optional adapts a string check to ozzo's rule signature, skipping "".
func optional(check func(string) error) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		return check(s)
	}
}

func validateStyle(name string) error {
	if _, ok := styles.Registry[strings.ToLower(name)]; !ok {
		return fmt.Errorf("unknown highlight style %q", name)
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) || (filepath.Ext(nameOrPath) != "" && fileutil.FileExists(nameOrPath)) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := decode(configPath, data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// decode picks the format from the file extension. Unknown keys are errors
// in both formats.
func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
		return nil
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return yamlutil.UnmarshalStrict(data, cfg)
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml, .toml
// Tries locations in order: current directory, ~/.config/go-md2site/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml", ".toml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-md2site", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
