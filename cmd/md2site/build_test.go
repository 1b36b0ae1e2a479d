package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-md2site/internal/config"
)

// testEnv returns an environment writing to buffers with a frozen clock.
func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &Environment{
		Now:    func() time.Time { return now },
		Stdout: &stdout,
		Stderr: &stderr,
	}, &stdout, &stderr
}

// setupSite creates a temp directory with the given file structure plus an
// empty output directory. Returns the root path.
func setupSite(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()

	for path, content := range files {
		fullPath := filepath.Join(root, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
			t.Fatalf("failed to create dir for %s: %v", path, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
	if err := os.MkdirAll(filepath.Join(root, "output"), 0o750); err != nil {
		t.Fatalf("failed to create output dir: %v", err)
	}
	return root
}

// siteArgs points -s/-t/-o at the layout under root.
func siteArgs(root string, extra ...string) []string {
	args := []string{
		"-s", filepath.Join(root, "markdown_files"),
		"-t", filepath.Join(root, "templates"),
		"-o", filepath.Join(root, "output"),
	}
	return append(args, extra...)
}

const helloSource = "---\ntitle: \"Hello\"\ntags:\n- intro\n---\n# Hi\nSome *text*.\n"

// ---------------------------------------------------------------------------
// TestRun_Build - End-to-end CLI builds
// ---------------------------------------------------------------------------

func TestRun_Build(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		files     map[string]string
		extra     []string
		wantCode  int
		wantFiles []string
		wantOut   string
		wantErr   string
	}{
		{
			name: "hello scenario",
			files: map[string]string{
				"markdown_files/a.md": helloSource,
				"templates/post.html": "{{title}}:{{content}}",
			},
			wantCode:  ExitSuccess,
			wantFiles: []string{"Hello.html"},
			wantOut:   "Built 1 page(s) from 1 document(s)",
		},
		{
			name: "front-matter error",
			files: map[string]string{
				"markdown_files/a.md": "---\ntitle: [unterminated\n---\n",
				"templates/post.html": "{{title}}",
			},
			wantCode: ExitContent,
			wantErr:  "hint:",
		},
		{
			name: "template compile error",
			files: map[string]string{
				"markdown_files/a.md": helloSource,
				"templates/post.html": "{% if title %}",
			},
			wantCode: ExitContent,
		},
		{
			name: "render failure skipped by default",
			files: map[string]string{
				"markdown_files/a.md": "---\ntitle: A\ndatetime: \"2024\"\n---\n",
				"templates/post.html": `{{ datetime|date:"2006" }}`,
			},
			wantCode: ExitSuccess,
			wantOut:  "1 failed",
		},
		{
			name: "render failure with fail policy",
			files: map[string]string{
				"markdown_files/a.md": "---\ntitle: A\ndatetime: \"2024\"\n---\n",
				"templates/post.html": `{{ datetime|date:"2006" }}`,
			},
			extra:    []string{"--on-render-error", "fail"},
			wantCode: ExitContent,
			wantErr:  "--on-render-error skip",
		},
		{
			name: "invalid policy",
			files: map[string]string{
				"templates/post.html": "x",
			},
			extra:    []string{"--on-render-error", "retry"},
			wantCode: ExitUsage,
		},
		{
			name: "too many workers",
			files: map[string]string{
				"templates/post.html": "x",
			},
			extra:    []string{"-w", "1000"},
			wantCode: ExitUsage,
		},
		{
			name: "unknown flag",
			files: map[string]string{
				"templates/post.html": "x",
			},
			extra:    []string{"--nope"},
			wantCode: ExitUsage,
			wantErr:  "md2site help",
		},
		{
			name: "quiet prints nothing",
			files: map[string]string{
				"markdown_files/a.md": helloSource,
				"templates/post.html": "{{title}}",
			},
			extra:     []string{"-q", "-w", "0"},
			wantCode:  ExitSuccess,
			wantFiles: []string{"Hello.html"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := setupSite(t, tt.files)
			env, stdout, stderr := testEnv()

			code := run(context.Background(), siteArgs(root, tt.extra...), env)
			if code != tt.wantCode {
				t.Fatalf("run() = %d, want %d\nstderr: %s", code, tt.wantCode, stderr.String())
			}

			if tt.wantFiles != nil {
				entries, err := os.ReadDir(filepath.Join(root, "output"))
				if err != nil {
					t.Fatalf("ReadDir() error = %v", err)
				}
				var got []string
				for _, e := range entries {
					got = append(got, e.Name())
				}
				if strings.Join(got, ",") != strings.Join(tt.wantFiles, ",") {
					t.Errorf("output files = %v, want %v", got, tt.wantFiles)
				}
			}
			if tt.wantOut != "" && !strings.Contains(stdout.String(), tt.wantOut) {
				t.Errorf("stdout = %q, want it to contain %q", stdout.String(), tt.wantOut)
			}
			if tt.wantErr != "" && !strings.Contains(stderr.String(), tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantErr)
			}
			if tt.wantCode == ExitSuccess && hasFlag(tt.extra, "-q") && stdout.Len() != 0 {
				t.Errorf("quiet stdout = %q, want empty", stdout.String())
			}
		})
	}
}

func TestRun_BuildWritesExpectedPage(t *testing.T) {
	t.Parallel()

	root := setupSite(t, map[string]string{
		"markdown_files/a.md": helloSource,
		"templates/post.html": "{{title}}:{{content}}",
	})
	env, _, stderr := testEnv()

	if code := run(context.Background(), siteArgs(root), env); code != ExitSuccess {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}

	data, err := os.ReadFile(filepath.Join(root, "output", "Hello.html"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if want := "Hello:<h1>Hi</h1>\n<p>Some <em>text</em>.</p>\n"; string(data) != want {
		t.Errorf("Hello.html = %q, want %q", data, want)
	}
}

func TestRun_BuildMissingOutputDir(t *testing.T) {
	t.Parallel()

	root := setupSite(t, map[string]string{
		"markdown_files/a.md": helloSource,
		"templates/post.html": "{{title}}",
	})
	env, _, stderr := testEnv()

	args := []string{
		"-s", filepath.Join(root, "markdown_files"),
		"-t", filepath.Join(root, "templates"),
		"-o", filepath.Join(root, "absent"),
	}
	if code := run(context.Background(), args, env); code != ExitIO {
		t.Errorf("run() = %d, want %d\nstderr: %s", code, ExitIO, stderr.String())
	}
}

func TestRun_BuildWithConfigFile(t *testing.T) {
	t.Parallel()

	root := setupSite(t, map[string]string{
		"posts/a.md":       helloSource,
		"theme/page.html":  "page:{{title}}",
		"config/site.toml": "",
	})
	cfgPath := filepath.Join(root, "config", "site.toml")
	cfg := "[source]\ndir = \"" + filepath.ToSlash(filepath.Join(root, "posts")) + "\"\n" +
		"[templates]\npath = \"" + filepath.ToSlash(filepath.Join(root, "theme")) + "\"\nname = \"page.html\"\n" +
		"[output]\ndir = \"" + filepath.ToSlash(filepath.Join(root, "output")) + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	env, _, stderr := testEnv()
	if code := run(context.Background(), []string{"--config", cfgPath}, env); code != ExitSuccess {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}

	data, err := os.ReadFile(filepath.Join(root, "output", "Hello.html"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "page:Hello" {
		t.Errorf("Hello.html = %q, want %q", data, "page:Hello")
	}
}

func TestRun_BuildMissingConfig(t *testing.T) {
	t.Parallel()

	env, _, stderr := testEnv()
	code := run(context.Background(), []string{"-c", filepath.Join(t.TempDir(), "missing.yaml")}, env)
	if code != ExitUsage {
		t.Errorf("run() = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr.String(), "--config") {
		t.Errorf("stderr = %q, want a --config hint", stderr.String())
	}
}

// ---------------------------------------------------------------------------
// TestMergeFlags - Flag precedence over config
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "no flags keeps config",
			args: nil,
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Build.Workers != 3 {
					t.Errorf("Workers = %d, want 3", cfg.Build.Workers)
				}
				if cfg.Source.Dir != "posts" {
					t.Errorf("Source.Dir = %q, want %q", cfg.Source.Dir, "posts")
				}
			},
		},
		{
			name: "directories override",
			args: []string{"-s", "src", "-t", "tpl", "-o", "out"},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Source.Dir != "src" || cfg.Templates.Path != "tpl" || cfg.Output.Dir != "out" {
					t.Errorf("dirs = %q %q %q, want src tpl out", cfg.Source.Dir, cfg.Templates.Path, cfg.Output.Dir)
				}
			},
		},
		{
			name: "workers zero means auto",
			args: []string{"-w", "0"},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Build.Workers != config.AutoWorkers {
					t.Errorf("Workers = %d, want AutoWorkers", cfg.Build.Workers)
				}
			},
		},
		{
			name: "explicit workers",
			args: []string{"--workers", "8"},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Build.Workers != 8 {
					t.Errorf("Workers = %d, want 8", cfg.Build.Workers)
				}
			},
		},
		{
			name: "booleans and policy",
			args: []string{"--slugify", "--highlight", "--on-render-error", "fail"},
			check: func(t *testing.T, cfg *config.Config) {
				if !cfg.Output.Slugify || !cfg.Markdown.Highlight || cfg.Build.OnRenderError != "fail" {
					t.Errorf("got slugify=%v highlight=%v policy=%q", cfg.Output.Slugify, cfg.Markdown.Highlight, cfg.Build.OnRenderError)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flags, _, err := parseBuildFlags(tt.args)
			if err != nil {
				t.Fatalf("parseBuildFlags() error = %v", err)
			}
			cfg := config.DefaultConfig()
			cfg.Source.Dir = "posts"
			cfg.Build.Workers = 3

			mergeFlags(flags, cfg)
			tt.check(t, cfg)
		})
	}
}

func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		quiet, verbose bool
		wantInfo       bool
		wantDebug      bool
	}{
		{name: "default", wantInfo: true},
		{name: "quiet", quiet: true},
		{name: "verbose", verbose: true, wantInfo: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := newLogger(&buf, tt.quiet, tt.verbose)
			logger.Debug("debug-line")
			logger.Info("info-line")

			if got := strings.Contains(buf.String(), "info-line"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", got, tt.wantInfo)
			}
			if got := strings.Contains(buf.String(), "debug-line"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}
