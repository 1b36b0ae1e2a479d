package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
)

// ---------------------------------------------------------------------------
// TestRun_Commands - Command dispatch
// ---------------------------------------------------------------------------

func TestRun_Commands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{name: "version command", args: []string{"version"}, wantCode: ExitSuccess, wantStdout: "go-md2site " + Version},
		{name: "version flag", args: []string{"--version"}, wantCode: ExitSuccess, wantStdout: "go-md2site " + Version},
		{name: "help", args: []string{"help"}, wantCode: ExitSuccess, wantStdout: "Usage: md2site"},
		{name: "help build", args: []string{"help", "build"}, wantCode: ExitSuccess, wantStdout: "--on-render-error"},
		{name: "help check", args: []string{"help", "check"}, wantCode: ExitSuccess, wantStdout: "--json"},
		{name: "help unknown", args: []string{"help", "deploy"}, wantCode: ExitUsage, wantStderr: "Unknown command: deploy"},
		{name: "build help flag", args: []string{"--help"}, wantCode: ExitSuccess, wantStdout: "Exit codes:"},
		{name: "check help flag", args: []string{"check", "-h"}, wantCode: ExitSuccess, wantStdout: "Usage: md2site check"},
		{name: "completion usage", args: []string{"completion"}, wantCode: ExitSuccess, wantStdout: "Supported shells:"},
		{name: "completion bash", args: []string{"completion", "bash"}, wantCode: ExitSuccess, wantStdout: "complete -F _md2site md2site"},
		{name: "completion unknown", args: []string{"completion", "tcsh"}, wantCode: ExitUsage, wantStderr: "unsupported shell"},
		{name: "positional args rejected", args: []string{"build", "extra"}, wantCode: ExitUsage, wantStderr: "unexpected arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv()
			code := run(context.Background(), tt.args, env)
			if code != tt.wantCode {
				t.Fatalf("run(%v) = %d, want %d\nstderr: %s", tt.args, code, tt.wantCode, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestIsCommand(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"build", "check", "completion", "version", "help"} {
		if !isCommand(name) {
			t.Errorf("isCommand(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"", "-o", "--version", "convert", "site"} {
		if isCommand(name) {
			t.Errorf("isCommand(%q) = true, want false", name)
		}
	}
}

func TestHasFlag(t *testing.T) {
	t.Parallel()

	if !hasFlag([]string{"-o", "out", "-v"}, "-v", "--verbose") {
		t.Error("hasFlag should find -v")
	}
	if hasFlag([]string{"--", "-v"}, "-v") {
		t.Error("hasFlag should stop at --")
	}
	if hasFlag(nil, "-v") {
		t.Error("hasFlag(nil) should be false")
	}
}

func TestHintFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{config.ErrConfigNotFound, "config/config.toml"},
		{md2site.ErrWriteOutput, "writable"},
		{md2site.ErrTemplateCompile, "--templates"},
		{md2site.ErrRender, "--on-render-error"},
		{md2site.ErrFrontMatter, "---"},
		{errors.New("other"), ""},
	}

	for _, tt := range tests {
		got := hintFor(tt.err)
		if tt.want == "" {
			if got != "" {
				t.Errorf("hintFor(%v) = %q, want empty", tt.err, got)
			}
			continue
		}
		if !strings.Contains(got, tt.want) {
			t.Errorf("hintFor(%v) = %q, want it to contain %q", tt.err, got, tt.want)
		}
	}
}
