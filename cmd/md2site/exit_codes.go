package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/pipeline"
)

// Exit codes for md2site CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Site built
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Sources unreadable, output unwritable
	ExitContent = 4 // Bad front-matter, template, or render failure
)

// ErrUsage marks command-line errors.
var ErrUsage = errors.New("usage error")

// usageError wraps a flag parsing error so it maps to ExitUsage.
func usageError(err error) error {
	return fmt.Errorf("%w: %w", ErrUsage, err)
}

func errUnexpectedArgs(args []string) error {
	return fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
}

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Content errors (exit 4)
	if md2site.IsContentError(err) {
		return ExitContent
	}

	// I/O errors (exit 3)
	if md2site.IsIOError(err) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, md2site.ErrInvalidWorkers) ||
		errors.Is(err, md2site.ErrInvalidPolicy) ||
		errors.Is(err, pipeline.ErrUnknownExtension) {
		return ExitUsage
	}

	return ExitGeneral
}
