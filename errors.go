package md2site

import "errors"

// Sentinel errors for library operations.
var (
	// Source errors.
	ErrListSources = errors.New("failed to list source files")
	ErrReadSource  = errors.New("failed to read source file")
	ErrFrontMatter = errors.New("invalid front-matter")

	// Template errors.
	ErrTemplateCompile = errors.New("template compilation failed")
	ErrRender          = errors.New("page rendering failed")

	// Output errors.
	ErrWriteOutput = errors.New("failed to write output file")

	// Option validation errors.
	ErrInvalidWorkers = errors.New("invalid worker count")
	ErrInvalidPolicy  = errors.New("invalid render error policy")
)
