package md2site

import (
	"fmt"
	"io/fs"

	"github.com/goliatone/go-slug"

	"github.com/alnah/go-md2site/internal/fileutil"
)

// File permission constants.
const (
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
	outputExt       = ".html"
)

// Writer writes rendered pages to Dir as <title>.html.
// The directory must already exist. Titles are used verbatim unless Slugify
// is set; they are not checked for path separators.
type Writer struct {
	Dir     string
	Slugify bool
	Perm    fs.FileMode // zero means 0o644
}

// WriteResult lists what WriteAll did.
type WriteResult struct {
	Written  []string // output paths
	Untitled []string // sources skipped because the title was empty
}

// WriteAll writes every page rendered without error. Pages with an empty
// title are skipped. The first write failure aborts; pages already written
// are reported alongside the error.
func (w Writer) WriteAll(pages []Page) (WriteResult, error) {
	var res WriteResult
	perm := w.Perm
	if perm == 0 {
		perm = filePermissions
	}

	for _, p := range pages {
		if p.Err != nil || p.Document == nil {
			continue
		}

		name := w.fileName(p.Document.Title())
		if name == "" {
			res.Untitled = append(res.Untitled, p.Document.Source())
			continue
		}

		path, err := fileutil.OutputPath(w.Dir, name, outputExt)
		if err != nil {
			return res, fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		if err := fileutil.WriteFile(path, p.HTML, perm); err != nil {
			return res, fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		res.Written = append(res.Written, path)
	}
	return res, nil
}

// fileName returns the output base name for title, "" when the page has
// nothing usable to be named after.
func (w Writer) fileName(title string) string {
	if title == "" || !w.Slugify {
		return title
	}
	s, err := slug.Normalize(title)
	if err != nil {
		return ""
	}
	return s
}
