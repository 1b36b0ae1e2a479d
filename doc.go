// Package md2site turns a directory of Markdown posts into HTML pages.
//
// # Quick Start
//
// Build a site with the classic layout (markdown_files/, templates/, output/):
//
//	gen, err := md2site.NewGenerator()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := gen.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(report.Written), "pages written")
//
// # Build Pipeline
//
// A build runs four stages, in order:
//
//  1. Load: every *.md file in the source directory is split on "---" into a
//     YAML front-matter block and a Markdown body, and the body is converted
//     to an HTML fragment with goldmark.
//  2. Compile: every file under the template directory is compiled with
//     pongo2 (Jinja syntax, e.g. {{ title }}). One broken template fails
//     the build.
//  3. Render: each document is rendered through post.html with the context
//     keys title, author, datetime, tags, categories and content.
//  4. Write: each rendered page is written to <output>/<title>.html.
//
// # Front-Matter
//
//	---
//	title: Hello
//	author: Ann
//	datetime: 2024-01-01
//	tags: [a, b]
//	---
//	# Hi
//
// Missing or mistyped fields become empty strings or empty lists. A document
// with an empty title is rendered but not written.
//
// # Render Failures
//
// A page fails to render when the entry template is missing, a filter fails,
// or an output tag reads a variable outside title, author, datetime, tags,
// categories and content (loop and with variables aside). By default such a
// document is logged, recorded in Report.Failures and skipped. WithRenderErrorPolicy(RenderErrorFail)
// aborts the build before anything is written.
//
// # Configuration
//
//	gen, err := md2site.NewGenerator(
//	    md2site.WithSourceDir("posts"),
//	    md2site.WithTemplateDir("theme"),
//	    md2site.WithOutputDir("public"),
//	    md2site.WithWorkers(4),
//	    md2site.WithLogger(slog.Default()),
//	)
package md2site
