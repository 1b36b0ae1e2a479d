// Package pipeline implements the Markdown-to-HTML stage of the generator.
//
// Markdown is preprocessed (line ending normalization only) and converted to
// an HTML fragment by goldmark. The default configuration mirrors a plain
// CommonMark converter with strikethrough enabled so fragments compare
// byte-for-byte with that reference:
//   - one newline after each block element
//   - XHTML void elements (<hr />, <img ... />)
//   - raw HTML passed through unless MarkdownOptions.Safe is set
//
// Syntax highlighting (chroma) and further GFM extensions are opt-in.
package pipeline
