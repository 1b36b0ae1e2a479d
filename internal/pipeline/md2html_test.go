package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestGoldmarkConverter_ToHTML - Fragment output matches CommonMark formatting
// ---------------------------------------------------------------------------

func TestGoldmarkConverter_ToHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "heading and paragraph",
			input: "# Hi\nSome *text*.\n",
			want:  "<h1>Hi</h1>\n<p>Some <em>text</em>.</p>\n",
		},
		{
			name:  "strong emphasis",
			input: "**bold**",
			want:  "<p><strong>bold</strong></p>\n",
		},
		{
			name:  "strikethrough",
			input: "~~gone~~",
			want:  "<p><del>gone</del></p>\n",
		},
		{
			name:  "link with title",
			input: `[site](https://example.com "Example")`,
			want:  `<p><a href="https://example.com" title="Example">site</a></p>` + "\n",
		},
		{
			name:  "image with title",
			input: `![alt](pic.png "Caption")`,
			want:  `<p><img src="pic.png" alt="alt" title="Caption" /></p>` + "\n",
		},
		{
			name:  "image without title",
			input: `![alt](pic.png)`,
			want:  `<p><img src="pic.png" alt="alt" /></p>` + "\n",
		},
		{
			name:  "inline code",
			input: "use `go vet`",
			want:  "<p>use <code>go vet</code></p>\n",
		},
		{
			name:  "block quote wraps paragraph",
			input: "> quoted",
			want:  "<blockquote>\n<p>quoted</p>\n</blockquote>\n",
		},
		{
			name:  "unordered list",
			input: "- a\n- b\n",
			want:  "<ul>\n<li>a</li>\n<li>b</li>\n</ul>\n",
		},
		{
			name:  "ordered list",
			input: "1. one\n2. two\n",
			want:  "<ol>\n<li>one</li>\n<li>two</li>\n</ol>\n",
		},
		{
			name:  "fenced code with language",
			input: "```go\nx := 1\n```\n",
			want:  "<pre><code class=\"language-go\">x := 1\n</code></pre>\n",
		},
		{
			name:  "thematic break",
			input: "***\n",
			want:  "<hr />\n",
		},
		{
			name:  "raw html passes through",
			input: "<div>raw</div>\n",
			want:  "<div>raw</div>\n",
		},
		{
			name:  "no smart quotes",
			input: `"quoted" isn't`,
			want:  "<p>&quot;quoted&quot; isn't</p>\n",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	conv := NewGoldmarkConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := conv.ToHTML(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ToHTML() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ToHTML() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGoldmarkConverter_Options(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("no extensions leaves tildes", func(t *testing.T) {
		t.Parallel()

		conv, err := NewGoldmarkConverterWithOptions(MarkdownOptions{Extensions: []string{}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, _ := conv.ToHTML(ctx, "~~x~~")
		if got != "<p>~~x~~</p>\n" {
			t.Errorf("ToHTML() = %q", got)
		}
	})

	t.Run("safe mode omits raw html", func(t *testing.T) {
		t.Parallel()

		conv, err := NewGoldmarkConverterWithOptions(MarkdownOptions{Safe: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, _ := conv.ToHTML(ctx, "<script>alert(1)</script>\n")
		if strings.Contains(got, "<script>") {
			t.Errorf("ToHTML() leaked raw HTML: %q", got)
		}
	})

	t.Run("table extension", func(t *testing.T) {
		t.Parallel()

		conv, err := NewGoldmarkConverterWithOptions(MarkdownOptions{Extensions: []string{"Table"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, _ := conv.ToHTML(ctx, "| a |\n|---|\n| 1 |\n")
		if !strings.Contains(got, "<table>") {
			t.Errorf("ToHTML() = %q, want a table", got)
		}
	})

	t.Run("highlighting uses chroma classes", func(t *testing.T) {
		t.Parallel()

		conv, err := NewGoldmarkConverterWithOptions(MarkdownOptions{Highlight: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, _ := conv.ToHTML(ctx, "```go\nfunc main() {}\n```\n")
		if !strings.Contains(got, `class="chroma"`) {
			t.Errorf("ToHTML() = %q, want chroma markup", got)
		}
	})

	t.Run("unknown extension", func(t *testing.T) {
		t.Parallel()

		_, err := NewGoldmarkConverterWithOptions(MarkdownOptions{Extensions: []string{"mermaid"}})
		if !errors.Is(err, ErrUnknownExtension) {
			t.Errorf("error = %v, want ErrUnknownExtension", err)
		}
	})
}

func TestGoldmarkConverter_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGoldmarkConverter().ToHTML(ctx, "# x")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ToHTML() error = %v, want context.Canceled", err)
	}
}

func TestKnownExtensions(t *testing.T) {
	t.Parallel()

	got := KnownExtensions()
	if len(got) != len(knownExtensions) {
		t.Fatalf("KnownExtensions() returned %d names, want %d", len(got), len(knownExtensions))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1] > got[i] {
			t.Errorf("KnownExtensions() not sorted: %v", got)
		}
	}
}

// ---------------------------------------------------------------------------
// TestMarkdown - Preprocessing then conversion
// ---------------------------------------------------------------------------

func TestMarkdown_NormalizesLineEndings(t *testing.T) {
	t.Parallel()

	md := NewMarkdown(NewGoldmarkConverter())
	got, err := md.ToHTML(context.Background(), "# Hi\r\nSome *text*.\r\n")
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	want := "<h1>Hi</h1>\n<p>Some <em>text</em>.</p>\n"
	if got != want {
		t.Errorf("ToHTML() = %q, want %q", got, want)
	}
}

func TestCommonMarkPreprocessor(t *testing.T) {
	t.Parallel()

	p := &CommonMarkPreprocessor{}
	tests := map[string]string{
		"a\r\nb": "a\nb",
		"a\rb":   "a\nb",
		"a\nb":   "a\nb",
		"==x==":  "==x==",
	}
	for in, want := range tests {
		if got := p.PreprocessMarkdown(context.Background(), in); got != want {
			t.Errorf("PreprocessMarkdown(%q) = %q, want %q", in, got, want)
		}
	}
}
