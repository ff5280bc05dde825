package parser

import (
	"context"
	"strings"
	"testing"
)

func TestMarkdownParser_HeadingsBecomeHashLines(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

Subsection A1 *emphasized* content.

Section B
---------

Section B content.
`
	p := &MarkdownParser{}
	ext, err := p.Parse(context.Background(), strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ext.Title != "doc" {
		t.Errorf("expected title %q, got %q", "doc", ext.Title)
	}

	want := strings.Join([]string{
		"# Title",
		"Intro text.",
		"## Section A",
		"Section A content.",
		"### Subsection A1",
		"Subsection A1 emphasized content.",
		"## Section B",
		"Section B content.",
	}, "\n\n")
	if ext.Text != want {
		t.Errorf("unexpected text:\n got %q\nwant %q", ext.Text, want)
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	input := `Just some plain text.

Another paragraph here.`

	p := &MarkdownParser{}
	ext, err := p.Parse(context.Background(), strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ext.Text != "Just some plain text.\n\nAnother paragraph here." {
		t.Errorf("unexpected text %q", ext.Text)
	}
}

func TestMarkdownParser_MixedContentWithCodeBlocks(t *testing.T) {
	input := "# API Reference\n\nSome intro.\n\n## Endpoints\n\nList of endpoints:\n\n```\nGET /api/users\nPOST /api/users\n```\n\nMore text after code.\n"

	p := &MarkdownParser{}
	ext, err := p.Parse(context.Background(), strings.NewReader(input), "api.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(ext.Text, "## Endpoints") {
		t.Errorf("expected endpoints heading, got %q", ext.Text)
	}
	if !strings.Contains(ext.Text, "GET /api/users\nPOST /api/users") {
		t.Errorf("expected code block content in text, got %q", ext.Text)
	}
	if !strings.HasSuffix(ext.Text, "More text after code.") {
		t.Errorf("expected post-code text, got %q", ext.Text)
	}
	if strings.Count(ext.Text, "Some intro.") != 1 {
		t.Errorf("expected paragraph text once, got %q", ext.Text)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	ext, err := p.Parse(context.Background(), strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.Text != "" {
		t.Errorf("expected empty text, got %q", ext.Text)
	}
}

func TestMarkdownParser_TitleStripping(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"readme.md", "readme"},
		{"notes.markdown", "notes"},
		{"dir/plain.md", "plain"},
	}
	p := &MarkdownParser{}
	for _, tt := range tests {
		ext, err := p.Parse(context.Background(), strings.NewReader("text"), tt.filename)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.filename, err)
		}
		if ext.Title != tt.want {
			t.Errorf("filename=%q: expected title %q, got %q", tt.filename, tt.want, ext.Title)
		}
	}
}
