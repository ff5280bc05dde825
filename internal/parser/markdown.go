package parser

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/cohere/internal/doctree"
)

// MarkdownParser handles Markdown files using goldmark. Inline markup is
// dropped; headings are rewritten in canonical "# Title" form.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(_ context.Context, r io.Reader, filename string) (*doctree.Extraction, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var out outline
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			out.heading(h.Level, extractText(h, src))
			continue
		}
		out.paragraph(extractText(n, src))
	}

	return &doctree.Extraction{
		Title: trimExt(filename),
		Text:  out.String(),
	}, nil
}

// extractText gets the text content of a goldmark AST node. Leaf blocks
// (code) contribute their raw lines; everything else contributes its children.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if !n.HasChildren() {
		if n.Type() == ast.TypeBlock {
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				buf.Write(line.Value(src))
			}
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		if c.Type() == ast.TypeBlock && buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(extractText(c, src))
	}
	return strings.TrimSpace(buf.String())
}
