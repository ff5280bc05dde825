package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/cohere/internal/doctree"
)

// DOCXParser handles .docx files. Paragraphs styled "Heading N" become "#" lines.
type DOCXParser struct{}

func (p *DOCXParser) Parse(_ context.Context, r io.Reader, filename string) (*doctree.Extraction, error) {
	// go-docx needs a ReaderAt and size, so spool to a temp file.
	tmp, err := os.CreateTemp("", "cohere-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	size, err := io.Copy(tmp, r)
	if err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var out outline
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if level := docxHeadingLevel(para); level > 0 {
			out.heading(level, text)
		} else {
			out.paragraph(text)
		}
	}

	return &doctree.Extraction{
		Title: trimExt(filename),
		Text:  out.String(),
	}, nil
}

// docxHeadingLevel maps "Heading1" and "heading 1" styles (levels 1-9) to a level.
func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if !strings.HasPrefix(style, "heading") || len(style) != len("heading")+1 {
		return 0
	}
	d := style[len(style)-1]
	if d < '1' || d > '9' {
		return 0
	}
	return int(d - '0')
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
