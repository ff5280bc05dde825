package parser

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/dgallion1/cohere/internal/doctree"
)

// TextParser handles plain text files. Paragraphs are normalized to be
// separated by exactly one blank line.
type TextParser struct{}

func (p *TextParser) Parse(_ context.Context, r io.Reader, filename string) (*doctree.Extraction, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out outline
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			out.paragraph(current.String())
			current.Reset()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	out.paragraph(current.String())

	return &doctree.Extraction{
		Title: trimExt(filename),
		Text:  out.String(),
	}, nil
}
