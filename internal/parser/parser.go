// Package parser extracts plain text from uploaded documents.
//
// Formats with explicit structure (Markdown, HTML, DOCX) re-emit their
// headings as "#"-prefixed lines so the text keeps its sections for the
// header-based structurer.
package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/cohere/internal/doctree"
	"github.com/dgallion1/cohere/internal/ocr"
)

// ErrExtraction matches every error returned by Extract.
var ErrExtraction = errors.New("text extraction failed")

// ErrNoText is the cause when a document parses but holds no text.
var ErrNoText = errors.New("document contains no text")

// ExtractionError reports why a document could not be turned into text.
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Filename, e.Err)
}

// Unwrap exposes both ErrExtraction and the underlying cause to errors.Is/As.
func (e *ExtractionError) Unwrap() []error {
	return []error{ErrExtraction, e.Err}
}

// Parser converts raw document bytes into text.
type Parser interface {
	Parse(ctx context.Context, r io.Reader, filename string) (*doctree.Extraction, error)
}

// Options configures the parsers returned by ForFile.
type Options struct {
	FallbackPdftotext bool
	OCR               ocr.Recognizer // nil disables recognition of scanned PDFs
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext, OCR: opts.OCR}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Extract parses r with the parser for filename. Every failure, including a
// document without text, is an *ExtractionError and no partial text is
// returned.
func Extract(ctx context.Context, r io.Reader, filename string, opts Options) (*doctree.Extraction, error) {
	p, err := ForFile(filename, opts)
	if err != nil {
		return nil, &ExtractionError{Filename: filename, Err: err}
	}
	ext, err := p.Parse(ctx, r, filename)
	if err != nil {
		return nil, &ExtractionError{Filename: filename, Err: err}
	}
	if strings.TrimSpace(ext.Text) == "" {
		return nil, &ExtractionError{Filename: filename, Err: ErrNoText}
	}
	return ext, nil
}

// trimExt strips the extension from a filename for use as a title.
func trimExt(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}

// outline accumulates text with markdown-style headings, one blank line
// between blocks.
type outline struct {
	buf strings.Builder
}

func (o *outline) heading(level int, title string) {
	title = collapseSpace(title)
	if title == "" {
		return
	}
	o.sep()
	o.buf.WriteString(strings.Repeat("#", level))
	o.buf.WriteByte(' ')
	o.buf.WriteString(title)
}

func (o *outline) paragraph(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	o.sep()
	o.buf.WriteString(text)
}

func (o *outline) sep() {
	if o.buf.Len() > 0 {
		o.buf.WriteString("\n\n")
	}
}

func (o *outline) String() string {
	return o.buf.String()
}

// collapseSpace joins the fields of s with single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
