package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/cohere/internal/doctree"
	"github.com/dgallion1/cohere/internal/ocr"
)

// ErrNoRecognizer is returned for scanned PDFs when no OCR engine is configured.
var ErrNoRecognizer = errors.New("image-based PDF and no OCR engine configured")

// PDFParser handles PDF files. Digital PDFs are read with the Go library,
// falling back to pdftotext if enabled. PDFs without any font resources are
// treated as scans and recognized page by page.
type PDFParser struct {
	FallbackPdftotext bool
	OCR               ocr.Recognizer
}

func (p *PDFParser) Parse(ctx context.Context, r io.Reader, filename string) (*doctree.Extraction, error) {
	// ledongthuc/pdf requires a ReaderAt and size, so spool to a temp file.
	tmp, err := os.CreateTemp("", "cohere-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	ext := &doctree.Extraction{Title: trimExt(filename)}

	if IsImageBased(tmpPath) {
		if p.OCR == nil {
			return nil, ErrNoRecognizer
		}
		text, err := ocr.RecognizePDF(ctx, p.OCR, tmpPath)
		if err != nil {
			return nil, fmt.Errorf("ocr: %w", err)
		}
		ext.Text = text
		ext.OCR = true
		ext.Pages = strings.Count(text, "\f")
		return ext, nil
	}

	text, pages, err := extractPDFText(tmpPath)
	if err != nil && p.FallbackPdftotext {
		text, err = extractPdftotext(ctx, tmpPath)
		pages = strings.Count(text, "\f")
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	ext.Text = text
	ext.Pages = pages
	return ext, nil
}

// IsImageBased reports whether no page of the PDF at path declares a font
// resource. Unreadable files count as image-based.
func IsImageBased(path string) (image bool) {
	defer func() {
		if recover() != nil {
			image = true
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		if !page.Resources().Key("Font").IsNull() {
			return false
		}
	}
	return true
}

// extractPDFText returns the text of every page, each terminated by a form
// feed, and the page count.
func extractPDFText(path string) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", 0, fmt.Errorf("page %d: %w", i, err)
		}
		buf.WriteString(pageText)
		buf.WriteString("\f")
	}
	return buf.String(), numPages, nil
}

func extractPdftotext(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
