package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrOCRNotEnabled is returned when OCR was not compiled in.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// DefaultDPI is the rasterization resolution for recognition.
const DefaultDPI = 300

// Recognizer turns a page image into text. *Client implements it.
type Recognizer interface {
	RecognizeImage(image []byte) (string, error)
}

// RecognizePDF rasterizes every page of the PDF at path and recognizes each
// one. Pages are terminated by form feeds, like text extracted from a
// digital PDF.
func RecognizePDF(ctx context.Context, rec Recognizer, path string) (string, error) {
	pages, err := Rasterize(ctx, path, DefaultDPI)
	if err != nil {
		return "", err
	}
	return recognizePages(ctx, rec, pages)
}

// Rasterize renders each page of a PDF to PNG with pdftoppm, in page order.
func Rasterize(ctx context.Context, path string, dpi int) ([][]byte, error) {
	dir, err := os.MkdirTemp("", "cohere-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("create raster dir: %w", err)
	}
	defer os.RemoveAll(dir)

	cmd := exec.CommandContext(ctx, "pdftoppm", "-r", strconv.Itoa(dpi), "-png", path, filepath.Join(dir, "page"))
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(out)))
	}

	// pdftoppm zero-pads page numbers to a common width, so names sort in page order.
	names, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	sort.Strings(names)

	pages := make([][]byte, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read page image: %w", err)
		}
		pages = append(pages, data)
	}
	return pages, nil
}

func recognizePages(ctx context.Context, rec Recognizer, pages [][]byte) (string, error) {
	var buf strings.Builder
	for i, img := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := rec.RecognizeImage(img)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		buf.WriteString(text)
		buf.WriteString("\f")
	}
	return buf.String(), nil
}
