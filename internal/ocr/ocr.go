//go:build ocr

// Package ocr recognizes text in scanned PDF pages with Tesseract via gosseract.
//
// Tesseract must be installed (apt-get install tesseract-ocr), and pages are
// rasterized with pdftoppm from poppler-utils.
package ocr

import (
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps a Tesseract handle. A handle recognizes one image at a time,
// so calls are serialized.
type Client struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// New creates a Client. Close it to release the Tesseract handle.
func New() (*Client, error) {
	return &Client{client: gosseract.NewClient()}, nil
}

// Close releases OCR resources. It is safe to call on a nil client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// SetLanguage sets the recognition language(s), "+" separated ("eng+deu").
func (c *Client) SetLanguage(lang string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.SetLanguage(lang)
}

// RecognizeImage returns the trimmed text found in a PNG, TIFF or JPEG image.
func (c *Client) RecognizeImage(image []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return strings.TrimSpace(text), nil
}
