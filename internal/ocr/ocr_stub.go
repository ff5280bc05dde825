//go:build !ocr

// Package ocr recognizes text in scanned PDF pages.
//
// This build has no OCR engine; every operation returns ErrOCRNotEnabled.
// Rebuild with -tags ocr (and Tesseract installed) to enable it.
package ocr

// Client is a stub that fails every recognition.
type Client struct{}

// New returns ErrOCRNotEnabled.
func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op. It is safe to call on a nil client.
func (c *Client) Close() error {
	return nil
}

// SetLanguage returns ErrOCRNotEnabled.
func (c *Client) SetLanguage(string) error {
	return ErrOCRNotEnabled
}

// RecognizeImage returns ErrOCRNotEnabled.
func (c *Client) RecognizeImage([]byte) (string, error) {
	return "", ErrOCRNotEnabled
}
