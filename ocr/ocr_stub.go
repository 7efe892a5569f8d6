//go:build !ocr

package ocr

import "errors"

// ErrNotEnabled is returned when OCR support was not compiled in. Rebuild
// with -tags ocr to enable it.
var ErrNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Client is a stub whose operations all fail with ErrNotEnabled
type Client struct{}

var _ Recognizer = (*Client)(nil)

// New returns ErrNotEnabled
func New(languages ...string) (*Client, error) {
	return nil, ErrNotEnabled
}

// Close is a no-op. It is safe to call on a nil client.
func (c *Client) Close() error {
	return nil
}

// RecognizeImage returns ErrNotEnabled
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	return "", ErrNotEnabled
}

// SetPageSegMode returns ErrNotEnabled
func (c *Client) SetPageSegMode(mode PageSegMode) error {
	return ErrNotEnabled
}
