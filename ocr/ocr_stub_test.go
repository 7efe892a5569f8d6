//go:build !ocr

package ocr

import (
	"errors"
	"testing"
)

func TestNewReturnsError(t *testing.T) {
	client, err := New("eng")
	if !errors.Is(err, ErrNotEnabled) {
		t.Errorf("expected ErrNotEnabled, got: %v", err)
	}
	if client != nil {
		t.Error("expected nil client when OCR is disabled")
	}
}

func TestStubClient(t *testing.T) {
	var client *Client
	if err := client.Close(); err != nil {
		t.Errorf("Close on nil client should not error: %v", err)
	}
	if _, err := client.RecognizeImage([]byte{1}); !errors.Is(err, ErrNotEnabled) {
		t.Errorf("RecognizeImage error = %v", err)
	}
	if err := client.SetPageSegMode(PSMAuto); !errors.Is(err, ErrNotEnabled) {
		t.Errorf("SetPageSegMode error = %v", err)
	}
}
