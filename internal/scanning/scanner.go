package scanning

import "github.com/zombor/receipt-parser/internal/parsing"

// Recognizer defines the interface for OCR engines that read word tokens
// from a receipt image
type Recognizer interface {
	// Recognize returns every word found in the image with its bounding box
	Recognize(imageData []byte, contentType string) ([]parsing.Token, error)
	// Close closes the recognizer and releases resources
	Close() error
}

// Extractor defines the interface for vision models that read a structured
// receipt directly from an image
type Extractor interface {
	// ExtractReceipt analyzes a receipt image/PDF and returns its items and totals
	ExtractReceipt(imageData []byte, contentType string) (*parsing.Receipt, error)
	// Close closes the extractor and releases resources
	Close() error
}
