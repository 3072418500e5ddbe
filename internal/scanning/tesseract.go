package scanning

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/zombor/receipt-parser/internal/parsing"
)

// TesseractOptions configures the Tesseract recognizer
type TesseractOptions struct {
	// Languages are tesseract language codes, e.g. "eng", "ind"
	Languages []string
	// MinConfidence drops words tesseract is less sure about (0-100)
	MinConfidence float64
	// Images shorter than MinHeight are upscaled to TargetHeight.
	// A zero TargetHeight disables upscaling.
	MinHeight    int
	TargetHeight int
}

// Tesseract implements the Recognizer interface using the tesseract engine
type Tesseract struct {
	opts TesseractOptions
}

// NewTesseract creates a new Tesseract Recognizer instance
func NewTesseract(opts TesseractOptions) (*Tesseract, error) {
	var langs []string
	for _, l := range opts.Languages {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		langs = []string{"eng"}
	}
	opts.Languages = langs

	if opts.MinConfidence < 0 || opts.MinConfidence > 100 {
		return nil, fmt.Errorf("min confidence must be between 0 and 100, got %v", opts.MinConfidence)
	}
	if opts.MinHeight == 0 {
		opts.MinHeight = DefaultMinHeight
	}

	return &Tesseract{opts: opts}, nil
}

// Recognize reads word tokens from a receipt image
func (t *Tesseract) Recognize(imageData []byte, contentType string) ([]parsing.Token, error) {
	img, err := decodeImage(imageData, normalizeMimeType(contentType))
	if err != nil {
		return nil, err
	}

	pngData, err := encodePNG(preprocess(img, t.opts.MinHeight, t.opts.TargetHeight))
	if err != nil {
		return nil, err
	}

	// gosseract clients are not safe for concurrent use, so each call gets its own
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.opts.Languages...); err != nil {
		return nil, fmt.Errorf("setting tesseract language: %w", err)
	}
	if err := client.SetImageFromBytes(pngData); err != nil {
		return nil, fmt.Errorf("loading image into tesseract: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("running tesseract: %w", err)
	}

	return wordTokens(boxes, t.opts.MinConfidence), nil
}

// Close is a no-op; clients are released after every call
func (t *Tesseract) Close() error {
	return nil
}

// wordTokens converts tesseract word boxes to tokens, dropping blank and
// low-confidence words
func wordTokens(boxes []gosseract.BoundingBox, minConfidence float64) []parsing.Token {
	tokens := make([]parsing.Token, 0, len(boxes))
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" || b.Confidence < minConfidence {
			continue
		}
		tokens = append(tokens, parsing.Token{Text: word, Box: parsing.BoxFromRect(b.Box)})
	}
	return tokens
}
