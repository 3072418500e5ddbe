package receipt

import (
	"time"

	"github.com/zombor/receipt-parser/internal/parsing"
)

// Method records how a scan was parsed
type Method string

const (
	// MethodOCR is an uploaded image run through OCR and the rule-based parser
	MethodOCR Method = "ocr"
	// MethodTokens is a token list from an external OCR engine run through the parser
	MethodTokens Method = "tokens"
	// MethodModel is an uploaded image read by a vision model
	MethodModel Method = "model"
)

// Scan is one stored parse of a receipt
type Scan struct {
	ID          string          `json:"id"`
	Method      Method          `json:"method"`
	Filename    string          `json:"filename,omitempty"` // Empty for token scans
	ContentType string          `json:"content_type,omitempty"`
	Receipt     parsing.Receipt `json:"receipt"`
	Debug       *parsing.Debug  `json:"debug,omitempty"` // Only set for rule-based parses
	CreatedAt   time.Time       `json:"created_at"`
}
