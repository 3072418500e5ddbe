package parsing

import (
	"log/slog"
	"strings"
)

// Config holds the settings for a Parser.
type Config struct {
	Assembler AssemblerConfig
	// Policy is the filter policy name, PolicyLookback or PolicyWindow.
	Policy string
	// Context is the number of neighboring lines kept around each relevant
	// line by the window policy.
	Context int
	// Normalize enables keyword and amount repair before filtering.
	Normalize bool
}

// DefaultConfig returns the settings the parser was tuned with.
func DefaultConfig() Config {
	return Config{
		Assembler: AssemblerConfig{
			OverlapThreshold: 0.5,
			ColumnGap:        20,
		},
		Policy:  PolicyLookback,
		Context: 1,
	}
}

// Debug carries diagnostics about one parse. It is not part of the receipt.
type Debug struct {
	WordsDetected    int    `json:"words_detected"`
	LinesAfterFilter int    `json:"lines_after_filter"`
	RawText          string `json:"raw_text"`
}

// Result is a parsed receipt plus its diagnostics.
type Result struct {
	Receipt Receipt `json:"receipt"`
	Debug   Debug   `json:"debug"`
}

// Parser runs tokens through line assembly, filtering and extraction.
// It holds no per-parse state and is safe for concurrent use.
type Parser struct {
	assembler *Assembler
	filter    *LineFilter
}

// NewParser creates a Parser. It fails only on an unknown policy name.
func NewParser(cfg Config) (*Parser, error) {
	policy, err := NewPolicy(cfg.Policy, cfg.Context)
	if err != nil {
		return nil, err
	}

	var normalizer *Normalizer
	if cfg.Normalize {
		normalizer = NewNormalizer(nil)
	}

	return &Parser{
		assembler: NewAssembler(cfg.Assembler),
		filter:    NewLineFilter(policy, normalizer),
	}, nil
}

// Parse turns OCR tokens into a Receipt.
func (p *Parser) Parse(tokens []Token) Result {
	if len(tokens) == 0 {
		return Result{Receipt: EmptyReceipt()}
	}

	lines := p.assembler.Lines(tokens)
	kept := p.filter.Filter(lines)

	raw := NoTransactionDetected
	if len(kept) > 0 {
		raw = strings.Join(kept, "\n")
	}

	receipt := Extract(kept)
	slog.Debug("Parsed receipt",
		"words", len(tokens),
		"lines", len(lines),
		"lines_after_filter", len(kept),
		"items", len(receipt.Items),
		"status", receipt.Status,
	)

	return Result{
		Receipt: receipt,
		Debug: Debug{
			WordsDetected:    len(tokens),
			LinesAfterFilter: len(kept),
			RawText:          raw,
		},
	}
}

// Assemble exposes the assembled text for debugging.
func (p *Parser) Assemble(tokens []Token) string {
	return p.assembler.Text(tokens)
}

// FilterText exposes the filtered text for debugging.
func (p *Parser) FilterText(text string) string {
	return p.filter.Apply(text)
}
