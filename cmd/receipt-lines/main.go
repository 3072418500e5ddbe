// Command receipt-lines runs OCR tokens from a JSON file through the
// rule-based parser without the HTTP server or tesseract.
//
//	receipt-lines [flags] [tokens.json]
//
// The input is either {"tokens": [...]} as accepted by POST /parse-tokens or
// a bare token array. With no file argument, or "-", tokens are read from
// stdin.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/receipt-parser/internal/parsing"
)

func main() {
	def := parsing.DefaultConfig()
	fs := ff.NewFlagSet("receipt-lines")
	var (
		overlap      = fs.Float64Long("overlap", def.Assembler.OverlapThreshold, "Vertical overlap ratio that joins a word to a line")
		columnGap    = fs.IntLong("column-gap", def.Assembler.ColumnGap, "Horizontal gap in pixels that marks a column break")
		sortByExtent = fs.BoolLong("sort-by-extent", "Re-sort assembled lines by their final vertical center")
		policy       = fs.StringLong("policy", def.Policy, "Line filter policy: 'lookback' or 'window'")
		context      = fs.IntLong("context", def.Context, "Lines kept around each relevant line by the window policy")
		normalize    = fs.BoolLong("normalize", "Repair OCR misreads of keywords and amounts before filtering")
		text         = fs.BoolLong("text", "Print the filtered text instead of the parsed receipt")
		raw          = fs.BoolLong("raw", "Print the assembled text before filtering")
		verbose      = fs.BoolLong("verbose", "Log parser diagnostics to stderr")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_PARSER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	parser, err := parsing.NewParser(parsing.Config{
		Assembler: parsing.AssemblerConfig{
			OverlapThreshold: *overlap,
			ColumnGap:        *columnGap,
			SortByExtent:     *sortByExtent,
		},
		Policy:    *policy,
		Context:   *context,
		Normalize: *normalize,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	tokens, err := readTokens(fs.GetArgs())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *raw:
		fmt.Println(parser.Assemble(tokens))
	case *text:
		fmt.Println(parser.FilterText(parser.Assemble(tokens)))
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(parser.Parse(tokens)); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// readTokens loads tokens from the single file argument or stdin
func readTokens(args []string) ([]parsing.Token, error) {
	if len(args) > 1 {
		return nil, fmt.Errorf("expected at most one tokens file, got %d", len(args))
	}

	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return nil, fmt.Errorf("reading tokens: %w", err)
	}

	data = bytes.TrimSpace(data)
	if bytes.HasPrefix(data, []byte("[")) {
		var tokens []parsing.Token
		if err := json.Unmarshal(data, &tokens); err != nil {
			return nil, fmt.Errorf("decoding tokens: %w", err)
		}
		return tokens, nil
	}

	var req struct {
		Tokens []parsing.Token `json:"tokens"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decoding tokens: %w", err)
	}
	return req.Tokens, nil
}
