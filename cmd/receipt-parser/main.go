package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/receipt-parser/internal/parsing"
	"github.com/zombor/receipt-parser/internal/receipt"
	"github.com/zombor/receipt-parser/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	def := parsing.DefaultConfig()
	fs := ff.NewFlagSet("receipt-parser")
	var (
		port          = fs.IntLong("port", 8080, "HTTP server port")
		dbPath        = fs.StringLong("db", "receipt-parser.db", "Database file path")
		storagePath   = fs.StringLong("storage", "./scans", "Storage directory path")
		ocrLangs      = fs.StringLong("ocr-lang", "eng,ind", "Comma separated tesseract languages")
		minConfidence = fs.Float64Long("ocr-min-confidence", 0, "Drop OCR words below this confidence (0-100)")
		targetHeight  = fs.IntLong("upscale-height", scanning.DefaultTargetHeight, "Upscale images shorter than 800px to this height (0 disables)")
		modelProvider = fs.StringLong("model", "none", "Vision model for /parse-model: 'gemini', 'ollama' or 'none'")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL     = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel   = fs.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, llava-phi3, qwen2-vl)")
		authUser      = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		overlap       = fs.Float64Long("overlap", def.Assembler.OverlapThreshold, "Vertical overlap ratio that joins a word to a line")
		columnGap     = fs.IntLong("column-gap", def.Assembler.ColumnGap, "Horizontal gap in pixels that marks a column break")
		sortByExtent  = fs.BoolLong("sort-by-extent", "Re-sort assembled lines by their final vertical center")
		policy        = fs.StringLong("policy", def.Policy, "Line filter policy: 'lookback' or 'window'")
		context       = fs.IntLong("context", def.Context, "Lines kept around each relevant line by the window policy")
		normalize     = fs.BoolLong("normalize", "Repair OCR misreads of keywords and amounts before filtering")
		logLevel      = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		showVersion   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_PARSER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid log level %q\n", *logLevel)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

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
		slog.Error("Invalid parser configuration", "error", err)
		os.Exit(1)
	}

	// Initialize database
	slog.Info("Initializing database...")
	db, err := receipt.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("Initializing tesseract...", "languages", *ocrLangs)
	recognizer, err := scanning.NewTesseract(scanning.TesseractOptions{
		Languages:     strings.Split(*ocrLangs, ","),
		MinConfidence: *minConfidence,
		TargetHeight:  *targetHeight,
	})
	if err != nil {
		slog.Error("Failed to initialize tesseract", "error", err)
		os.Exit(1)
	}
	defer recognizer.Close()

	// Initialize the optional vision model
	var extractor scanning.Extractor
	switch *modelProvider {
	case "gemini":
		// Get Gemini API key from flag or environment
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini extractor...", "model", *geminiModel)
		gemini, err := scanning.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
		extractor = gemini
	case "ollama":
		slog.Info("Initializing Ollama extractor...", "url", *ollamaURL, "model", *ollamaModel)
		ollama, err := scanning.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
		extractor = ollama
	case "none", "":
		slog.Info("No vision model configured, /parse-model is disabled")
	default:
		slog.Error("Invalid model provider", "model", *modelProvider, "valid", "gemini, ollama or none")
		os.Exit(1)
	}
	if extractor != nil {
		defer extractor.Close()
	}

	// Initialize storage
	slog.Info("Initializing storage...")
	store, err := receipt.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Initialize service
	receiptService := receipt.NewService(db, store, recognizer, extractor, parser)

	// Initialize server
	basicAuth := receipt.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := receipt.NewServer(receiptService, basicAuth, version)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
