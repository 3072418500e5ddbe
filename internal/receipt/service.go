package receipt

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/receipt-parser/internal/parsing"
	"github.com/zombor/receipt-parser/internal/scanning"
)

var (
	// ErrNoRecognizer is returned when an image parse is requested without an OCR engine
	ErrNoRecognizer = errors.New("ocr engine not configured")
	// ErrNoExtractor is returned when a model parse is requested without a model
	ErrNoExtractor = errors.New("model extractor not configured")
	// ErrNoFile is returned when the file of a token scan is requested
	ErrNoFile = errors.New("scan has no file")
)

// IDGenerator generates unique IDs for scans
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// uuidGenerator generates random UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles receipt parsing and stored scans
type Service struct {
	db          DB
	storage     Storage
	recognizer  scanning.Recognizer
	extractor   scanning.Extractor
	parser      *parsing.Parser
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source.
// recognizer and extractor may be nil; the matching operations then fail.
func NewService(db DB, storage Storage, recognizer scanning.Recognizer, extractor scanning.Extractor, parser *parsing.Parser) *Service {
	return NewServiceWithDeps(db, storage, recognizer, extractor, parser, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, storage Storage, recognizer scanning.Recognizer, extractor scanning.Extractor, parser *parsing.Parser, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		storage:     storage,
		recognizer:  recognizer,
		extractor:   extractor,
		parser:      parser,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// HasRecognizer reports whether image parsing is available
func (s *Service) HasRecognizer() bool {
	return s.recognizer != nil
}

// HasExtractor reports whether model parsing is available
func (s *Service) HasExtractor() bool {
	return s.extractor != nil
}

var (
	filenameCharsRe = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	spacesRe        = regexp.MustCompile(`\s+`)
)

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	base = filenameCharsRe.ReplaceAllString(base, "")
	base = spacesRe.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	// Phones produce very long names
	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}
	if base == "" {
		base = "receipt"
	}

	return base + ext
}

// ProcessReceipt stores an uploaded image, runs OCR and the rule-based
// parser over it and saves the scan
func (s *Service) ProcessReceipt(filename string, data []byte, contentType string) (*Scan, error) {
	if s.recognizer == nil {
		return nil, ErrNoRecognizer
	}

	id := s.idGenerator.Generate()
	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	tokens, err := s.recognizer.Recognize(data, contentType)
	if err != nil {
		slog.Error("Failed to recognize receipt",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		s.removeFile(savedPath)
		return nil, fmt.Errorf("recognizing receipt: %w", err)
	}

	result := s.parser.Parse(tokens)
	scan := &Scan{
		ID:          id,
		Method:      MethodOCR,
		Filename:    savedPath,
		ContentType: contentType,
		Receipt:     result.Receipt,
		Debug:       &result.Debug,
		CreatedAt:   s.timeSource.Now(),
	}
	if err := s.save(scan); err != nil {
		return nil, err
	}

	slog.Info("Parsed receipt",
		"id", id,
		"words", result.Debug.WordsDetected,
		"items", len(result.Receipt.Items),
		"status", result.Receipt.Status,
	)
	return scan, nil
}

// ProcessTokens runs tokens from an external OCR engine through the
// rule-based parser and saves the scan
func (s *Service) ProcessTokens(tokens []parsing.Token) (*Scan, error) {
	result := s.parser.Parse(tokens)
	scan := &Scan{
		ID:        s.idGenerator.Generate(),
		Method:    MethodTokens,
		Receipt:   result.Receipt,
		Debug:     &result.Debug,
		CreatedAt: s.timeSource.Now(),
	}
	if err := s.save(scan); err != nil {
		return nil, err
	}
	return scan, nil
}

// ProcessWithModel stores an uploaded image, has the vision model read it
// and saves the scan
func (s *Service) ProcessWithModel(filename string, data []byte, contentType string) (*Scan, error) {
	if s.extractor == nil {
		return nil, ErrNoExtractor
	}

	id := s.idGenerator.Generate()
	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	receipt, err := s.extractor.ExtractReceipt(data, contentType)
	if err != nil {
		slog.Error("Failed to extract receipt with model",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		s.removeFile(savedPath)
		return nil, fmt.Errorf("extracting receipt: %w", err)
	}

	scan := &Scan{
		ID:          id,
		Method:      MethodModel,
		Filename:    savedPath,
		ContentType: contentType,
		Receipt:     *receipt,
		CreatedAt:   s.timeSource.Now(),
	}
	if err := s.save(scan); err != nil {
		return nil, err
	}
	return scan, nil
}

// save stores a scan, removing its file when the database write fails
func (s *Service) save(scan *Scan) error {
	if err := s.db.SaveScan(scan); err != nil {
		if scan.Filename != "" {
			s.removeFile(scan.Filename)
		}
		return fmt.Errorf("saving scan to database: %w", err)
	}
	return nil
}

func (s *Service) removeFile(path string) {
	if err := s.storage.Delete(path); err != nil {
		slog.Warn("Failed to delete file", "filename", path, "error", err)
	}
}

// GetScan retrieves a scan by ID
func (s *Service) GetScan(id string) (*Scan, error) {
	scan, err := s.db.GetScan(id)
	if err != nil {
		return nil, fmt.Errorf("getting scan: %w", err)
	}
	return scan, nil
}

// ListScans returns all scans
func (s *Service) ListScans() ([]*Scan, error) {
	scans, err := s.db.ListScans()
	if err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}
	return scans, nil
}

// DeleteScan removes a scan and its file
func (s *Service) DeleteScan(id string) error {
	scan, err := s.db.GetScan(id)
	if err != nil {
		return fmt.Errorf("getting scan for deletion: %w", err)
	}

	// A missing file should not keep the record around
	if scan.Filename != "" {
		s.removeFile(scan.Filename)
	}

	if err := s.db.DeleteScan(id); err != nil {
		return fmt.Errorf("deleting scan from database: %w", err)
	}
	return nil
}

// GetScanFile retrieves the uploaded file for a scan
func (s *Service) GetScanFile(id string) ([]byte, string, error) {
	scan, err := s.db.GetScan(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting scan: %w", err)
	}
	if scan.Filename == "" {
		return nil, "", ErrNoFile
	}

	data, err := s.storage.Get(scan.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting scan file: %w", err)
	}

	return data, scan.ContentType, nil
}
