package receipt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/zombor/receipt-parser/internal/parsing"
)

// maxUploadSize bounds multipart uploads; high-resolution phone photos run large
const maxUploadSize = int64(50 << 20)

// maxTokensBodySize bounds /parse-tokens request bodies
const maxTokensBodySize = int64(10 << 20)

// noTextMessage accompanies a successful parse of an image without text
const noTextMessage = "No text detected in image"

// uploadContentTypes maps the accepted upload extensions to their MIME types
var uploadContentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
	"pdf":  "application/pdf",
	"heic": "image/heic",
	"heif": "image/heif",
}

// allowedExtensions lists the keys of uploadContentTypes for error messages
func allowedExtensions() string {
	exts := make([]string, 0, len(uploadContentTypes))
	for ext := range uploadContentTypes {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return strings.Join(exts, ", ")
}

// parseResponse is the body of a successful parse
type parseResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	ID      string          `json:"id"`
	Data    parsing.Receipt `json:"data"`
	Debug   *parsing.Debug  `json:"debug,omitempty"`
}

// errorResponse is the body of every failed request
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes an error response with CORS headers set
func writeError(w http.ResponseWriter, code int, message string) {
	setCORSHeaders(w)
	writeJSON(w, code, errorResponse{Status: "error", Message: message})
}

// handleInfo describes the service
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "online",
		"message":      "Receipt Parser API",
		"version":      s.version,
		"approach":     "Tesseract OCR + rule-based pattern matching",
		"ocr_status":   configured(s.service.HasRecognizer()),
		"model_status": configured(s.service.HasExtractor()),
		"endpoints": map[string]string{
			"/parse":          "POST - Upload receipt image (multipart/form-data, field: 'file')",
			"/parse-tokens":   "POST - Parse OCR tokens (application/json, {\"tokens\": [{\"text\", \"box\"}]})",
			"/parse-model":    "POST - Upload receipt image for vision model extraction (field: 'file')",
			"/api/scans":      "GET - List stored scans",
			"/api/scans/{id}": "GET, DELETE - Get or delete a stored scan",
			"/health":         "GET - Health check",
		},
	})
}

func configured(ok bool) string {
	if ok {
		return "connected"
	}
	return "not configured"
}

// handleHealth reports whether the OCR engine is available
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.service.HasRecognizer() {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "unhealthy",
			"ocr":    "not configured",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"ocr":    "connected",
	})
}

// readUpload validates the multipart "file" field and returns its contents.
// It writes the error response itself and reports false on failure.
func readUpload(w http.ResponseWriter, r *http.Request) (filename string, data []byte, contentType string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, "File is too large. Maximum size is 50MB. Please compress or resize your image.")
			return "", nil, "", false
		}
		writeError(w, http.StatusBadRequest, "No file uploaded. Use field name 'file'")
		return "", nil, "", false
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded. Use field name 'file'")
		return "", nil, "", false
	}
	defer f.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return "", nil, "", false
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	extType, allowed := uploadContentTypes[ext]
	if !allowed {
		writeError(w, http.StatusBadRequest, "Invalid format. Allowed: "+allowedExtensions())
		return "", nil, "", false
	}

	data, err = io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "Error reading file. Please try again.")
		return "", nil, "", false
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "Empty file")
		return "", nil, "", false
	}

	// Multipart clients often send a generic type; the extension is more useful then
	contentType = strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = extType
	}

	return header.Filename, data, contentType, true
}

// writeParseResult writes a successful parse
func writeParseResult(w http.ResponseWriter, scan *Scan) {
	resp := parseResponse{
		Status: "success",
		ID:     scan.ID,
		Data:   scan.Receipt,
		Debug:  scan.Debug,
	}
	if scan.Receipt.Status == parsing.StatusNoText {
		resp.Message = noTextMessage
		resp.Debug = nil
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleParse runs an uploaded image through OCR and the rule-based parser
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if !s.service.HasRecognizer() {
		writeError(w, http.StatusInternalServerError, "OCR engine not configured")
		return
	}

	filename, data, contentType, ok := readUpload(w, r)
	if !ok {
		return
	}

	scan, err := s.service.ProcessReceipt(filename, data, contentType)
	if err != nil {
		slog.Error("Error processing receipt", "filename", filename, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeParseResult(w, scan)
}

// handleParseTokens runs tokens from an external OCR engine through the parser
func (s *Server) handleParseTokens(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tokens []parsing.Token `json:"tokens"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxTokensBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	scan, err := s.service.ProcessTokens(req.Tokens)
	if err != nil {
		slog.Error("Error processing tokens", "tokens", len(req.Tokens), "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeParseResult(w, scan)
}

// handleParseModel has a vision model read an uploaded image
func (s *Server) handleParseModel(w http.ResponseWriter, r *http.Request) {
	if !s.service.HasExtractor() {
		writeError(w, http.StatusInternalServerError, "Model extractor not configured")
		return
	}

	filename, data, contentType, ok := readUpload(w, r)
	if !ok {
		return
	}

	scan, err := s.service.ProcessWithModel(filename, data, contentType)
	if err != nil {
		slog.Error("Error extracting receipt", "filename", filename, "error", err)
		writeError(w, http.StatusInternalServerError, "Model parsing error: "+err.Error())
		return
	}

	writeParseResult(w, scan)
}

// handleListScans returns a list of all scans
func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	scans, err := s.service.ListScans()
	if err != nil {
		slog.Error("Error listing scans", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Ensure we always return an array, not nil
	if scans == nil {
		scans = []*Scan{}
	}
	writeJSON(w, http.StatusOK, scans)
}

// handleGetScan returns a single scan
func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	scan, err := s.service.GetScan(r.PathValue("id"))
	if err != nil {
		writeLookupError(w, err, "Scan not found")
		return
	}
	writeJSON(w, http.StatusOK, scan)
}

// handleGetScanFile returns the uploaded file for a scan
func (s *Server) handleGetScanFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetScanFile(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrNoFile) {
			writeError(w, http.StatusNotFound, "Scan has no file")
			return
		}
		writeLookupError(w, err, "File not found")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteScan deletes a scan
func (s *Server) handleDeleteScan(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteScan(r.PathValue("id")); err != nil {
		writeLookupError(w, err, "Scan not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeLookupError maps ErrNotFound to 404 and anything else to 500
func writeLookupError(w http.ResponseWriter, err error, notFound string) {
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, notFound)
		return
	}
	slog.Error("Error looking up scan", "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
