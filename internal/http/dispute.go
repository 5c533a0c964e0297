package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"hospital-finder/internal/apperr"
	"hospital-finder/internal/services/dispute"
)

const multipartMemory = 8 << 20

// DisputeHandler serves the billing dispute endpoints.
type DisputeHandler struct {
	service        *dispute.Service
	uploadDir      string
	maxUploadBytes int64
}

func NewDisputeHandler(service *dispute.Service, uploadDir string, maxUploadBytes int64) *DisputeHandler {
	return &DisputeHandler{
		service:        service,
		uploadDir:      uploadDir,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *DisputeHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/dispute", func(r chi.Router) {
		r.Get("/", h.Providers)
		r.Post("/analyze", h.Analyze)
	})
}

// Providers handles GET /api/dispute.
func (h *DisputeHandler) Providers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"providers": h.service.Providers(),
	})
}

// Analyze handles POST /api/dispute/analyze. Every form check runs before
// anything is written to disk or parsed.
func (h *DisputeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, apperr.InvalidInput("Upload exceeds %d bytes", maxErr.Limit))
			return
		}
		writeError(w, r, apperr.InvalidInput("invalid multipart form"))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	bill, billHeader, err := r.FormFile("bill_pdf")
	if err != nil {
		writeError(w, r, apperr.InvalidInput("Please upload a patient bill PDF."))
		return
	}
	defer bill.Close()
	if !isPDF(billHeader.Filename) {
		writeError(w, r, apperr.UnsupportedMedia("Only PDF files are supported for now."))
		return
	}

	var rules multipart.File
	if f, header, err := r.FormFile("rules_pdf"); err == nil {
		defer f.Close()
		if header.Filename != "" {
			if !isPDF(header.Filename) {
				writeError(w, r, apperr.UnsupportedMedia("Rules file must be a PDF."))
				return
			}
			rules = f
		}
	}

	provider := r.FormValue("provider")
	if err := h.service.CheckSelection(rules != nil, provider); err != nil {
		writeError(w, r, err)
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		writeError(w, r, fmt.Errorf("create upload dir: %w", err))
		return
	}
	workDir, err := os.MkdirTemp(h.uploadDir, "dispute-*")
	if err != nil {
		writeError(w, r, fmt.Errorf("create work dir: %w", err))
		return
	}
	defer os.RemoveAll(workDir)

	req := dispute.AnalyzeRequest{
		Provider:    provider,
		PatientName: r.FormValue("patient_name"),
	}
	if req.BillPath, err = saveUpload(workDir, "bill.pdf", bill); err != nil {
		writeError(w, r, err)
		return
	}
	if rules != nil {
		if req.RulesPath, err = saveUpload(workDir, "rules.pdf", rules); err != nil {
			writeError(w, r, err)
			return
		}
	}

	report, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func isPDF(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

// saveUpload copies an uploaded file into dir under a fixed name, so client
// filenames never reach the filesystem.
func saveUpload(dir, name string, src io.Reader) (string, error) {
	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return path, nil
}
