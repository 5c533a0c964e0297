package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hospital-finder/internal/apperr"
	"hospital-finder/internal/services/hospitals"
)

// HospitalHandler serves hospital price searches.
type HospitalHandler struct {
	service *hospitals.Service
}

func NewHospitalHandler(service *hospitals.Service) *HospitalHandler {
	return &HospitalHandler{service: service}
}

func (h *HospitalHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/hospitals", h.Search)
}

// Search handles POST /api/hospitals. An empty body is treated as an empty
// request so that the usual field validation reports what is missing.
func (h *HospitalHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req hospitals.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, apperr.InvalidInput("invalid request body"))
		return
	}

	resp, err := h.service.Search(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
