package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"invalid input", InvalidInput("condition required"), http.StatusBadRequest, CodeValidation},
		{"unsupported media", UnsupportedMedia("Rules file must be a PDF."), http.StatusUnsupportedMediaType, CodeUnsupportedMedia},
		{"document", Document("Failed to read bill PDF", cause), http.StatusBadRequest, CodeDocument},
		{"config", Config("Missing OPENROUTER_API_KEY"), http.StatusInternalServerError, CodeConfig},
		{"upstream", Upstream("OpenRouter request failed", cause), http.StatusBadGateway, CodeUpstream},
		{"model", Model("AI processing failed", cause), http.StatusInternalServerError, CodeModel},
		{"wrapped", fmt.Errorf("search: %w", InvalidInput("lat/lon must be numbers")), http.StatusBadRequest, CodeValidation},
		{"plain", cause, http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
			assert.Equal(t, tt.code, Response(tt.err).Error.Code)
		})
	}
}

func TestResponse_Messages(t *testing.T) {
	resp := Response(Upstream("OpenRouter error 503", errors.New("overloaded")))
	assert.Equal(t, "OpenRouter error 503: overloaded", resp.Error.Message)

	resp = Response(errors.New("secret internals"))
	assert.Equal(t, "Internal server error", resp.Error.Message)
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root")
	err := Document("Failed to read rules PDF", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "DOCUMENT_ERROR")
}
