// Package apperr defines the error taxonomy shared by services and the HTTP
// layer, and the JSON envelope errors are reported in.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindUnsupportedMedia
	KindDocument
	KindConfig
	KindUpstream
	KindModel
)

// Error codes reported to clients
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnsupportedMedia = "UNSUPPORTED_MEDIA_TYPE"
	CodeDocument         = "DOCUMENT_ERROR"
	CodeConfig           = "CONFIG_ERROR"
	CodeUpstream         = "UPSTREAM_ERROR"
	CodeModel            = "MODEL_ERROR"
	CodeInternal         = "INTERNAL_ERROR"
)

// Error is an application error carrying enough information to pick an HTTP
// status and a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code(), e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Code returns the client-facing error code for the error kind.
func (e *Error) Code() string {
	switch e.Kind {
	case KindInvalidInput:
		return CodeValidation
	case KindUnsupportedMedia:
		return CodeUnsupportedMedia
	case KindDocument:
		return CodeDocument
	case KindConfig:
		return CodeConfig
	case KindUpstream:
		return CodeUpstream
	case KindModel:
		return CodeModel
	default:
		return CodeInternal
	}
}

// Status returns the HTTP status for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindInvalidInput, KindDocument:
		return http.StatusBadRequest
	case KindUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func InvalidInput(format string, args ...interface{}) *Error {
	return New(KindInvalidInput, fmt.Sprintf(format, args...), nil)
}

func UnsupportedMedia(format string, args ...interface{}) *Error {
	return New(KindUnsupportedMedia, fmt.Sprintf(format, args...), nil)
}

func Document(message string, cause error) *Error {
	return New(KindDocument, message, cause)
}

func Config(message string) *Error {
	return New(KindConfig, message, nil)
}

func Upstream(message string, cause error) *Error {
	return New(KindUpstream, message, cause)
}

func Model(message string, cause error) *Error {
	return New(KindModel, message, cause)
}

// As extracts an *Error from err. Errors outside the taxonomy are reported
// as internal errors.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(KindInternal, "Internal server error", err)
}

// StatusOf returns the HTTP status for any error.
func StatusOf(err error) int {
	return As(err).Status()
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// Response builds the client-facing envelope for err. The cause is appended
// to the message, since upstream status lines and snippets are useful to
// callers.
func Response(err error) *ErrorResponse {
	appErr := As(err)
	message := appErr.Message
	if appErr.Kind != KindInternal && appErr.Cause != nil {
		message = fmt.Sprintf("%s: %v", message, appErr.Cause)
	}
	return NewErrorResponse(appErr.Code(), message)
}
