package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// ErrorType classifies pipeline errors.
type ErrorType string

const (
	ErrTypeFormat     ErrorType = "UNSUPPORTED_FORMAT"
	ErrTypeInput      ErrorType = "MISSING_INPUT"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeColumn     ErrorType = "DUPLICATE_COLUMN"
	ErrTypeEmpty      ErrorType = "EMPTY_TABLE"
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeExport     ErrorType = "EXPORT"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
)

// PipelineError is the application-specific error carried across package
// boundaries. It keeps a stable code for handlers while wrapping the cause.
type PipelineError struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to see the cause.
func (e *PipelineError) Unwrap() error { return e.Cause }

// Is matches two pipeline errors by type so sentinel comparisons work
// through wrapping.
func (e *PipelineError) Is(target error) bool {
	var pe *PipelineError
	if errors.As(target, &pe) {
		return pe.Type == e.Type
	}
	return false
}

// New creates a pipeline error.
func New(errType ErrorType, message string, cause error) *PipelineError {
	return &PipelineError{Type: errType, Message: message, Cause: cause}
}

// Sentinel errors for the fatal pre-core conditions and the one cleaning
// failure mode. Everything else in the core degrades via fallbacks.
var (
	ErrUnsupportedFormat = &PipelineError{Type: ErrTypeFormat, Message: "unsupported input format"}
	ErrMissingInput      = &PipelineError{Type: ErrTypeInput, Message: "input source not found"}
	ErrDuplicateColumn   = &PipelineError{Type: ErrTypeColumn, Message: "column labels collide after normalization"}
	ErrEmptyTable        = &PipelineError{Type: ErrTypeEmpty, Message: "table has no columns"}
)

// UnsupportedFormat wraps the sentinel with the offending extension.
func UnsupportedFormat(ext string) *PipelineError {
	return &PipelineError{Type: ErrTypeFormat, Message: fmt.Sprintf("unsupported input format: %s", ext)}
}

// MissingInput wraps the sentinel with the path that was not found.
func MissingInput(path string, cause error) *PipelineError {
	return &PipelineError{Type: ErrTypeInput, Message: fmt.Sprintf("input source not found: %s", path), Cause: cause}
}

// DuplicateColumn reports the two source labels whose normalized names collide.
func DuplicateColumn(first, second, normalized string) *PipelineError {
	return &PipelineError{
		Type:    ErrTypeColumn,
		Message: fmt.Sprintf("labels %q and %q both normalize to %q", first, second, normalized),
	}
}

// HTTPError is the JSON error body served by the report server.
type HTTPError struct {
	StatusCode int       `json:"status_code"`
	ErrorCode  ErrorType `json:"error_code"`
	Message    string    `json:"message"`
}

// Render implements render.Renderer for chi/render.
func (e *HTTPError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ToHTTP maps an error to the JSON body and status the report server sends.
func ToHTTP(err error) *HTTPError {
	var pe *PipelineError
	if errors.As(err, &pe) {
		status := http.StatusInternalServerError
		switch pe.Type {
		case ErrTypeNotFound, ErrTypeInput:
			status = http.StatusNotFound
		case ErrTypeValidation, ErrTypeFormat:
			status = http.StatusBadRequest
		}
		return &HTTPError{StatusCode: status, ErrorCode: pe.Type, Message: pe.Message}
	}
	return &HTTPError{StatusCode: http.StatusInternalServerError, ErrorCode: "INTERNAL", Message: err.Error()}
}

// NotFound builds the 404 body for the report server.
func NotFound(resource string) *HTTPError {
	return &HTTPError{StatusCode: http.StatusNotFound, ErrorCode: ErrTypeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}
