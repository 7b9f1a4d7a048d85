package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/target/hiring-api/internal/errors"
)

const maxBodyBytes = 1 << 20

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Unknown fields and trailing data are rejected.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil && dec.More() {
		err = errors.New("request body must contain a single JSON object")
	}
	if errors.Is(err, io.EOF) {
		err = errors.New("request body is required")
	}
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
	Field   string
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, errorBody{Error: p.ErrCode, Message: p.Err.Error(), Field: p.Field})
}

// StatusFor maps an error to its HTTP status and wire code.
// Errors outside the taxonomy are internal.
func StatusFor(err error) (int, string) {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest, string(apperrors.ErrCodeValidation)
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden, string(apperrors.ErrCodeForbidden)
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound, string(apperrors.ErrCodeNotFound)
	case apperrors.ErrCodeConflict, apperrors.ErrCodeForeignKey:
		return http.StatusConflict, string(apperrors.ErrCodeConflict)
	case apperrors.ErrCodeInvalidTransition:
		return http.StatusConflict, string(apperrors.ErrCodeInvalidTransition)
	case apperrors.ErrCodePreconditionFailed:
		return http.StatusPreconditionFailed, string(apperrors.ErrCodePreconditionFailed)
	case apperrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests, string(apperrors.ErrCodeRateLimited)
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout, string(apperrors.ErrCodeTimeout)
	default:
		return http.StatusInternalServerError, string(apperrors.ErrCodeInternal)
	}
}

// WriteAppError renders err with the status its code maps to. Internal
// errors are logged and their message is not sent to the client.
func WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := StatusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "status", status, "error", err)
		WriteError(w, ErrorParams{Code: status, ErrCode: code, Err: errors.New(http.StatusText(status))})
		return
	}

	msg := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	WriteError(w, ErrorParams{Code: status, ErrCode: code, Err: errors.New(msg), Field: apperrors.GetField(err)})
}
