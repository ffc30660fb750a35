// Package response writes the JSON envelope for handlers that run outside
// the huma API, such as the event stream and router fallbacks.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/carbontrack/carbontrack-server/internal/errors"
	"github.com/carbontrack/carbontrack-server/internal/store"
)

// EnvelopeVersion is the version of the response envelope format.
const EnvelopeVersion = 1

// ErrorEnvelope is the body of every error response.
type ErrorEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error writes an error envelope with the given status code.
func Error(w http.ResponseWriter, status int, code domainerrors.Code, message string, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	envelope := ErrorEnvelope{
		Version: EnvelopeVersion,
		Success: false,
		Error:   message,
		Code:    string(code),
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(envelope); err != nil && logger != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}

// Unauthorized writes a 401 Unauthorized response.
func Unauthorized(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusUnauthorized, domainerrors.CodeUnauthorized, message, logger)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, domainerrors.CodeNotFound, message, logger)
}

// MethodNotAllowed writes a 405 Method Not Allowed response.
func MethodNotAllowed(w http.ResponseWriter, logger *slog.Logger) {
	Error(w, http.StatusMethodNotAllowed, domainerrors.CodeValidation, "Method not allowed", logger)
}

// InternalError writes a 500 response. The message is never shown to clients.
func InternalError(w http.ResponseWriter, logger *slog.Logger) {
	Error(w, http.StatusInternalServerError, domainerrors.CodeInternal, "Internal server error", logger)
}

// HandleError writes an appropriate HTTP response based on the error type.
// Domain and store errors keep their status codes, unknown errors become 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		if domainErr.HTTPStatus() >= http.StatusInternalServerError {
			logErr(logger, err)
			InternalError(w, logger)
			return
		}
		Error(w, domainErr.HTTPStatus(), domainErr.Code, domainErr.Message, logger)
		return
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) && storeErr.HTTPCode() < http.StatusInternalServerError {
		Error(w, storeErr.HTTPCode(), codeForStatus(storeErr.HTTPCode()), storeErr.Message, logger)
		return
	}

	logErr(logger, err)
	InternalError(w, logger)
}

func logErr(logger *slog.Logger, err error) {
	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
}

func codeForStatus(status int) domainerrors.Code {
	switch status {
	case http.StatusNotFound:
		return domainerrors.CodeNotFound
	case http.StatusConflict:
		return domainerrors.CodeAlreadyExists
	case http.StatusForbidden:
		return domainerrors.CodeForbidden
	case http.StatusUnauthorized:
		return domainerrors.CodeUnauthorized
	default:
		return domainerrors.CodeValidation
	}
}
