package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ariefcatur/go-streaming-store/internal/apperr"
)

const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeConflict        = "CONFLICT"
	CodeUnavailable     = "SERVICE_UNAVAILABLE"
	CodeInternalError   = "INTERNAL_ERROR"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// writeError maps err to a status by its apperr kind. Store failures are
// logged and their detail is not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch apperr.Kind(err) {
	case apperr.ErrValidation:
		writeErrorCode(w, http.StatusBadRequest, CodeValidationError, err.Error())
	case apperr.ErrAuthDenied:
		writeErrorCode(w, http.StatusUnauthorized, CodeUnauthorized, err.Error())
	case apperr.ErrNotFound:
		writeErrorCode(w, http.StatusNotFound, CodeNotFound, err.Error())
	case apperr.ErrStateConflict:
		writeErrorCode(w, http.StatusConflict, CodeConflict, err.Error())
	case apperr.ErrConnection:
		logger.Error("request failed", slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())), slog.Any("error", err))
		writeErrorCode(w, http.StatusServiceUnavailable, CodeUnavailable, "data store unavailable, please retry")
	default:
		logger.Error("request failed", slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())), slog.Any("error", err))
		writeErrorCode(w, http.StatusInternalServerError, CodeInternalError, "internal error")
	}
}

const maxBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("request body too large")
		}
		return apperr.Validation("invalid json: %v", err)
	}
	return nil
}
