package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"loan-underwriter/internal/api/handler/dto"
	"loan-underwriter/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, message := http.StatusInternalServerError, "An unexpected error occurred."
	detail := dto.ErrorDetail{}
	var validationError *apperrors.ValidationError
	var persistenceError *apperrors.PersistenceError

	switch {
	case errors.As(err, &persistenceError) && persistenceError.Partial:
		status, message = http.StatusServiceUnavailable, "Loan request stored but its schedule could not be saved; retry the schedule."
		detail.Code, detail.RequestID = "PARTIAL_FAILURE", persistenceError.RequestID
		slog.Default().Error("Partial submission failure", "error", err)
	case errors.Is(err, apperrors.ErrTotalFailure):
		detail.Code = "TOTAL_FAILURE"
		slog.Default().Error("Submission not stored", "error", err)
	case errors.As(err, &validationError):
		status, message = http.StatusBadRequest, validationError.Message
		detail.Code, detail.Field = "VALIDATION_ERROR", validationError.Field
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found."
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidTerm), errors.Is(err, apperrors.ErrInvalidAmount):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrAlreadyPaid), errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrAlreadyExists):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Unauthorized"
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	detail.Message = message
	respondJSON(w, status, dto.ErrorResponse{Error: detail})
}

func getUUIDFromURL(r *http.Request, param string) (uuid.UUID, error) {
	idStr := chi.URLParam(r, param)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%w: %s not found in URL path", apperrors.ErrInvalidArgument, param)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s format in URL path: %s", apperrors.ErrInvalidArgument, param, idStr)
	}
	return id, nil
}

// logLevelFor keeps client-caused failures out of the error log.
func logLevelFor(err error) slog.Level {
	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrInvalidArgument) || errors.Is(err, apperrors.ErrAlreadyPaid) ||
		errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrInvalidTerm) ||
		errors.Is(err, apperrors.ErrInvalidAmount) {
		return slog.LevelWarn
	}
	return slog.LevelError
}
