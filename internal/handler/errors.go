package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"tapstampr/internal/domain"
	"tapstampr/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidOperation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrMalformedData):
		httputil.RespondErrorWithExtras(w, http.StatusInternalServerError, "stored folders are malformed",
			map[string]any{"reason": err.Error()})
	case errors.Is(err, domain.ErrStorage):
		logger.Error("storage unavailable", "error", err)
		httputil.RespondError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		logger.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
