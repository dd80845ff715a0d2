package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/inkwell-hq/inkwell-engine/pkg/apperrors"
)

// writeServiceError maps a service error onto the wire. Absent resources,
// cross-tenant access and missing department membership all arrive here as
// ErrNotFound and all produce the same 404 body, so the response never
// reveals whether the resource exists. Anything unrecognized is a 500,
// logged with the given message.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error, logMsg string, fields ...zap.Field) {
	var status int
	var code, message string

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		if werr := NotFoundResponse(w); werr != nil {
			logger.Error("Failed to write error response", zap.Error(werr))
		}
		return
	case errors.Is(err, apperrors.ErrForbidden):
		status, code, message = http.StatusForbidden, "forbidden", "Insufficient permissions"
	case errors.Is(err, apperrors.ErrConflict):
		status, code, message = http.StatusConflict, "conflict", err.Error()
	case errors.Is(err, apperrors.ErrInvalidInput), errors.Is(err, apperrors.ErrInvalidRole):
		status, code, message = http.StatusBadRequest, "invalid_request", err.Error()
	default:
		logger.Error(logMsg, append(fields, zap.Error(err))...)
		status, code, message = http.StatusInternalServerError, "internal_error", logMsg
	}

	if err := ErrorResponse(w, status, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
