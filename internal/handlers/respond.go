package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// classStatus maps engine error classes to HTTP statuses.
var classStatus = map[apperrors.Class]int{
	apperrors.ClassValidation:    http.StatusBadRequest,
	apperrors.ClassBusiness:      http.StatusUnprocessableEntity,
	apperrors.ClassConflict:      http.StatusConflict,
	apperrors.ClassConfiguration: http.StatusFailedDependency,
}

// errorResponse converts a service error into a status and body. Unknown
// failures are reported with fallback so internals do not leak.
func errorResponse(err error, fallback string) (int, dto.ErrorResponse) {
	var engineErr apperrors.EngineError
	if errors.As(err, &engineErr) {
		status, ok := classStatus[engineErr.Class()]
		if !ok {
			status = http.StatusInternalServerError
		}
		return status, dto.ErrorResponse{
			Error:   engineErr.Error(),
			Code:    engineErr.Code(),
			Class:   string(engineErr.Class()),
			Details: engineErr,
		}
	}

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: "VALIDATION_FAILED", Class: string(apperrors.ClassValidation)}
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, dto.ErrorResponse{Error: err.Error(), Code: "NOT_FOUND"}
	case errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict, dto.ErrorResponse{Error: err.Error(), Code: "DUPLICATE", Class: string(apperrors.ClassConflict)}
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.ErrorResponse{Error: err.Error(), Code: "CONFLICT", Class: string(apperrors.ClassConflict)}
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, dto.ErrorResponse{Error: "Forbidden", Code: "FORBIDDEN"}
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code >= 400 && appErr.Code < 500 {
		return appErr.Code, dto.ErrorResponse{Error: appErr.Message}
	}
	return http.StatusInternalServerError, dto.ErrorResponse{Error: fallback, Code: "INTERNAL"}
}

// respondError writes the error body and logs at a level matching the status.
func respondError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status, body := errorResponse(err, fallback)
	if status >= http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()))
	} else {
		logger.Warn("Request rejected", slog.Int("status", status), slog.String("code", body.Code), slog.String("error", err.Error()))
	}
	c.JSON(status, body)
}

// bindFailed reports a malformed request body or query.
func bindFailed(c *gin.Context, op string, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Warn("Failed to bind request for "+op, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: "Invalid request format: " + err.Error(),
		Code:  "INVALID_REQUEST",
		Class: string(apperrors.ClassValidation),
	})
}

// requireUser returns the authenticated user or writes 401.
func requireUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return "", false
	}
	return userID, true
}
