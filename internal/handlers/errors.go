package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/firmfin/treasury_ledger_app/internal/apperrors"
	"github.com/firmfin/treasury_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// requestScope pulls the request logger and the authenticated actor/firm pair
// out of the context. It answers 401 itself when the scope is missing.
func requestScope(c *gin.Context) (logger *slog.Logger, firmID string, actorID string, ok bool) {
	logger = middleware.GetLoggerFromCtx(c.Request.Context())
	if logger == nil {
		logger = slog.Default()
	}
	actorID, okActor := middleware.GetActorIDFromContext(c)
	firmID, okFirm := middleware.GetFirmIDFromContext(c)
	if !okActor || !okFirm {
		logger.Error("Actor or firm scope missing from context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return logger, "", "", false
	}
	return logger, firmID, actorID, true
}

// statusForError maps service errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrInvalidState),
		errors.Is(err, apperrors.ErrInvalidOperation),
		errors.Is(err, apperrors.ErrPreconditionFailed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the error and writes the mapped status. Internal errors
// get a generic message so repository details never leak to clients.
func respondError(c *gin.Context, logger *slog.Logger, err error, internalMsg string) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.Error(internalMsg, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": internalMsg})
		return
	}
	logger.Warn(internalMsg, slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": err.Error()})
}
