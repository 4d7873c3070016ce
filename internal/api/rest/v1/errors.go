package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/gin-gonic/gin"
)

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, findings.ErrNotFound),
		errors.Is(err, scans.ErrNotFound),
		errors.Is(err, reports.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, findings.ErrInvalidTransition),
		errors.Is(err, scans.ErrInvalidTransition),
		errors.Is(err, scans.ErrScheduleExists),
		errors.Is(err, reports.ErrSignatureMismatch):
		return http.StatusConflict
	case errors.Is(err, scans.ErrThrottled):
		return http.StatusTooManyRequests
	case errors.Is(err, scans.ErrUnknownTool),
		errors.Is(err, scans.ErrInvalidReport),
		errors.Is(err, scans.ErrInvalidTarget),
		errors.Is(err, scans.ErrImportOnly),
		errors.Is(err, reports.ErrUnsupportedFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, ErrorResponse{Message: message})
}

// abortLookup answers a failed fetch by ID: 404 for a missing entity, the mapped status otherwise
func abortLookup(ctx *gin.Context, err error, entity, id string) {
	status := statusFor(err)
	if status == http.StatusNotFound {
		abortWithError(ctx, status, fmt.Sprintf("%s with id %s not found", entity, id))
		return
	}
	abortWithError(ctx, status, fmt.Sprintf("error fetching %s %s: %v", entity, id, err))
}
