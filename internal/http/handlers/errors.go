// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable: clients branch on them. Generic
// codes mirror HTTP status semantics; domain codes name the business rule
// that failed. serviceError maps service sentinels onto (status, code) so
// every handler reports the same failure the same way.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "quota_exceeded",
//	  "message": "daily limit reached"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-habit-backend/internal/http/middleware"
	"github.com/tbourn/go-habit-backend/internal/services"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"
	ErrCodeUnavailable      = "service_unavailable"

	// Domain-specific:
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeQuotaExceeded    = "quota_exceeded"
	ErrCodeNoCheckIns       = "no_checkins"
	ErrCodeNoCustomer       = "no_customer"
	ErrCodeWebhookInvalid   = "webhook_invalid"
	ErrCodeAnalysisFailed   = "analysis_failed"
	ErrCodeUploadFailed     = "upload_failed"
	ErrCodeCreateFailed     = "create_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeUpdateFailed     = "update_failed"
	ErrCodeBillingFailed    = "billing_failed"
)

// serviceError writes the envelope for err. Known service sentinels get
// their own status and code; anything else is a 500 with fallbackCode.
func serviceError(c *gin.Context, err error, fallbackCode string) {
	switch {
	case errors.Is(err, services.ErrInvalidCheckIn),
		errors.Is(err, services.ErrInvalidPreferences),
		errors.Is(err, services.ErrInvalidTimezone),
		errors.Is(err, services.ErrInvalidWeekKey),
		errors.Is(err, services.ErrInvalidFileType),
		errors.Is(err, services.ErrGoalNotFound):
		fail(c, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
	case errors.Is(err, services.ErrCheckInNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "check-in not found")
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
	case errors.Is(err, services.ErrNoCheckInsForWeek):
		fail(c, http.StatusNotFound, ErrCodeNoCheckIns, err.Error())
	case errors.Is(err, services.ErrQuotaExceeded):
		fail(c, http.StatusTooManyRequests, ErrCodeQuotaExceeded, err.Error())
	case errors.Is(err, services.ErrUserRequired):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
	case errors.Is(err, services.ErrNoCustomer):
		fail(c, http.StatusBadRequest, ErrCodeNoCustomer, err.Error())
	case errors.Is(err, services.ErrInvalidWebhook):
		fail(c, http.StatusBadRequest, ErrCodeWebhookInvalid, "invalid webhook")
	case errors.Is(err, services.ErrStorageDisabled),
		errors.Is(err, services.ErrBillingDisabled):
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, err.Error())
	default:
		middleware.LoggerFrom(c).Error().Err(err).Str("code", fallbackCode).Msg("service error")
		fail(c, http.StatusInternalServerError, fallbackCode, "internal error")
	}
}
