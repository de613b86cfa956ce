// Package services holds the application logic of the habit coach: the
// analysis pipeline and the services behind every HTTP operation.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

var (
	// ErrCheckInNotFound indicates that the check-in does not exist or is not
	// owned by the current user.
	ErrCheckInNotFound = errors.New("check-in not found")

	// ErrInvalidCheckIn is returned when a check-in payload fails validation.
	ErrInvalidCheckIn = errors.New("invalid check-in")

	// ErrUserRequired is returned when an operation is invoked without a
	// resolved user.
	ErrUserRequired = errors.New("user is required")

	// ErrUserNotFound is returned when a user id does not resolve.
	ErrUserNotFound = errors.New("user not found")

	// ErrCheckInRequired is returned by the analyzer when no check-in is given.
	ErrCheckInRequired = errors.New("check-in is required")

	// ErrInvalidWeekKey is returned when a week key is not YYYY-Www.
	ErrInvalidWeekKey = errors.New("week key must look like 2025-W07")

	// ErrNoCheckInsForWeek is returned when a weekly summary is requested for
	// a week without any check-ins.
	ErrNoCheckInsForWeek = errors.New("no check-ins found for this week")

	// ErrGoalNotFound is returned when onboarding references an unknown goal.
	ErrGoalNotFound = errors.New("goal not found")

	// ErrInvalidPreferences wraps a preferences validation failure.
	ErrInvalidPreferences = errors.New("invalid preferences")

	// ErrInvalidTimezone is returned for timezones unknown to the tz database.
	ErrInvalidTimezone = errors.New("invalid timezone")

	// ErrInvalidFileType is returned for uploads that are not supported images.
	ErrInvalidFileType = errors.New("file type must be image/jpeg, image/png or image/webp")

	// ErrQuotaExceeded is returned when a daily quota is exhausted.
	ErrQuotaExceeded = errors.New("daily limit reached")

	// ErrStorageDisabled is returned when uploads are requested but no bucket
	// is configured.
	ErrStorageDisabled = errors.New("storage not configured")

	// ErrBillingDisabled is returned when billing operations are requested
	// without Stripe credentials.
	ErrBillingDisabled = errors.New("billing not configured")

	// ErrNoCustomer is returned when a portal session is requested by a user
	// who never subscribed.
	ErrNoCustomer = errors.New("no billing customer for user")

	// ErrInvalidWebhook is returned when a webhook payload cannot be verified.
	ErrInvalidWebhook = errors.New("invalid webhook")
)
