// Package services implements the business logic of the payments backend:
// webhook reconciliation against the ledger and notification dispatch.
// This file centralizes common service-level error values so that they can
// be consistently returned by service methods and checked by callers.
//
// Translation into HTTP status codes is performed at the handler layer.
package services

import "errors"

var (
	// ErrMissingFields is returned when a webhook payload omits the
	// required type or amount fields.
	ErrMissingFields = errors.New("type and amount are required")

	// ErrInvalidType is returned when the payload's type is not one of the
	// accepted payment instrument kinds.
	ErrInvalidType = errors.New("type must be one of: boleto, pix, cartao")

	// ErrInvalidAmount is returned when the payload's amount is negative.
	ErrInvalidAmount = errors.New("amount must be non-negative")

	// ErrTransactionNotFound indicates that the requested ledger row does
	// not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrDuplicateSubscription is returned when registering a push endpoint
	// that already exists.
	ErrDuplicateSubscription = errors.New("subscription already exists")

	// ErrInvalidSubscription is returned when a subscription payload lacks
	// the endpoint or key material.
	ErrInvalidSubscription = errors.New("endpoint, p256dh and auth are required")

	// ErrInvalidTemplate is returned when a template payload lacks title or
	// message.
	ErrInvalidTemplate = errors.New("title and message are required")
)

// IsValidation reports whether err is one of the payload validation
// sentinels (mapped to 400 by the handlers).
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingFields) ||
		errors.Is(err, ErrInvalidType) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidSubscription) ||
		errors.Is(err, ErrInvalidTemplate)
}
