// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// These symbolic constants give clients a stable, machine-readable taxonomy
// alongside the HTTP status. Generic codes mirror HTTP semantics; the
// domain-specific ones cover business failures a status alone cannot convey.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeIngestFailed = "ingest_failed"
	ErrCodeListFailed   = "list_failed"
	ErrCodeSaveFailed   = "save_failed"
)
