package service

import "errors"

// Closed error set for the workflow. Handlers map these to HTTP statuses;
// anything else is a generic internal failure.
var (
	// Validation errors: a required field is missing or malformed.
	ErrIDRequired     = errors.New("id is required")
	ErrTitleRequired  = errors.New("title is required")
	ErrReasonRequired = errors.New("reason is required")
	ErrReaderNil      = errors.New("reader is nil")

	// ErrNotFound reports an absent entity.
	ErrNotFound = errors.New("not found")

	// ErrDocumentNotActive reports that a document is absent or not in
	// ACTIVE status. A non-ACTIVE document already carries a pending
	// request, so this doubles as the one-outstanding-request guard.
	ErrDocumentNotActive = errors.New("document not found or not active")

	// ErrRequestProcessed reports that a permission request is absent from
	// PENDING — either already resolved or lost to a concurrent reviewer.
	ErrRequestProcessed = errors.New("request already processed")
)
