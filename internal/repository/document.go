package repository

import (
	"context"

	"docflow/internal/model"
)

// DocumentQuery filters a document listing.
type DocumentQuery struct {
	Page   PageQuery
	Search string
	Status model.DocumentStatus
}

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here — strictly persistence operations.
//
// State-changing methods take the expected prior status as part of the
// predicate and report whether a row matched, so callers can turn a zero-row
// update into a conflict error instead of relying on isolation alone.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, including creator name/email.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a paginated list of documents and total rows count for the given filter.
	List(ctx context.Context, q DocumentQuery) (*PageResult[model.Document], error)

	// UpdateStatus moves a document from one status to another. It returns
	// false with a nil error when the document is absent or not in `from`.
	UpdateStatus(ctx context.Context, id string, from, to model.DocumentStatus) (bool, error)

	// SetStatus sets a document's status without a prior-status guard.
	SetStatus(ctx context.Context, id string, status model.DocumentStatus) error

	// ApplyReplace swaps in the staged file, bumps the version, and returns
	// the document to ACTIVE. The predicate requires status PENDING_REPLACE;
	// false means no row matched.
	ApplyReplace(ctx context.Context, id, storagePath, fileName string) (bool, error)
}
