package repository

import (
	"context"
	"time"

	"docflow/internal/model"
)

// RequestQuery filters a permission-request listing.
type RequestQuery struct {
	Page   PageQuery
	Status model.RequestStatus
}

// PermissionRequestRepository defines data access for permission requests.
type PermissionRequestRepository interface {
	// Create inserts a new PENDING request and returns the stored row.
	Create(ctx context.Context, req *model.PermissionRequest) (*model.PermissionRequest, error)

	// FindByID returns a request by its ID.
	FindByID(ctx context.Context, id string) (*model.PermissionRequest, error)

	// List returns requests in the given status joined with document title
	// and requester identity, newest first.
	List(ctx context.Context, q RequestQuery) (*PageResult[model.PermissionRequest], error)

	// Resolve moves a PENDING request to a terminal status and records the
	// reviewer. False with a nil error means the request was not PENDING —
	// a concurrent reviewer got there first.
	Resolve(ctx context.Context, id string, status model.RequestStatus, reviewerID string, reviewedAt time.Time) (bool, error)
}
