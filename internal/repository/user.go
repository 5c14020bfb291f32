package repository

import (
	"context"

	"docflow/internal/model"
)

// UserRepository is the user directory as seen by the workflow: account
// lookup and role-filtered id listing. Credential management is external.
type UserRepository interface {
	// FindByID returns a user by its ID.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// ListIDsByRole returns the ids of every user holding the given role.
	// An empty result is not an error.
	ListIDsByRole(ctx context.Context, role model.Role) ([]string, error)
}
