package postgres

import (
	"context"

	"docflow/internal/model"
	"docflow/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db repository.Querier
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db repository.Querier) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

// FindByID fetches a single user by its ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT id, name, email, role, created_at FROM users WHERE id = $1`
	row := r.db.QueryRowContext(ctx, q, id)
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListIDsByRole returns the ids of every user holding the given role.
func (r *UserPostgres) ListIDsByRole(ctx context.Context, role model.Role) ([]string, error) {
	const q = `SELECT id FROM users WHERE role = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, q, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
