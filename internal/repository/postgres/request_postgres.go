package postgres

import (
	"context"
	"time"

	"docflow/internal/model"
	"docflow/internal/repository"
)

// RequestPostgres is a PostgreSQL implementation of repository.PermissionRequestRepository.
type RequestPostgres struct {
	db repository.Querier
}

// NewRequestPostgres creates a new RequestPostgres repository.
func NewRequestPostgres(db repository.Querier) *RequestPostgres {
	return &RequestPostgres{db: db}
}

var _ repository.PermissionRequestRepository = (*RequestPostgres)(nil)

// Create inserts a new request row and returns the stored record.
func (r *RequestPostgres) Create(ctx context.Context, req *model.PermissionRequest) (*model.PermissionRequest, error) {
	const q = `
		INSERT INTO permission_requests (id, document_id, requested_by, action_type, reason, new_storage_path, new_file_name, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, document_id, requested_by, action_type, reason, new_storage_path, new_file_name, status, reviewed_by, reviewed_at, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		req.ID,
		req.DocumentID,
		req.RequestedBy,
		req.ActionType,
		req.Reason,
		req.NewStoragePath,
		req.NewFileName,
		req.Status,
		req.CreatedAt,
	)
	var out model.PermissionRequest
	if err := row.Scan(
		&out.ID,
		&out.DocumentID,
		&out.RequestedBy,
		&out.ActionType,
		&out.Reason,
		&out.NewStoragePath,
		&out.NewFileName,
		&out.Status,
		&out.ReviewedBy,
		&out.ReviewedAt,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single request by its ID.
func (r *RequestPostgres) FindByID(ctx context.Context, id string) (*model.PermissionRequest, error) {
	const q = `
		SELECT id, document_id, requested_by, action_type, reason, new_storage_path, new_file_name, status, reviewed_by, reviewed_at, created_at
		FROM permission_requests
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var req model.PermissionRequest
	if err := row.Scan(
		&req.ID,
		&req.DocumentID,
		&req.RequestedBy,
		&req.ActionType,
		&req.Reason,
		&req.NewStoragePath,
		&req.NewFileName,
		&req.Status,
		&req.ReviewedBy,
		&req.ReviewedAt,
		&req.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns requests in the given status with document title and
// requester identity, newest first.
func (r *RequestPostgres) List(ctx context.Context, q repository.RequestQuery) (*repository.PageResult[model.PermissionRequest], error) {
	const qCount = `SELECT COUNT(*) FROM permission_requests WHERE status = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, q.Status).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT pr.id, pr.document_id, pr.requested_by, pr.action_type, pr.reason, pr.new_storage_path, pr.new_file_name, pr.status, pr.reviewed_by, pr.reviewed_at, pr.created_at,
		       d.title, u.name, u.email
		FROM permission_requests pr
		JOIN documents d ON pr.document_id = d.id
		JOIN users u ON pr.requested_by = u.id
		WHERE pr.status = $1
		ORDER BY pr.created_at DESC, pr.id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, q.Status, q.Page.Limit, q.Page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.PermissionRequest, 0)
	for rows.Next() {
		var req model.PermissionRequest
		if err := rows.Scan(
			&req.ID,
			&req.DocumentID,
			&req.RequestedBy,
			&req.ActionType,
			&req.Reason,
			&req.NewStoragePath,
			&req.NewFileName,
			&req.Status,
			&req.ReviewedBy,
			&req.ReviewedAt,
			&req.CreatedAt,
			&req.DocumentTitle,
			&req.RequesterName,
			&req.RequesterEmail,
		); err != nil {
			return nil, err
		}
		items = append(items, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.PermissionRequest]{
		Items: items,
		Total: total,
	}, nil
}

// Resolve moves a PENDING request to a terminal status. The PENDING guard
// in the predicate is what makes two racing reviewers resolve exactly once.
func (r *RequestPostgres) Resolve(ctx context.Context, id string, status model.RequestStatus, reviewerID string, reviewedAt time.Time) (bool, error) {
	const q = `
		UPDATE permission_requests
		SET status = $1, reviewed_by = $2, reviewed_at = $3
		WHERE id = $4 AND status = 'PENDING'
	`
	res, err := r.db.ExecContext(ctx, q, status, reviewerID, reviewedAt, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
