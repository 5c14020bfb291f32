package postgres

import (
	"context"

	"docflow/internal/model"
	"docflow/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses parameterized queries only and contains no business logic. The
// Querier may be a *sql.DB or a workflow transaction.
type DocumentPostgres struct {
	db repository.Querier
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db repository.Querier) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, title, description, document_type, storage_path, file_name, file_size, version, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, title, description, document_type, storage_path, file_name, file_size, version, status, created_by, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Title,
		doc.Description,
		doc.DocumentType,
		doc.StoragePath,
		doc.FileName,
		doc.FileSize,
		doc.Version,
		doc.Status,
		doc.CreatedBy,
		doc.CreatedAt,
	)
	var out model.Document
	if err := row.Scan(
		&out.ID,
		&out.Title,
		&out.Description,
		&out.DocumentType,
		&out.StoragePath,
		&out.FileName,
		&out.FileSize,
		&out.Version,
		&out.Status,
		&out.CreatedBy,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single document by its ID together with the creator's identity.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT d.id, d.title, d.description, d.document_type, d.storage_path, d.file_name, d.file_size, d.version, d.status, d.created_by, d.created_at,
		       u.name, u.email
		FROM documents d
		JOIN users u ON d.created_by = u.id
		WHERE d.id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Description,
		&d.DocumentType,
		&d.StoragePath,
		&d.FileName,
		&d.FileSize,
		&d.Version,
		&d.Status,
		&d.CreatedBy,
		&d.CreatedAt,
		&d.CreatorName,
		&d.CreatorEmail,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns documents filtered by status and an optional LIKE search over
// title, description, and document type, using LIMIT/OFFSET pagination.
func (r *DocumentPostgres) List(ctx context.Context, q repository.DocumentQuery) (*repository.PageResult[model.Document], error) {
	const qCount = `
		SELECT COUNT(*)
		FROM documents
		WHERE status = $1
		  AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%' OR document_type ILIKE '%' || $2 || '%')
	`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, q.Status, q.Search).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT d.id, d.title, d.description, d.document_type, d.storage_path, d.file_name, d.file_size, d.version, d.status, d.created_by, d.created_at,
		       u.name, u.email
		FROM documents d
		JOIN users u ON d.created_by = u.id
		WHERE d.status = $1
		  AND ($2 = '' OR d.title ILIKE '%' || $2 || '%' OR d.description ILIKE '%' || $2 || '%' OR d.document_type ILIKE '%' || $2 || '%')
		ORDER BY d.created_at DESC, d.id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, qList, q.Status, q.Search, q.Page.Limit, q.Page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(
			&d.ID,
			&d.Title,
			&d.Description,
			&d.DocumentType,
			&d.StoragePath,
			&d.FileName,
			&d.FileSize,
			&d.Version,
			&d.Status,
			&d.CreatedBy,
			&d.CreatedAt,
			&d.CreatorName,
			&d.CreatorEmail,
		); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// UpdateStatus performs a conditional status transition. The prior status is
// part of the predicate, so a document in any other state is a zero-row no-op.
func (r *DocumentPostgres) UpdateStatus(ctx context.Context, id string, from, to model.DocumentStatus) (bool, error) {
	const q = `UPDATE documents SET status = $1 WHERE id = $2 AND status = $3`
	res, err := r.db.ExecContext(ctx, q, to, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetStatus sets the status without a guard; used when the workflow returns
// a document to ACTIVE on rejection regardless of which PENDING_* it held.
func (r *DocumentPostgres) SetStatus(ctx context.Context, id string, status model.DocumentStatus) error {
	const q = `UPDATE documents SET status = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, q, status, id)
	return err
}

// ApplyReplace swaps in the staged file and bumps the version, guarded on
// status PENDING_REPLACE.
func (r *DocumentPostgres) ApplyReplace(ctx context.Context, id, storagePath, fileName string) (bool, error) {
	const q = `
		UPDATE documents
		SET storage_path = $1, file_name = $2, version = version + 1, status = 'ACTIVE'
		WHERE id = $3 AND status = 'PENDING_REPLACE'
	`
	res, err := r.db.ExecContext(ctx, q, storagePath, fileName, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
