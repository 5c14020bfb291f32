package postgres

import (
	"context"

	"docflow/internal/model"
	"docflow/internal/repository"
)

// NotificationPostgres is a PostgreSQL implementation of repository.NotificationRepository.
type NotificationPostgres struct {
	db repository.Querier
}

// NewNotificationPostgres creates a new NotificationPostgres repository.
func NewNotificationPostgres(db repository.Querier) *NotificationPostgres {
	return &NotificationPostgres{db: db}
}

var _ repository.NotificationRepository = (*NotificationPostgres)(nil)

// Create inserts a notification row and returns the stored record.
func (r *NotificationPostgres) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	const q = `
		INSERT INTO notifications (id, user_id, title, message, type, related_request_id, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, user_id, title, message, type, related_request_id, is_read, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		n.ID,
		n.UserID,
		n.Title,
		n.Message,
		n.Type,
		n.RelatedRequestID,
		n.IsRead,
		n.CreatedAt,
	)
	var out model.Notification
	if err := row.Scan(
		&out.ID,
		&out.UserID,
		&out.Title,
		&out.Message,
		&out.Type,
		&out.RelatedRequestID,
		&out.IsRead,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns a user's notifications joined with the related request, newest first.
func (r *NotificationPostgres) List(ctx context.Context, q repository.NotificationQuery) (*repository.PageResult[model.Notification], error) {
	const qCount = `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND ($2 = FALSE OR is_read = FALSE)
	`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, q.UserID, q.UnreadOnly).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT n.id, n.user_id, n.title, n.message, n.type, n.related_request_id, n.is_read, n.created_at,
		       pr.action_type, pr.status
		FROM notifications n
		LEFT JOIN permission_requests pr ON n.related_request_id = pr.id
		WHERE n.user_id = $1 AND ($2 = FALSE OR n.is_read = FALSE)
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, qList, q.UserID, q.UnreadOnly, q.Page.Limit, q.Page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Title,
			&n.Message,
			&n.Type,
			&n.RelatedRequestID,
			&n.IsRead,
			&n.CreatedAt,
			&n.RequestAction,
			&n.RequestStatus,
		); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Notification]{
		Items: items,
		Total: total,
	}, nil
}

// MarkRead flags one notification as read, scoped to the owning user.
func (r *NotificationPostgres) MarkRead(ctx context.Context, id, userID string) (bool, error) {
	const q = `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkAllRead flags every unread notification of the user as read.
func (r *NotificationPostgres) MarkAllRead(ctx context.Context, userID string) error {
	const q = `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`
	_, err := r.db.ExecContext(ctx, q, userID)
	return err
}

// CountUnread returns the user's unread notification count.
func (r *NotificationPostgres) CountUnread(ctx context.Context, userID string) (int, error) {
	const q = `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`
	var count int
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes one notification, scoped to the owning user.
func (r *NotificationPostgres) Delete(ctx context.Context, id, userID string) (bool, error) {
	const q = `DELETE FROM notifications WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
