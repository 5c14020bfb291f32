package repository

import (
	"context"

	"docflow/internal/model"
)

// NotificationQuery filters a notification listing for one user.
type NotificationQuery struct {
	Page       PageQuery
	UserID     string
	UnreadOnly bool
}

// NotificationRepository defines data access for notifications.
// All read/write operations are scoped to the owning user.
type NotificationRepository interface {
	// Create inserts a notification row and returns the stored row.
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)

	// List returns a user's notifications joined with the related request's
	// action and status, newest first.
	List(ctx context.Context, q NotificationQuery) (*PageResult[model.Notification], error)

	// MarkRead flags one notification as read. False means no row belonged
	// to the user under that ID.
	MarkRead(ctx context.Context, id, userID string) (bool, error)

	// MarkAllRead flags every unread notification of the user as read.
	MarkAllRead(ctx context.Context, userID string) error

	// CountUnread returns the user's unread notification count.
	CountUnread(ctx context.Context, userID string) (int, error)

	// Delete removes one notification. False means no row belonged to the
	// user under that ID.
	Delete(ctx context.Context, id, userID string) (bool, error)
}
