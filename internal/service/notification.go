package service

import (
	"context"

	"docflow/internal/model"
	"docflow/internal/repository"
)

// NotificationListResult is the service-level DTO for paginated notifications.
type NotificationListResult struct {
	Items      []model.Notification `json:"data"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
}

// NotificationService exposes a user's notification inbox. All operations
// are scoped to the calling user; the workflow is the only writer of new
// notifications, this service only reads and flags them.
type NotificationService interface {
	List(ctx context.Context, userID string, page, limit int, unreadOnly bool) (*NotificationListResult, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	UnreadCount(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, id, userID string) error
}

type notificationService struct {
	notifs repository.NotificationRepository
}

// NewNotificationService constructs a new NotificationService.
func NewNotificationService(notifs repository.NotificationRepository) NotificationService {
	return &notificationService{notifs: notifs}
}

func (s *notificationService) List(ctx context.Context, userID string, page, limit int, unreadOnly bool) (*NotificationListResult, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	page, limit = normalizePage(page, limit)

	res, err := s.notifs.List(ctx, repository.NotificationQuery{
		Page:       repository.PageQuery{Limit: limit, Offset: (page - 1) * limit},
		UserID:     userID,
		UnreadOnly: unreadOnly,
	})
	if err != nil {
		return nil, err
	}
	return &NotificationListResult{
		Items:      res.Items,
		Total:      res.Total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(res.Total, limit),
	}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	if id == "" || userID == "" {
		return ErrIDRequired
	}
	matched, err := s.notifs.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrIDRequired
	}
	return s.notifs.MarkAllRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrIDRequired
	}
	return s.notifs.CountUnread(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, id, userID string) error {
	if id == "" || userID == "" {
		return ErrIDRequired
	}
	matched, err := s.notifs.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}
