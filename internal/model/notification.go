package model

import "time"

// NotificationType classifies what a notification reports.
type NotificationType string

const (
	NotificationTypeRequest   NotificationType = "REQUEST"
	NotificationTypeApproval  NotificationType = "APPROVAL"
	NotificationTypeRejection NotificationType = "REJECTION"
)

// Notification is a per-user message written by the workflow: one per admin
// when a request is created, one to the requester when it is resolved.
type Notification struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	Title            string           `json:"title"`
	Message          string           `json:"message"`
	Type             NotificationType `json:"type"`
	RelatedRequestID *string          `json:"related_request_id,omitempty"`
	IsRead           bool             `json:"is_read"`
	CreatedAt        time.Time        `json:"created_at"`

	// Populated by list queries that join the related permission request.
	RequestAction *RequestAction `json:"request_action,omitempty"`
	RequestStatus *RequestStatus `json:"request_status,omitempty"`
}
