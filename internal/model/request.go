package model

import "time"

// RequestAction is the mutation a permission request asks for.
type RequestAction string

const (
	RequestActionReplace RequestAction = "REPLACE"
	RequestActionDelete  RequestAction = "DELETE"
)

// RequestStatus is the lifecycle state of a permission request.
// APPROVED and REJECTED are terminal.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

// PermissionRequest asks an administrator to approve a replace or delete
// of an existing document. While it is PENDING the document is held in the
// matching PENDING_* status, so a document can carry at most one open request.
type PermissionRequest struct {
	ID          string        `json:"id"`
	DocumentID  string        `json:"document_id"`
	RequestedBy string        `json:"requested_by"`
	ActionType  RequestAction `json:"action_type"`
	Reason      string        `json:"reason"`

	// Staged replacement file, set only for REPLACE requests. Applied to the
	// document on approval, discarded on rejection.
	NewStoragePath *string `json:"new_storage_path,omitempty"`
	NewFileName    *string `json:"new_file_name,omitempty"`

	Status     RequestStatus `json:"status"`
	ReviewedBy *string       `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time    `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`

	// Populated by list queries that join documents and users.
	DocumentTitle  string `json:"document_title,omitempty"`
	RequesterName  string `json:"requester_name,omitempty"`
	RequesterEmail string `json:"requester_email,omitempty"`
}
