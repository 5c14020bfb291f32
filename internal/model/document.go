package model

import "time"

// DocumentStatus is the lifecycle state of a document. A document leaves
// ACTIVE only through the permission-request workflow; DELETED is terminal.
type DocumentStatus string

const (
	DocumentStatusActive         DocumentStatus = "ACTIVE"
	DocumentStatusPendingReplace DocumentStatus = "PENDING_REPLACE"
	DocumentStatusPendingDelete  DocumentStatus = "PENDING_DELETE"
	DocumentStatusDeleted        DocumentStatus = "DELETED"
)

// Document represents a stored file and its workflow state.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	DocumentType string         `json:"document_type"`
	StoragePath  string         `json:"storage_path"`
	FileName     string         `json:"file_name"`
	FileSize     int64          `json:"file_size"`
	Version      int            `json:"version"`
	Status       DocumentStatus `json:"status"`
	CreatedBy    string         `json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`

	// Populated by list/detail queries that join the users table.
	CreatorName  string `json:"creator_name,omitempty"`
	CreatorEmail string `json:"creator_email,omitempty"`
}
