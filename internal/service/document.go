package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"docflow/internal/model"
	"docflow/internal/repository"
	"docflow/internal/storage"
)

// downloadExpiry bounds presigned download links.
const downloadExpiry = 15 * time.Minute

// UploadInput carries everything needed to create a new ACTIVE document.
type UploadInput struct {
	Title        string
	Description  string
	DocumentType string
	Reader       io.Reader
	FileName     string
	ContentType  string
	Size         int64
	UserID       string
}

// ReplaceRequestInput stages a new file and asks for admin approval to swap
// it into an existing document.
type ReplaceRequestInput struct {
	DocumentID  string
	Reader      io.Reader
	FileName    string
	ContentType string
	Size        int64
	Reason      string
	RequesterID string
}

// DeleteRequestInput asks for admin approval to delete a document.
type DeleteRequestInput struct {
	DocumentID  string
	Reason      string
	RequesterID string
}

// ListDocumentsInput filters and paginates a document listing.
type ListDocumentsInput struct {
	Page   int
	Limit  int
	Search string
	Status model.DocumentStatus
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items      []model.Document `json:"data"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

// DocumentService defines the document use cases, including the two
// request-creating workflow operations (the mutations themselves only
// happen later, through PermissionService).
type DocumentService interface {
	// Upload stores the content in the file store, saves metadata to the DB,
	// and rolls back the stored object if the DB save fails. The document
	// starts ACTIVE at version 1.
	Upload(ctx context.Context, in UploadInput) (*model.Document, error)

	// List returns documents filtered by status and search text.
	List(ctx context.Context, in ListDocumentsInput) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// DownloadURL returns a presigned URL for the document's current file.
	DownloadURL(ctx context.Context, id string) (string, error)

	// CreateReplaceRequest stages the new file, then atomically moves the
	// document to PENDING_REPLACE, records a PENDING request, and notifies
	// every admin. Returns the new request id.
	CreateReplaceRequest(ctx context.Context, in ReplaceRequestInput) (string, error)

	// CreateDeleteRequest atomically moves the document to PENDING_DELETE,
	// records a PENDING request, and notifies every admin. Returns the new
	// request id.
	CreateDeleteRequest(ctx context.Context, in DeleteRequestInput) (string, error)
}

type documentService struct {
	files storage.FileStore
	docs  repository.DocumentRepository
	tx    repository.TxManager
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(files storage.FileStore, docs repository.DocumentRepository, tx repository.TxManager) DocumentService {
	return &documentService{files: files, docs: docs, tx: tx}
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (*model.Document, error) {
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	if in.Reader == nil {
		return nil, ErrReaderNil
	}

	key, info, err := s.stageObject(ctx, in.Reader, in.FileName, in.ContentType, in.Size)
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:           uuid.New().String(),
		Title:        in.Title,
		Description:  in.Description,
		DocumentType: in.DocumentType,
		StoragePath:  info.Key,
		FileName:     in.FileName,
		FileSize:     info.Size,
		Version:      1,
		Status:       model.DocumentStatusActive,
		CreatedBy:    in.UserID,
		CreatedAt:    time.Now().UTC(),
	}
	stored, err := s.docs.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.files.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, in ListDocumentsInput) (*DocumentListResult, error) {
	page, limit := normalizePage(in.Page, in.Limit)
	status := in.Status
	if status == "" {
		status = model.DocumentStatusActive
	}

	res, err := s.docs.List(ctx, repository.DocumentQuery{
		Page:   repository.PageQuery{Limit: limit, Offset: (page - 1) * limit},
		Search: in.Search,
		Status: status,
	})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{
		Items:      res.Items,
		Total:      res.Total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(res.Total, limit),
	}, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// DownloadURL presigns the document's current object for download.
func (s *documentService) DownloadURL(ctx context.Context, id string) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	u, err := s.files.PresignGet(ctx, doc.StoragePath, downloadExpiry)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return u, nil
}

func (s *documentService) CreateReplaceRequest(ctx context.Context, in ReplaceRequestInput) (string, error) {
	if in.DocumentID == "" {
		return "", ErrIDRequired
	}
	if in.Reason == "" {
		return "", ErrReasonRequired
	}
	if in.Reader == nil {
		return "", ErrReaderNil
	}

	// The replacement is staged before the transaction so the workflow only
	// writes rows inside it. If the transaction fails the staged object is
	// removed again.
	stagedKey, _, err := s.stageObject(ctx, in.Reader, in.FileName, in.ContentType, in.Size)
	if err != nil {
		return "", fmt.Errorf("upload to storage: %w", err)
	}

	requestID, err := s.createRequest(ctx, createRequestParams{
		documentID:  in.DocumentID,
		requesterID: in.RequesterID,
		action:      model.RequestActionReplace,
		reason:      in.Reason,
		stagedPath:  &stagedKey,
		stagedName:  &in.FileName,
		pendingTo:   model.DocumentStatusPendingReplace,
	})
	if err != nil {
		if delErr := s.files.Delete(ctx, stagedKey); delErr != nil {
			logJSON("error", "staged_file_cleanup_failed", map[string]any{
				"storage_path":  stagedKey,
				"error_message": delErr.Error(),
			})
		}
		return "", err
	}
	return requestID, nil
}

func (s *documentService) CreateDeleteRequest(ctx context.Context, in DeleteRequestInput) (string, error) {
	if in.DocumentID == "" {
		return "", ErrIDRequired
	}
	if in.Reason == "" {
		return "", ErrReasonRequired
	}

	return s.createRequest(ctx, createRequestParams{
		documentID:  in.DocumentID,
		requesterID: in.RequesterID,
		action:      model.RequestActionDelete,
		reason:      in.Reason,
		pendingTo:   model.DocumentStatusPendingDelete,
	})
}

type createRequestParams struct {
	documentID  string
	requesterID string
	action      model.RequestAction
	reason      string
	stagedPath  *string
	stagedName  *string
	pendingTo   model.DocumentStatus
}

// createRequest is the shared transactional body of both request-creating
// operations: conditional ACTIVE -> PENDING_* move, request insert, and
// notification fan-out to every admin.
func (s *documentService) createRequest(ctx context.Context, p createRequestParams) (string, error) {
	var requestID string

	err := s.tx.WithinTx(ctx, func(st *repository.Store) error {
		// The status predicate is the lock: a document that is not ACTIVE
		// already has an outstanding request (or is deleted).
		matched, err := st.Documents.UpdateStatus(ctx, p.documentID, model.DocumentStatusActive, p.pendingTo)
		if err != nil {
			return err
		}
		if !matched {
			return ErrDocumentNotActive
		}

		doc, err := st.Documents.FindByID(ctx, p.documentID)
		if err != nil {
			return err
		}

		created, err := st.Requests.Create(ctx, &model.PermissionRequest{
			ID:             uuid.New().String(),
			DocumentID:     p.documentID,
			RequestedBy:    p.requesterID,
			ActionType:     p.action,
			Reason:         p.reason,
			NewStoragePath: p.stagedPath,
			NewFileName:    p.stagedName,
			Status:         model.RequestStatusPending,
			CreatedAt:      time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		requestID = created.ID

		adminIDs, err := st.Users.ListIDsByRole(ctx, model.RoleAdmin)
		if err != nil {
			return err
		}

		title, message := requestNotification(p.action, doc.Title)
		for _, adminID := range adminIDs {
			if _, err := st.Notifications.Create(ctx, &model.Notification{
				ID:               uuid.New().String(),
				UserID:           adminID,
				Title:            title,
				Message:          message,
				Type:             model.NotificationTypeRequest,
				RelatedRequestID: &requestID,
				CreatedAt:        time.Now().UTC(),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return requestID, nil
}

// stageObject uploads content under a fresh UUID key in the documents/ prefix.
func (s *documentService) stageObject(ctx context.Context, r io.Reader, fileName, contentType string, size int64) (string, storage.ObjectInfo, error) {
	ext := filepath.Ext(fileName)
	key := filepath.ToSlash(filepath.Join("documents", uuid.New().String()+ext))

	info, err := s.files.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": fileName,
		},
	})
	if err != nil {
		return "", storage.ObjectInfo{}, err
	}
	return key, info, nil
}

func requestNotification(action model.RequestAction, docTitle string) (title, message string) {
	switch action {
	case model.RequestActionReplace:
		return "Document Replace Requested", fmt.Sprintf("A user requested to replace document %q", docTitle)
	default:
		return "Document Delete Requested", fmt.Sprintf("A user requested to delete document %q", docTitle)
	}
}

func normalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	return page, limit
}

func totalPages(total, limit int) int {
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
