package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docflow/internal/model"
	"docflow/internal/repository"
	"docflow/internal/storage"
)

// RequestListResult is the service-level DTO for paginated permission requests.
type RequestListResult struct {
	Items      []model.PermissionRequest `json:"data"`
	Total      int                       `json:"total"`
	Page       int                       `json:"page"`
	Limit      int                       `json:"limit"`
	TotalPages int                       `json:"total_pages"`
}

// PermissionService resolves permission requests. Approve and Reject run
// entirely inside one transaction; old or staged files are deleted
// best-effort only after the transaction committed.
type PermissionService interface {
	// List returns requests in the given status (default PENDING) with
	// document title and requester identity.
	List(ctx context.Context, page, limit int, status model.RequestStatus) (*RequestListResult, error)

	// Approve applies the requested mutation. DELETE: document -> DELETED.
	// REPLACE: staged file swapped in, version incremented, document ->
	// ACTIVE. The requester gets one APPROVAL notification.
	Approve(ctx context.Context, requestID, reviewerID string) error

	// Reject returns the document to ACTIVE, discards a staged replacement
	// file if any, and sends the requester one REJECTION notification
	// embedding the reason.
	Reject(ctx context.Context, requestID, reviewerID, reason string) error
}

type permissionService struct {
	tx    repository.TxManager
	reqs  repository.PermissionRequestRepository
	files storage.FileStore
}

// NewPermissionService constructs a new PermissionService.
func NewPermissionService(tx repository.TxManager, reqs repository.PermissionRequestRepository, files storage.FileStore) PermissionService {
	return &permissionService{tx: tx, reqs: reqs, files: files}
}

func (s *permissionService) List(ctx context.Context, page, limit int, status model.RequestStatus) (*RequestListResult, error) {
	page, limit = normalizePage(page, limit)
	if status == "" {
		status = model.RequestStatusPending
	}

	res, err := s.reqs.List(ctx, repository.RequestQuery{
		Page:   repository.PageQuery{Limit: limit, Offset: (page - 1) * limit},
		Status: status,
	})
	if err != nil {
		return nil, err
	}
	return &RequestListResult{
		Items:      res.Items,
		Total:      res.Total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(res.Total, limit),
	}, nil
}

func (s *permissionService) Approve(ctx context.Context, requestID, reviewerID string) error {
	if requestID == "" || reviewerID == "" {
		return ErrIDRequired
	}

	// Object keys to remove once the transaction has committed.
	var obsolete []string

	err := s.tx.WithinTx(ctx, func(st *repository.Store) error {
		req, err := findPendingRequest(ctx, st, requestID)
		if err != nil {
			return err
		}

		// The PENDING predicate decides races: of two concurrent reviewers
		// exactly one update matches a row, the other sees zero rows.
		matched, err := st.Requests.Resolve(ctx, requestID, model.RequestStatusApproved, reviewerID, time.Now().UTC())
		if err != nil {
			return err
		}
		if !matched {
			return ErrRequestProcessed
		}

		doc, err := st.Documents.FindByID(ctx, req.DocumentID)
		if err != nil {
			return err
		}

		switch req.ActionType {
		case model.RequestActionDelete:
			matched, err := st.Documents.UpdateStatus(ctx, doc.ID, model.DocumentStatusPendingDelete, model.DocumentStatusDeleted)
			if err != nil {
				return err
			}
			if !matched {
				return ErrRequestProcessed
			}
			obsolete = append(obsolete, doc.StoragePath)

		case model.RequestActionReplace:
			if req.NewStoragePath == nil {
				return fmt.Errorf("replace request %s has no staged file", req.ID)
			}
			fileName := doc.FileName
			if req.NewFileName != nil {
				fileName = *req.NewFileName
			}
			matched, err := st.Documents.ApplyReplace(ctx, doc.ID, *req.NewStoragePath, fileName)
			if err != nil {
				return err
			}
			if !matched {
				return ErrRequestProcessed
			}
			obsolete = append(obsolete, doc.StoragePath)
		}

		_, err = st.Notifications.Create(ctx, &model.Notification{
			ID:               uuid.New().String(),
			UserID:           req.RequestedBy,
			Title:            "Request Approved",
			Message:          fmt.Sprintf("Your %s request for document has been approved", req.ActionType),
			Type:             model.NotificationTypeApproval,
			RelatedRequestID: &req.ID,
			CreatedAt:        time.Now().UTC(),
		})
		return err
	})
	if err != nil {
		return err
	}

	s.deleteObjects(ctx, obsolete)
	return nil
}

func (s *permissionService) Reject(ctx context.Context, requestID, reviewerID, reason string) error {
	if requestID == "" || reviewerID == "" {
		return ErrIDRequired
	}

	var obsolete []string

	err := s.tx.WithinTx(ctx, func(st *repository.Store) error {
		req, err := findPendingRequest(ctx, st, requestID)
		if err != nil {
			return err
		}

		matched, err := st.Requests.Resolve(ctx, requestID, model.RequestStatusRejected, reviewerID, time.Now().UTC())
		if err != nil {
			return err
		}
		if !matched {
			return ErrRequestProcessed
		}

		// Rejection always releases the document, whichever PENDING_* held it.
		if err := st.Documents.SetStatus(ctx, req.DocumentID, model.DocumentStatusActive); err != nil {
			return err
		}

		// The staged replacement is discarded, never the original.
		if req.ActionType == model.RequestActionReplace && req.NewStoragePath != nil {
			obsolete = append(obsolete, *req.NewStoragePath)
		}

		if reason == "" {
			reason = "no reason given"
		}
		_, err = st.Notifications.Create(ctx, &model.Notification{
			ID:               uuid.New().String(),
			UserID:           req.RequestedBy,
			Title:            "Request Rejected",
			Message:          fmt.Sprintf("Your %s request for document was rejected. Reason: %s", req.ActionType, reason),
			Type:             model.NotificationTypeRejection,
			RelatedRequestID: &req.ID,
			CreatedAt:        time.Now().UTC(),
		})
		return err
	})
	if err != nil {
		return err
	}

	s.deleteObjects(ctx, obsolete)
	return nil
}

// findPendingRequest loads a request and verifies it is still PENDING.
func findPendingRequest(ctx context.Context, st *repository.Store, requestID string) (*model.PermissionRequest, error) {
	req, err := st.Requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if req.Status != model.RequestStatusPending {
		return nil, ErrRequestProcessed
	}
	return req, nil
}

// deleteObjects removes files made obsolete by a committed resolution.
// Failures are logged and swallowed: an orphaned object is preferred over
// rolling back a committed workflow decision.
func (s *permissionService) deleteObjects(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.files.Delete(ctx, key); err != nil {
			logJSON("error", "storage_delete_failed", map[string]any{
				"storage_path":  key,
				"error_message": err.Error(),
			})
		}
	}
}
