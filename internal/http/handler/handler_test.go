package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docflow/internal/http/middleware"
	"docflow/internal/model"
	"docflow/internal/service"
	serviceMocks "docflow/internal/service/mocks"
)

// newTestApp builds a Fiber app that pretends user-1 is authenticated.
func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.UserIDLocalKey, "user-1")
		c.Locals(middleware.UserRoleLocalKey, string(model.RoleAdmin))
		return c.Next()
	})
	return app
}

func decodeSuccess(t *testing.T, resp *http.Response) successPayload {
	t.Helper()
	var body successPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp()
	app.Get("/documents", ListDocuments(mockSvc))

	t.Run("success with filters", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, service.ListDocumentsInput{
			Page:   2,
			Limit:  5,
			Search: "handbook",
			Status: model.DocumentStatusPendingDelete,
		}).Return(&service.DocumentListResult{
			Items: []model.Document{{ID: uuid.New().String(), Title: "Handbook"}},
			Total: 1, Page: 2, Limit: 5, TotalPages: 1,
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents?page=2&limit=5&search=handbook&status=PENDING_DELETE", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INVALID_LIMIT", body.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	})
}

func TestUploadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp()
	app.Post("/documents", UploadDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.Title == "Q3 Report" && in.FileName == "report.pdf" && in.UserID == "user-1"
		})).Return(&model.Document{ID: "d1", Title: "Q3 Report"}, nil).Once()

		buf, ct := multipartBody(t, map[string]string{"title": "Q3 Report"}, "file", "report.pdf", "content")
		req := httptest.NewRequest(http.MethodPost, "/documents", buf)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		body := decodeSuccess(t, resp)
		assert.True(t, body.Success)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing file", func(t *testing.T) {
		buf, ct := multipartBody(t, map[string]string{"title": "no file"}, "", "", "")
		req := httptest.NewRequest(http.MethodPost, "/documents", buf)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "FILE_REQUIRED", body.Error.Code)
	})

	t.Run("missing title", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, mock.Anything).Return(nil, service.ErrTitleRequired).Once()

		buf, ct := multipartBody(t, nil, "file", "report.pdf", "content")
		req := httptest.NewRequest(http.MethodPost, "/documents", buf)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	})
}

func TestGetDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp()
	app.Get("/documents/:id", GetDocument(mockSvc))

	id := uuid.New().String()

	t.Run("found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, id).Return(&model.Document{ID: id}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents/not-a-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INVALID_ID", body.Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDownloadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp()
	app.Get("/documents/:id/download", DownloadDocument(mockSvc))

	id := uuid.New().String()
	mockSvc.On("DownloadURL", mock.Anything, id).Return("https://example.test/signed", nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/documents/"+id+"/download", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeSuccess(t, resp)
	data := body.Data.(map[string]any)
	assert.Equal(t, "https://example.test/signed", data["url"])
}

func TestRequestReplace(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp()
	app.Post("/documents/:id/replace-request", RequestReplace(mockSvc))

	id := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("CreateReplaceRequest", mock.Anything, mock.MatchedBy(func(in service.ReplaceRequestInput) bool {
			return in.DocumentID == id && in.Reason == "typo fixes" && in.RequesterID == "user-1"
		})).Return("r1", nil).Once()

		buf, ct := multipartBody(t, map[string]string{"reason": "typo fixes"}, "file", "v2.pdf", "new content")
		req := httptest.NewRequest(http.MethodPost, "/documents/"+id+"/replace-request", buf)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		body := decodeSuccess(t, resp)
		data := body.Data.(map[string]any)
		assert.Equal(t, "r1", data["request_id"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("document not active", func(t *testing.T) {
		mockSvc.On("CreateReplaceRequest", mock.Anything, mock.Anything).
			Return("", service.ErrDocumentNotActive).Once()

		buf, ct := multipartBody(t, map[string]string{"reason": "typo fixes"}, "file", "v2.pdf", "new content")
		req := httptest.NewRequest(http.MethodPost, "/documents/"+id+"/replace-request", buf)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "DOCUMENT_NOT_ACTIVE", body.Error.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		buf, ct := multipartBody(t, map[string]string{"reason": "typo fixes"}, "", "", "")
		req := httptest.NewRequest(http.MethodPost, "/documents/"+id+"/replace-request", buf)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRequestDelete(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp()
	app.Post("/documents/:id/delete-request", RequestDelete(mockSvc))

	id := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("CreateDeleteRequest", mock.Anything, service.DeleteRequestInput{
			DocumentID:  id,
			Reason:      "obsolete",
			RequesterID: "user-1",
		}).Return("r1", nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/"+id+"/delete-request", strings.NewReader(`{"reason":"obsolete"}`))
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing reason", func(t *testing.T) {
		mockSvc.On("CreateDeleteRequest", mock.Anything, mock.Anything).
			Return("", service.ErrReasonRequired).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/"+id+"/delete-request", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	})
}

func TestListRequests(t *testing.T) {
	mockSvc := new(serviceMocks.MockPermissionService)
	app := newTestApp()
	app.Get("/permissions", ListRequests(mockSvc))

	mockSvc.On("List", mock.Anything, 1, 10, model.RequestStatusApproved).
		Return(&service.RequestListResult{Items: []model.PermissionRequest{{ID: "r1"}}, Total: 1}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/permissions?status=APPROVED", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestApproveRequest(t *testing.T) {
	mockSvc := new(serviceMocks.MockPermissionService)
	app := newTestApp()
	app.Post("/permissions/:id/approve", ApproveRequest(mockSvc))

	id := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Approve", mock.Anything, id, "user-1").Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/permissions/"+id+"/approve", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("already processed", func(t *testing.T) {
		mockSvc.On("Approve", mock.Anything, id, "user-1").Return(service.ErrRequestProcessed).Once()

		req := httptest.NewRequest(http.MethodPost, "/permissions/"+id+"/approve", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "REQUEST_ALREADY_PROCESSED", body.Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Approve", mock.Anything, id, "user-1").Return(service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodPost, "/permissions/"+id+"/approve", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestRejectRequest(t *testing.T) {
	mockSvc := new(serviceMocks.MockPermissionService)
	app := newTestApp()
	app.Post("/permissions/:id/reject", RejectRequest(mockSvc))

	id := uuid.New().String()
	mockSvc.On("Reject", mock.Anything, id, "user-1", "file too large").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/permissions/"+id+"/reject", strings.NewReader(`{"reason":"file too large"}`))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestNotificationEndpoints(t *testing.T) {
	mockSvc := new(serviceMocks.MockNotificationService)
	app := newTestApp()
	app.Get("/notifications", ListNotifications(mockSvc))
	app.Get("/notifications/unread-count", UnreadNotificationCount(mockSvc))
	app.Patch("/notifications/read-all", MarkAllNotificationsRead(mockSvc))
	app.Patch("/notifications/:id/read", MarkNotificationRead(mockSvc))
	app.Delete("/notifications/:id", DeleteNotification(mockSvc))

	id := uuid.New().String()

	t.Run("list unread", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, "user-1", 1, 10, true).
			Return(&service.NotificationListResult{Items: []model.Notification{{ID: id}}, Total: 1}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/notifications?unread=true", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unread count", func(t *testing.T) {
		mockSvc.On("UnreadCount", mock.Anything, "user-1").Return(4, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/notifications/unread-count", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeSuccess(t, resp)
		data := body.Data.(map[string]any)
		assert.Equal(t, float64(4), data["unread_count"])
	})

	t.Run("read all", func(t *testing.T) {
		mockSvc.On("MarkAllRead", mock.Anything, "user-1").Return(nil).Once()

		req := httptest.NewRequest(http.MethodPatch, "/notifications/read-all", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("mark read not owned", func(t *testing.T) {
		mockSvc.On("MarkRead", mock.Anything, id, "user-1").Return(service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodPatch, "/notifications/"+id+"/read", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("delete", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, id, "user-1").Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/notifications/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}
