package handler

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docflow/internal/http/middleware"
	"docflow/internal/model"
	"docflow/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay free of business logic: they parse, delegate, and render.
func RegisterRoutes(app *fiber.App, db *sql.DB, jwtSecret string, docSvc service.DocumentService, permSvc service.PermissionService, notifSvc service.NotificationService) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	auth := middleware.Auth(jwtSecret)
	admin := middleware.RequireRole(model.RoleAdmin)

	app.Get("/documents", auth, ListDocuments(docSvc))
	app.Post("/documents", auth, UploadDocument(docSvc))
	app.Get("/documents/:id", auth, GetDocument(docSvc))
	app.Get("/documents/:id/download", auth, DownloadDocument(docSvc))
	app.Post("/documents/:id/replace-request", auth, RequestReplace(docSvc))
	app.Post("/documents/:id/delete-request", auth, RequestDelete(docSvc))

	app.Get("/permissions", auth, admin, ListRequests(permSvc))
	app.Post("/permissions/:id/approve", auth, admin, ApproveRequest(permSvc))
	app.Post("/permissions/:id/reject", auth, admin, RejectRequest(permSvc))

	// Fixed segments register before :id so they are matched first.
	app.Get("/notifications", auth, ListNotifications(notifSvc))
	app.Get("/notifications/unread-count", auth, UnreadNotificationCount(notifSvc))
	app.Patch("/notifications/read-all", auth, MarkAllNotificationsRead(notifSvc))
	app.Patch("/notifications/:id/read", auth, MarkNotificationRead(notifSvc))
	app.Delete("/notifications/:id", auth, DeleteNotification(notifSvc))
}

// HealthCheck reports whether the database dependency is reachable.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a plain liveness check with no dependencies.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListDocuments lists documents with pagination, search, and status filter.
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, limit, ok := pageParams(c)
		if !ok {
			return nil // error response already written
		}

		res, err := svc.List(c.UserContext(), service.ListDocumentsInput{
			Page:   page,
			Limit:  limit,
			Search: c.Query("search"),
			Status: model.DocumentStatus(c.Query("status")),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeSuccess(c, fiber.StatusOK, "documents retrieved", res)
	}
}

// UploadDocument accepts a multipart upload (field "file") plus metadata fields.
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		doc, err := svc.Upload(c.UserContext(), service.UploadInput{
			Title:        c.FormValue("title"),
			Description:  c.FormValue("description"),
			DocumentType: c.FormValue("document_type"),
			Reader:       f,
			FileName:     fh.Filename,
			ContentType:  contentType(fh.Header.Get("Content-Type")),
			Size:         fh.Size,
			UserID:       userIDFromCtx(c),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeSuccess(c, fiber.StatusCreated, "document uploaded", doc)
	}
}

// GetDocument returns a single document by ID.
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return nil
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeSuccess(c, fiber.StatusOK, "document retrieved", doc)
	}
}

// DownloadDocument returns a presigned URL for the document's current file.
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return nil
		}
		u, err := svc.DownloadURL(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeSuccess(c, fiber.StatusOK, "download link created", fiber.Map{"url": u})
	}
}

// RequestReplace stages a replacement file and creates a REPLACE permission request.
func RequestReplace(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return nil
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "replacement file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		requestID, err := svc.CreateReplaceRequest(c.UserContext(), service.ReplaceRequestInput{
			DocumentID:  id,
			Reader:      f,
			FileName:    fh.Filename,
			ContentType: contentType(fh.Header.Get("Content-Type")),
			Size:        fh.Size,
			Reason:      c.FormValue("reason"),
			RequesterID: userIDFromCtx(c),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeSuccess(c, fiber.StatusCreated, "replace request created", fiber.Map{"request_id": requestID})
	}
}

// RequestDelete creates a DELETE permission request.
func RequestDelete(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return nil
		}
		var body struct {
			Reason string `json:"reason"`
		}
		// An unparsable body falls through to the service's reason check.
		_ = c.BodyParser(&body)

		requestID, err := svc.CreateDeleteRequest(c.UserContext(), service.DeleteRequestInput{
			DocumentID:  id,
			Reason:      body.Reason,
			RequesterID: userIDFromCtx(c),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeSuccess(c, fiber.StatusCreated, "delete request created", fiber.Map{"request_id": requestID})
	}
}

// ListRequests lists permission requests for review (admin only).
func ListRequests(svc service.PermissionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, limit, ok := pageParams(c)
		if !ok {
			return nil
		}
		res, err := svc.List(c.UserContext(), page, limit, model.RequestStatus(c.Query("status")))
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeSuccess(c, fiber.StatusOK, "requests retrieved", res)
	}
}

// ApproveRequest resolves a pending request in the requester's favor.
func ApproveRequest(svc service.PermissionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return nil
		}
		if err := svc.Approve(c.UserContext(), id, userIDFromCtx(c)); err != nil {
			return writeServiceError(c, err)
		}
		return writeSuccess(c, fiber.StatusOK, "request approved", nil)
	}
}

// RejectRequest resolves a pending request against the requester.
func RejectRequest(svc service.PermissionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return nil
		}
		var body struct {
			Reason string `json:"reason"`
		}
		_ = c.BodyParser(&body)

		if err := svc.Reject(c.UserContext(), id, userIDFromCtx(c), body.Reason); err != nil {
			return writeServiceError(c, err)
		}
		return writeSuccess(c, fiber.StatusOK, "request rejected", nil)
	}
}

// ListNotifications lists the caller's notifications.
func ListNotifications(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, limit, ok := pageParams(c)
		if !ok {
			return nil
		}
		res, err := svc.List(c.UserContext(), userIDFromCtx(c), page, limit, c.QueryBool("unread"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeSuccess(c, fiber.StatusOK, "notifications retrieved", res)
	}
}

// MarkNotificationRead flags one of the caller's notifications as read.
func MarkNotificationRead(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return nil
		}
		if err := svc.MarkRead(c.UserContext(), id, userIDFromCtx(c)); err != nil {
			return writeServiceError(c, err)
		}
		return writeSuccess(c, fiber.StatusOK, "notification marked as read", nil)
	}
}

// MarkAllNotificationsRead flags all of the caller's notifications as read.
func MarkAllNotificationsRead(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.MarkAllRead(c.UserContext(), userIDFromCtx(c)); err != nil {
			return writeServiceError(c, err)
		}
		return writeSuccess(c, fiber.StatusOK, "all notifications marked as read", nil)
	}
}

// UnreadNotificationCount returns the caller's unread notification count.
func UnreadNotificationCount(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		count, err := svc.UnreadCount(c.UserContext(), userIDFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeSuccess(c, fiber.StatusOK, "unread count retrieved", fiber.Map{"unread_count": count})
	}
}

// DeleteNotification removes one of the caller's notifications.
func DeleteNotification(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return nil
		}
		if err := svc.Delete(c.UserContext(), id, userIDFromCtx(c)); err != nil {
			return writeServiceError(c, err)
		}
		return writeSuccess(c, fiber.StatusOK, "notification deleted", nil)
	}
}

func userIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(middleware.UserIDLocalKey).(string); ok {
		return s
	}
	return ""
}

// idParam validates the :id route parameter as a UUID. On failure it writes
// the error response and reports false.
func idParam(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		return "", false
	}
	return id, true
}

// pageParams validates page/limit query parameters. On failure it writes the
// error response and reports false.
func pageParams(c *fiber.Ctx) (page, limit int, ok bool) {
	var err error
	page, err = strconv.Atoi(c.Query("page", "1"))
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid page")
		return 0, 0, false
	}
	limit, err = strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		return 0, 0, false
	}
	return page, limit, true
}

func contentType(ct string) string {
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}
