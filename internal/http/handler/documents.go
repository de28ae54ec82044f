package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"extranet/internal/auth"
	"extranet/internal/http/middleware"
	"extranet/internal/model"
	"extranet/internal/service"
)

type uploadForm struct {
	UserID   int64  `form:"user_id" validate:"required,gt=0"`
	Category string `form:"category" validate:"required,oneof=archive bordereau formation partner"`
}

func claimsOrUnauthorized(c *fiber.Ctx) (*auth.Claims, error) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return nil, writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
	}
	return claims, nil
}

func canAccess(claims *auth.Claims, doc *model.Document) bool {
	return claims.Role == model.RoleAdmin || claims.UserID == doc.UserID
}

// ListDocuments lists documents. Users only see their own; admins may filter
// by user_id.
//
// @Summary   List documents
// @Tags      documents
// @Security  BearerAuth
// @Produce   json
// @Param     limit     query  int     false  "page size"  default(10)
// @Param     offset    query  int     false  "offset"     default(0)
// @Param     category  query  string  false  "category filter"
// @Param     user_id   query  int     false  "owner filter (admin only)"
// @Success   200  {object}  service.DocumentListResult
// @Failure   400  {object}  errorPayload
// @Router    /documents [get]
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := claimsOrUnauthorized(c)
		if claims == nil {
			return err
		}

		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		q := service.DocumentQuery{
			UserID:   claims.UserID,
			Category: model.Category(c.Query("category")),
			Limit:    limit,
			Offset:   offset,
		}
		if claims.Role == model.RoleAdmin {
			q.UserID = 0
			if raw := c.Query("user_id"); raw != "" {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil || id <= 0 {
					return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid user_id")
				}
				q.UserID = id
			}
		}

		res, err := docSvc.List(c.UserContext(), q)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// UploadDocument stores one file for a user (multipart: file, user_id, category).
//
// @Summary   Upload a document
// @Tags      documents
// @Security  BearerAuth
// @Accept    multipart/form-data
// @Produce   json
// @Param     file      formData  file    true  "document"
// @Param     user_id   formData  int     true  "owner id"
// @Param     category  formData  string  true  "archive, bordereau, formation or partner"
// @Success   201  {object}  model.Document
// @Failure   400  {object}  errorPayload
// @Failure   404  {object}  errorPayload
// @Router    /documents [post]
func UploadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		var form uploadForm
		if err := c.BodyParser(&form); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "malformed form")
		}
		form.Category = strings.ToLower(strings.TrimSpace(form.Category))
		if ok, err := checkStruct(c, &form); !ok {
			return err
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		doc, err := docSvc.Upload(c.UserContext(), service.UploadInput{
			UserID:      form.UserID,
			Category:    model.Category(form.Category),
			Filename:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
			Reader:      f,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// loadAccessible validates :id, loads the document and enforces ownership.
// Documents of other users are reported as not found.
func loadAccessible(c *fiber.Ctx, docSvc service.DocumentService) (*model.Document, error) {
	claims, err := claimsOrUnauthorized(c)
	if claims == nil {
		return nil, err
	}
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return nil, writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}
	doc, err := docSvc.Get(c.UserContext(), id)
	if err != nil {
		return nil, writeServiceError(c, err)
	}
	if !canAccess(claims, doc) {
		return nil, writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	}
	return doc, nil
}

// GetDocument returns document metadata.
//
// @Summary   Get a document
// @Tags      documents
// @Security  BearerAuth
// @Produce   json
// @Param     id   path      string  true  "document id"
// @Success   200  {object}  model.Document
// @Failure   400  {object}  errorPayload
// @Failure   404  {object}  errorPayload
// @Router    /documents/{id} [get]
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := loadAccessible(c, docSvc)
		if doc == nil {
			return err
		}
		return c.JSON(doc)
	}
}

// DownloadDocument returns a presigned URL for the content.
//
// @Summary   Presigned download link
// @Tags      documents
// @Security  BearerAuth
// @Produce   json
// @Param     id   path      string  true  "document id"
// @Success   200  {object}  service.DownloadLink
// @Failure   404  {object}  errorPayload
// @Router    /documents/{id}/download [get]
func DownloadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := loadAccessible(c, docSvc)
		if doc == nil {
			return err
		}
		link, err := docSvc.DownloadURL(c.UserContext(), doc.ID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(link)
	}
}

// DocumentContent streams the content through the API.
func DocumentContent(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := loadAccessible(c, docSvc)
		if doc == nil {
			return err
		}
		rc, _, err := docSvc.Open(c.UserContext(), doc.ID)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, doc.ContentType)
		c.Attachment(doc.OriginalName)
		// Fiber closes rc once the body is written.
		return c.SendStream(rc, int(doc.Size))
	}
}

// DeleteDocument removes a document and its content.
//
// @Summary   Delete a document
// @Tags      documents
// @Security  BearerAuth
// @Param     id   path  string  true  "document id"
// @Success   204
// @Failure   400  {object}  errorPayload
// @Failure   404  {object}  errorPayload
// @Router    /documents/{id} [delete]
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := docSvc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// RecentUploads lists the caller's latest uploads. Admins may pass user_id.
//
// @Summary   Recent uploads
// @Tags      documents
// @Security  BearerAuth
// @Produce   json
// @Param     user_id  query  int  false  "owner (admin only)"
// @Success   200  {object}  map[string]interface{}
// @Router    /documents/recent [get]
func RecentUploads(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := claimsOrUnauthorized(c)
		if claims == nil {
			return err
		}
		userID := claims.UserID
		if claims.Role == model.RoleAdmin && c.Query("user_id") != "" {
			id, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
			if err != nil || id <= 0 {
				return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid user_id")
			}
			userID = id
		}
		items, err := docSvc.Recent(c.UserContext(), userID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}
