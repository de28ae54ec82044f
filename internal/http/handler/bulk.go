package handler

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"extranet/internal/model"
	"extranet/internal/service"
)

// maxBulkFiles caps one bulk request.
const maxBulkFiles = 500

type matchRequest struct {
	Filenames []string `json:"filenames" validate:"required,min=1,max=500"`
}

type bulkUploadForm struct {
	Category string `validate:"required,oneof=archive bordereau formation partner"`
}

// MatchFiles proposes an owner for each filename without storing anything.
//
// @Summary   Preview bulk assignment
// @Tags      bulk
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     body  body      matchRequest  true  "file names"
// @Success   200   {object}  service.BulkPreview
// @Failure   400   {object}  errorPayload
// @Router    /bulk/match [post]
func MatchFiles(bulk service.BulkService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req matchRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		preview, err := bulk.Preview(c.UserContext(), req.Filenames)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(preview)
	}
}

// BulkUpload stores many files at once. Parts go in "files" (or "files[]"),
// the category in "category", and optional manual owners in "assignments"
// as a JSON object of filename to user id.
//
// @Summary   Bulk upload
// @Tags      bulk
// @Security  BearerAuth
// @Accept    multipart/form-data
// @Produce   json
// @Param     files        formData  file    true   "documents"
// @Param     category     formData  string  true   "archive, bordereau, formation or partner"
// @Param     assignments  formData  string  false  "JSON object filename to user id"
// @Success   200  {object}  service.BulkCommitResult
// @Failure   400  {object}  errorPayload
// @Router    /bulk/upload [post]
func BulkUpload(bulk service.BulkService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "multipart form is required")
		}
		headers := make([]*multipart.FileHeader, 0, len(form.File["files"])+len(form.File["files[]"]))
		headers = append(headers, form.File["files"]...)
		headers = append(headers, form.File["files[]"]...)
		if len(headers) == 0 {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "at least one file is required")
		}
		if len(headers) > maxBulkFiles {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "too many files")
		}

		meta := bulkUploadForm{Category: strings.ToLower(strings.TrimSpace(firstValue(form, "category")))}
		if ok, err := checkStruct(c, &meta); !ok {
			return err
		}

		overrides := map[string]int64{}
		if raw := firstValue(form, "assignments"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
				return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "assignments must map file names to user ids")
			}
		}

		files := make([]service.BulkFile, 0, len(headers))
		for _, fh := range headers {
			fh := fh
			files = append(files, service.BulkFile{
				Filename:    fh.Filename,
				ContentType: partContentType(fh),
				Size:        fh.Size,
				Open: func() (io.ReadCloser, error) {
					return fh.Open()
				},
			})
		}

		res, err := bulk.Commit(c.UserContext(), model.Category(meta.Category), files, overrides)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

func firstValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func partContentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
