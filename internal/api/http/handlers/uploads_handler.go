package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ontimely/admin-portal/internal/api/dto"
	"github.com/ontimely/admin-portal/internal/service"
	apperrors "github.com/ontimely/admin-portal/pkg/util/errorutil"
)

// UploadsHandler accepts image uploads from the portal.
type UploadsHandler struct {
	uploads *service.UploadService
}

// NewUploadsHandler constructs handler.
func NewUploadsHandler(uploads *service.UploadService) *UploadsHandler {
	return &UploadsHandler{uploads: uploads}
}

// UploadImage handles POST /uploads/images with a multipart "file" field.
func (h *UploadsHandler) UploadImage(c *fiber.Ctx) error {
	actor, err := currentStaff(c)
	if err != nil {
		return err
	}
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("multipart field \"file\" required", nil)
	}
	if header.Size > h.uploads.MaxBytes() {
		return apperrors.NewPayloadTooLarge("image too large")
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewValidationError("unable to read upload", nil)
	}
	defer file.Close()

	stored, err := h.uploads.Save(c.UserContext(), actor, header.Filename, file)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.UploadResponse{
		ID:        stored.Upload.ID,
		FileName:  stored.Upload.FileName,
		MimeType:  stored.Upload.MimeType,
		SizeBytes: stored.Upload.SizeBytes,
		URL:       stored.URL,
		CreatedAt: stored.Upload.CreatedAt,
	}})
}
