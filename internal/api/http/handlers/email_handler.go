package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ontimely/admin-portal/internal/api/dto"
	"github.com/ontimely/admin-portal/internal/service"
)

// EmailHandler sends documents to customers on behalf of staff.
type EmailHandler struct {
	email *service.EmailService
}

// NewEmailHandler constructs handler.
func NewEmailHandler(email *service.EmailService) *EmailHandler {
	return &EmailHandler{email: email}
}

// SendDocument handles POST /email/documents.
func (h *EmailHandler) SendDocument(c *fiber.Ctx) error {
	actor, err := currentStaff(c)
	if err != nil {
		return err
	}
	var req dto.DocumentEmailRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.email.SendDocument(c.UserContext(), actor, service.DocumentEmailInput{
		To:           req.To,
		Subject:      req.Subject,
		DocumentType: req.DocumentType,
		DocumentURL:  req.DocumentURL,
		Message:      req.Message,
	}); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"status": "sent"}})
}
