package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ontimely/admin-portal/internal/api/dto"
	"github.com/ontimely/admin-portal/internal/service"
	apperrors "github.com/ontimely/admin-portal/pkg/util/errorutil"
)

// PasswordHandler serves password reset and change endpoints.
type PasswordHandler struct {
	resets *service.PasswordResetService
	staff  *service.StaffService
}

// NewPasswordHandler constructs handler.
func NewPasswordHandler(resets *service.PasswordResetService, staff *service.StaffService) *PasswordHandler {
	return &PasswordHandler{resets: resets, staff: staff}
}

// RequestReset handles POST /auth/password/reset/request. The answer is the
// same whether or not the address belongs to an account.
func (h *PasswordHandler) RequestReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.resets.RequestReset(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{"status": "if the account exists, a reset email has been sent"},
	})
}

// ConfirmReset handles POST /auth/password/reset/confirm.
func (h *PasswordHandler) ConfirmReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Token == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("token and new_password required", nil)
	}
	if err := h.resets.ConfirmReset(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_reset"}})
}

// ChangePassword handles POST /auth/password/change.
func (h *PasswordHandler) ChangePassword(c *fiber.Ctx) error {
	staff, err := currentStaff(c)
	if err != nil {
		return err
	}
	var req dto.PasswordChangeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current_password and new_password required", nil)
	}
	if err := h.staff.ChangePassword(c.UserContext(), staff, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_changed"}})
}
