package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ontimely/admin-portal/internal/api/dto"
	"github.com/ontimely/admin-portal/internal/domain"
	"github.com/ontimely/admin-portal/internal/repository"
	"github.com/ontimely/admin-portal/internal/service"
	apperrors "github.com/ontimely/admin-portal/pkg/util/errorutil"
)

// StaffHandler exposes staff administration endpoints.
type StaffHandler struct {
	staff *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staff *service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staff}
}

// List handles GET /staff/members.
func (h *StaffHandler) List(c *fiber.Ctx) error {
	filter := repository.StaffFilter{
		Active: parseBoolQuery(c, "active"),
		Search: parseStringQuery(c, "search"),
	}
	if roleStr := c.Query("role"); roleStr != "" {
		role := domain.Role(roleStr)
		if !role.Valid() {
			return apperrors.NewValidationError("invalid role filter", map[string]any{"role": roleStr})
		}
		filter.Role = &role
	}
	filter.Limit, filter.Offset = pagination(c)

	list, err := h.staff.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	resp := make([]*dto.StaffResponse, 0, len(list))
	for i := range list {
		resp = append(resp, dto.NewStaffResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get handles GET /staff/members/:id.
func (h *StaffHandler) Get(c *fiber.Ctx) error {
	member, err := h.staff.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStaffResponse(member)})
}

// Create handles POST /staff/members.
func (h *StaffHandler) Create(c *fiber.Ctx) error {
	actor, err := currentStaff(c)
	if err != nil {
		return err
	}
	var req dto.StaffCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	member, err := h.staff.Create(c.UserContext(), actor, service.StaffCreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewStaffResponse(member)})
}

// Update handles PUT /staff/members/:id.
func (h *StaffHandler) Update(c *fiber.Ctx) error {
	actor, err := currentStaff(c)
	if err != nil {
		return err
	}
	var req dto.StaffUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	member, err := h.staff.Update(c.UserContext(), actor, c.Params("id"), service.StaffUpdateInput{
		Name:     req.Name,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStaffResponse(member)})
}
