package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ontimely/admin-portal/internal/api/dto"
	"github.com/ontimely/admin-portal/internal/domain"
	"github.com/ontimely/admin-portal/internal/repository"
	"github.com/ontimely/admin-portal/internal/service"
)

// TicketsHandler serves the support ticket queue.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// Create handles POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.TicketCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Create(c.UserContext(), service.TicketCreateInput{
		CompanyName:    req.CompanyName,
		SubmitterEmail: req.SubmitterEmail,
		Subject:        req.Subject,
		Description:    req.Description,
		Priority:       req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// List handles GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	filter := repository.TicketFilter{
		AssigneeID: parseStringQuery(c, "assignee_id"),
		SearchTerm: parseStringQuery(c, "search"),
	}
	for _, s := range parseListQuery(c, "status") {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(s))
	}
	for _, p := range parseListQuery(c, "priority") {
		filter.Priorities = append(filter.Priorities, domain.TicketPriority(p))
	}
	filter.Limit, filter.Offset = pagination(c)

	tickets, err := h.tickets.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Update handles PATCH /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	actor, err := currentStaff(c)
	if err != nil {
		return err
	}
	var req dto.TicketUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	input := service.TicketUpdateInput{Status: req.Status, Priority: req.Priority}
	if req.AssigneeID != nil {
		if *req.AssigneeID == "" {
			input.UnassignAssignee = true
		} else {
			input.AssigneeID = req.AssigneeID
		}
	}
	ticket, err := h.tickets.Update(c.UserContext(), actor, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}
