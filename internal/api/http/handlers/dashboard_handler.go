package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ontimely/admin-portal/internal/api/dto"
	"github.com/ontimely/admin-portal/internal/service"
)

// DashboardHandler serves the landing page statistics.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats handles GET /dashboard/stats.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.dashboard.Stats(c.UserContext())
	if err != nil {
		return err
	}
	var resp dto.DashboardStatsResponse
	resp.Staff.ByRole = stats.StaffByRole
	resp.Staff.Active = stats.ActiveStaff
	resp.Tickets.ByStatus = stats.TicketsByStatus
	resp.Tickets.ByPriority = stats.TicketsByPriority
	resp.Tickets.OpenUrgent = stats.OpenUrgentTickets
	resp.Crashes.ByPlatform = stats.CrashesByPlatform
	resp.Crashes.Last24h = stats.CrashesLast24Hours
	resp.Crashes.Unresolved = stats.UnresolvedCrashes
	resp.GeneratedAt = stats.GeneratedAt
	return c.JSON(fiber.Map{"data": resp})
}
