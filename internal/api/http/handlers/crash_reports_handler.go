package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ontimely/admin-portal/internal/api/dto"
	"github.com/ontimely/admin-portal/internal/repository"
	"github.com/ontimely/admin-portal/internal/service"
)

// CrashReportsHandler ingests and lists desktop-app crash reports.
type CrashReportsHandler struct {
	reports *service.CrashReportService
}

// NewCrashReportsHandler constructs handler.
func NewCrashReportsHandler(reports *service.CrashReportService) *CrashReportsHandler {
	return &CrashReportsHandler{reports: reports}
}

// Submit handles POST /crash-reports.
func (h *CrashReportsHandler) Submit(c *fiber.Ctx) error {
	var req dto.CrashReportRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	report, err := h.reports.Submit(c.UserContext(), service.CrashReportInput{
		AppVersion:   req.AppVersion,
		Platform:     req.Platform,
		OSVersion:    req.OSVersion,
		ErrorMessage: req.ErrorMessage,
		StackTrace:   req.StackTrace,
		UserEmail:    req.UserEmail,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"id": report.ID}})
}

// List handles GET /crash-reports.
func (h *CrashReportsHandler) List(c *fiber.Ctx) error {
	filter := repository.CrashReportFilter{
		Platform: parseStringQuery(c, "platform"),
		Resolved: parseBoolQuery(c, "resolved"),
	}
	filter.Limit, filter.Offset = pagination(c)

	reports, err := h.reports.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.CrashReportResponse, 0, len(reports))
	for i := range reports {
		items = append(items, dto.NewCrashReportResponse(&reports[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Resolve handles PATCH /crash-reports/:id.
func (h *CrashReportsHandler) Resolve(c *fiber.Ctx) error {
	actor, err := currentStaff(c)
	if err != nil {
		return err
	}
	report, err := h.reports.Resolve(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCrashReportResponse(report)})
}
