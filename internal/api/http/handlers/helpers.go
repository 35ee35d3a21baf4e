package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ontimely/admin-portal/internal/auth"
	"github.com/ontimely/admin-portal/internal/domain"
	apperrors "github.com/ontimely/admin-portal/pkg/util/errorutil"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// currentStaff returns the authenticated member placed in Locals by the session middleware.
func currentStaff(c *fiber.Ctx) (*domain.StaffMember, error) {
	staff, ok := auth.StaffFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return staff, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func parseBoolQuery(c *fiber.Ctx, key string) *bool {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return &parsed
		}
	}
	return nil
}

func parseStringQuery(c *fiber.Ctx, key string) *string {
	if val := strings.TrimSpace(c.Query(key)); val != "" {
		return &val
	}
	return nil
}

// parseListQuery splits comma-separated and repeated query values.
func parseListQuery(c *fiber.Ctx, key string) []string {
	var out []string
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		if string(k) != key {
			return
		}
		for _, part := range strings.Split(string(v), ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	})
	return out
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

// pagination converts page/page_size into limit and offset.
func pagination(c *fiber.Ctx) (limit, offset int) {
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return pageSize, (page - 1) * pageSize
}
