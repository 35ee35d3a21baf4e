package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ontimely/admin-portal/internal/api/dto"
	"github.com/ontimely/admin-portal/internal/auth"
	"github.com/ontimely/admin-portal/internal/domain"
	"github.com/ontimely/admin-portal/internal/observability"
	"github.com/ontimely/admin-portal/internal/session"
	apperrors "github.com/ontimely/admin-portal/pkg/util/errorutil"
)

// SessionHandler exposes the caller's AuthSession to the portal SPA.
type SessionHandler struct {
	metrics *observability.Metrics
}

// NewSessionHandler constructs handler.
func NewSessionHandler(metrics *observability.Metrics) *SessionHandler {
	return &SessionHandler{metrics: metrics}
}

// Login handles POST /auth/session/login.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		h.metrics.RecordLogin(string(session.KindValidation))
		return apperrors.NewValidationError("email and password required", nil)
	}

	state := sess.Login(c.UserContext(), domain.Credentials{Email: req.Email, Password: req.Password})
	if !state.IsAuthenticated {
		h.metrics.RecordLogin(loginOutcome(sess.Err()))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"data": dto.NewAuthStateResponse(state)})
	}
	h.metrics.RecordLogin("success")
	return c.JSON(fiber.Map{"data": dto.NewAuthStateResponse(state)})
}

// Logout handles POST /auth/session/logout.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	state := sess.Logout(c.UserContext())
	return c.JSON(fiber.Map{"data": dto.NewAuthStateResponse(state)})
}

// State handles GET /auth/session. The middleware has already run Init.
func (h *SessionHandler) State(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAuthStateResponse(sess.State())})
}

// Me handles GET /auth/session/me.
func (h *SessionHandler) Me(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	user := sess.CurrentUser(c.UserContext())
	if user == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.NewStaffResponse(user)})
}

func (h *SessionHandler) session(c *fiber.Ctx) (*session.AuthSession, error) {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return nil, apperrors.NewInternalError(nil)
	}
	return sess, nil
}

func loginOutcome(err error) string {
	switch {
	case session.IsKind(err, session.KindAuthentication):
		return string(session.KindAuthentication)
	case session.IsKind(err, session.KindValidation):
		return string(session.KindValidation)
	default:
		return string(session.KindInfrastructure)
	}
}
