package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ontimely/admin-portal/internal/domain"
	"github.com/ontimely/admin-portal/internal/session"
)

const (
	sessionKey  = "auth_session"
	clientIDKey = "auth_client_id"

	// ClientIDHeader lets non-browser clients name their installation explicitly.
	ClientIDHeader = "X-Client-ID"
)

// SessionMiddleware restores the caller's AuthSession before protected handlers run.
type SessionMiddleware struct {
	factory    *SessionFactory
	cookieName string
	secure     bool
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(factory *SessionFactory, cookieName string, secureCookie bool) *SessionMiddleware {
	return &SessionMiddleware{factory: factory, cookieName: cookieName, secure: secureCookie}
}

// Handle identifies the client installation, runs Init and stores the session in Locals.
// Init always completes before the next handler so protected routes render from a
// settled state.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	clientID := m.clientID(c)
	sess := m.factory.ForClient(clientID)
	sess.Init(c.UserContext())

	c.Locals(sessionKey, sess)
	c.Locals(clientIDKey, clientID)
	return c.Next()
}

func (m *SessionMiddleware) clientID(c *fiber.Ctx) string {
	if id := c.Get(ClientIDHeader); isClientID(id) {
		return id
	}
	if id := c.Cookies(m.cookieName); isClientID(id) {
		return id
	}

	id := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     m.cookieName,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().AddDate(5, 0, 0),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return id
}

func isClientID(v string) bool {
	if v == "" {
		return false
	}
	_, err := uuid.Parse(v)
	return err == nil
}

// SessionFromContext retrieves the caller's AuthSession.
func SessionFromContext(c *fiber.Ctx) (*session.AuthSession, bool) {
	sess, ok := c.Locals(sessionKey).(*session.AuthSession)
	return sess, ok && sess != nil
}

// ClientIDFromContext returns the installation id resolved by the middleware.
func ClientIDFromContext(c *fiber.Ctx) string {
	id, _ := c.Locals(clientIDKey).(string)
	return id
}

// ClientRef returns a short digest of an installation id for log lines. The raw
// id restores a login when replayed in X-Client-ID, so it must never be logged.
func ClientRef(clientID string) string {
	if clientID == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(clientID))
	return hex.EncodeToString(sum[:6])
}

// StaffFromContext returns the authenticated member, if any.
func StaffFromContext(c *fiber.Ctx) (*domain.StaffMember, bool) {
	sess, ok := SessionFromContext(c)
	if !ok {
		return nil, false
	}
	user := sess.State().User
	return user, user != nil
}
