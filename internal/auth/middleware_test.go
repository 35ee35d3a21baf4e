package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ontimely/admin-portal/internal/config"
	"github.com/ontimely/admin-portal/internal/domain"
	"github.com/ontimely/admin-portal/internal/session"
	apperrors "github.com/ontimely/admin-portal/pkg/util/errorutil"
)

const testClientID = "5b0c2a53-6a39-4b3f-9d7e-1f2a3b4c5d6e"

type memberDirectory map[string]domain.StaffMember

func (d memberDirectory) FindActiveByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	m, ok := d[email]
	if !ok || !m.IsActive {
		return nil, session.ErrNotFound
	}
	return &m, nil
}

func (d memberDirectory) TouchLastLogin(context.Context, string, time.Time) error { return nil }

func newTestApp(t *testing.T) (*fiber.App, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := config.Config{
		Auth:    config.AuthConfig{PasswordScheme: config.PasswordSchemePlain},
		Session: config.SessionConfig{TokenMode: config.TokenModeLegacy, KeyPrefix: "test:session:"},
	}
	directory := memberDirectory{
		"staff@x.com": {ID: "s1", Email: "staff@x.com", PasswordHash: "Secret123", Role: domain.RoleStaff, IsActive: true},
		"admin@x.com": {ID: "a1", Email: "admin@x.com", PasswordHash: "Secret123", Role: domain.RoleAdmin, IsActive: true},
	}
	mw := NewSessionMiddleware(NewSessionFactory(cfg, client, directory, zap.NewNop()), "ontimely_client", false)

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		de := apperrors.ToDomainError(err)
		return c.Status(de.HTTPStatus).SendString(de.Code)
	}})
	app.Use(mw.Handle)
	app.Post("/login", func(c *fiber.Ctx) error {
		sess, _ := SessionFromContext(c)
		state := sess.Login(c.UserContext(), domain.Credentials{Email: c.Query("email"), Password: "Secret123"})
		if !state.IsAuthenticated {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendString(ClientIDFromContext(c))
	})
	app.Get("/admin", RequireAdmin(), func(c *fiber.Ctx) error {
		staff, _ := StaffFromContext(c)
		return c.SendString(staff.ID)
	})
	return app, mr
}

func do(t *testing.T, app *fiber.App, method, target string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set(ClientIDHeader, testClientID)
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestMiddlewareIssuesClientCookie(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "ontimely_client" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, isClientID(cookie.Value))
	assert.True(t, cookie.HttpOnly)
}

func TestMiddlewareRestoresSessionPerClient(t *testing.T) {
	app, mr := newTestApp(t)

	resp, body := do(t, app, http.MethodPost, "/login?email=admin@x.com")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, testClientID, body)
	assert.True(t, mr.Exists("test:session:"+testClientID))

	resp, body = do(t, app, http.MethodGet, "/admin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "a1", body)

	other := httptest.NewRequest(http.MethodGet, "/admin", nil)
	other.Header.Set(ClientIDHeader, "0e6f5a4b-3c2d-4e1f-8a9b-7c6d5e4f3a2b")
	resp, err := app.Test(other)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRoleForbidsLowerRoles(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := do(t, app, http.MethodPost, "/login?email=staff@x.com")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, app, http.MethodGet, "/admin")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body)
}

func TestInvalidClientHeaderFallsBackToCookie(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(ClientIDHeader, "not-a-uuid")
	req.AddCookie(&http.Cookie{Name: "ontimely_client", Value: testClientID})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, resp.Cookies())
}
