package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ontimely/admin-portal/internal/config"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "debug", Name: "portal", Env: "production"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = NewLogger(config.LoggerConfig{Level: "nonsense", Development: true})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestRequestLoggerRecordsRoutePattern(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	metrics := NewMetrics("portal")

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/tickets/:id", func(c *fiber.Ctx) error { return c.SendString(c.Params("id")) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tickets/42", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "42", string(body))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "/tickets/42", logs.All()[0].ContextMap()["path"])
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.reqDuration))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", http.MethodGet, 200, time.Millisecond)
	m.RecordError("/", http.MethodGet, "X")
	m.RecordLogin("success")
}

func TestLoginCounter(t *testing.T) {
	m := NewMetrics("portal")
	m.RecordLogin("success")
	m.RecordLogin("success")
	m.RecordLogin("authentication")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.logins.WithLabelValues("success")))
}
