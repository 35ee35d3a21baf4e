package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ontimely/admin-portal/internal/config"
	"github.com/ontimely/admin-portal/internal/domain"
)

func TestClientRef(t *testing.T) {
	ref := ClientRef(testClientID)

	assert.Len(t, ref, 12)
	assert.NotContains(t, testClientID, ref)
	assert.Equal(t, ref, ClientRef(testClientID))
	assert.NotEqual(t, ref, ClientRef("0e6f5a4b-3c2d-4e1f-8a9b-7c6d5e4f3a2b"))
	assert.Empty(t, ClientRef(""))
}

func TestSessionLogsNeverCarryRawClientID(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	core, logs := observer.New(zapcore.DebugLevel)
	cfg := config.Config{
		Auth:    config.AuthConfig{PasswordScheme: config.PasswordSchemePlain},
		Session: config.SessionConfig{TokenMode: config.TokenModeLegacy, KeyPrefix: "test:session:"},
	}
	directory := memberDirectory{
		"admin@x.com": {ID: "a1", Email: "admin@x.com", PasswordHash: "Secret123", Role: domain.RoleAdmin, IsActive: true},
	}
	factory := NewSessionFactory(cfg, client, directory, zap.New(core))

	ctx := context.Background()
	state := factory.ForClient(testClientID).Login(ctx, domain.Credentials{Email: "admin@x.com", Password: "Secret123"})
	require.True(t, state.IsAuthenticated)

	delete(directory, "admin@x.com")
	factory.ForClient(testClientID).Init(ctx)

	// Store failures log a warning through the same logger.
	mr.Close()
	factory.ForClient(testClientID).Init(ctx)

	entries := logs.All()
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.NotContains(t, e.Message, testClientID)
		assert.NotContains(t, fmt.Sprint(e.ContextMap()), testClientID)
	}
	assert.Equal(t, ClientRef(testClientID), entries[0].ContextMap()["client"])
}
