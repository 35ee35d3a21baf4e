package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, "ontimely:session:", "client-1", 0)
	ctx := context.Background()

	rec, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, store.Write(ctx, "a@x.com", "dG9rZW4="))

	raw, err := mr.Get("ontimely:session:client-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"a@x.com","token":"dG9rZW4="}`, raw)
	assert.Zero(t, mr.TTL("ontimely:session:client-1"))

	rec, err = store.Read(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "a@x.com", rec.Email)

	require.NoError(t, store.Clear(ctx))
	assert.False(t, mr.Exists("ontimely:session:client-1"))
}

func TestRedisStoreIsolatesClients(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()
	first := NewRedisStore(client, "s:", "one", 0)
	second := NewRedisStore(client, "s:", "two", 0)

	require.NoError(t, first.Write(ctx, "a@x.com", "t"))

	rec, err := second.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRedisStoreAppliesTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, "s:", "c", time.Hour)

	require.NoError(t, store.Write(context.Background(), "a@x.com", "t"))

	assert.Equal(t, time.Hour, mr.TTL("s:c"))
}

func TestRedisStoreMalformedValue(t *testing.T) {
	mr, client := setupTestRedis(t)
	require.NoError(t, mr.Set("s:c", "garbage"))
	store := NewRedisStore(client, "s:", "c", 0)

	_, err := store.Read(context.Background())

	assert.ErrorIs(t, err, ErrMalformedSession)
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, client := setupTestRedis(t)
	mr.Close()
	store := NewRedisStore(client, "s:", "c", 0)

	_, err := store.Read(context.Background())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedSession)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal", "session.json")
	store := NewFileStore(path)
	ctx := context.Background()

	rec, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, store.Write(ctx, "a@x.com", "t"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	rec, err = store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", rec.Email)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStoreMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := NewFileStore(path).Read(context.Background())

	assert.ErrorIs(t, err, ErrMalformedSession)
}
