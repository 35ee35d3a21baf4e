package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontimely/admin-portal/internal/domain"
	"github.com/ontimely/admin-portal/internal/session"
)

type directory map[string]domain.StaffMember

func (d directory) FindActiveByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	m, ok := d[email]
	if !ok {
		return nil, session.ErrNotFound
	}
	return &m, nil
}

func (d directory) TouchLastLogin(context.Context, string, time.Time) error { return nil }

func newSession(store session.Store) *session.AuthSession {
	return session.New(session.Dependencies{
		Store: store,
		Directory: directory{
			"ann@x.com": {ID: "s1", Name: "Ann", Email: "ann@x.com", PasswordHash: "Secret123", Role: domain.RoleAdmin, IsActive: true},
		},
	})
}

func exec(t *testing.T, sess *session.AuthSession, opts options) (int, string, error) {
	t.Helper()
	var out bytes.Buffer
	code, err := run(context.Background(), sess, opts, &out)
	return code, strings.TrimSpace(out.String()), err
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	store := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))

	code, out, err := exec(t, newSession(store), options{Command: "whoami"})
	require.NoError(t, err)
	assert.Equal(t, 1, code)
	assert.Equal(t, "not logged in", out)

	code, out, err = exec(t, newSession(store), options{Command: "login", Email: "ann@x.com", Password: "Secret123"})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "logged in as ann@x.com (admin)", out)

	code, out, err = exec(t, newSession(store), options{Command: "whoami"})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "Ann <ann@x.com> role=admin", out)

	code, out, _ = exec(t, newSession(store), options{Command: "can", Role: "admin"})
	assert.Equal(t, 0, code)
	assert.Equal(t, "yes: admin", out)

	code, out, _ = exec(t, newSession(store), options{Command: "can", Role: "director"})
	assert.Equal(t, 1, code)
	assert.Equal(t, "no: director", out)

	code, _, err = exec(t, newSession(store), options{Command: "logout"})
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	code, _, _ = exec(t, newSession(store), options{Command: "whoami"})
	assert.Equal(t, 1, code)
}

func TestLoginFailure(t *testing.T) {
	code, _, err := exec(t, newSession(session.NewMemoryStore()), options{Command: "login", Email: "ann@x.com", Password: "wrong"})
	assert.Equal(t, 1, code)
	require.Error(t, err)
	assert.Contains(t, err.Error(), session.MsgInvalidPassword)
}

func TestUsageErrors(t *testing.T) {
	sess := newSession(session.NewMemoryStore())

	code, _, err := exec(t, sess, options{Command: "can", Role: "owner"})
	assert.Equal(t, 2, code)
	assert.Error(t, err)

	code, _, err = exec(t, sess, options{Command: "delete"})
	assert.Equal(t, 2, code)
	assert.Error(t, err)
}

func TestReadPasswordFromEnv(t *testing.T) {
	t.Setenv("PORTAL_PASSWORD", "FromEnv1")
	assert.Equal(t, "FromEnv1", readPassword(strings.NewReader("ignored\n")))

	t.Setenv("PORTAL_PASSWORD", "")
	assert.Equal(t, "typed", readPassword(strings.NewReader("typed\r\n")))
}

func TestParseFlagsHasNoPasswordFlag(t *testing.T) {
	var errOut bytes.Buffer
	_, err := parseFlags([]string{"-cmd", "login", "-email", "a@x.com", "-password", "Secret1"}, &errOut)
	require.Error(t, err)
	assert.Contains(t, errOut.String(), "-password")

	f, err := parseFlags([]string{"-cmd", "login", "-email", "a@x.com", "-timeout", "3s"}, &errOut)
	require.NoError(t, err)
	assert.Equal(t, "login", f.Command)
	assert.Equal(t, "a@x.com", f.Email)
	assert.Empty(t, f.Password)
	assert.Equal(t, 3*time.Second, f.Timeout)
}
