package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain error survives wrapping", fmt.Errorf("ctx: %w", NewConflict("taken", nil)), "CONFLICT", http.StatusConflict},
		{"fiber method not allowed", fiber.ErrMethodNotAllowed, "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed},
		{"fiber body too large", fiber.ErrRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", http.StatusRequestEntityTooLarge},
		{"no rows", pgx.ErrNoRows, "NOT_FOUND", http.StatusNotFound},
		{"unknown", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			de := ToDomainError(tc.err)
			assert.Equal(t, tc.code, de.Code)
			assert.Equal(t, tc.status, de.HTTPStatus)
		})
	}
}

func TestNilErrors(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
	assert.NoError(t, MapError(nil))
}

func TestUnavailableKeepsCause(t *testing.T) {
	cause := errors.New("too many connections")
	err := NewUnavailable("busy", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "busy: too many connections", err.Error())
}
