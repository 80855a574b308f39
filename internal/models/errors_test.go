package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"duplicate user", NewDuplicateUserError(errors.New("unique")), http.StatusConflict},
		{"unauthorized", NewUnauthorizedError("bad password"), http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("not yours"), http.StatusForbidden},
		{"self like", NewSelfLikeError(), http.StatusForbidden},
		{"not found", NewNotFoundError("Message", 3), http.StatusNotFound},
		{"validation", NewValidationError("too long"), http.StatusBadRequest},
		{"internal", NewInternalError(errors.New("db down")), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("follow: %w", NewNotFoundError("User", 9)), http.StatusNotFound},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("signup: %w", NewDuplicateUserError(nil))
	assert.True(t, HasCode(err, CodeDuplicateUser))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
}

func TestRespondWithError_HidesInternalDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/internal", func(c *fiber.Ctx) error {
		return RespondWithError(c, http.StatusInternalServerError, NewInternalError(errors.New("pq: connection refused")))
	})
	app.Get("/duplicate", func(c *fiber.Ctx) error {
		return RespondWithError(c, http.StatusConflict, NewDuplicateUserError(errors.New("UNIQUE constraint failed: users.email")))
	})
	app.Get("/raw", func(c *fiber.Ctx) error {
		return RespondWithError(c, http.StatusInternalServerError, errors.New("secret detail"))
	})

	for path, code := range map[string]string{
		"/internal":  CodeInternal,
		"/duplicate": CodeDuplicateUser,
		"/raw":       CodeInternal,
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		var out ErrorResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Equal(t, code, out.Code, path)
		assert.Empty(t, out.Details, path)
		assert.NotContains(t, string(body), "UNIQUE", path)
		assert.NotContains(t, string(body), "secret detail", path)
	}
}
