package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostMessage(t *testing.T) {
	api := newTestAPI(t, "")
	tok, id := api.signup("alice")

	resp := api.expect(fiber.StatusCreated, http.MethodPost, "/api/messages", tok, fiber.Map{"text": "  hello world  "})
	msg := decode[models.Message](t, resp)
	assert.Equal(t, "hello world", msg.Text)
	assert.Equal(t, id, msg.UserID)
	assert.False(t, msg.Timestamp.IsZero())

	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"too long", strings.Repeat("x", models.MaxMessageLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := api.expect(fiber.StatusBadRequest, http.MethodPost, "/api/messages", tok, fiber.Map{"text": tt.text})
			assert.Equal(t, models.CodeValidation, decode[errorBody](t, resp).Code)
		})
	}

	api.expect(fiber.StatusCreated, http.MethodPost, "/api/messages", tok,
		fiber.Map{"text": strings.Repeat("é", models.MaxMessageLength)})
	api.expect(fiber.StatusUnauthorized, http.MethodPost, "/api/messages", "", fiber.Map{"text": "anon"})
}

func TestGetAndDeleteMessage(t *testing.T) {
	api := newTestAPI(t, "")
	aliceTok, _ := api.signup("alice")
	bobTok, _ := api.signup("bob")

	msg := decode[models.Message](t, api.expect(fiber.StatusCreated, http.MethodPost, "/api/messages", aliceTok, fiber.Map{"text": "mine"}))
	path := fmt.Sprintf("/api/messages/%d", msg.ID)

	got := decode[models.Message](t, api.expect(fiber.StatusOK, http.MethodGet, path, "", nil))
	require.NotNil(t, got.User)
	assert.Equal(t, "alice", got.User.Username)

	resp := api.expect(fiber.StatusForbidden, http.MethodDelete, path, bobTok, nil)
	assert.Equal(t, models.CodeForbidden, decode[errorBody](t, resp).Code)
	api.expect(fiber.StatusUnauthorized, http.MethodDelete, path, "", nil)

	api.expect(fiber.StatusNoContent, http.MethodPost, path+"/like", bobTok, nil)
	api.expect(fiber.StatusNoContent, http.MethodDelete, path, aliceTok, nil)
	api.expect(fiber.StatusNotFound, http.MethodGet, path, "", nil)
	api.expect(fiber.StatusNotFound, http.MethodDelete, path, aliceTok, nil)

	liked := decode[[]models.Message](t, api.expect(fiber.StatusOK, http.MethodGet, "/api/messages/liked", bobTok, nil))
	assert.Empty(t, liked)
}

func TestLikeEndpoints(t *testing.T) {
	api := newTestAPI(t, "")
	aliceTok, _ := api.signup("alice")
	bobTok, _ := api.signup("bob")

	first := decode[models.Message](t, api.expect(fiber.StatusCreated, http.MethodPost, "/api/messages", aliceTok, fiber.Map{"text": "first"}))
	second := decode[models.Message](t, api.expect(fiber.StatusCreated, http.MethodPost, "/api/messages", aliceTok, fiber.Map{"text": "second"}))

	resp := api.expect(fiber.StatusForbidden, http.MethodPost, fmt.Sprintf("/api/messages/%d/like", first.ID), aliceTok, nil)
	assert.Equal(t, models.CodeSelfLikeForbidden, decode[errorBody](t, resp).Code)

	api.expect(fiber.StatusNoContent, http.MethodPost, fmt.Sprintf("/api/messages/%d/like", second.ID), bobTok, nil)
	api.expect(fiber.StatusNoContent, http.MethodPost, fmt.Sprintf("/api/messages/%d/like", first.ID), bobTok, nil)
	api.expect(fiber.StatusNoContent, http.MethodPost, fmt.Sprintf("/api/messages/%d/like", first.ID), bobTok, nil)

	liked := decode[[]models.Message](t, api.expect(fiber.StatusOK, http.MethodGet, "/api/messages/liked", bobTok, nil))
	assert.Len(t, liked, 2)

	api.expect(fiber.StatusNoContent, http.MethodDelete, fmt.Sprintf("/api/messages/%d/like", first.ID), bobTok, nil)
	api.expect(fiber.StatusNoContent, http.MethodDelete, fmt.Sprintf("/api/messages/%d/like", first.ID), bobTok, nil)

	liked = decode[[]models.Message](t, api.expect(fiber.StatusOK, http.MethodGet, "/api/messages/liked", bobTok, nil))
	require.Len(t, liked, 1)
	assert.Equal(t, second.ID, liked[0].ID)

	view := decode[MessageView](t, api.expect(fiber.StatusOK, http.MethodGet, fmt.Sprintf("/api/messages/%d", second.ID), bobTok, nil))
	assert.Equal(t, "second", view.Text)
	require.NotNil(t, view.Liked)
	assert.True(t, *view.Liked)

	view = decode[MessageView](t, api.expect(fiber.StatusOK, http.MethodGet, fmt.Sprintf("/api/messages/%d", first.ID), bobTok, nil))
	require.NotNil(t, view.Liked)
	assert.False(t, *view.Liked)

	view = decode[MessageView](t, api.expect(fiber.StatusOK, http.MethodGet, fmt.Sprintf("/api/messages/%d", first.ID), "", nil))
	assert.Nil(t, view.Liked, "anonymous viewers get no like state")

	api.expect(fiber.StatusNotFound, http.MethodPost, "/api/messages/9999/like", bobTok, nil)
	api.expect(fiber.StatusNotFound, http.MethodDelete, "/api/messages/9999/like", bobTok, nil)
}
