package server

import (
	"fmt"
	"net/http"
	"testing"

	"warbler/internal/models"
	"warbler/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateMe(t *testing.T) {
	api := newTestAPI(t, "")
	token, _ := api.signup("alice")
	api.signup("bob")

	update := fiber.Map{
		"password": "password-alice",
		"username": "alice_w",
		"email":    "alice@example.org",
		"bio":      "hello there",
		"location": "Lisbon",
	}

	wrong := fiber.Map{}
	for k, v := range update {
		wrong[k] = v
	}
	wrong["password"] = "not-it"
	resp := api.expect(fiber.StatusUnauthorized, http.MethodPut, "/api/users/me", token, wrong)
	assert.Equal(t, models.CodeUnauthorized, decode[errorBody](t, resp).Code)

	resp = api.expect(fiber.StatusOK, http.MethodPut, "/api/users/me", token, update)
	got := decode[models.User](t, resp)
	assert.Equal(t, "alice_w", got.Username)
	assert.Equal(t, "hello there", got.Bio)
	assert.Equal(t, models.DefaultImageURL, got.ImageURL)
	assert.Equal(t, models.DefaultHeaderImageURL, got.HeaderImageURL)

	// The session survives a username change.
	me := decode[models.User](t, api.expect(fiber.StatusOK, http.MethodGet, "/api/users/me", token, nil))
	assert.Equal(t, "alice_w", me.Username)

	taken := fiber.Map{
		"password": "password-alice",
		"username": "bob",
		"email":    "alice@example.org",
	}
	resp = api.expect(fiber.StatusConflict, http.MethodPut, "/api/users/me", token, taken)
	assert.Equal(t, models.CodeDuplicateUser, decode[errorBody](t, resp).Code)
}

func TestSearchUsers(t *testing.T) {
	api := newTestAPI(t, "")
	api.signup("alice")
	api.signup("Alicia")
	api.signup("bob")

	all := decode[[]models.User](t, api.expect(fiber.StatusOK, http.MethodGet, "/api/users", "", nil))
	assert.Len(t, all, 3)

	hits := decode[[]models.User](t, api.expect(fiber.StatusOK, http.MethodGet, "/api/users?q=ALI", "", nil))
	require.Len(t, hits, 2)
	assert.Equal(t, "alice", hits[0].Username)
	assert.Equal(t, "Alicia", hits[1].Username)

	none := decode[[]models.User](t, api.expect(fiber.StatusOK, http.MethodGet, "/api/users?q=zed", "", nil))
	assert.Empty(t, none)

	two := decode[[]models.User](t, api.expect(fiber.StatusOK, http.MethodGet, "/api/users?limit=2", "", nil))
	assert.Len(t, two, 2)
}

func TestProfileAndGraphEndpoints(t *testing.T) {
	api := newTestAPI(t, "")
	aliceTok, aliceID := api.signup("alice")
	bobTok, bobID := api.signup("bob")

	resp := api.expect(fiber.StatusCreated, http.MethodPost, "/api/messages", aliceTok, fiber.Map{"text": "hi"})
	msg := decode[models.Message](t, resp)

	api.expect(fiber.StatusNoContent, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", aliceID), bobTok, nil)
	// Following twice is a no-op.
	api.expect(fiber.StatusNoContent, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", aliceID), bobTok, nil)
	api.expect(fiber.StatusNoContent, http.MethodPost, fmt.Sprintf("/api/messages/%d/like", msg.ID), bobTok, nil)

	view := decode[service.ProfileView](t, api.expect(fiber.StatusOK, http.MethodGet, fmt.Sprintf("/api/users/%d", aliceID), "", nil))
	assert.Equal(t, "alice", view.User.Username)
	assert.EqualValues(t, 1, view.MessageCount)
	assert.EqualValues(t, 1, view.FollowerCount)
	assert.EqualValues(t, 0, view.FollowingCount)
	assert.Nil(t, view.IsFollowing, "anonymous viewers get no follow state")

	seenByBob := decode[service.ProfileView](t, api.expect(fiber.StatusOK, http.MethodGet, fmt.Sprintf("/api/users/%d", aliceID), bobTok, nil))
	require.NotNil(t, seenByBob.IsFollowing)
	assert.True(t, *seenByBob.IsFollowing)

	seenByAlice := decode[service.ProfileView](t, api.expect(fiber.StatusOK, http.MethodGet, fmt.Sprintf("/api/users/%d", bobID), aliceTok, nil))
	require.NotNil(t, seenByAlice.IsFollowing)
	assert.False(t, *seenByAlice.IsFollowing)

	bobView := decode[service.ProfileView](t, api.expect(fiber.StatusOK, http.MethodGet, fmt.Sprintf("/api/users/%d", bobID), "", nil))
	assert.EqualValues(t, 1, bobView.FollowingCount)
	assert.EqualValues(t, 1, bobView.LikeCount)

	followers := decode[[]models.User](t, api.expect(fiber.StatusOK, http.MethodGet, fmt.Sprintf("/api/users/%d/followers", aliceID), bobTok, nil))
	require.Len(t, followers, 1)
	assert.Equal(t, bobID, followers[0].ID)

	following := decode[[]models.User](t, api.expect(fiber.StatusOK, http.MethodGet, fmt.Sprintf("/api/users/%d/following", bobID), bobTok, nil))
	require.Len(t, following, 1)
	assert.Equal(t, aliceID, following[0].ID)

	// Follower lists require a session.
	api.expect(fiber.StatusUnauthorized, http.MethodGet, fmt.Sprintf("/api/users/%d/followers", aliceID), "", nil)

	msgs := decode[[]models.Message](t, api.expect(fiber.StatusOK, http.MethodGet, fmt.Sprintf("/api/users/%d/messages", aliceID), "", nil))
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi", msgs[0].Text)

	api.expect(fiber.StatusNoContent, http.MethodDelete, fmt.Sprintf("/api/users/%d/follow", aliceID), bobTok, nil)
	api.expect(fiber.StatusNoContent, http.MethodDelete, fmt.Sprintf("/api/users/%d/follow", aliceID), bobTok, nil)
	following = decode[[]models.User](t, api.expect(fiber.StatusOK, http.MethodGet, fmt.Sprintf("/api/users/%d/following", bobID), bobTok, nil))
	assert.Empty(t, following)

	api.expect(fiber.StatusNotFound, http.MethodGet, "/api/users/9999", "", nil)
	api.expect(fiber.StatusNotFound, http.MethodGet, "/api/users/9999/messages", "", nil)
	api.expect(fiber.StatusNotFound, http.MethodPost, "/api/users/9999/follow", bobTok, nil)
	api.expect(fiber.StatusBadRequest, http.MethodGet, "/api/users/abc", "", nil)
}

func TestSelfFollow(t *testing.T) {
	t.Run("allowed by default", func(t *testing.T) {
		api := newTestAPI(t, "")
		tok, id := api.signup("alice")
		api.expect(fiber.StatusNoContent, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", id), tok, nil)
	})

	t.Run("blocked by flag", func(t *testing.T) {
		api := newTestAPI(t, "block_self_follow=on")
		tok, id := api.signup("alice")
		resp := api.expect(fiber.StatusBadRequest, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", id), tok, nil)
		assert.Equal(t, models.CodeValidation, decode[errorBody](t, resp).Code)
	})
}

func TestDeleteMe(t *testing.T) {
	api := newTestAPI(t, "")
	aliceTok, aliceID := api.signup("alice")
	bobTok, _ := api.signup("bob")

	resp := api.expect(fiber.StatusCreated, http.MethodPost, "/api/messages", aliceTok, fiber.Map{"text": "bye soon"})
	msg := decode[models.Message](t, resp)
	api.expect(fiber.StatusNoContent, http.MethodPost, fmt.Sprintf("/api/messages/%d/like", msg.ID), bobTok, nil)

	api.expect(fiber.StatusNoContent, http.MethodDelete, "/api/users/me", aliceTok, nil)

	api.expect(fiber.StatusUnauthorized, http.MethodGet, "/api/users/me", aliceTok, nil)
	api.expect(fiber.StatusNotFound, http.MethodGet, fmt.Sprintf("/api/users/%d", aliceID), "", nil)
	api.expect(fiber.StatusNotFound, http.MethodGet, fmt.Sprintf("/api/messages/%d", msg.ID), "", nil)
	api.expect(fiber.StatusUnauthorized, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "alice", "password": "password-alice",
	})

	liked := decode[[]models.Message](t, api.expect(fiber.StatusOK, http.MethodGet, "/api/messages/liked", bobTok, nil))
	assert.Empty(t, liked)
}

func TestDeleteMe_FailedDeleteKeepsSession(t *testing.T) {
	api := newTestAPI(t, "")
	aliceTok, _ := api.signup("alice")

	require.NoError(t, api.srv.db.Migrator().DropTable(&models.Like{}))

	api.expect(fiber.StatusInternalServerError, http.MethodDelete, "/api/users/me", aliceTok, nil)

	me := decode[models.User](t, api.expect(fiber.StatusOK, http.MethodGet, "/api/users/me", aliceTok, nil))
	assert.Equal(t, "alice", me.Username)
}
