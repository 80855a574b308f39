package service

import (
	"context"
	"testing"

	"warbler/internal/featureflags"
	"warbler/internal/models"
	"warbler/internal/repository"
	"warbler/internal/testutil"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	identity *IdentityService
	graph    *GraphService
	messages *MessageService
	likes    *LikeService
	feed     *FeedService
}

func newTestEnv(t *testing.T, flags string) *testEnv {
	t.Helper()
	return newTestEnvWithDB(t, testutil.NewTestDB(t), flags)
}

func newTestEnvWithDB(t *testing.T, db *gorm.DB, flags string) *testEnv {
	t.Helper()

	users := repository.NewUserRepository(db)
	follows := repository.NewFollowRepository(db)
	messages := repository.NewMessageRepository(db)
	likes := repository.NewLikeRepository(db)
	ff := featureflags.NewManager(flags)

	return &testEnv{
		db:       db,
		identity: NewIdentityService(users, follows, messages, likes, NewBcryptHasher(bcrypt.MinCost)),
		graph:    NewGraphService(follows, users, ff),
		messages: NewMessageService(messages, users),
		likes:    NewLikeService(likes, messages),
		feed:     NewFeedService(messages, ff),
	}
}

func (e *testEnv) signup(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := e.identity.Signup(context.Background(), SignupInput{
		Username: username,
		Password: "password-" + username,
		Email:    username + "@example.com",
	})
	require.NoError(t, err)
	return u
}

func texts(msgs []models.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out
}

func usernames(users []models.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Username)
	}
	return out
}

// messageRepoStub and likeRepoStub let tests assert which storage calls happen.
type messageRepoStub struct {
	repository.MessageRepository
	getByIDFn func(context.Context, uint) (*models.Message, error)
}

func (s *messageRepoStub) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	return s.getByIDFn(ctx, id)
}

type likeRepoStub struct {
	repository.LikeRepository
	likeFn func(context.Context, uint, uint) error
}

func (s *likeRepoStub) Like(ctx context.Context, userID, messageID uint) error {
	return s.likeFn(ctx, userID, messageID)
}
