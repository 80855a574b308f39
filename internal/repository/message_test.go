package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"warbler/internal/models"
	"warbler/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository_CreateGetDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMessageRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	msg := &models.Message{UserID: alice.ID, Text: "hello", Timestamp: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, msg))
	require.NotZero(t, msg.ID)

	got, err := repo.GetByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text)
	require.NotNil(t, got.User)
	assert.Equal(t, "alice", got.User.Username)

	require.NoError(t, likes.Like(ctx, bob.ID, msg.ID))
	require.NoError(t, repo.Delete(ctx, msg.ID))

	_, err = repo.GetByID(ctx, msg.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	liked, err := likes.IsLiked(ctx, bob.ID, msg.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	err = repo.Delete(ctx, msg.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestMessageRepository_Feed(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")
	testutil.Follow(t, db, alice.ID, bob.ID)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	own := testutil.CreateMessage(t, db, alice.ID, "mine", base)
	followed := testutil.CreateMessage(t, db, bob.ID, "from bob", base.Add(time.Minute))
	testutil.CreateMessage(t, db, carol.ID, "stranger", base.Add(2*time.Minute))

	feed, err := repo.Feed(ctx, alice.ID, FeedLimit)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, followed.ID, feed[0].ID)
	assert.Equal(t, own.ID, feed[1].ID)
	require.NotNil(t, feed[0].User)
	assert.Equal(t, "bob", feed[0].User.Username)

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "stranger", recent[0].Text)

	// Carol follows nobody: she only sees herself.
	feed, err = repo.Feed(ctx, carol.ID, FeedLimit)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "stranger", feed[0].Text)
}

func TestMessageRepository_FeedCapAndOrdering(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	testutil.Follow(t, db, alice.ID, bob.ID)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		author := alice.ID
		if i%2 == 0 {
			author = bob.ID
		}
		testutil.CreateMessage(t, db, author, fmt.Sprintf("m%d", i), base.Add(time.Duration(i)*time.Second))
	}
	// Two messages sharing a timestamp are ordered by id, newest id first.
	tieA := testutil.CreateMessage(t, db, bob.ID, "tie a", base.Add(time.Hour))
	tieB := testutil.CreateMessage(t, db, alice.ID, "tie b", base.Add(time.Hour))

	feed, err := repo.Feed(ctx, alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, feed, FeedLimit)
	assert.Equal(t, tieB.ID, feed[0].ID)
	assert.Equal(t, tieA.ID, feed[1].ID)
	assert.Equal(t, "m119", feed[2].Text)

	for i := 1; i < len(feed); i++ {
		prev, cur := feed[i-1], feed[i]
		assert.False(t, cur.Timestamp.After(prev.Timestamp), "feed must be newest first at %d", i)
	}
}

func TestMessageRepository_FeedIsSingleQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMessageRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "text", "timestamp", "user_id", "User__id", "User__username"}).
		AddRow(2, "from bob", now, 2, 2, "bob").
		AddRow(1, "mine", now.Add(-time.Minute), 1, 1, "alice")

	// The author join and the follow subquery must ride in one statement;
	// any second query fails ExpectationsWereMet.
	mock.ExpectQuery(`SELECT .+ FROM "messages" LEFT JOIN "users" "User" ON .+ WHERE .*messages.user_id = \$1 OR messages.user_id IN \(SELECT .+ FROM "follows" WHERE follower_id = \$2\).* ORDER BY messages.timestamp DESC, messages.id DESC LIMIT .+`).
		WillReturnRows(rows)

	feed, err := repo.Feed(context.Background(), 1, FeedLimit)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	require.NotNil(t, feed[0].User)
	assert.Equal(t, "bob", feed[0].User.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}
