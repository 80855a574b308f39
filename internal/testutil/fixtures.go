// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewTestDB opens a migrated, private in-memory SQLite database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(&config.Config{DBDriver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewFileTestDB opens a migrated SQLite database in a temp file. Unlike the
// in-memory fixture it keeps a full connection pool, so goroutines really do
// hit the database at the same time.
func NewFileTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warbler.db")
	dsn := "file:" + path + "?_journal_mode=WAL&_busy_timeout=10000&_txlock=immediate"
	db, err := database.Connect(&config.Config{DBDriver: "sqlite", SQLitePath: dsn})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewTestRedis starts a miniredis server and returns a client pointed at it.
func NewTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// CreateUser inserts a user with a throwaway password hash.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username:       username,
		Email:          fmt.Sprintf("%s@example.com", username),
		Password:       "not-a-real-hash",
		ImageURL:       models.DefaultImageURL,
		HeaderImageURL: models.DefaultHeaderImageURL,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateMessage inserts a message with an explicit timestamp.
func CreateMessage(t *testing.T, db *gorm.DB, userID uint, text string, ts time.Time) *models.Message {
	t.Helper()
	m := &models.Message{UserID: userID, Text: text, Timestamp: ts.UTC()}
	require.NoError(t, db.Omit("User").Create(m).Error)
	return m
}

// Follow inserts a follow edge directly.
func Follow(t *testing.T, db *gorm.DB, followerID, followedID uint) {
	t.Helper()
	require.NoError(t, db.Omit("Follower", "Followed").Create(&models.Follow{FollowerID: followerID, FollowedID: followedID}).Error)
}
