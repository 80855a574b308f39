// Package bootstrap wires process-level dependencies shared by the server and tools.
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"warbler/internal/cache"
	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedPreset names a seed preset applied when the database has no users.
	// It is honoured in development only.
	SeedPreset string
}

// InitRuntime connects to the database and Redis and optionally seeds an empty
// development database. Redis is mandatory in production.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()
	if r == nil && cfg.IsProduction() {
		return nil, nil, errors.New("redis is required in production")
	}

	if err := seedEmptyDevDatabase(cfg, db, opts.SeedPreset); err != nil {
		return nil, nil, fmt.Errorf("failed to seed development database: %w", err)
	}

	return db, r, nil
}

func seedEmptyDevDatabase(cfg *config.Config, db *gorm.DB, preset string) error {
	if preset == "" || cfg.Env != "development" {
		return nil
	}

	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		middleware.Logger.Info("skipping development seed; database not empty", slog.Int64("users", users))
		return nil
	}

	opts, err := seed.LoadPreset("", preset)
	if err != nil {
		return err
	}
	opts.Clean = false
	if _, err := seed.NewSeeder(db, opts).Run(); err != nil {
		return err
	}
	middleware.Logger.Info("development database seeded", slog.String("preset", preset))
	return nil
}
