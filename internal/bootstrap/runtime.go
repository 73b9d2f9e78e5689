// Package bootstrap opens the runtime dependencies of the API process.
package bootstrap

import (
	"fmt"
	"log/slog"

	"devconnector/internal/cache"
	"devconnector/internal/config"
	"devconnector/internal/database"
	"devconnector/internal/middleware"
	"devconnector/internal/models"
	"devconnector/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const demoPostsPerUser = 3

// InitRuntime connects to the database and Redis. The Redis client is nil when
// Redis is unreachable. Demo data is seeded when SEED_DEMO_DATA is set.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if _, err := ensureDemoData(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
	}

	return db, cache.Connect(cfg.RedisURL), nil
}

// ensureDemoData seeds an empty database outside production. It reports
// whether anything was created.
func ensureDemoData(cfg *config.Config, db *gorm.DB) (bool, error) {
	if cfg == nil || db == nil || !cfg.SeedDemoData || cfg.IsProduction() {
		return false, nil
	}

	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return false, err
	}
	if users > 0 {
		middleware.Logger.Info("demo seeding skipped, database not empty", slog.Int64("users", users))
		return false, nil
	}

	s, err := seed.NewSeeder(db, seed.Options{Users: cfg.SeedDemoUsers, PostsPerUser: demoPostsPerUser})
	if err != nil {
		return false, err
	}
	if _, err := s.Run(); err != nil {
		return false, err
	}
	return true, nil
}
