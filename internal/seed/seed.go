package seed

import (
	"fmt"
	"log/slog"

	"devconnector/internal/middleware"
	"devconnector/internal/models"

	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	Users        int
	PostsPerUser int
	// HashCost is the bcrypt cost of the shared password hash; zero means the default.
	HashCost int
	// Seed makes generated data reproducible; zero seeds from the clock.
	Seed    int64
	MaxDays int
}

// Summary counts what a seeding run created.
type Summary struct {
	Users    int
	Profiles int
	Posts    int
	Likes    int
	Comments int
}

// Seeder populates the database with demo users, profiles and posts.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder creates a Seeder for db.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	factory, err := NewFactory(db, opts)
	if err != nil {
		return nil, err
	}
	return &Seeder{db: db, opts: opts, factory: factory}, nil
}

// ClearAll deletes all posts, profiles and users, children first.
func (s *Seeder) ClearAll() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Post{}, &models.Profile{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Run creates opts.Users users, each with a profile and opts.PostsPerUser
// posts liked and commented on by the other users.
func (s *Seeder) Run() (Summary, error) {
	var sum Summary

	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		u, err := s.factory.CreateUser()
		if err != nil {
			return sum, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
		sum.Users++

		if _, err := s.factory.CreateProfile(u); err != nil {
			return sum, fmt.Errorf("create profile for user %d: %w", u.ID, err)
		}
		sum.Profiles++
	}

	posts := make([]*models.Post, 0, len(users)*s.opts.PostsPerUser)
	for _, u := range users {
		for i := 0; i < s.opts.PostsPerUser; i++ {
			p := s.factory.BuildPost(u)
			s.factory.Engage(p, users)
			sum.Likes += len(p.Likes)
			sum.Comments += len(p.Comments)
			posts = append(posts, p)
		}
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return sum, fmt.Errorf("create posts: %w", err)
	}
	sum.Posts = len(posts)

	middleware.Logger.Info("seeding complete",
		slog.Int("users", sum.Users),
		slog.Int("profiles", sum.Profiles),
		slog.Int("posts", sum.Posts),
		slog.Int("likes", sum.Likes),
		slog.Int("comments", sum.Comments),
	)
	return sum, nil
}
