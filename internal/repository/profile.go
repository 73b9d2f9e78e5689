package repository

import (
	"context"
	"errors"

	"devconnector/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	// GetByUserID returns nil, nil when the user has no profile.
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	List(ctx context.Context) ([]*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	// Mutate applies fn to the user's profile under optimistic concurrency.
	Mutate(ctx context.Context, userID uint, fn func(*models.Profile) error) (*models.Profile, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// profileColumns are the mutable columns; user_id and date never change after create.
var profileColumns = []string{
	"company", "website", "location", "status", "skills", "bio",
	"github_username", "social", "experience", "education",
}

// preloadUser projects the public user fields; email and password never load.
func preloadUser(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "avatar", "date")
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Preload("User", preloadUser).
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	profiles := make([]*models.Profile, 0)
	if err := r.db.WithContext(ctx).Preload("User", preloadUser).Order("id ASC").Find(&profiles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

// Create inserts a profile. A concurrent create for the same user surfaces as Conflict.
func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	profile.Version = 1
	if profile.Skills == nil {
		profile.Skills = []string{}
	}
	if profile.Experience == nil {
		profile.Experience = []models.Experience{}
	}
	if profile.Education == nil {
		profile.Education = []models.Education{}
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(profile).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("profile")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *profileRepository) Mutate(ctx context.Context, userID uint, fn func(*models.Profile) error) (*models.Profile, error) {
	return mutateVersioned(ctx, r.db, "profile", profileColumns, func(ctx context.Context) (*models.Profile, error) {
		profile, err := r.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			return nil, models.NewNotFoundError("There is no profile for this user")
		}
		return profile, nil
	}, fn)
}
