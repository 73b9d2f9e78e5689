package repository

import (
	"context"
	"errors"

	"devconnector/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	Delete(ctx context.Context, id uint) error
	// Mutate applies fn to the likes and comments of a post under optimistic concurrency.
	Mutate(ctx context.Context, id uint, fn func(*models.Post) error) (*models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func errPostNotFound() *models.AppError {
	return models.NewNotFoundError("Post not found")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	post.Version = 1
	if post.Likes == nil {
		post.Likes = []models.Like{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPostNotFound()
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// List returns posts oldest first.
func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0)
	err := r.db.WithContext(ctx).
		Order("date ASC").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return errPostNotFound()
	}
	return nil
}

func (r *postRepository) Mutate(ctx context.Context, id uint, fn func(*models.Post) error) (*models.Post, error) {
	return mutateVersioned(ctx, r.db, "post", []string{"likes", "comments"}, func(ctx context.Context) (*models.Post, error) {
		return r.GetByID(ctx, id)
	}, fn)
}
