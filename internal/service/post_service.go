package service

import (
	"context"
	"strings"

	"devconnector/internal/auth"
	"devconnector/internal/models"
	"devconnector/internal/repository"
	"devconnector/internal/validation"
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

type CreatePostInput struct {
	UserID uint   `json:"-"`
	Text   string `json:"text" validate:"required" msg:"Text is required"`
}

type AddCommentInput struct {
	PostID uint   `json:"-"`
	UserID uint   `json:"-"`
	Text   string `json:"text" validate:"required" msg:"Text is required"`
}

type DeleteCommentInput struct {
	PostID    uint
	CommentID string
	UserID    uint
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo}
}

// CreatePost stores a post with a snapshot of the author's name and avatar.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID: author.ID,
		Text:   in.Text,
		Name:   author.Name,
		Avatar: author.Avatar,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.List(ctx, limit, offset)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// DeletePost removes a post owned by userID.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := auth.Authorize(userID, post.UserID, "User not authorized"); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, postID)
}

// Like adds userID to the post's likes. A user likes a post at most once.
func (s *PostService) Like(ctx context.Context, postID, userID uint) ([]models.Like, error) {
	post, err := s.postRepo.Mutate(ctx, postID, func(p *models.Post) error {
		if p.LikedBy(userID) {
			return models.NewAlreadyLikedError()
		}
		p.AddLike(userID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post.Likes, nil
}

// Unlike removes userID's like from the post.
func (s *PostService) Unlike(ctx context.Context, postID, userID uint) ([]models.Like, error) {
	post, err := s.postRepo.Mutate(ctx, postID, func(p *models.Post) error {
		if !p.RemoveLike(userID) {
			return models.NewNotLikedError()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post.Likes, nil
}

// AddComment front-inserts a comment authored by in.UserID.
func (s *PostService) AddComment(ctx context.Context, in AddCommentInput) ([]models.Comment, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	comment := models.NewComment(author, in.Text)

	post, err := s.postRepo.Mutate(ctx, in.PostID, func(p *models.Post) error {
		p.AddComment(comment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}

// DeleteComment removes exactly the comment with in.CommentID, which only its author may do.
func (s *PostService) DeleteComment(ctx context.Context, in DeleteCommentInput) ([]models.Comment, error) {
	post, err := s.postRepo.Mutate(ctx, in.PostID, func(p *models.Post) error {
		comment := p.FindComment(in.CommentID)
		if comment == nil {
			return models.NewNotFoundError("Comment does not exist")
		}
		if err := auth.Authorize(in.UserID, comment.UserID, "User not authorized"); err != nil {
			return err
		}
		p.RemoveComment(in.CommentID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}
