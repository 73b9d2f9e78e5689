package server

import (
	"devconnector/internal/auth"
	"devconnector/internal/models"
	"devconnector/internal/notifications"
	"devconnector/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body service.CreatePostInput true "Post"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx, id auth.Identity) error {
	var in service.CreatePostInput
	if err := parseBody(c, &in); err != nil {
		return models.RespondWithError(c, err)
	}
	in.UserID = id.UserID

	post, err := s.postService.CreatePost(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	s.publishPostEvent(c.UserContext(), notifications.EventPostCreated, post)
	return c.JSON(post)
}

// ListPosts handles GET /api/posts
// @Summary List posts
// @Description Posts oldest first
// @Tags posts
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Failure 401 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx, _ auth.Identity) error {
	page := parsePagination(c, defaultPaginationLimit)

	posts, err := s.postService.ListPosts(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx, _ auth.Identity) error {
	postID, err := parsePostID(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.GetPost(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx, id auth.Identity) error {
	postID, err := parsePostID(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.postService.DeletePost(c.UserContext(), id.UserID, postID); err != nil {
		return models.RespondWithError(c, err)
	}

	s.publishPostEvent(c.UserContext(), notifications.EventPostDeleted, postRemovedEvent{PostID: postID})
	return c.JSON(MessageResponse{Msg: "Post removed"})
}

// LikePost handles PUT /api/posts/like/:id
// @Summary Like post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {array} models.Like
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /posts/like/{id} [put]
func (s *Server) LikePost(c *fiber.Ctx, id auth.Identity) error {
	postID, err := parsePostID(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	likes, err := s.postService.Like(c.UserContext(), postID, id.UserID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	s.publishPostEvent(c.UserContext(), notifications.EventPostLiked, likesEvent{PostID: postID, Likes: likes})
	return c.JSON(likes)
}

// UnlikePost handles PUT /api/posts/unlike/:id
// @Summary Unlike post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {array} models.Like
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /posts/unlike/{id} [put]
func (s *Server) UnlikePost(c *fiber.Ctx, id auth.Identity) error {
	postID, err := parsePostID(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	likes, err := s.postService.Unlike(c.UserContext(), postID, id.UserID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	s.publishPostEvent(c.UserContext(), notifications.EventPostUnliked, likesEvent{PostID: postID, Likes: likes})
	return c.JSON(likes)
}

// AddComment handles POST /api/posts/comment/:id
// @Summary Comment on post
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body service.AddCommentInput true "Comment"
// @Success 200 {array} models.Comment
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /posts/comment/{id} [post]
func (s *Server) AddComment(c *fiber.Ctx, id auth.Identity) error {
	postID, err := parsePostID(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var in service.AddCommentInput
	if err := parseBody(c, &in); err != nil {
		return models.RespondWithError(c, err)
	}
	in.PostID = postID
	in.UserID = id.UserID

	comments, err := s.postService.AddComment(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	s.publishPostEvent(c.UserContext(), notifications.EventCommentAdded, commentsEvent{PostID: postID, Comments: comments})
	return c.JSON(comments)
}

// DeleteComment handles DELETE /api/posts/comment/:id/:comment_id
// @Summary Delete comment
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Param comment_id path string true "Comment ID"
// @Success 200 {array} models.Comment
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /posts/comment/{id}/{comment_id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx, id auth.Identity) error {
	postID, err := parsePostID(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	comments, err := s.postService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		PostID:    postID,
		CommentID: c.Params("comment_id"),
		UserID:    id.UserID,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	s.publishPostEvent(c.UserContext(), notifications.EventCommentDeleted, commentsEvent{PostID: postID, Comments: comments})
	return c.JSON(comments)
}
