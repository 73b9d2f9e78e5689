package service

import (
	"context"
	"testing"
	"time"

	"devconnector/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = &models.User{ID: 1, Name: "Alice", Avatar: "//a"}
	bob   = &models.User{ID: 2, Name: "Bob", Avatar: "//b"}
)

func newTestPostService(posts ...*models.Post) (*PostService, *postRepoStub) {
	repo := newPostRepoStub(posts...)
	return NewPostService(repo, newUserRepoStub(alice, bob)), repo
}

func seededPost() *models.Post {
	return &models.Post{ID: 10, UserID: alice.ID, Text: "hello", Name: alice.Name, Avatar: alice.Avatar, Version: 1}
}

func likeUsers(likes []models.Like) []uint {
	out := make([]uint, 0, len(likes))
	for _, l := range likes {
		out = append(out, l.UserID)
	}
	return out
}

func TestPostService_CreatePostSnapshotsAuthor(t *testing.T) {
	svc, _ := newTestPostService()

	post, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: bob.ID, Text: "  hi  "})
	require.NoError(t, err)
	assert.Equal(t, "hi", post.Text)
	assert.Equal(t, bob.ID, post.UserID)
	assert.Equal(t, "Bob", post.Name)
	assert.Equal(t, "//b", post.Avatar)
}

func TestPostService_CreatePostRequiresText(t *testing.T) {
	svc, repo := newTestPostService()

	_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: bob.ID, Text: "   "})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, []models.FieldError{{Msg: "Text is required", Param: "text", Location: "body"}}, appErr.Fields)
	assert.Empty(t, repo.posts)
}

func TestPostService_ListPosts(t *testing.T) {
	first := seededPost()
	second := &models.Post{ID: 11, UserID: bob.ID, Text: "two"}
	svc, _ := newTestPostService(first, second)

	posts, err := svc.ListPosts(context.Background(), 50, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, uint(10), posts[0].ID)
}

func TestPostService_GetPostMissing(t *testing.T) {
	svc, _ := newTestPostService()

	_, err := svc.GetPost(context.Background(), 99)
	assertCode(t, err, models.CodeNotFound)
}

func TestPostService_DeletePost(t *testing.T) {
	t.Run("owner", func(t *testing.T) {
		svc, repo := newTestPostService(seededPost())
		require.NoError(t, svc.DeletePost(context.Background(), alice.ID, 10))
		assert.Equal(t, []uint{10}, repo.deleted)
	})
	t.Run("not owner", func(t *testing.T) {
		svc, repo := newTestPostService(seededPost())
		err := svc.DeletePost(context.Background(), bob.ID, 10)
		assertCode(t, err, models.CodeForbidden)
		assert.Equal(t, "User not authorized", err.Error())
		assert.Empty(t, repo.deleted)
	})
	t.Run("missing", func(t *testing.T) {
		svc, _ := newTestPostService()
		assertCode(t, svc.DeletePost(context.Background(), alice.ID, 10), models.CodeNotFound)
	})
}

func TestPostService_LikeTwiceIsRejected(t *testing.T) {
	svc, repo := newTestPostService(seededPost())
	ctx := context.Background()

	likes, err := svc.Like(ctx, 10, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID}, likeUsers(likes))

	_, err = svc.Like(ctx, 10, bob.ID)
	assertCode(t, err, models.CodeAlreadyLiked)
	assert.Equal(t, []uint{bob.ID}, likeUsers(repo.posts[10].Likes))
}

func TestPostService_UnlikeWithoutLike(t *testing.T) {
	svc, _ := newTestPostService(seededPost())

	_, err := svc.Unlike(context.Background(), 10, bob.ID)
	assertCode(t, err, models.CodeNotLiked)
}

func TestPostService_LikeMissingPost(t *testing.T) {
	svc, _ := newTestPostService()

	_, err := svc.Like(context.Background(), 10, bob.ID)
	assertCode(t, err, models.CodeNotFound)
}

func TestPostService_LikeUnlikeSequence(t *testing.T) {
	svc, _ := newTestPostService(seededPost())
	ctx := context.Background()

	likes, err := svc.Like(ctx, 10, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{alice.ID}, likeUsers(likes))

	likes, err = svc.Like(ctx, 10, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID, alice.ID}, likeUsers(likes), "newest like first")

	likes, err = svc.Unlike(ctx, 10, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID}, likeUsers(likes))

	_, err = svc.Unlike(ctx, 10, alice.ID)
	assertCode(t, err, models.CodeNotLiked)

	likes, err = svc.Like(ctx, 10, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{alice.ID, bob.ID}, likeUsers(likes))
}

func TestPostService_AddComment(t *testing.T) {
	svc, _ := newTestPostService(seededPost())
	ctx := context.Background()

	_, err := svc.AddComment(ctx, AddCommentInput{PostID: 10, UserID: alice.ID, Text: "first"})
	require.NoError(t, err)
	comments, err := svc.AddComment(ctx, AddCommentInput{PostID: 10, UserID: bob.ID, Text: "second"})
	require.NoError(t, err)

	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Text)
	assert.Equal(t, "Bob", comments[0].Name)
	assert.NotEmpty(t, comments[0].ID)
	assert.NotEqual(t, comments[0].ID, comments[1].ID)
	assert.WithinDuration(t, time.Now(), comments[0].Date, time.Minute)
}

func TestPostService_AddCommentRequiresText(t *testing.T) {
	svc, repo := newTestPostService(seededPost())

	_, err := svc.AddComment(context.Background(), AddCommentInput{PostID: 10, UserID: bob.ID})
	assertCode(t, err, models.CodeValidation)
	assert.Zero(t, repo.mutations)
}

func TestPostService_DeleteCommentByNonAuthor(t *testing.T) {
	post := seededPost()
	post.Comments = []models.Comment{{ID: "c1", UserID: alice.ID, Text: "mine"}}
	svc, repo := newTestPostService(post)

	_, err := svc.DeleteComment(context.Background(), DeleteCommentInput{PostID: 10, CommentID: "c1", UserID: bob.ID})
	assertCode(t, err, models.CodeForbidden)
	require.Len(t, repo.posts[10].Comments, 1)
	assert.Equal(t, "c1", repo.posts[10].Comments[0].ID)
}

func TestPostService_DeleteCommentRemovesExactlyTarget(t *testing.T) {
	post := seededPost()
	// Alice authored several comments; the one she deletes is not her first.
	post.Comments = []models.Comment{
		{ID: "c3", UserID: alice.ID, Text: "third"},
		{ID: "c2", UserID: bob.ID, Text: "bob"},
		{ID: "c1", UserID: alice.ID, Text: "first"},
	}
	svc, _ := newTestPostService(post)

	comments, err := svc.DeleteComment(context.Background(), DeleteCommentInput{PostID: 10, CommentID: "c1", UserID: alice.ID})
	require.NoError(t, err)

	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"c3", "c2"}, ids)
}

func TestPostService_DeleteCommentMissing(t *testing.T) {
	svc, _ := newTestPostService(seededPost())

	_, err := svc.DeleteComment(context.Background(), DeleteCommentInput{PostID: 10, CommentID: "nope", UserID: alice.ID})
	assertCode(t, err, models.CodeNotFound)
	assert.Equal(t, "Comment does not exist", err.Error())
}
