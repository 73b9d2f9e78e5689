package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"devconnector/internal/auth"
	"devconnector/internal/models"
)

// userRepoStub is an in-memory repository.UserRepository.
type userRepoStub struct {
	mu     sync.Mutex
	users  map[uint]*models.User
	nextID uint
}

func newUserRepoStub(users ...*models.User) *userRepoStub {
	s := &userRepoStub{users: map[uint]*models.User{}}
	for _, u := range users {
		s.users[u.ID] = u
		if u.ID > s.nextID {
			s.nextID = u.ID
		}
	}
	return s
}

func (s *userRepoStub) GetByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User not found")
	}
	cp := *u
	return &cp, nil
}

func (s *userRepoStub) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *userRepoStub) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	user.ID = s.nextID
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

// postRepoStub is an in-memory repository.PostRepository.
type postRepoStub struct {
	posts     map[uint]*models.Post
	nextID    uint
	deleted   []uint
	mutations int
}

func newPostRepoStub(posts ...*models.Post) *postRepoStub {
	s := &postRepoStub{posts: map[uint]*models.Post{}}
	for _, p := range posts {
		s.posts[p.ID] = p
		if p.ID > s.nextID {
			s.nextID = p.ID
		}
	}
	return s
}

func copyPost(p *models.Post) *models.Post {
	cp := *p
	cp.Likes = append([]models.Like{}, p.Likes...)
	cp.Comments = append([]models.Comment{}, p.Comments...)
	return &cp
}

func (s *postRepoStub) Create(_ context.Context, post *models.Post) error {
	s.nextID++
	post.ID = s.nextID
	post.Version = 1
	s.posts[post.ID] = copyPost(post)
	return nil
}

func (s *postRepoStub) GetByID(_ context.Context, id uint) (*models.Post, error) {
	p, ok := s.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("Post not found")
	}
	return copyPost(p), nil
}

func (s *postRepoStub) List(_ context.Context, limit, offset int) ([]*models.Post, error) {
	out := make([]*models.Post, 0)
	for id := uint(1); id <= s.nextID; id++ {
		if p, ok := s.posts[id]; ok {
			out = append(out, copyPost(p))
		}
	}
	if offset >= len(out) {
		return []*models.Post{}, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *postRepoStub) Delete(_ context.Context, id uint) error {
	if _, ok := s.posts[id]; !ok {
		return models.NewNotFoundError("Post not found")
	}
	delete(s.posts, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *postRepoStub) Mutate(ctx context.Context, id uint, fn func(*models.Post) error) (*models.Post, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	p.Version++
	s.posts[id] = copyPost(p)
	s.mutations++
	return p, nil
}

// profileRepoStub is an in-memory repository.ProfileRepository.
type profileRepoStub struct {
	profiles  map[uint]*models.Profile
	createErr error
}

func newProfileRepoStub() *profileRepoStub {
	return &profileRepoStub{profiles: map[uint]*models.Profile{}}
}

func copyProfile(p *models.Profile) *models.Profile {
	cp := *p
	cp.Skills = append([]string{}, p.Skills...)
	cp.Experience = append([]models.Experience{}, p.Experience...)
	cp.Education = append([]models.Education{}, p.Education...)
	if p.Social != nil {
		social := *p.Social
		cp.Social = &social
	}
	return &cp
}

func (s *profileRepoStub) GetByUserID(_ context.Context, userID uint) (*models.Profile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return copyProfile(p), nil
}

func (s *profileRepoStub) List(_ context.Context) ([]*models.Profile, error) {
	out := make([]*models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, copyProfile(p))
	}
	return out, nil
}

func (s *profileRepoStub) Create(_ context.Context, profile *models.Profile) error {
	if s.createErr != nil {
		return s.createErr
	}
	profile.ID = uint(len(s.profiles) + 1)
	profile.Version = 1
	s.profiles[profile.UserID] = copyProfile(profile)
	return nil
}

func (s *profileRepoStub) Mutate(ctx context.Context, userID uint, fn func(*models.Profile) error) (*models.Profile, error) {
	p, _ := s.GetByUserID(ctx, userID)
	if p == nil {
		return nil, models.NewNotFoundError(noProfileMessage)
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	p.Version++
	s.profiles[userID] = copyProfile(p)
	return p, nil
}

// accountRepoStub records cascade deletions.
type accountRepoStub struct {
	deleteFn func(context.Context, uint) error
	deleted  []uint
}

func (s *accountRepoStub) DeleteCascade(ctx context.Context, userID uint) error {
	if s.deleteFn != nil {
		if err := s.deleteFn(ctx, userID); err != nil {
			return err
		}
	}
	s.deleted = append(s.deleted, userID)
	return nil
}

// tokenStub is a TokenIssuer that records revocations.
type tokenStub struct {
	issued    []uint
	revoked   []auth.Identity
	issueErr  error
	revokeErr error
}

func (s *tokenStub) Issue(userID uint) (string, auth.Identity, error) {
	if s.issueErr != nil {
		return "", auth.Identity{}, s.issueErr
	}
	s.issued = append(s.issued, userID)
	return fmt.Sprintf("token-%d", userID), auth.Identity{UserID: userID, TokenID: "jti"}, nil
}

func (s *tokenStub) Revoke(_ context.Context, id auth.Identity) error {
	s.revoked = append(s.revoked, id)
	return s.revokeErr
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if !models.IsCode(err, code) {
		t.Errorf("expected error code %s, got %v", code, err)
	}
}
