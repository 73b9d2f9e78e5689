package service

import (
	"context"
	"errors"
	"testing"

	"devconnector/internal/auth"
	"devconnector/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService(users *userRepoStub, tokens *tokenStub) *UserService {
	return NewUserService(users, tokens).WithHashCost(bcrypt.MinCost)
}

func TestGravatar(t *testing.T) {
	// md5("myemailaddress@example.com")
	want := "//www.gravatar.com/avatar/0bc83cb571cd1c50ba6f3e8a78ef1346?s=200&r=pg&d=mm"
	assert.Equal(t, want, Gravatar("  MyEmailAddress@example.com "))
}

func TestUserService_Register(t *testing.T) {
	users := newUserRepoStub()
	tokens := &tokenStub{}
	svc := newTestUserService(users, tokens)

	token, err := svc.Register(context.Background(), RegisterInput{
		Name:     " Ada ",
		Email:    "Ada@Example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)

	stored := users.users[1]
	assert.Equal(t, "Ada", stored.Name)
	assert.Equal(t, "ada@example.com", stored.Email)
	assert.Equal(t, Gravatar("ada@example.com"), stored.Avatar)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret1")))
}

func TestUserService_RegisterValidation(t *testing.T) {
	svc := newTestUserService(newUserRepoStub(), &tokenStub{})

	_, err := svc.Register(context.Background(), RegisterInput{Email: "nope", Password: "123"})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	require.Len(t, appErr.Fields, 3)
	assert.Equal(t, "name", appErr.Fields[0].Param)
	assert.Equal(t, "Name is required", appErr.Fields[0].Msg)
	assert.Equal(t, "Please include a valid email", appErr.Fields[1].Msg)
	assert.Equal(t, "Please enter a password with 6 or more characters", appErr.Fields[2].Msg)
}

func TestUserService_RegisterDuplicate(t *testing.T) {
	users := newUserRepoStub(&models.User{ID: 1, Name: "Ada", Email: "ada@example.com"})
	svc := newTestUserService(users, &tokenStub{})

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Ada", Email: "ADA@example.com", Password: "secret1"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Equal(t, []models.FieldError{{Msg: "User already exists"}}, appErr.Fields)
}

func TestUserService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	users := newUserRepoStub(&models.User{ID: 3, Name: "Ada", Email: "ada@example.com", Password: string(hash)})

	tests := []struct {
		name    string
		input   LoginInput
		wantErr string
	}{
		{"success", LoginInput{Email: "ada@example.com", Password: "secret1"}, ""},
		{"unknown email", LoginInput{Email: "bob@example.com", Password: "secret1"}, "Invalid credentials"},
		{"wrong password", LoginInput{Email: "ada@example.com", Password: "wrong"}, "Invalid credentials"},
		{"missing password", LoginInput{Email: "ada@example.com"}, "Password is required"},
		{"invalid email", LoginInput{Email: "ada", Password: "secret1"}, "Please include a valid email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestUserService(users, &tokenStub{})
			token, err := svc.Login(context.Background(), tt.input)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "token-3", token)
				return
			}
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, models.CodeValidation, appErr.Code)
			assert.Equal(t, tt.wantErr, appErr.Fields[0].Msg)
		})
	}
}

func TestUserService_LoginIssueFailure(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	users := newUserRepoStub(&models.User{ID: 3, Email: "ada@example.com", Password: string(hash)})
	svc := newTestUserService(users, &tokenStub{issueErr: errors.New("signing failed")})

	_, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "secret1"})
	assertCode(t, err, models.CodeInternal)
}

func TestUserService_CurrentUserOmitsPassword(t *testing.T) {
	users := newUserRepoStub(&models.User{ID: 5, Name: "Ada", Password: "hash"})
	svc := newTestUserService(users, &tokenStub{})

	user, err := svc.CurrentUser(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, user.Password)

	_, err = svc.CurrentUser(context.Background(), 6)
	assertCode(t, err, models.CodeNotFound)
}

func TestUserService_Logout(t *testing.T) {
	tokens := &tokenStub{}
	svc := newTestUserService(newUserRepoStub(), tokens)
	id := auth.Identity{UserID: 1, TokenID: "abc"}

	require.NoError(t, svc.Logout(context.Background(), id))
	assert.Equal(t, []auth.Identity{id}, tokens.revoked)

	tokens.revokeErr = errors.New("redis down")
	assertCode(t, svc.Logout(context.Background(), id), models.CodeInternal)
}
