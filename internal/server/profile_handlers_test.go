package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"devconnector/internal/config"
	"devconnector/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertProfile_CreateRequiresStatusAndSkills(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada", "ada@example.com")

	status, body := env.do(t, http.MethodPost, "/api/profile", token, map[string]string{"company": "Acme"})
	assert.Equal(t, http.StatusBadRequest, status)
	assertFieldErrors(t, body, "Status is required", "Skills is required")

	status, body = env.do(t, http.MethodGet, "/api/profile/me", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assertMsg(t, body, "There is no profile for this user")
}

func TestUpsertProfile_DisjointUpdatesMerge(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada", "ada@example.com")

	status, body := env.do(t, http.MethodPost, "/api/profile", token, map[string]string{
		"status": "Developer", "skills": " go, ,rust ,sql", "twitter": "https://twitter.com/ada",
	})
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = env.do(t, http.MethodPost, "/api/profile", token, map[string]string{
		"company": "Analytical Engines", "youtube": "https://youtube.com/ada",
	})
	require.Equal(t, http.StatusOK, status, string(body))

	profile := decode[models.Profile](t, body)
	assert.Equal(t, "Developer", profile.Status)
	assert.Equal(t, []string{"go", "rust", "sql"}, profile.Skills)
	assert.Equal(t, "Analytical Engines", profile.Company)
	require.NotNil(t, profile.Social)
	assert.Equal(t, "https://twitter.com/ada", profile.Social.Twitter)
	assert.Equal(t, "https://youtube.com/ada", profile.Social.Youtube)
	require.NotNil(t, profile.User)
	assert.Equal(t, "Ada", profile.User.Name)
}

func TestPublicProfileRoutes(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada", "ada@example.com")
	userID := env.userID(t, token)

	status, _ := env.do(t, http.MethodPost, "/api/profile", token, map[string]string{"status": "Dev", "skills": "go"})
	require.Equal(t, http.StatusOK, status)

	status, body := env.do(t, http.MethodGet, "/api/profile", "", nil)
	require.Equal(t, http.StatusOK, status)
	profiles := decode[[]models.Profile](t, body)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Ada", profiles[0].User.Name)

	status, body = env.do(t, http.MethodGet, fmt.Sprintf("/api/profile/user/%d", userID), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Dev", decode[models.Profile](t, body).Status)

	for _, path := range []string{"/api/profile/user/999", "/api/profile/user/abc"} {
		status, body = env.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, status, path)
		assertMsg(t, body, "Profile not found")
	}
}

func TestExperienceAndEducation(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada", "ada@example.com")

	status, body := env.do(t, http.MethodPut, "/api/profile/experience", token, map[string]any{
		"title": "Engineer", "company": "Acme", "from": "2020-01-01", "description": "built things",
	})
	assert.Equal(t, http.StatusNotFound, status)
	assertMsg(t, body, "There is no profile for this user")

	status, _ = env.do(t, http.MethodPost, "/api/profile", token, map[string]string{"status": "Dev", "skills": "go"})
	require.Equal(t, http.StatusOK, status)

	status, body = env.do(t, http.MethodPut, "/api/profile/experience", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
	assertFieldErrors(t, body, "Title is required", "Company is required", "From date is required", "Description is required")

	status, body = env.do(t, http.MethodPut, "/api/profile/experience", token, map[string]any{
		"title": "Engineer", "company": "Acme", "from": "2020-01-01", "to": "2021-01-01",
		"current": true, "description": "built things",
	})
	require.Equal(t, http.StatusOK, status, string(body))
	profile := decode[models.Profile](t, body)
	require.Len(t, profile.Experience, 1)
	assert.Nil(t, profile.Experience[0].To)
	expID := profile.Experience[0].ID

	status, body = env.do(t, http.MethodPut, "/api/profile/education", token, map[string]any{
		"school": "Cambridge", "degree": "BA", "fieldofstudy": "Mathematics", "from": "2015-09-01T00:00:00Z",
	})
	require.Equal(t, http.StatusOK, status, string(body))
	profile = decode[models.Profile](t, body)
	require.Len(t, profile.Education, 1)
	eduID := profile.Education[0].ID

	status, body = env.do(t, http.MethodDelete, "/api/profile/experience/"+expID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[models.Profile](t, body).Experience)

	status, body = env.do(t, http.MethodDelete, "/api/profile/experience/"+expID, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assertMsg(t, body, "Experience not found")

	status, body = env.do(t, http.MethodDelete, "/api/profile/education/"+eduID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[models.Profile](t, body).Education)

	status, body = env.do(t, http.MethodDelete, "/api/profile/education/"+eduID, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assertMsg(t, body, "Education not found")
}

func TestDeleteAccount_Cascades(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada", "ada@example.com")
	userID := env.userID(t, token)
	other := env.register(t, "Bob", "bob@example.com")

	env.createPost(t, token, "one")
	env.createPost(t, token, "two")
	kept := env.createPost(t, other, "not mine")
	status, _ := env.do(t, http.MethodPost, "/api/profile", token, map[string]string{"status": "Dev", "skills": "go"})
	require.Equal(t, http.StatusOK, status)

	status, body := env.do(t, http.MethodDelete, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assertMsg(t, body, "User deleted")

	var posts, profiles, users int64
	require.NoError(t, env.db.Model(&models.Post{}).Where("user_id = ?", userID).Count(&posts).Error)
	require.NoError(t, env.db.Model(&models.Profile{}).Where("user_id = ?", userID).Count(&profiles).Error)
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", userID).Count(&users).Error)
	assert.Zero(t, posts)
	assert.Zero(t, profiles)
	assert.Zero(t, users)

	status, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/posts/%d", kept.ID), other, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = env.do(t, http.MethodGet, "/api/auth", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assertMsg(t, body, "Token is not valid")
}

func TestGithubRepos(t *testing.T) {
	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/users/ada/repos" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"engine"}]`))
	}))
	defer upstream.Close()

	env := newTestEnv(t, func(c *config.Config) { c.GithubAPIURL = upstream.URL })

	status, body := env.do(t, http.MethodGet, "/api/profile/github/ada", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"name":"engine"}]`, string(body))

	status, _ = env.do(t, http.MethodGet, "/api/profile/github/ada", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second lookup is served from cache")

	status, body = env.do(t, http.MethodGet, "/api/profile/github/ghost", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assertMsg(t, body, "No Github profile found")
}

func TestGithubRepos_UpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	env := newTestEnv(t, func(c *config.Config) { c.GithubAPIURL = url })

	status, body := env.do(t, http.MethodGet, "/api/profile/github/ada", "", nil)
	assert.Equal(t, http.StatusBadGateway, status)
	assertMsg(t, body, "Github is unavailable")
}
