package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"devconnector/internal/config"
	"devconnector/internal/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
	rdb *redis.Client
	mr  *miniredis.Miniredis
}

func testConfig() *config.Config {
	return &config.Config{
		Port:              "0",
		Env:               "test",
		JWTSecret:         "test-secret-key-12345678901234567890123456789012",
		JWTExpirySeconds:  3600,
		JWTIssuer:         "devconnector-api",
		JWTAudience:       "devconnector-client",
		AllowedOrigins:    "http://localhost:3000",
		GithubAPIURL:      "http://127.0.0.1:0",
		GithubCacheTTLSec: 600,
		FeatureFlags:      "realtime_events=on",
	}
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	return &testEnv{srv: srv, app: srv.App(), db: db, rdb: rdb, mr: mr}
}

// do sends a request with an optional x-auth-token and JSON body and returns
// the status and raw response body.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(AuthTokenHeader, token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (e *testEnv) register(t *testing.T, name, email string) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/users", "", map[string]string{
		"name": name, "email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var out TokenResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (e *testEnv) userID(t *testing.T, token string) uint {
	t.Helper()
	status, body := e.do(t, http.MethodGet, "/api/auth", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var user struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &user))
	return user.ID
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func assertMsg(t *testing.T, body []byte, msg string) {
	t.Helper()
	assert.Equal(t, msg, decode[map[string]any](t, body)["msg"], string(body))
}

func assertFieldErrors(t *testing.T, body []byte, msgs ...string) {
	t.Helper()
	out := decode[struct {
		Errors []struct {
			Msg string `json:"msg"`
		} `json:"errors"`
	}](t, body)

	got := make([]string, 0, len(out.Errors))
	for _, e := range out.Errors {
		got = append(got, e.Msg)
	}
	assert.ElementsMatch(t, msgs, got)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", defaultPaginationLimit, 0},
		{"explicit", "?limit=10&offset=20", 10, 20},
		{"caps limit", "?limit=500", maxPaginationLimit, 0},
		{"non-positive limit", "?limit=0&offset=-4", defaultPaginationLimit, 0},
		{"garbage", "?limit=abc", defaultPaginationLimit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var got Pagination
			app.Get("/", func(c *fiber.Ctx) error {
				got = parsePagination(c, defaultPaginationLimit)
				return nil
			})

			_, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.Equal(t, tt.wantOffset, got.Offset)
		})
	}
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		query      string
		allowQuery bool
		want       string
	}{
		{"x-auth-token", map[string]string{AuthTokenHeader: "abc"}, "", false, "abc"},
		{"bearer", map[string]string{"Authorization": "Bearer xyz"}, "", false, "xyz"},
		{"header wins over bearer", map[string]string{AuthTokenHeader: "abc", "Authorization": "Bearer xyz"}, "", false, "abc"},
		{"malformed authorization", map[string]string{"Authorization": "Basic xyz"}, "", false, ""},
		{"query ignored by default", nil, "?token=q", false, ""},
		{"query allowed for websockets", nil, "?token=q", true, "q"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var got string
			app.Get("/", func(c *fiber.Ctx) error {
				got = tokenFromRequest(c, tt.allowQuery)
				return nil
			})

			req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			_, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
