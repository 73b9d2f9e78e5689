// Package github lists a user's public repositories through the GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"devconnector/internal/cache"
	"devconnector/internal/config"
	"devconnector/internal/models"
	"devconnector/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	userAgent    = "devconnector-api"
	maxBodyBytes = 1 << 20
)

// Client fetches repository listings, caching raw responses in Redis.
type Client struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client

	cache    *cache.Store
	cacheTTL time.Duration
}

// New creates a client for cfg.GithubAPIURL. store may be nil.
func New(cfg *config.Config, store *cache.Store) *Client {
	return &Client{
		BaseURL:      strings.TrimRight(cfg.GithubAPIURL, "/"),
		ClientID:     cfg.GithubClientID,
		ClientSecret: cfg.GithubSecret,
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
		cache:        store,
		cacheTTL:     cfg.GithubCacheTTL(),
	}
}

func (c *Client) reposURL(username string) string {
	q := url.Values{}
	q.Set("per_page", "5")
	q.Set("sort", "created:asc")
	if c.ClientID != "" && c.ClientSecret != "" {
		q.Set("client_id", c.ClientID)
		q.Set("client_secret", c.ClientSecret)
	}
	return fmt.Sprintf("%s/users/%s/repos?%s", c.BaseURL, url.PathEscape(username), q.Encode())
}

// ListRepos returns the five oldest public repositories of username as the
// raw JSON array GitHub sent.
func (c *Client) ListRepos(ctx context.Context, username string) (json.RawMessage, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.NewNoGithubProfileError()
	}

	key := cache.GithubReposKey(strings.ToLower(username))
	if c.cacheTTL > 0 {
		if cached, found, err := c.cache.GetBytes(ctx, key); err == nil && found {
			observability.GithubRequests.WithLabelValues("cache_hit").Inc()
			return cached, nil
		}
	}

	body, err := c.fetch(ctx, username)
	if err != nil {
		return nil, err
	}

	if c.cacheTTL > 0 {
		_ = c.cache.SetBytes(ctx, key, body, c.cacheTTL)
	}
	return body, nil
}

func (c *Client) fetch(ctx context.Context, username string) (_ json.RawMessage, err error) {
	ctx, span := observability.StartClientSpan(ctx, "github.list_repos",
		attribute.String("github.username", username),
	)
	defer func() { observability.EndSpan(span, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.reposURL(username), nil)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		observability.GithubRequests.WithLabelValues("upstream_error").Inc()
		return nil, models.NewUpstreamError(err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		observability.GithubRequests.WithLabelValues("not_found").Inc()
		return nil, models.NewNoGithubProfileError()
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		observability.GithubRequests.WithLabelValues("upstream_error").Inc()
		return nil, models.NewUpstreamError(err)
	}
	if !json.Valid(body) {
		observability.GithubRequests.WithLabelValues("upstream_error").Inc()
		return nil, models.NewUpstreamError(errors.New("github returned malformed JSON"))
	}

	observability.GithubRequests.WithLabelValues("ok").Inc()
	return body, nil
}
