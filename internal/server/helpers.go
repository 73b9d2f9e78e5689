package server

import (
	"strconv"
	"strings"

	"devconnector/internal/auth"
	"devconnector/internal/middleware"
	"devconnector/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AuthTokenHeader carries the access token. Authorization: Bearer is also accepted.
const AuthTokenHeader = "x-auth-token"

const (
	defaultPaginationLimit = 50
	maxPaginationLimit     = 100

	identityLocal = "identity"
)

// MessageResponse is the {msg} body of successful deletions.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// authedHandler is a handler that runs only after the Verifier accepted the request.
type authedHandler func(c *fiber.Ctx, id auth.Identity) error

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// tokenFromRequest reads the x-auth-token header, then a Bearer Authorization
// header. The query fallback exists for browser websocket clients, which
// cannot set headers.
func tokenFromRequest(c *fiber.Ctx, allowQuery bool) string {
	if token := strings.TrimSpace(c.Get(AuthTokenHeader)); token != "" {
		return token
	}
	if parts := strings.Fields(c.Get(fiber.HeaderAuthorization)); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	if allowQuery {
		return c.Query("token")
	}
	return ""
}

// identify verifies the request's token and attaches the user id to the
// request context for logs and spans.
func (s *Server) identify(c *fiber.Ctx, allowQuery bool) (auth.Identity, error) {
	id, err := s.verifier.Verify(c.UserContext(), tokenFromRequest(c, allowQuery))
	if err != nil {
		return auth.Identity{}, err
	}
	c.SetUserContext(middleware.WithUserID(c.UserContext(), id.UserID))
	c.Locals(identityLocal, id)
	return id, nil
}

// authenticated wraps h so it only runs for a verified identity.
func (s *Server) authenticated(h authedHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := s.identify(c, false)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		return h(c, id)
	}
}

// parseBody decodes the request body into dest. An empty body leaves dest
// zero so field validation reports what is missing.
func parseBody(c *fiber.Ctx, dest any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dest); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}

// parseUintParam parses a positive numeric route parameter. A malformed id
// cannot name an existing resource, so it is reported as notFound.
func parseUintParam(c *fiber.Ctx, param, notFound string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 64)
	if err != nil || id == 0 {
		return 0, models.NewNotFoundError(notFound)
	}
	return uint(id), nil
}

func parsePostID(c *fiber.Ctx) (uint, error) {
	return parseUintParam(c, "id", "Post not found")
}
