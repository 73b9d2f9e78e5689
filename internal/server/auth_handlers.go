package server

import (
	"devconnector/internal/auth"
	"devconnector/internal/models"
	"devconnector/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TokenResponse is returned by registration and login.
type TokenResponse struct {
	Token string `json:"token"`
}

// Register handles POST /api/users
// @Summary Register user
// @Description Create an account and return an access token
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var in service.RegisterInput
	if err := parseBody(c, &in); err != nil {
		return models.RespondWithError(c, err)
	}

	token, err := s.userService.Register(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(TokenResponse{Token: token})
}

// Login handles POST /api/auth
// @Summary Authenticate user
// @Description Exchange credentials for an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /auth [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var in service.LoginInput
	if err := parseBody(c, &in); err != nil {
		return models.RespondWithError(c, err)
	}

	token, err := s.userService.Login(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(TokenResponse{Token: token})
}

// CurrentUser handles GET /api/auth
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /auth [get]
func (s *Server) CurrentUser(c *fiber.Ctx, id auth.Identity) error {
	user, err := s.userService.CurrentUser(c.UserContext(), id.UserID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// Logout handles POST /api/auth/logout
// @Summary Revoke the presented token
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx, id auth.Identity) error {
	if err := s.userService.Logout(c.UserContext(), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(MessageResponse{Msg: "Logged out"})
}
