package server

import (
	"devconnector/internal/auth"
	"devconnector/internal/models"
	"devconnector/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/profile/me
// @Summary Own profile
// @Tags profile
// @Produce json
// @Success 200 {object} models.Profile
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /profile/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx, id auth.Identity) error {
	profile, err := s.profileService.GetMyProfile(c.UserContext(), id.UserID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profile)
}

// UpsertProfile handles POST /api/profile
// @Summary Create or update own profile
// @Description Creates the profile (status and skills required) or merges the provided fields into it
// @Tags profile
// @Accept json
// @Produce json
// @Param request body service.UpsertProfileInput true "Profile fields"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /profile [post]
func (s *Server) UpsertProfile(c *fiber.Ctx, id auth.Identity) error {
	var in service.UpsertProfileInput
	if err := parseBody(c, &in); err != nil {
		return models.RespondWithError(c, err)
	}
	in.UserID = id.UserID

	profile, err := s.profileService.UpsertProfile(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profile)
}

// ListProfiles handles GET /api/profile
// @Summary List profiles
// @Tags profile
// @Produce json
// @Success 200 {array} models.Profile
// @Router /profile [get]
func (s *Server) ListProfiles(c *fiber.Ctx) error {
	profiles, err := s.profileService.ListProfiles(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profiles)
}

// GetProfileByUser handles GET /api/profile/user/:user_id
// @Summary Profile by user
// @Tags profile
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/user/{user_id} [get]
func (s *Server) GetProfileByUser(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "user_id", "Profile not found")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	profile, err := s.profileService.GetProfileByUser(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profile)
}

// DeleteAccount handles DELETE /api/profile
// @Summary Delete account
// @Description Deletes the user's posts, profile and user record in one transaction
// @Tags profile
// @Produce json
// @Success 200 {object} MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /profile [delete]
func (s *Server) DeleteAccount(c *fiber.Ctx, id auth.Identity) error {
	if err := s.accountService.DeleteAccount(c.UserContext(), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(MessageResponse{Msg: "User deleted"})
}

// AddExperience handles PUT /api/profile/experience
// @Summary Add experience
// @Tags profile
// @Accept json
// @Produce json
// @Param request body service.ExperienceInput true "Experience"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /profile/experience [put]
func (s *Server) AddExperience(c *fiber.Ctx, id auth.Identity) error {
	var in service.ExperienceInput
	if err := parseBody(c, &in); err != nil {
		return models.RespondWithError(c, err)
	}

	profile, err := s.profileService.AddExperience(c.UserContext(), id.UserID, in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profile)
}

// DeleteExperience handles DELETE /api/profile/experience/:exp_id
// @Summary Delete experience
// @Tags profile
// @Produce json
// @Param exp_id path string true "Experience ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /profile/experience/{exp_id} [delete]
func (s *Server) DeleteExperience(c *fiber.Ctx, id auth.Identity) error {
	profile, err := s.profileService.DeleteExperience(c.UserContext(), id.UserID, c.Params("exp_id"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profile)
}

// AddEducation handles PUT /api/profile/education
// @Summary Add education
// @Tags profile
// @Accept json
// @Produce json
// @Param request body service.EducationInput true "Education"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /profile/education [put]
func (s *Server) AddEducation(c *fiber.Ctx, id auth.Identity) error {
	var in service.EducationInput
	if err := parseBody(c, &in); err != nil {
		return models.RespondWithError(c, err)
	}

	profile, err := s.profileService.AddEducation(c.UserContext(), id.UserID, in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profile)
}

// DeleteEducation handles DELETE /api/profile/education/:edu_id
// @Summary Delete education
// @Tags profile
// @Produce json
// @Param edu_id path string true "Education ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /profile/education/{edu_id} [delete]
func (s *Server) DeleteEducation(c *fiber.Ctx, id auth.Identity) error {
	profile, err := s.profileService.DeleteEducation(c.UserContext(), id.UserID, c.Params("edu_id"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profile)
}

// GithubRepos handles GET /api/profile/github/:username
// @Summary GitHub repositories
// @Description The user's five oldest public repositories, as returned by GitHub
// @Tags profile
// @Produce json
// @Param username path string true "GitHub username"
// @Success 200 {array} object
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /profile/github/{username} [get]
func (s *Server) GithubRepos(c *fiber.Ctx) error {
	repos, err := s.github.ListRepos(c.UserContext(), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(repos)
}
