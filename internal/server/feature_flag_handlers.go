package server

import (
	"devconnector/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// FeatureFlagsResponse maps each configured flag to its state for the caller.
type FeatureFlagsResponse struct {
	Flags map[string]bool `json:"flags"`
}

// FeatureFlags handles GET /api/features
// @Summary Feature flags for the current user
// @Tags features
// @Produce json
// @Success 200 {object} server.FeatureFlagsResponse
// @Failure 401 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /features [get]
func (s *Server) FeatureFlags(c *fiber.Ctx, id auth.Identity) error {
	return c.JSON(FeatureFlagsResponse{Flags: s.flags.Snapshot(id.UserID)})
}
