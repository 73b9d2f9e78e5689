package server

import (
	"log/slog"

	"devconnector/internal/auth"
	"devconnector/internal/featureflags"
	"devconnector/internal/middleware"
	"devconnector/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketUpgrade rejects plain HTTP requests to the websocket endpoint.
func (s *Server) WebsocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WebsocketAuth verifies the token from the usual headers or the token query
// parameter and stores the identity for the websocket handler. Users outside
// the realtime_events rollout get a 404.
func (s *Server) WebsocketAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := s.identify(c, true)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		if !s.flags.Enabled(featureflags.RealtimeEvents, id.UserID) {
			return models.RespondWithError(c, models.NewNotFoundError("Realtime events are not enabled"))
		}
		return c.Next()
	}
}

// WebsocketHandler handles GET /api/ws
// @Summary Realtime post events
// @Description Upgrades to a websocket that receives {type, payload} post events
// @Tags realtime
// @Param token query string false "Access token for clients that cannot set headers"
// @Success 101
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 426 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /ws [get]
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		id, ok := conn.Locals(identityLocal).(auth.Identity)
		if !ok {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(id.UserID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket registration rejected",
				slog.Uint64("user_id", uint64(id.UserID)), slog.String("error", err.Error()))
			_ = conn.WriteJSON(models.ErrorResponse{Msg: err.Error()})
			_ = conn.Close()
			return
		}

		// The conn returns to fiber's pool when this handler exits, so wait
		// for the writer as well.
		done := make(chan struct{})
		go func() {
			client.WritePump()
			close(done)
		}()
		client.ReadPump()
		<-done
	})
}
