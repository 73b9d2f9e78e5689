package server

import (
	"context"

	"devconnector/internal/models"
	"devconnector/internal/notifications"
)

type postRemovedEvent struct {
	PostID uint `json:"id"`
}

type likesEvent struct {
	PostID uint          `json:"id"`
	Likes  []models.Like `json:"likes"`
}

type commentsEvent struct {
	PostID   uint             `json:"id"`
	Comments []models.Comment `json:"comments"`
}

// publishPostEvent fans a committed post change out to websocket clients.
// Delivery is best effort and never fails the request.
func (s *Server) publishPostEvent(ctx context.Context, eventType string, payload any) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(context.WithoutCancel(ctx), notifications.Event{Type: eventType, Payload: payload})
}
