package auth

import (
	"devconnector/internal/models"
	"devconnector/internal/observability"
)

// Decision is the outcome of an ownership check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// Decide allows the request only when the requester owns the resource.
func Decide(requesterID, ownerID uint) Decision {
	if requesterID != 0 && requesterID == ownerID {
		return Allow
	}
	return Deny
}

// Authorize returns a Forbidden error carrying message when Decide denies.
func Authorize(requesterID, ownerID uint, message string) error {
	if Decide(requesterID, ownerID) == Allow {
		return nil
	}
	observability.AuthorizationDenials.Inc()
	return models.NewForbiddenError(message)
}
