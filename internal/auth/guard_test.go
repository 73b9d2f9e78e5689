package auth

import (
	"testing"

	"devconnector/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	assert.Equal(t, Allow, Decide(5, 5))
	assert.Equal(t, Deny, Decide(5, 6))
	assert.Equal(t, Deny, Decide(0, 0))
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize(1, 1, "User not authorized"))

	err := Authorize(1, 2, "User not authorized")
	assert.True(t, models.IsCode(err, models.CodeForbidden))
	assert.EqualError(t, err, "User not authorized")
}
