package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	user, err := CreateUser("alex", "alex@example.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, ROLE_USER, user.Role)
	assert.Equal(t, STATUS_ACTIVE, user.Status)
	assert.NotEqual(t, "secret123", user.Password)
	assert.True(t, user.CheckPassword("secret123"))
	assert.False(t, user.CheckPassword("wrong"))
	assert.True(t, user.IsActive())
	assert.False(t, user.IsAdmin())
}

func TestCreateUserValidation(t *testing.T) {
	_, err := CreateUser("al", "alex@example.com", "secret123")
	assert.Error(t, err)

	_, err = CreateUser("alex", "not-an-email", "secret123")
	assert.Error(t, err)

	_, err = CreateUser("alex", "alex@example.com", "short")
	assert.Error(t, err)
}
