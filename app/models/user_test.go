package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserHashesPassword(t *testing.T) {
	u, err := CreateUser("maker", "maker@example.com", "secret123")
	require.NoError(t, err)

	assert.NotEqual(t, "secret123", u.Password)
	assert.True(t, u.CheckPassword("secret123"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.Equal(t, ROLE_USER, u.Role)
	assert.Equal(t, STATUS_ACTIVE, u.Status)
}

func TestCreateUserRejectsInvalidInput(t *testing.T) {
	_, err := CreateUser("ab", "maker@example.com", "secret123")
	assert.Error(t, err, "name below minimum length")

	_, err = CreateUser("maker", "not-an-email", "secret123")
	assert.Error(t, err)

	_, err = CreateUser("maker", "maker@example.com", "short")
	assert.Error(t, err, "password below minimum length")
}

func TestUserIsActive(t *testing.T) {
	assert.True(t, (&User{Status: STATUS_ACTIVE}).IsActive())
	assert.False(t, (&User{Status: STATUS_DISABLED}).IsActive())
}
