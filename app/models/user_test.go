package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	user, err := CreateUser("Ada Lovelace", "ada@example.com", "secret-password")
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, ROLE_MEMBER, user.Role)
	assert.Equal(t, STATUS_ACTIVE, user.Status)
	assert.NotEqual(t, "secret-password", user.Password, "password must be stored hashed")
	assert.True(t, user.CheckPassword("secret-password"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestCreateUserValidation(t *testing.T) {
	_, err := CreateUser("A", "not-an-email", "secret-password")
	assert.Error(t, err)
}

func TestSetPassword(t *testing.T) {
	user, err := CreateUser("Ada Lovelace", "ada@example.com", "first-password")
	require.NoError(t, err)

	require.NoError(t, user.SetPassword("second-password"))
	assert.False(t, user.CheckPassword("first-password"))
	assert.True(t, user.CheckPassword("second-password"))
}

func TestGenerateInviteToken(t *testing.T) {
	u := &User{}
	require.NoError(t, u.GenerateInviteToken())

	assert.Len(t, u.InviteToken, 32)
	require.NotNil(t, u.InviteSentAt)

	prev := u.InviteToken
	require.NoError(t, u.GenerateInviteToken())
	assert.NotEqual(t, prev, u.InviteToken)
}

func TestIsActive(t *testing.T) {
	assert.True(t, (&User{Status: STATUS_ACTIVE}).IsActive())
	assert.False(t, (&User{Status: STATUS_INVITED}).IsActive())
	assert.False(t, (&User{Status: STATUS_DISABLED}).IsActive())
}
