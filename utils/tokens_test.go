package utils

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classifiedsBack/internal/models"
)

func TestManagerRoundTrip(t *testing.T) {
	m, err := NewManager("secret")
	require.NoError(t, err)

	token, err := m.NewAccessToken(42, models.RoleAdmin, time.Minute)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestManagerRejects(t *testing.T) {
	m, err := NewManager("secret")
	require.NoError(t, err)
	other, err := NewManager("other")
	require.NoError(t, err)

	foreign, err := other.NewAccessToken(1, models.RoleUser, time.Minute)
	require.NoError(t, err)
	_, err = m.Parse(foreign)
	assert.Error(t, err, "wrong signing key")

	expired, err := m.NewAccessToken(1, models.RoleUser, -time.Minute)
	require.NoError(t, err)
	_, err = m.Parse(expired)
	assert.Error(t, err, "expired")

	anonymous, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.Claims{Role: models.RoleUser}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.Parse(anonymous)
	assert.Error(t, err, "missing user id")

	_, err = NewManager("")
	assert.Error(t, err)
}
