package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *TokenManager {
	return NewTokenManager(&Config{
		Secret:      "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "gatherly-test",
	})
}

func TestTokenManager_IssueAndValidate(t *testing.T) {
	m := newTestManager()
	actorID := uuid.New()

	token, expiresAt, err := m.Issue(actorID, "community", "Indie Makers Berlin", false)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, actorID, claims.ActorID)
	assert.Equal(t, "community", claims.ActorType)
	assert.Equal(t, "Indie Makers Berlin", claims.ActorName)
	assert.False(t, claims.Admin)
	assert.Equal(t, "gatherly-test", claims.Issuer)
}

func TestTokenManager_AdminClaim(t *testing.T) {
	m := newTestManager()

	token, _, err := m.Issue(uuid.New(), "admin", "Moderation", true)
	require.NoError(t, err)

	actor, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, actor.Admin)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	m := newTestManager()
	token, _, err := m.Issue(uuid.New(), "venue", "The Loft", false)
	require.NoError(t, err)

	other := NewTokenManager(&Config{Secret: "other-secret", TokenExpiry: time.Hour})
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	m := NewTokenManager(&Config{
		Secret:      "test-secret",
		TokenExpiry: -time.Minute,
	})

	token, _, err := m.Issue(uuid.New(), "brand", "Acme", false)
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_GarbageToken(t *testing.T) {
	m := newTestManager()
	_, err := m.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_ValidateTokenActor(t *testing.T) {
	m := newTestManager()
	actorID := uuid.New()

	token, _, err := m.Issue(actorID, "venue", "The Loft", false)
	require.NoError(t, err)

	actor, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, actorID, actor.ID)
	assert.Equal(t, "venue", actor.Type)
	assert.Equal(t, "The Loft", actor.Name)
}
