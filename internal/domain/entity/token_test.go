package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/dariemcarlosdev/secure-clean-api/internal/domain/errors"
)

var now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestToken_CurrentStatus(t *testing.T) {
	tok := NewToken("jti-1", "u1", "alice", []string{RoleUser}, TokenTypeAccess, now, now.Add(30*time.Minute))

	assert.Equal(t, TokenStatusActive, tok.CurrentStatus(now))
	assert.Equal(t, TokenStatusExpired, tok.CurrentStatus(now.Add(30*time.Minute)))

	_, err := tok.Revoke("logout", now)
	require.NoError(t, err)
	assert.Equal(t, TokenStatusRevoked, tok.CurrentStatus(now.Add(time.Hour)))
}

func TestToken_Revoke(t *testing.T) {
	tok := NewToken("jti-1", "u1", "alice", nil, TokenTypeRefresh, now, now.Add(time.Hour))

	event, err := tok.Revoke("compromised", now)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "jti-1", event.TokenID)
	assert.Equal(t, "u1", event.UserID)
	assert.Equal(t, TokenTypeRefresh, event.TokenType)
	assert.Equal(t, "compromised", event.Reason)
	assert.Equal(t, now, event.OccurredAt)
	assert.Equal(t, TokenStatusRevoked, tok.Status)
	require.NotNil(t, tok.RevokedAt)
	assert.Equal(t, now, *tok.RevokedAt)
}

func TestToken_RevokeTwice(t *testing.T) {
	tok := NewToken("jti-1", "u1", "alice", nil, TokenTypeAccess, now, now.Add(time.Hour))

	_, err := tok.Revoke("first", now)
	require.NoError(t, err)

	event, err := tok.Revoke("second", now.Add(time.Minute))
	assert.Nil(t, event)
	assert.ErrorIs(t, err, domainErrors.ErrTokenAlreadyRevoked)
	assert.Equal(t, "first", tok.RevocationReason)
	assert.Equal(t, now, *tok.RevokedAt)
}

func TestToken_RevokeExpired(t *testing.T) {
	tok := NewToken("jti-1", "u1", "alice", nil, TokenTypeAccess, now.Add(-2*time.Hour), now.Add(-time.Hour))

	event, err := tok.Revoke("cleanup", now)
	require.NoError(t, err)
	assert.True(t, event.ExpiresAt.Before(now))
}

func TestBlacklistEntry_IsExpired(t *testing.T) {
	entry := NewBlacklistEntry("jti-1", now, now.Add(time.Minute))

	assert.False(t, entry.IsExpired(now))
	assert.True(t, entry.IsExpired(now.Add(time.Minute)))
	assert.Equal(t, time.Minute, entry.TTL(now))
}
