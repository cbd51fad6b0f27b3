package entity

import (
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/dariemcarlosdev/secure-clean-api/internal/domain/errors"
)

// TokenType distinguishes short-lived access tokens from refresh tokens
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenStatus is the lifecycle state of an issued token
type TokenStatus string

const (
	TokenStatusActive  TokenStatus = "active"
	TokenStatusRevoked TokenStatus = "revoked"
	// TokenStatusExpired is derived from the clock and never persisted
	TokenStatusExpired TokenStatus = "expired"
)

// Token is an issued JWT tracked by its jti
type Token struct {
	TokenID          string
	UserID           string
	Username         string
	Roles            []string
	TokenType        TokenType
	IssuedAt         time.Time
	ExpiresAt        time.Time
	Status           TokenStatus
	RevokedAt        *time.Time
	RevocationReason string
	ClientIP         string
	UserAgent        string
}

// NewToken creates an active token record
func NewToken(tokenID, userID, username string, roles []string, tokenType TokenType, issuedAt, expiresAt time.Time) *Token {
	return &Token{
		TokenID:   tokenID,
		UserID:    userID,
		Username:  username,
		Roles:     roles,
		TokenType: tokenType,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
		Status:    TokenStatusActive,
	}
}

// CurrentStatus reports expired once now has passed ExpiresAt, unless revoked
func (t *Token) CurrentStatus(now time.Time) TokenStatus {
	if t.Status == TokenStatusRevoked {
		return TokenStatusRevoked
	}
	if !now.Before(t.ExpiresAt) {
		return TokenStatusExpired
	}
	return TokenStatusActive
}

func (t *Token) IsRevoked() bool {
	return t.Status == TokenStatusRevoked
}

func (t *Token) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *Token) IsRefresh() bool {
	return t.TokenType == TokenTypeRefresh
}

// Revoke marks the token revoked and returns the event describing it.
// A second call fails with ErrTokenAlreadyRevoked and changes nothing.
func (t *Token) Revoke(reason string, now time.Time) (*RevocationEvent, error) {
	if t.Status == TokenStatusRevoked {
		return nil, domainErrors.ErrTokenAlreadyRevoked
	}

	revokedAt := now
	t.Status = TokenStatusRevoked
	t.RevokedAt = &revokedAt
	t.RevocationReason = reason

	return &RevocationEvent{
		EventID:    uuid.NewString(),
		TokenID:    t.TokenID,
		UserID:     t.UserID,
		Username:   t.Username,
		TokenType:  t.TokenType,
		ExpiresAt:  t.ExpiresAt,
		Reason:     reason,
		OccurredAt: revokedAt,
	}, nil
}
