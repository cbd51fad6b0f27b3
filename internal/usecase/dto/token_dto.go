package dto

import (
	"time"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
)

// IssueParams describes the token to mint
type IssueParams struct {
	UserID    string
	Username  string
	Roles     []string
	TokenType entity.TokenType
	ClientIP  string
	UserAgent string
}

// IssuedToken is a signed JWT and its tracked metadata
type IssuedToken struct {
	SignedToken string
	TokenID     string
	TokenType   entity.TokenType
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// ParseKind tags a ParseResult
type ParseKind int

const (
	ParseMalformed ParseKind = iota
	ParseOK
)

// ParseResult is the outcome of reading claims without verifying the signature
type ParseResult struct {
	Kind      ParseKind
	TokenID   string
	Subject   string
	TokenType entity.TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (r ParseResult) OK() bool {
	return r.Kind == ParseOK
}

// TokenClaims always carries an id and expiry. Fallback is set when they were synthesised.
type TokenClaims struct {
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Fallback  bool
}

// AuthClaims are the verified claims of a token
type AuthClaims struct {
	UserID    string
	Username  string
	Roles     []string
	TokenID   string
	TokenType entity.TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (c *AuthClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}
