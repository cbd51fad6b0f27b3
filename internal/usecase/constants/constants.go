package constants

import "time"

const (
	// AccessTokenExpiry is the default access token lifetime in minutes
	AccessTokenExpiry = 30

	// RefreshTokenExpiry is the default refresh token lifetime in minutes (7 days)
	RefreshTokenExpiry = 7 * 24 * 60

	// FallbackTokenExpiry is assumed for tokens whose claims cannot be read
	FallbackTokenExpiry = 30 * time.Minute

	DefaultClockSkew     = time.Minute
	DefaultCheckCacheTTL = 90 * time.Second

	DefaultInsertRetries    = 3
	DefaultInsertMaxElapsed = 2 * time.Second
	DefaultInsertInterval   = 100 * time.Millisecond

	BearerPrefix = "Bearer "
)

// Reasons attached to an invalid check result
const (
	ReasonMalformed            = "malformed"
	ReasonMissingJTI           = "missing_jti"
	ReasonMissingExpiry        = "missing_exp"
	ReasonExpired              = "expired"
	ReasonBlacklistUnavailable = "blacklist_unavailable"
)

// Revocation reasons recorded by the service itself
const (
	RevocationReasonLogout    = "logout"
	RevocationReasonRotated   = "refresh_rotated"
	RevocationReasonAdmin     = "admin_revoked"
	RevocationReasonRevokeAll = "user_tokens_revoked"
)
