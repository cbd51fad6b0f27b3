package entity

import "time"

// BlacklistEntry keeps a revoked token id until the token would have expired
type BlacklistEntry struct {
	TokenID   string    `json:"token_id"`
	RevokedAt time.Time `json:"revoked_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewBlacklistEntry(tokenID string, revokedAt, expiresAt time.Time) *BlacklistEntry {
	return &BlacklistEntry{
		TokenID:   tokenID,
		RevokedAt: revokedAt,
		ExpiresAt: expiresAt,
	}
}

// IsExpired reports whether the entry no longer needs to be kept
func (e *BlacklistEntry) IsExpired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

// TTL is the remaining lifetime relative to now
func (e *BlacklistEntry) TTL(now time.Time) time.Duration {
	return e.ExpiresAt.Sub(now)
}
