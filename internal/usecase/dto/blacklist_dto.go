package dto

import "time"

// CheckOptions tunes CheckBlacklist
type CheckOptions struct {
	// BypassCache skips the recent-decision cache
	BypassCache bool
}

// TokenStatus is the kind of a check result
type TokenStatus string

const (
	TokenStatusValid       TokenStatus = "valid"
	TokenStatusBlacklisted TokenStatus = "blacklisted"
	TokenStatusInvalid     TokenStatus = "invalid"
)

// TokenStatusResult is the answer of CheckBlacklist. Reason is set for
// invalid results only. BlacklistedAt is set when the store knows it.
type TokenStatusResult struct {
	Status        TokenStatus `json:"status"`
	TokenID       string      `json:"token_id,omitempty"`
	ExpiresAt     *time.Time  `json:"expires_at,omitempty"`
	BlacklistedAt *time.Time  `json:"blacklisted_at,omitempty"`
	Reason        string      `json:"reason,omitempty"`
	CheckedAt     time.Time   `json:"checked_at"`
	// FailedOpen marks a valid result produced because the store could not answer
	FailedOpen bool `json:"failed_open,omitempty"`
	FromCache  bool `json:"from_cache,omitempty"`
}

func (r TokenStatusResult) IsValid() bool {
	return r.Status == TokenStatusValid
}

func (r TokenStatusResult) IsBlacklisted() bool {
	return r.Status == TokenStatusBlacklisted
}

func ValidResult(tokenID string, expiresAt, checkedAt time.Time) TokenStatusResult {
	return TokenStatusResult{
		Status:    TokenStatusValid,
		TokenID:   tokenID,
		ExpiresAt: &expiresAt,
		CheckedAt: checkedAt,
	}
}

func BlacklistedResult(tokenID string, blacklistedAt *time.Time, expiresAt, checkedAt time.Time) TokenStatusResult {
	return TokenStatusResult{
		Status:        TokenStatusBlacklisted,
		TokenID:       tokenID,
		ExpiresAt:     &expiresAt,
		BlacklistedAt: blacklistedAt,
		CheckedAt:     checkedAt,
	}
}

func InvalidResult(reason string, checkedAt time.Time) TokenStatusResult {
	return TokenStatusResult{
		Status:    TokenStatusInvalid,
		Reason:    reason,
		CheckedAt: checkedAt,
	}
}
