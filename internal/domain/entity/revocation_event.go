package entity

import "time"

// RevocationEvent records that a token was revoked. Values are never mutated
// after Revoke returns them.
type RevocationEvent struct {
	EventID    string    `json:"event_id"`
	TokenID    string    `json:"token_id"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	TokenType  TokenType `json:"token_type"`
	ExpiresAt  time.Time `json:"expires_at"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
	// Origin is the instance that published the event
	Origin string `json:"origin,omitempty"`
}

func (e RevocationEvent) AuditContent() map[string]interface{} {
	return map[string]interface{}{
		"event_id":    e.EventID,
		"token_id":    e.TokenID,
		"username":    e.Username,
		"token_type":  string(e.TokenType),
		"reason":      e.Reason,
		"expires_at":  e.ExpiresAt.UTC().Format(time.RFC3339),
		"occurred_at": e.OccurredAt.UTC().Format(time.RFC3339),
	}
}
