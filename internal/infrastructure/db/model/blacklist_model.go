package model

import (
	"time"
)

// BlacklistModel is the durable record of a revoked token
type BlacklistModel struct {
	TokenID   string    `gorm:"primaryKey;size:64" json:"token_id"`
	RevokedAt time.Time `gorm:"not null" json:"revoked_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}

func (BlacklistModel) TableName() string {
	return "token_blacklist"
}
