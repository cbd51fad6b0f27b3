package model

import (
	"time"

	"gorm.io/datatypes"
)

// TokenModel is one issued JWT keyed by its jti
type TokenModel struct {
	TokenID          string         `gorm:"primaryKey;size:64" json:"token_id"`
	UserID           string         `gorm:"size:64;not null;index:idx_tokens_user_status,priority:1" json:"user_id"`
	Username         string         `gorm:"size:100;not null" json:"username"`
	Roles            datatypes.JSON `json:"roles"`
	TokenType        string         `gorm:"size:20;not null;default:'access'" json:"token_type"`
	Status           string         `gorm:"size:20;not null;default:'active';index:idx_tokens_user_status,priority:2" json:"status"`
	IssuedAt         time.Time      `gorm:"not null" json:"issued_at"`
	ExpiresAt        time.Time      `gorm:"not null;index" json:"expires_at"`
	RevokedAt        *time.Time     `json:"revoked_at,omitempty"`
	RevocationReason string         `gorm:"size:250" json:"revocation_reason,omitempty"`
	ClientIP         string         `gorm:"size:50" json:"client_ip,omitempty"`
	UserAgent        string         `gorm:"size:250" json:"user_agent,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TokenModel) TableName() string {
	return "tokens"
}
