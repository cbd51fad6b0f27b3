package entity

import (
	"encoding/json"
	"time"
)

// AuditLogType classifies audit records
type AuditLogType string

const (
	AuditLogTypeLoginSuccess        AuditLogType = "LOGIN_SUCCESS"
	AuditLogTypeLoginFailed         AuditLogType = "LOGIN_FAILED"
	AuditLogTypeLogoutSuccess       AuditLogType = "LOGOUT_SUCCESS"
	AuditLogTypeRefreshTokenSuccess AuditLogType = "REFRESH_TOKEN_SUCCESS"
	AuditLogTypeRefreshTokenInvalid AuditLogType = "REFRESH_TOKEN_INVALID"
	AuditLogTypeTokenCreation       AuditLogType = "TOKEN_CREATION"
	AuditLogTypeTokenRevocation     AuditLogType = "TOKEN_REVOCATION"
	AuditLogTypeAdminAction         AuditLogType = "ADMIN_ACTION"
)

// AuditLog stores a security relevant event
type AuditLog struct {
	ID      uint
	UserID  *string
	Type    AuditLogType
	Content map[string]interface{}

	CreatedAt time.Time
}

func NewAuditLog(userID *string, logType AuditLogType, content map[string]interface{}, now time.Time) *AuditLog {
	return &AuditLog{
		UserID:    userID,
		Type:      logType,
		Content:   content,
		CreatedAt: now,
	}
}

func (al *AuditLog) AddContentField(key string, value interface{}) {
	if al.Content == nil {
		al.Content = make(map[string]interface{})
	}
	al.Content[key] = value
}

// ContentJSON returns the content as a JSON document, "{}" when empty
func (al *AuditLog) ContentJSON() (string, error) {
	if al.Content == nil {
		return "{}", nil
	}

	data, err := json.Marshal(al.Content)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
