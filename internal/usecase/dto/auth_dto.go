package dto

import "time"

// LoginParams are the credentials and client context of a login
type LoginParams struct {
	Username  string
	Password  string
	ClientIP  string
	UserAgent string
}

// AuthTokens is an access and refresh token pair
type AuthTokens struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// LogoutParams identifies what to revoke on logout
type LogoutParams struct {
	Access       *AuthClaims
	RefreshToken string
	ClientIP     string
}
