package entity

import (
	"time"
)

const (
	AccountStatusActive   = "active"
	AccountStatusDisabled = "disabled"

	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// User is an account allowed to log in
type User struct {
	ID               string
	Username         string
	Email            string
	PasswordHash     string
	Roles            []string
	AccountStatus    string
	LastLoginAt      *time.Time
	LastLoginIP      string
	FailedLoginCount int
}

func (u *User) IsActive() bool {
	return u.AccountStatus == AccountStatusActive
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RecordLogin stamps a successful login
func (u *User) RecordLogin(ip string, now time.Time) {
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.FailedLoginCount = 0
}

func (u *User) RecordFailedLogin() {
	u.FailedLoginCount++
}
