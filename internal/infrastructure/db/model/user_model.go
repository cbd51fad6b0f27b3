package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserModel is the users table
type UserModel struct {
	ID               string         `gorm:"size:64;primaryKey" json:"id"`
	Username         string         `gorm:"size:100;not null;uniqueIndex" json:"username"`
	Email            string         `gorm:"size:250;not null;default:''" json:"email"`
	PasswordHash     string         `gorm:"size:250;not null" json:"-"`
	Roles            datatypes.JSON `json:"roles"`
	AccountStatus    string         `gorm:"size:50;default:'active'" json:"account_status"`
	LastLoginAt      *time.Time     `json:"last_login_at,omitempty"`
	LastLoginIP      string         `gorm:"size:50" json:"last_login_ip,omitempty"`
	FailedLoginCount int            `gorm:"default:0" json:"failed_login_count"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (UserModel) TableName() string {
	return "users"
}
