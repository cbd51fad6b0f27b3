package mapper

import (
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	"github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/db/model"
)

func UserToModel(user *entity.User) *model.UserModel {
	if user == nil {
		return nil
	}

	return &model.UserModel{
		ID:               user.ID,
		Username:         user.Username,
		Email:            user.Email,
		PasswordHash:     user.PasswordHash,
		Roles:            rolesToJSON(user.Roles),
		AccountStatus:    user.AccountStatus,
		LastLoginAt:      user.LastLoginAt,
		LastLoginIP:      user.LastLoginIP,
		FailedLoginCount: user.FailedLoginCount,
	}
}

func UserFromModel(m *model.UserModel) *entity.User {
	if m == nil {
		return nil
	}

	return &entity.User{
		ID:               m.ID,
		Username:         m.Username,
		Email:            m.Email,
		PasswordHash:     m.PasswordHash,
		Roles:            rolesFromJSON(m.Roles),
		AccountStatus:    m.AccountStatus,
		LastLoginAt:      m.LastLoginAt,
		LastLoginIP:      m.LastLoginIP,
		FailedLoginCount: m.FailedLoginCount,
	}
}
