package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	"github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/db/model"
)

func rolesToJSON(roles []string) datatypes.JSON {
	if roles == nil {
		roles = []string{}
	}
	data, _ := json.Marshal(roles)
	return datatypes.JSON(data)
}

func rolesFromJSON(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var roles []string
	if err := json.Unmarshal(raw, &roles); err != nil {
		return nil
	}
	return roles
}

// TokenToModel converts a token entity to its DB model
func TokenToModel(token *entity.Token) *model.TokenModel {
	if token == nil {
		return nil
	}

	return &model.TokenModel{
		TokenID:          token.TokenID,
		UserID:           token.UserID,
		Username:         token.Username,
		Roles:            rolesToJSON(token.Roles),
		TokenType:        string(token.TokenType),
		Status:           string(token.Status),
		IssuedAt:         token.IssuedAt.UTC(),
		ExpiresAt:        token.ExpiresAt.UTC(),
		RevokedAt:        token.RevokedAt,
		RevocationReason: token.RevocationReason,
		ClientIP:         token.ClientIP,
		UserAgent:        token.UserAgent,
	}
}

// TokenFromModel converts a DB model to a token entity
func TokenFromModel(m *model.TokenModel) *entity.Token {
	if m == nil {
		return nil
	}

	return &entity.Token{
		TokenID:          m.TokenID,
		UserID:           m.UserID,
		Username:         m.Username,
		Roles:            rolesFromJSON(m.Roles),
		TokenType:        entity.TokenType(m.TokenType),
		Status:           entity.TokenStatus(m.Status),
		IssuedAt:         m.IssuedAt,
		ExpiresAt:        m.ExpiresAt,
		RevokedAt:        m.RevokedAt,
		RevocationReason: m.RevocationReason,
		ClientIP:         m.ClientIP,
		UserAgent:        m.UserAgent,
	}
}

func TokensFromModels(models []model.TokenModel) []*entity.Token {
	tokens := make([]*entity.Token, len(models))
	for i := range models {
		tokens[i] = TokenFromModel(&models[i])
	}
	return tokens
}

func BlacklistEntryToModel(entry *entity.BlacklistEntry) *model.BlacklistModel {
	return &model.BlacklistModel{
		TokenID:   entry.TokenID,
		RevokedAt: entry.RevokedAt.UTC(),
		ExpiresAt: entry.ExpiresAt.UTC(),
	}
}

func BlacklistEntryFromModel(m *model.BlacklistModel) *entity.BlacklistEntry {
	return entity.NewBlacklistEntry(m.TokenID, m.RevokedAt, m.ExpiresAt)
}
