package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	domainErrors "github.com/dariemcarlosdev/secure-clean-api/internal/domain/errors"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/repository"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/constants"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/dto"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/interfaces"
	pkgerrors "github.com/dariemcarlosdev/secure-clean-api/pkg/errors"
)

type AuthUseCase struct {
	logger         *zap.Logger
	userRepository repository.UserRepository
	tokenUC        interfaces.TokenUseCase
	blacklistUC    interfaces.BlacklistUseCase
	revocationUC   interfaces.RevocationUseCase
	auditUC        interfaces.AuditLogUseCase
	now            func() time.Time
}

func NewAuthUseCase(
	logger *zap.Logger,
	userRepo repository.UserRepository,
	tokenUC interfaces.TokenUseCase,
	blacklistUC interfaces.BlacklistUseCase,
	revocationUC interfaces.RevocationUseCase,
	auditUC interfaces.AuditLogUseCase,
	now func() time.Time,
) interfaces.AuthUseCase {
	if now == nil {
		now = time.Now
	}
	return &AuthUseCase{
		logger:         logger,
		userRepository: userRepo,
		tokenUC:        tokenUC,
		blacklistUC:    blacklistUC,
		revocationUC:   revocationUC,
		auditUC:        auditUC,
		now:            now,
	}
}

func (uc *AuthUseCase) audit(ctx context.Context, logType entity.AuditLogType, userID string, content map[string]interface{}) {
	var uid *string
	if userID != "" {
		uid = &userID
	}
	if err := uc.auditUC.AddLog(ctx, logType, content, uid); err != nil {
		uc.logger.Warn("Failed to write audit log", zap.String("type", string(logType)), zap.Error(err))
	}
}

// Login checks the password and issues an access and refresh token
func (uc *AuthUseCase) Login(ctx context.Context, params dto.LoginParams) (*dto.AuthTokens, error) {
	user, err := uc.userRepository.FindByUsername(ctx, params.Username)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load user")
	}
	if user == nil {
		uc.audit(ctx, entity.AuditLogTypeLoginFailed, "", map[string]interface{}{
			"username": params.Username,
			"ip":       params.ClientIP,
			"reason":   "unknown_user",
		})
		return nil, domainErrors.ErrInvalidCredentials
	}

	if !user.IsActive() {
		return nil, domainErrors.ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(params.Password)); err != nil {
		user.RecordFailedLogin()
		if err := uc.userRepository.Update(ctx, user); err != nil {
			uc.logger.Warn("Failed to record failed login", zap.String("user_id", user.ID), zap.Error(err))
		}
		uc.audit(ctx, entity.AuditLogTypeLoginFailed, user.ID, map[string]interface{}{
			"ip":     params.ClientIP,
			"reason": "bad_password",
		})
		return nil, domainErrors.ErrInvalidCredentials
	}

	tokens, err := uc.issuePair(ctx, user.ID, user.Username, user.Roles, params.ClientIP, params.UserAgent)
	if err != nil {
		return nil, err
	}

	user.RecordLogin(params.ClientIP, uc.now().UTC())
	if err := uc.userRepository.Update(ctx, user); err != nil {
		uc.logger.Warn("Failed to record login", zap.String("user_id", user.ID), zap.Error(err))
	}

	uc.audit(ctx, entity.AuditLogTypeLoginSuccess, user.ID, map[string]interface{}{
		"ip":         params.ClientIP,
		"user_agent": params.UserAgent,
	})

	return tokens, nil
}

func (uc *AuthUseCase) issuePair(ctx context.Context, userID, username string, roles []string, clientIP, userAgent string) (*dto.AuthTokens, error) {
	access, err := uc.tokenUC.IssueToken(ctx, dto.IssueParams{
		UserID:    userID,
		Username:  username,
		Roles:     roles,
		TokenType: entity.TokenTypeAccess,
		ClientIP:  clientIP,
		UserAgent: userAgent,
	})
	if err != nil {
		return nil, err
	}

	refresh, err := uc.tokenUC.IssueToken(ctx, dto.IssueParams{
		UserID:    userID,
		Username:  username,
		Roles:     roles,
		TokenType: entity.TokenTypeRefresh,
		ClientIP:  clientIP,
		UserAgent: userAgent,
	})
	if err != nil {
		return nil, err
	}

	return &dto.AuthTokens{
		AccessToken:      access.SignedToken,
		RefreshToken:     refresh.SignedToken,
		TokenType:        "Bearer",
		AccessExpiresAt:  access.ExpiresAt,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

// Logout revokes the presented access token and the optional refresh token.
// Any failure to confirm a revocation is returned to the caller.
func (uc *AuthUseCase) Logout(ctx context.Context, params dto.LogoutParams) error {
	if params.Access == nil {
		return domainErrors.ErrInvalidToken
	}

	if err := uc.revokeClaims(ctx, params.Access, constants.RevocationReasonLogout); err != nil {
		return err
	}

	if params.RefreshToken != "" {
		refresh, err := uc.tokenUC.ValidateToken(ctx, params.RefreshToken, entity.TokenTypeRefresh)
		if err != nil {
			uc.logger.Debug("Ignoring invalid refresh token on logout", zap.Error(err))
		} else if refresh.UserID == params.Access.UserID {
			if err := uc.revokeClaims(ctx, refresh, constants.RevocationReasonLogout); err != nil {
				return err
			}
		}
	}

	uc.audit(ctx, entity.AuditLogTypeLogoutSuccess, params.Access.UserID, map[string]interface{}{
		"token_id": params.Access.TokenID,
		"ip":       params.ClientIP,
	})

	return nil
}

// revokeClaims falls back to a bare blacklist insert for tokens that are
// not tracked, and treats an earlier revocation as done.
func (uc *AuthUseCase) revokeClaims(ctx context.Context, claims *dto.AuthClaims, reason string) error {
	_, err := uc.revocationUC.RevokeToken(ctx, claims.TokenID, reason)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domainErrors.ErrTokenAlreadyRevoked):
		return nil
	case errors.Is(err, domainErrors.ErrTokenNotFound):
		return uc.blacklistUC.BlacklistToken(ctx, claims.TokenID, uc.now().UTC(), claims.ExpiresAt)
	default:
		return err
	}
}

// Refresh revokes the presented refresh token and issues a new pair. Reuse
// of an already rotated refresh token is rejected.
func (uc *AuthUseCase) Refresh(ctx context.Context, refreshToken, clientIP, userAgent string) (*dto.AuthTokens, error) {
	claims, err := uc.tokenUC.ValidateToken(ctx, refreshToken, entity.TokenTypeRefresh)
	if err != nil {
		uc.audit(ctx, entity.AuditLogTypeRefreshTokenInvalid, "", map[string]interface{}{"ip": clientIP})
		return nil, err
	}

	status := uc.blacklistUC.CheckBlacklist(ctx, refreshToken, dto.CheckOptions{BypassCache: true})
	if !status.IsValid() {
		uc.audit(ctx, entity.AuditLogTypeRefreshTokenInvalid, claims.UserID, map[string]interface{}{
			"token_id": claims.TokenID,
			"status":   string(status.Status),
			"ip":       clientIP,
		})
		return nil, domainErrors.ErrTokenRevoked
	}

	user, err := uc.userRepository.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load user")
	}
	if user == nil {
		return nil, domainErrors.ErrUserNotFound
	}
	if !user.IsActive() {
		return nil, domainErrors.ErrUserInactive
	}

	if _, err := uc.revocationUC.RevokeToken(ctx, claims.TokenID, constants.RevocationReasonRotated); err != nil {
		if errors.Is(err, domainErrors.ErrTokenAlreadyRevoked) {
			return nil, domainErrors.ErrTokenRevoked
		}
		return nil, err
	}

	tokens, err := uc.issuePair(ctx, user.ID, user.Username, user.Roles, clientIP, userAgent)
	if err != nil {
		return nil, err
	}

	uc.audit(ctx, entity.AuditLogTypeRefreshTokenSuccess, user.ID, map[string]interface{}{
		"rotated_token_id": claims.TokenID,
		"ip":               clientIP,
	})

	return tokens, nil
}
