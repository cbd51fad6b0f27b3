package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	domainErrors "github.com/dariemcarlosdev/secure-clean-api/internal/domain/errors"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/repository"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/service"
	httpServer "github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/http"
	"github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/http/middleware"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/constants"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/dto"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/mocks"
)

var now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type testAPI struct {
	e          *echo.Echo
	tokens     *mocks.TokenUseCase
	blacklist  *mocks.BlacklistUseCase
	auth       *mocks.AuthUseCase
	revocation *mocks.RevocationUseCase
	proxy      *mocks.ProxyUseCase
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	api := &testAPI{
		tokens:     new(mocks.TokenUseCase),
		blacklist:  new(mocks.BlacklistUseCase),
		auth:       new(mocks.AuthUseCase),
		revocation: new(mocks.RevocationUseCase),
		proxy:      new(mocks.ProxyUseCase),
	}

	logger := zap.NewNop()
	srv := httpServer.NewServer(httpServer.Config{}, logger)
	srv.RegisterRoutes(func(e *echo.Echo) {
		RegisterRoutes(e, Handlers{
			Auth:   NewAuthHandler(logger, api.auth),
			Token:  NewTokenHandler(logger, api.tokens, api.revocation, api.blacklist),
			Health: NewHealthHandler(logger, api.blacklist, nil),
			Proxy:  NewProxyHandler(logger, api.proxy),
		}, middleware.NewJWTAuthMiddleware(api.tokens, api.blacklist, logger))
	})
	api.e = srv.Router()

	// "admin-token" and "user-token" pass authentication
	for raw, role := range map[string]string{"admin-token": entity.RoleAdmin, "user-token": entity.RoleUser} {
		api.tokens.On("ValidateToken", mock.Anything, raw, entity.TokenTypeAccess).Return(&dto.AuthClaims{
			UserID:    "user-" + role,
			TokenID:   "jti-" + raw,
			TokenType: entity.TokenTypeAccess,
			Roles:     []string{role},
			ExpiresAt: now.Add(time.Hour),
		}, nil)
		api.blacklist.On("CheckBlacklist", mock.Anything, raw, dto.CheckOptions{}).
			Return(dto.ValidResult("jti-"+raw, now.Add(time.Hour), now))
	}

	return api
}

func (a *testAPI) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		api := newTestAPI(t)
		api.auth.On("Login", mock.Anything, mock.MatchedBy(func(p dto.LoginParams) bool {
			return p.Username == "alice" && p.Password == "s3cret!"
		})).Return(&dto.AuthTokens{AccessToken: "a.b.c", RefreshToken: "d.e.f", TokenType: "Bearer"}, nil)

		rec := api.do(http.MethodPost, "/api/v1/auth/login", "", `{"username":"alice","password":"s3cret!"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "a.b.c", decode(t, rec)["access_token"])
	})

	t.Run("Validation failure", func(t *testing.T) {
		api := newTestAPI(t)

		rec := api.do(http.MethodPost, "/api/v1/auth/login", "", `{"username":"alice"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		api.auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})

	t.Run("Invalid credentials", func(t *testing.T) {
		api := newTestAPI(t)
		api.auth.On("Login", mock.Anything, mock.Anything).Return(nil, domainErrors.ErrInvalidCredentials)

		rec := api.do(http.MethodPost, "/api/v1/auth/login", "", `{"username":"alice","password":"nope"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid credentials", decode(t, rec)["error"])
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		api := newTestAPI(t)
		api.auth.On("Logout", mock.Anything, mock.MatchedBy(func(p dto.LogoutParams) bool {
			return p.Access.TokenID == "jti-user-token" && p.RefreshToken == "r.e.f"
		})).Return(nil)

		rec := api.do(http.MethodPost, "/api/v1/auth/logout", "user-token", `{"refresh_token":"r.e.f"}`)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		api.auth.AssertExpectations(t)
	})

	t.Run("Unconfirmed revocation is a 503", func(t *testing.T) {
		api := newTestAPI(t)
		api.auth.On("Logout", mock.Anything, mock.Anything).Return(domainErrors.ErrRevocationNotConfirmed)

		rec := api.do(http.MethodPost, "/api/v1/auth/logout", "user-token", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "revocation_not_confirmed", decode(t, rec)["error"])
	})

	t.Run("Requires authentication", func(t *testing.T) {
		api := newTestAPI(t)

		rec := api.do(http.MethodPost, "/api/v1/auth/logout", "", "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	api := newTestAPI(t)
	api.auth.On("Refresh", mock.Anything, "old.refresh.token", mock.Anything, mock.Anything).
		Return(&dto.AuthTokens{AccessToken: "n.e.w", RefreshToken: "n.e.w2"}, nil)
	api.auth.On("Refresh", mock.Anything, "used.refresh.token", mock.Anything, mock.Anything).
		Return(nil, domainErrors.ErrTokenRevoked)

	rec := api.do(http.MethodPost, "/api/v1/auth/refresh", "", `{"refresh_token":"old.refresh.token"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodPost, "/api/v1/auth/refresh", "", `{"refresh_token":"used.refresh.token"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodPost, "/api/v1/auth/refresh", "", `{"refresh_token":"not a jwt"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTokenHandler_RevokeToken(t *testing.T) {
	t.Run("Admin revokes", func(t *testing.T) {
		api := newTestAPI(t)
		api.revocation.On("RevokeToken", mock.Anything, "jti-9", constants.RevocationReasonAdmin).
			Return(&entity.RevocationEvent{TokenID: "jti-9", Reason: constants.RevocationReasonAdmin}, nil)

		rec := api.do(http.MethodPost, "/api/v1/tokens/jti-9/revoke", "admin-token", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "jti-9", decode(t, rec)["token_id"])
	})

	t.Run("Non admin is forbidden", func(t *testing.T) {
		api := newTestAPI(t)

		rec := api.do(http.MethodPost, "/api/v1/tokens/jti-9/revoke", "user-token", "")

		assert.Equal(t, http.StatusForbidden, rec.Code)
		api.revocation.AssertNotCalled(t, "RevokeToken", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Domain failures map to status codes", func(t *testing.T) {
		api := newTestAPI(t)
		api.revocation.On("RevokeToken", mock.Anything, "missing", mock.Anything).Return(nil, domainErrors.ErrTokenNotFound)
		api.revocation.On("RevokeToken", mock.Anything, "twice", mock.Anything).Return(nil, domainErrors.ErrTokenAlreadyRevoked)
		api.revocation.On("RevokeToken", mock.Anything, "flaky", "compromised").Return(nil, domainErrors.ErrRevocationNotConfirmed)

		assert.Equal(t, http.StatusNotFound, api.do(http.MethodPost, "/api/v1/tokens/missing/revoke", "admin-token", "").Code)
		assert.Equal(t, http.StatusConflict, api.do(http.MethodPost, "/api/v1/tokens/twice/revoke", "admin-token", "").Code)
		assert.Equal(t, http.StatusServiceUnavailable,
			api.do(http.MethodPost, "/api/v1/tokens/flaky/revoke", "admin-token", `{"reason":"compromised"}`).Code)
	})
}

func TestTokenHandler_RevokeAllForUser(t *testing.T) {
	api := newTestAPI(t)
	api.revocation.On("RevokeAllForUser", mock.Anything, "user-7", constants.RevocationReasonRevokeAll).Return(3, nil)

	rec := api.do(http.MethodPost, "/api/v1/users/user-7/revoke-all", "admin-token", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), decode(t, rec)["revoked"])
}

func TestTokenHandler_Status(t *testing.T) {
	api := newTestAPI(t)
	revokedAt := now.Add(-time.Minute)
	api.tokens.On("ValidateToken", mock.Anything, "some.revoked.token", entity.TokenType("")).
		Return(&dto.AuthClaims{TokenID: "jti-r", TokenType: entity.TokenTypeRefresh}, nil)
	api.tokens.On("ValidateToken", mock.Anything, "forged.refresh.token", entity.TokenType("")).
		Return(nil, domainErrors.ErrInvalidToken)
	api.blacklist.On("CheckBlacklist", mock.Anything, "some.revoked.token", dto.CheckOptions{BypassCache: true}).
		Return(dto.BlacklistedResult("jti-r", &revokedAt, now.Add(time.Hour), now))

	rec := api.do(http.MethodGet, "/api/v1/tokens/status?fresh=true", "some.revoked.token", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "blacklisted", body["status"])
	assert.Equal(t, "jti-r", body["token_id"])

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/v1/tokens/status", "", "").Code)

	// a bad signature is rejected before any blacklist lookup
	rec = api.do(http.MethodGet, "/api/v1/tokens/status?fresh=true", "forged.refresh.token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderWWWAuthenticate), "invalid_token")
	api.blacklist.AssertNotCalled(t, "CheckBlacklist", mock.Anything, "forged.refresh.token", mock.Anything)
}

func TestTokenHandler_StatusIsRateLimited(t *testing.T) {
	api := newTestAPI(t)

	limited := false
	for i := 0; i < 2*statusRequestsPerSecond && !limited; i++ {
		limited = api.do(http.MethodGet, "/api/v1/tokens/status", "", "").Code == http.StatusTooManyRequests
	}

	assert.True(t, limited)
	api.blacklist.AssertNotCalled(t, "CheckBlacklist", mock.Anything, mock.Anything, mock.Anything)
}

func TestTokenHandler_StatsAndHealth(t *testing.T) {
	api := newTestAPI(t)
	api.blacklist.On("GetBlacklistStats").Return(service.BlacklistStats{TotalEntries: 42, FastTier: "memory"})

	rec := api.do(http.MethodGet, "/api/v1/blacklist/stats", "admin-token", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(42), decode(t, rec)["total_entries"])

	rec = api.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestProxyHandler_Forward(t *testing.T) {
	api := newTestAPI(t)
	api.proxy.On("Forward", mock.Anything, "catalog", "/items/7", "lang=en", mock.Anything).
		Return(&repository.ExternalAPIResponse{StatusCode: http.StatusOK, ContentType: "application/json", Body: []byte(`{"id":7}`)}, nil)
	api.proxy.On("Forward", mock.Anything, "unknown", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domainErrors.ErrUpstreamNotFound)

	rec := api.do(http.MethodGet, "/api/v1/proxy/catalog/items/7?lang=en", "user-token", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7}`, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/v1/proxy/unknown/x", "user-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/proxy/catalog/items/7", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
