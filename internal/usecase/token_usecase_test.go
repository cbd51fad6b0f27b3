package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/entity"
	domainErrors "github.com/dariemcarlosdev/secure-clean-api/internal/domain/errors"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/constants"
	"github.com/dariemcarlosdev/secure-clean-api/internal/usecase/dto"
)

func signRaw(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestTokenUseCase_IssueToken(t *testing.T) {
	t.Run("Issued claims round trip", func(t *testing.T) {
		// Setup
		f := newFixture(t)

		// Execute
		issued := f.issue(t, entity.TokenTypeAccess)
		parsed := f.tokenUC.ExtractClaims(issued.SignedToken)

		// Assert
		require.True(t, parsed.OK())
		assert.Equal(t, issued.TokenID, parsed.TokenID)
		assert.Equal(t, "user-alice", parsed.Subject)
		assert.Equal(t, entity.TokenTypeAccess, parsed.TokenType)
		assert.True(t, issued.ExpiresAt.Equal(parsed.ExpiresAt))
		assert.Equal(t, 30*time.Minute, parsed.ExpiresAt.Sub(parsed.IssuedAt))
		_, err := uuid.Parse(parsed.TokenID)
		assert.NoError(t, err)
	})

	t.Run("Refresh tokens live seven days", func(t *testing.T) {
		f := newFixture(t)

		issued := f.issue(t, entity.TokenTypeRefresh)

		assert.Equal(t, 7*24*time.Hour, issued.ExpiresAt.Sub(issued.IssuedAt))
	})

	t.Run("Issued token is tracked", func(t *testing.T) {
		f := newFixture(t)

		issued := f.issue(t, entity.TokenTypeAccess)

		stored := f.tokens.get(issued.TokenID)
		assert.Equal(t, "user-alice", stored.UserID)
		assert.Equal(t, entity.TokenStatusActive, stored.Status)
	})

	t.Run("Every token gets a distinct id", func(t *testing.T) {
		f := newFixture(t)

		a := f.issue(t, entity.TokenTypeAccess)
		b := f.issue(t, entity.TokenTypeAccess)

		assert.NotEqual(t, a.TokenID, b.TokenID)
	})
}

func TestTokenUseCase_ExtractClaims(t *testing.T) {
	f := newFixture(t)
	issued := f.issue(t, entity.TokenTypeAccess)

	cases := []struct {
		name string
		raw  string
		ok   bool
	}{
		{name: "Plain token", raw: issued.SignedToken, ok: true},
		{name: "Bearer prefix", raw: "Bearer " + issued.SignedToken, ok: true},
		{name: "Lower case bearer", raw: "bearer " + issued.SignedToken, ok: true},
		{name: "Empty", raw: "", ok: false},
		{name: "Not a token", raw: "not-a-token", ok: false},
		{name: "Two segments", raw: "abc.def", ok: false},
		{name: "Garbage segments", raw: "abc.def.ghi", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed := f.tokenUC.ExtractClaims(tc.raw)
			assert.Equal(t, tc.ok, parsed.OK())
			if tc.ok {
				assert.Equal(t, issued.TokenID, parsed.TokenID)
			}
		})
	}

	t.Run("Missing claims still parse", func(t *testing.T) {
		raw := signRaw(t, jwt.MapClaims{"sub": "user-alice"})

		parsed := f.tokenUC.ExtractClaims(raw)

		assert.True(t, parsed.OK())
		assert.Empty(t, parsed.TokenID)
		assert.True(t, parsed.ExpiresAt.IsZero())
	})
}

func TestTokenUseCase_ExtractOrFallback(t *testing.T) {
	t.Run("Uses real claims when present", func(t *testing.T) {
		f := newFixture(t)
		issued := f.issue(t, entity.TokenTypeAccess)

		claims := f.tokenUC.ExtractOrFallback(issued.SignedToken)

		assert.False(t, claims.Fallback)
		assert.Equal(t, issued.TokenID, claims.TokenID)
	})

	t.Run("Synthesises id and expiry for malformed input", func(t *testing.T) {
		f := newFixture(t)

		claims := f.tokenUC.ExtractOrFallback("garbage")

		assert.True(t, claims.Fallback)
		assert.NotEmpty(t, claims.TokenID)
		assert.Equal(t, f.clock.Now().Add(constants.FallbackTokenExpiry), claims.ExpiresAt)
	})
}

func TestTokenUseCase_ValidateToken(t *testing.T) {
	t.Run("Valid access token", func(t *testing.T) {
		f := newFixture(t)
		issued := f.issue(t, entity.TokenTypeAccess)

		claims, err := f.tokenUC.ValidateToken(context.Background(), issued.SignedToken, entity.TokenTypeAccess)

		require.NoError(t, err)
		assert.Equal(t, issued.TokenID, claims.TokenID)
		assert.Equal(t, "alice", claims.Username)
		assert.True(t, claims.HasRole(entity.RoleUser))
	})

	t.Run("Wrong token type", func(t *testing.T) {
		f := newFixture(t)
		issued := f.issue(t, entity.TokenTypeAccess)

		_, err := f.tokenUC.ValidateToken(context.Background(), issued.SignedToken, entity.TokenTypeRefresh)

		assert.True(t, errors.Is(err, domainErrors.ErrInvalidToken))
	})

	t.Run("Wrong secret", func(t *testing.T) {
		f := newFixture(t)
		other := usecase.NewTokenUseCase(zap.NewNop(), usecase.TokenConfig{
			Issuer: "secure-clean-api",
			Secret: "another-secret",
		}, newMemTokenRepository(), f.clock.Now)
		issued, err := other.IssueToken(context.Background(), dto.IssueParams{UserID: "user-alice"})
		require.NoError(t, err)

		_, err = f.tokenUC.ValidateToken(context.Background(), issued.SignedToken, "")

		assert.True(t, errors.Is(err, domainErrors.ErrInvalidToken))
	})

	t.Run("Expiry honours the clock skew", func(t *testing.T) {
		f := newFixture(t)
		issued := f.issue(t, entity.TokenTypeAccess)

		f.clock.Advance(30*time.Minute + 30*time.Second)
		_, err := f.tokenUC.ValidateToken(context.Background(), issued.SignedToken, entity.TokenTypeAccess)
		assert.NoError(t, err)

		f.clock.Advance(time.Minute)
		_, err = f.tokenUC.ValidateToken(context.Background(), issued.SignedToken, entity.TokenTypeAccess)
		assert.True(t, errors.Is(err, domainErrors.ErrInvalidToken))
	})

	t.Run("Missing jti", func(t *testing.T) {
		f := newFixture(t)
		raw := signRaw(t, jwt.MapClaims{
			"sub": "user-alice",
			"iss": "secure-clean-api",
			"iat": f.clock.Now().Unix(),
			"exp": f.clock.Now().Add(time.Hour).Unix(),
		})

		_, err := f.tokenUC.ValidateToken(context.Background(), raw, "")

		assert.True(t, errors.Is(err, domainErrors.ErrInvalidToken))
	})
}
