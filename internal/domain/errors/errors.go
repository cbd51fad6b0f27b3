// Package errors declares the domain failures of the auth service.
package errors

import (
	pkgerrors "github.com/dariemcarlosdev/secure-clean-api/pkg/errors"
)

var (
	ErrTokenNotFound = pkgerrors.Sentinel(pkgerrors.ErrNotFound, "token not found")

	// ErrTokenAlreadyRevoked is the invalid-operation failure of a second revoke
	ErrTokenAlreadyRevoked = pkgerrors.Sentinel(pkgerrors.ErrConflict, "token already revoked")

	// ErrRevocationNotConfirmed means the blacklist insert failed after retries.
	// Callers must not report the logout or revoke as successful.
	ErrRevocationNotConfirmed = pkgerrors.Sentinel(pkgerrors.ErrUnavailable, "revocation_not_confirmed")

	ErrInvalidCredentials = pkgerrors.Sentinel(pkgerrors.ErrUnauthenticated, "invalid credentials")
	ErrInvalidToken       = pkgerrors.Sentinel(pkgerrors.ErrUnauthenticated, "invalid token")
	ErrTokenRevoked       = pkgerrors.Sentinel(pkgerrors.ErrUnauthenticated, "token revoked")
	ErrUserNotFound       = pkgerrors.Sentinel(pkgerrors.ErrNotFound, "user not found")
	ErrUserInactive       = pkgerrors.Sentinel(pkgerrors.ErrUnauthorized, "user account is not active")
	ErrUpstreamNotFound   = pkgerrors.Sentinel(pkgerrors.ErrNotFound, "unknown upstream")
)
