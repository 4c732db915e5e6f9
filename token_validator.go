package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// TokenValidator validates a raw bearer token, including the live revocation
// check, and returns the claims of the authenticated principal. The context is
// required because the fingerprint stage performs store I/O on every request.
type TokenValidator interface {
	Validate(ctx context.Context, tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(ctx context.Context, tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(ctx context.Context, tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(ctx, tokenString)
}

// BearerValidator chains the local token stages with the fingerprint check
// against the credential store. The store read happens on every call, never
// cached: the revocation guarantee is only as fresh as this lookup.
type BearerValidator struct {
	local  TokenService
	store  CredentialStore
	logger Logger
}

// NewBearerValidator returns a validator that accepts a token only when the
// local stages pass and the embedded fingerprint still matches the store.
func NewBearerValidator(local TokenService, store CredentialStore) *BearerValidator {
	return &BearerValidator{
		local:  local,
		store:  store,
		logger: defLogger{},
	}
}

func (v *BearerValidator) WithLogger(logger Logger) *BearerValidator {
	if logger != nil {
		v.logger = logger
	}
	return v
}

// Validate satisfies the TokenValidator interface.
func (v *BearerValidator) Validate(ctx context.Context, tokenString string) (AuthClaims, error) {
	claims, err := v.local.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	identity, err := v.store.FindByID(ctx, claims.UserID())
	if err != nil {
		if errors.IsNotFound(err) {
			v.logger.Warn("bearer token subject %s has no backing record", claims.UserID())
			return nil, ErrUnknownSubject
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve token subject")
	}

	if !FingerprintEqual(claims.Fingerprint(), identity.Fingerprint()) {
		v.logger.Info("rejecting bearer token with stale fingerprint for subject %s", claims.UserID())
		return nil, ErrStaleFingerprint
	}

	return claims, nil
}

var _ TokenValidator = (*BearerValidator)(nil)
