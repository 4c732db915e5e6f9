package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrIdentityNotFound is returned when an identity cannot be resolved for an
// operation that may legitimately disclose absence (admin grant, reset consume).
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode("IDENTITY_NOT_FOUND").
	WithCode(errors.CodeNotFound)

// ErrMismatchedHashAndPassword is the generic credential failure surfaced to
// callers; it never distinguishes unknown account from wrong password.
var ErrMismatchedHashAndPassword = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(errors.CodeUnauthorized)

// ErrTooManyLoginAttempts signals the login attempt cool down kicked in.
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryRateLimit).
	WithTextCode("TOO_MANY_ATTEMPTS").
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before they reach bcrypt.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryBadInput).
	WithTextCode("EMPTY_VALUE").
	WithCode(errors.CodeBadRequest)

// Token validation rejections. Each stage of validation has a distinct text
// code so logs and tests can tell them apart; the HTTP boundary collapses all
// of them into one generic authentication failure.
var (
	ErrTokenExpired = errors.New("authentication token expired", errors.CategoryAuth).
			WithTextCode("TOKEN_EXPIRED").
			WithCode(errors.CodeUnauthorized)

	ErrTokenMalformed = errors.New("authentication token malformed", errors.CategoryAuth).
				WithTextCode("TOKEN_MALFORMED").
				WithCode(errors.CodeUnauthorized)

	ErrBadSignature = errors.New("authentication token signature invalid", errors.CategoryAuth).
			WithTextCode("TOKEN_BAD_SIGNATURE").
			WithCode(errors.CodeUnauthorized)

	ErrIssuerMismatch = errors.New("authentication token issuer mismatch", errors.CategoryAuth).
				WithTextCode("TOKEN_ISSUER_MISMATCH").
				WithCode(errors.CodeUnauthorized)

	ErrAudienceMismatch = errors.New("authentication token audience mismatch", errors.CategoryAuth).
				WithTextCode("TOKEN_AUDIENCE_MISMATCH").
				WithCode(errors.CodeUnauthorized)

	// ErrStaleFingerprint means the token's embedded fingerprint no longer
	// matches the one stored against the identity: credentials changed after
	// issuance and every token minted before the change is dead.
	ErrStaleFingerprint = errors.New("authentication token revoked", errors.CategoryAuth).
				WithTextCode("TOKEN_STALE_FINGERPRINT").
				WithCode(errors.CodeUnauthorized)

	// ErrUnknownSubject means the subject id inside an otherwise valid token
	// has no backing record, usually a deleted account.
	ErrUnknownSubject = errors.New("authentication token subject unknown", errors.CategoryAuth).
				WithTextCode("TOKEN_UNKNOWN_SUBJECT").
				WithCode(errors.CodeUnauthorized)
)

// ErrResetTokenInvalid rejects reset tokens whose transport encoding cannot be
// decoded. Distinct from ErrIdentityNotFound on purpose.
var ErrResetTokenInvalid = errors.New("invalid password reset token", errors.CategoryValidation).
	WithTextCode("RESET_TOKEN_INVALID").
	WithCode(errors.CodeBadRequest)

// ErrResetTokenUsed rejects replay of an already consumed reset secret.
var ErrResetTokenUsed = errors.New("password reset token has already been used", errors.CategoryConflict).
	WithTextCode("RESET_TOKEN_USED").
	WithCode(errors.CodeConflict)

// ErrResetTokenExpired rejects reset secrets outside their validity window.
var ErrResetTokenExpired = errors.New("password reset token has expired", errors.CategoryValidation).
	WithTextCode("RESET_TOKEN_EXPIRED").
	WithCode(errors.CodeBadRequest)

// ErrAdminAlreadyGranted signals the elevated claim was already present; the
// caller must be able to detect that nothing changed.
var ErrAdminAlreadyGranted = errors.New("admin claim already granted", errors.CategoryConflict).
	WithTextCode("ADMIN_ALREADY_GRANTED").
	WithCode(errors.CodeConflict)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == ErrTokenExpired.TextCode {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == ErrTokenMalformed.TextCode {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsRevocationError reports whether validation failed on the live store check
// rather than on local token parsing.
func IsRevocationError(err error) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return false
	}
	return rich.TextCode == ErrStaleFingerprint.TextCode ||
		rich.TextCode == ErrUnknownSubject.TextCode
}
