package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-router"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of a resolved user identity.
type Identity interface {
	ID() string
	Username() string
	Email() string
	// Fingerprint returns the identity's current revocation fingerprint. The
	// value changes whenever credentials change, which is what invalidates
	// every previously issued token for this identity.
	Fingerprint() string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Register(ctx context.Context, msg RegisterUserMessage) (string, time.Time, error)
	Login(ctx context.Context, identifier, password string) (string, time.Time, error)
	BuildTokenFor(ctx context.Context, identity Identity) (string, time.Time, error)
	ValidateBearer(ctx context.Context, tokenString string) (AuthClaims, error)
	ForgotPassword(ctx context.Context, email, returnBaseURL string) error
	ResetPassword(ctx context.Context, email, encodedToken, newPassword string) error
	GrantAdmin(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

// CredentialStore owns user records, password verification, claim and role
// storage, and the issuance/consumption of single-use password reset secrets.
// Fingerprint rotation on password change/reset happens inside the store so
// the flows above it never observe a half-applied credential update.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (Identity, error)
	FindByID(ctx context.Context, id string) (Identity, error)
	VerifyPassword(ctx context.Context, identifier, password string) (Identity, error)
	// ChangePassword verifies currentPassword before storing the new hash and
	// rotating the fingerprint in the same update.
	ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error
	// GenerateResetSecret returns an opaque single-use secret scoped to id.
	GenerateResetSecret(ctx context.Context, id string) (string, error)
	// ConsumeResetSecret validates and consumes the secret, changes the
	// password, and rotates the fingerprint. All-or-nothing.
	ConsumeResetSecret(ctx context.Context, id, secret, newPassword string) error
	GetClaims(ctx context.Context, id string) (map[string]string, error)
	AddClaim(ctx context.Context, id, name, value string) error
	GetRoles(ctx context.Context, id string) ([]string, error)
}

// Mailer delivers notification emails. Implementations are side effecting
// collaborators; the auth flows only hand them a rendered message.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type LoginPayload interface {
	GetIdentifier() string
	GetPassword() string
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() time.Duration
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type HTTPAuthenticator interface {
	ProtectedRoute(errorHandler router.ErrorHandler) router.MiddlewareFunc
	AdminRoute(errorHandler router.ErrorHandler) router.MiddlewareFunc
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
