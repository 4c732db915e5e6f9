package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claim names used inside issued tokens. FingerprintClaim is deliberately a
// private, non registered name: overloading a standard claim would let a
// foreign token smuggle a fingerprint through a registered field.
const (
	FingerprintClaim = "security_stamp"
	AdminClaim       = "isAdmin"
	ClaimValueTrue   = "true"
)

// AuthClaims represents the decoded claim set of a validated bearer token.
type AuthClaims interface {
	Subject() string
	UserID() string
	Email() string
	Fingerprint() string
	Claim(name string) (string, bool)
	IsAdmin() bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UserEmail string `json:"email,omitempty"`
	// Stamp carries the revocation fingerprint snapshot taken at issuance.
	Stamp string `json:"security_stamp,omitempty"`
	// Extra holds the identity's custom claims as captured at issuance,
	// including the synthesized admin claim. This is a point in time
	// snapshot: claims added after issuance never appear in older tokens.
	Extra map[string]string `json:"claims,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID embedded as the token subject.
func (c *JWTClaims) UserID() string {
	return c.Subject()
}

// Email returns the email claim
func (c *JWTClaims) Email() string {
	return c.UserEmail
}

// Fingerprint returns the fingerprint snapshot embedded at issuance.
func (c *JWTClaims) Fingerprint() string {
	return c.Stamp
}

// Claim looks up a passthrough claim by name.
func (c *JWTClaims) Claim(name string) (string, bool) {
	if c.Extra == nil {
		return "", false
	}
	v, ok := c.Extra[name]
	return v, ok
}

// IsAdmin reports whether the token carried the elevated claim at issuance.
func (c *JWTClaims) IsAdmin() bool {
	v, ok := c.Claim(AdminClaim)
	return ok && v == ClaimValueTrue
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
