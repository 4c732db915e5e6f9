package jwtware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeClaims struct {
	subject string
	email   string
	stamp   string
	extra   map[string]string
}

func (c fakeClaims) Subject() string     { return c.subject }
func (c fakeClaims) UserID() string      { return c.subject }
func (c fakeClaims) Email() string       { return c.email }
func (c fakeClaims) Fingerprint() string { return c.stamp }

func (c fakeClaims) Claim(name string) (string, bool) {
	v, ok := c.extra[name]
	return v, ok
}

func (c fakeClaims) IsAdmin() bool {
	v, ok := c.Claim("isAdmin")
	return ok && v == "true"
}

type fakeValidator struct{}

func (fakeValidator) Validate(ctx context.Context, tokenString string) (AuthClaims, error) {
	return fakeClaims{subject: "user-123"}, nil
}

func TestPerformAuthorizationChecks(t *testing.T) {
	member := fakeClaims{subject: "user-123"}
	admin := fakeClaims{subject: "user-456", extra: map[string]string{"isAdmin": "true"}}

	t.Run("no checks configured passes", func(t *testing.T) {
		assert.NoError(t, performAuthorizationChecks(member, Config{}))
	})

	t.Run("admin gate rejects a member snapshot", func(t *testing.T) {
		err := performAuthorizationChecks(member, Config{RequireAdmin: true})
		assert.ErrorIs(t, err, ErrAdminRequired)
	})

	t.Run("admin gate accepts an admin snapshot", func(t *testing.T) {
		assert.NoError(t, performAuthorizationChecks(admin, Config{RequireAdmin: true}))
	})

	t.Run("claim checker runs after the admin gate", func(t *testing.T) {
		custom := errors.New("tier required")
		cfg := Config{
			ClaimChecker: func(claims AuthClaims) error {
				if _, ok := claims.Claim("tier"); !ok {
					return custom
				}
				return nil
			},
		}

		assert.ErrorIs(t, performAuthorizationChecks(member, cfg), custom)

		gold := fakeClaims{subject: "user-789", extra: map[string]string{"tier": "gold"}}
		assert.NoError(t, performAuthorizationChecks(gold, cfg))
	})
}

func TestGetDefaultConfig(t *testing.T) {
	t.Run("fills in defaults", func(t *testing.T) {
		cfg := GetDefaultConfig(Config{TokenValidator: fakeValidator{}})

		assert.NotNil(t, cfg.SuccessHandler)
		assert.NotNil(t, cfg.ErrorHandler)
		assert.Equal(t, "user", cfg.ContextKey)
		assert.Equal(t, defaultTokenLookup, cfg.TokenLookup)
		assert.Equal(t, "Bearer", cfg.AuthScheme)
	})

	t.Run("missing validator panics", func(t *testing.T) {
		assert.Panics(t, func() {
			GetDefaultConfig(Config{})
		})
	})
}

func TestGetExtractors(t *testing.T) {
	t.Run("single header source", func(t *testing.T) {
		extractors := GetExtractors("header:Authorization")
		assert.Len(t, extractors, 1)
	})

	t.Run("parses multiple comma separated sources", func(t *testing.T) {
		extractors := GetExtractors("header:Authorization,query:token,cookie:jwt")
		assert.Len(t, extractors, 3)
	})

	t.Run("ignores malformed entries", func(t *testing.T) {
		extractors := GetExtractors("header")
		assert.Empty(t, extractors)
	})
}
