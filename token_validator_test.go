package auth_test

import (
	"context"
	"testing"
	"time"

	auth "github.com/Isra8Rubio/CocktailDockerizado"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBearerValidator_Validate(t *testing.T) {
	service := auth.NewTokenService([]byte("test-signing-key"), 30*time.Minute, "test-issuer", jwt.ClaimStrings{"test-audience"}, NoopLogger{})

	issueFor := func(t *testing.T, identity auth.Identity) string {
		t.Helper()
		token, _, err := service.IssueToken(&auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: identity.ID()},
			UserEmail:        identity.Email(),
			Stamp:            identity.Fingerprint(),
		})
		require.NoError(t, err)
		return token
	}

	identity := testIdentity{
		id:          "7c9d3db1-54d2-4f4e-b2d1-111111111111",
		username:    "pepe",
		email:       "pepe.rone@example.com",
		fingerprint: "stamp-1",
	}

	t.Run("accepts a token whose fingerprint matches the store", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("FindByID", mock.Anything, identity.ID()).Return(identity, nil)

		validator := auth.NewBearerValidator(service, store)

		claims, err := validator.Validate(context.Background(), issueFor(t, identity))
		require.NoError(t, err)
		assert.Equal(t, identity.ID(), claims.UserID())
		store.AssertExpectations(t)
	})

	t.Run("rejects a token after the fingerprint rotated", func(t *testing.T) {
		token := issueFor(t, identity)

		rotated := identity
		rotated.fingerprint = auth.NewFingerprint()

		store := &MockCredentialStore{}
		store.On("FindByID", mock.Anything, identity.ID()).Return(rotated, nil)

		validator := auth.NewBearerValidator(service, store)

		_, err := validator.Validate(context.Background(), token)
		assert.ErrorIs(t, err, auth.ErrStaleFingerprint)
		assert.True(t, auth.IsRevocationError(err))
	})

	t.Run("rejects a token whose subject no longer exists", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("FindByID", mock.Anything, identity.ID()).Return(nil, auth.ErrIdentityNotFound)

		validator := auth.NewBearerValidator(service, store)

		_, err := validator.Validate(context.Background(), issueFor(t, identity))
		assert.ErrorIs(t, err, auth.ErrUnknownSubject)
		assert.True(t, auth.IsRevocationError(err))
	})

	t.Run("never reaches the store when local validation fails", func(t *testing.T) {
		other := auth.NewTokenService([]byte("other-key"), 30*time.Minute, "test-issuer", jwt.ClaimStrings{"test-audience"}, NoopLogger{})
		token, _, err := other.IssueToken(&auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: identity.ID()},
			Stamp:            identity.Fingerprint(),
		})
		require.NoError(t, err)

		store := &MockCredentialStore{}
		validator := auth.NewBearerValidator(service, store)

		_, err = validator.Validate(context.Background(), token)
		assert.ErrorIs(t, err, auth.ErrBadSignature)
		store.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}
