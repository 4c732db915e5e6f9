package auth_test

import (
	"context"
	"strings"
	"testing"

	auth "github.com/Isra8Rubio/CocktailDockerizado"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestIdentity() testIdentity {
	return testIdentity{
		id:          "7c9d3db1-54d2-4f4e-b2d1-222222222222",
		username:    "pepe",
		email:       "pepe.rone@example.com",
		fingerprint: auth.NewFingerprint(),
	}
}

func TestAuther_Login(t *testing.T) {
	identity := newTestIdentity()

	t.Run("issues a token on valid credentials", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("VerifyPassword", mock.Anything, identity.Email(), "secret-word").Return(identity, nil)
		store.On("GetClaims", mock.Anything, identity.ID()).Return(map[string]string{}, nil)
		store.On("GetRoles", mock.Anything, identity.ID()).Return([]string{auth.RoleMember}, nil)
		store.On("FindByID", mock.Anything, identity.ID()).Return(identity, nil)

		auther := auth.NewAuthenticator(store, nil, &MockMailer{}, newTestConfig())

		token, expiresAt, err := auther.Login(context.Background(), identity.Email(), "secret-word")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.False(t, expiresAt.IsZero())

		claims, err := auther.ValidateBearer(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, identity.ID(), claims.UserID())
		assert.Equal(t, identity.Email(), claims.Email())
		assert.False(t, claims.IsAdmin())
	})

	t.Run("propagates the generic credential failure", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("VerifyPassword", mock.Anything, identity.Email(), "wrong").
			Return(nil, auth.ErrMismatchedHashAndPassword)

		auther := auth.NewAuthenticator(store, nil, &MockMailer{}, newTestConfig()).WithLogger(NoopLogger{})

		_, _, err := auther.Login(context.Background(), identity.Email(), "wrong")
		assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
	})

	t.Run("records login events through the activity sink", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("VerifyPassword", mock.Anything, identity.Email(), "secret-word").Return(identity, nil)
		store.On("GetClaims", mock.Anything, identity.ID()).Return(map[string]string{}, nil)
		store.On("GetRoles", mock.Anything, identity.ID()).Return([]string{}, nil)

		var recorded []auth.ActivityEvent
		sink := auth.ActivitySinkFunc(func(ctx context.Context, event auth.ActivityEvent) error {
			recorded = append(recorded, event)
			return nil
		})

		auther := auth.NewAuthenticator(store, nil, &MockMailer{}, newTestConfig()).WithActivitySink(sink)

		_, _, err := auther.Login(context.Background(), identity.Email(), "secret-word")
		require.NoError(t, err)

		require.Len(t, recorded, 1)
		assert.Equal(t, auth.ActivityEventLoginSuccess, recorded[0].EventType)
		assert.Equal(t, identity.ID(), recorded[0].UserID)
	})
}

func TestAuther_ClaimsSnapshot(t *testing.T) {
	identity := newTestIdentity()

	t.Run("admin role is projected into the elevated claim", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("GetClaims", mock.Anything, identity.ID()).Return(map[string]string{}, nil)
		store.On("GetRoles", mock.Anything, identity.ID()).Return([]string{auth.RoleAdmin}, nil)
		store.On("FindByID", mock.Anything, identity.ID()).Return(identity, nil)

		auther := auth.NewAuthenticator(store, nil, &MockMailer{}, newTestConfig())

		token, _, err := auther.BuildTokenFor(context.Background(), identity)
		require.NoError(t, err)

		claims, err := auther.ValidateBearer(context.Background(), token)
		require.NoError(t, err)
		assert.True(t, claims.IsAdmin())
	})

	t.Run("tokens issued before a grant never gain the claim", func(t *testing.T) {
		store := &MockCredentialStore{}
		// first issuance: plain member
		store.On("GetClaims", mock.Anything, identity.ID()).Return(map[string]string{}, nil).Once()
		store.On("GetRoles", mock.Anything, identity.ID()).Return([]string{auth.RoleMember}, nil).Once()
		// second issuance: admin claim present
		store.On("GetClaims", mock.Anything, identity.ID()).
			Return(map[string]string{auth.AdminClaim: auth.ClaimValueTrue}, nil).Once()
		store.On("GetRoles", mock.Anything, identity.ID()).Return([]string{auth.RoleMember}, nil).Once()
		store.On("FindByID", mock.Anything, identity.ID()).Return(identity, nil)

		auther := auth.NewAuthenticator(store, nil, &MockMailer{}, newTestConfig())

		before, _, err := auther.BuildTokenFor(context.Background(), identity)
		require.NoError(t, err)
		after, _, err := auther.BuildTokenFor(context.Background(), identity)
		require.NoError(t, err)

		beforeClaims, err := auther.ValidateBearer(context.Background(), before)
		require.NoError(t, err)
		afterClaims, err := auther.ValidateBearer(context.Background(), after)
		require.NoError(t, err)

		assert.False(t, beforeClaims.IsAdmin())
		assert.True(t, afterClaims.IsAdmin())
	})
}

func TestAuther_RevocationAfterPasswordChange(t *testing.T) {
	identity := newTestIdentity()

	store := &MockCredentialStore{}
	store.On("GetClaims", mock.Anything, identity.ID()).Return(map[string]string{}, nil)
	store.On("GetRoles", mock.Anything, identity.ID()).Return([]string{}, nil)
	// before the change the stored fingerprint matches the token
	store.On("FindByID", mock.Anything, identity.ID()).Return(identity, nil).Once()

	auther := auth.NewAuthenticator(store, nil, &MockMailer{}, newTestConfig()).WithLogger(NoopLogger{})

	token, _, err := auther.BuildTokenFor(context.Background(), identity)
	require.NoError(t, err)

	_, err = auther.ValidateBearer(context.Background(), token)
	require.NoError(t, err)

	// the store rotates the fingerprint as part of the password change
	rotated := identity
	rotated.fingerprint = auth.NewFingerprint()
	store.On("ChangePassword", mock.Anything, identity.ID(), "old-word", "new-word").Return(nil)
	store.On("FindByID", mock.Anything, identity.ID()).Return(rotated, nil)

	require.NoError(t, auther.ChangePassword(context.Background(), identity.ID(), "old-word", "new-word"))

	_, err = auther.ValidateBearer(context.Background(), token)
	assert.ErrorIs(t, err, auth.ErrStaleFingerprint)
}

func TestAuther_ForgotPassword(t *testing.T) {
	identity := newTestIdentity()

	t.Run("unknown email completes silently without mail", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, auth.ErrIdentityNotFound)

		mailer := &MockMailer{}
		auther := auth.NewAuthenticator(store, nil, mailer, newTestConfig()).WithLogger(NoopLogger{})

		err := auther.ForgotPassword(context.Background(), "nobody@example.com", "https://app.example.com/reset")
		assert.NoError(t, err)
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("known email receives a link with the encoded secret", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("FindByEmail", mock.Anything, identity.Email()).Return(identity, nil)
		store.On("GenerateResetSecret", mock.Anything, identity.ID()).Return("super-secret", nil)

		var sentBody string
		mailer := &MockMailer{}
		mailer.On("Send", mock.Anything, identity.Email(), "Reset your password", mock.Anything).
			Run(func(args mock.Arguments) {
				sentBody = args.String(3)
			}).
			Return(nil)

		auther := auth.NewAuthenticator(store, nil, mailer, newTestConfig())

		err := auther.ForgotPassword(context.Background(), identity.Email(), "https://app.example.com/reset")
		require.NoError(t, err)

		link := auth.BuildResetLink("https://app.example.com/reset", identity.Email(), "super-secret")
		assert.True(t, strings.Contains(sentBody, link), "email body should contain the reset link")
		mailer.AssertExpectations(t)
	})
}

func TestAuther_ResetPassword(t *testing.T) {
	identity := newTestIdentity()

	t.Run("unknown email fails loudly", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, auth.ErrIdentityNotFound)

		auther := auth.NewAuthenticator(store, nil, &MockMailer{}, newTestConfig())

		err := auther.ResetPassword(context.Background(), "nobody@example.com", auth.EncodeResetToken("super-secret"), "new-word")
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})

	t.Run("decodes the transport token before consuming it", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("FindByEmail", mock.Anything, identity.Email()).Return(identity, nil)
		store.On("ConsumeResetSecret", mock.Anything, identity.ID(), "super-secret", "new-word").Return(nil)

		auther := auth.NewAuthenticator(store, nil, &MockMailer{}, newTestConfig())

		err := auther.ResetPassword(context.Background(), identity.Email(), auth.EncodeResetToken("super-secret"), "new-word")
		assert.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("rejects tokens that are not valid base64", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("FindByEmail", mock.Anything, identity.Email()).Return(identity, nil)

		auther := auth.NewAuthenticator(store, nil, &MockMailer{}, newTestConfig())

		err := auther.ResetPassword(context.Background(), identity.Email(), "%%not-base64%%", "new-word")
		assert.ErrorIs(t, err, auth.ErrResetTokenInvalid)
		store.AssertNotCalled(t, "ConsumeResetSecret", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("surfaces replay of a consumed token", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("FindByEmail", mock.Anything, identity.Email()).Return(identity, nil)
		store.On("ConsumeResetSecret", mock.Anything, identity.ID(), "super-secret", "new-word").
			Return(auth.ErrResetTokenUsed)

		auther := auth.NewAuthenticator(store, nil, &MockMailer{}, newTestConfig())

		err := auther.ResetPassword(context.Background(), identity.Email(), auth.EncodeResetToken("super-secret"), "new-word")
		assert.ErrorIs(t, err, auth.ErrResetTokenUsed)
	})
}

func TestAuther_GrantAdmin(t *testing.T) {
	identity := newTestIdentity()

	t.Run("stores the elevated claim", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("FindByEmail", mock.Anything, identity.Email()).Return(identity, nil)
		store.On("GetClaims", mock.Anything, identity.ID()).Return(map[string]string{}, nil)
		store.On("AddClaim", mock.Anything, identity.ID(), auth.AdminClaim, auth.ClaimValueTrue).Return(nil)

		auther := auth.NewAuthenticator(store, nil, &MockMailer{}, newTestConfig())

		err := auther.GrantAdmin(context.Background(), identity.Email())
		assert.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("refuses a second grant", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("FindByEmail", mock.Anything, identity.Email()).Return(identity, nil)
		store.On("GetClaims", mock.Anything, identity.ID()).
			Return(map[string]string{auth.AdminClaim: auth.ClaimValueTrue}, nil)

		auther := auth.NewAuthenticator(store, nil, &MockMailer{}, newTestConfig())

		err := auther.GrantAdmin(context.Background(), identity.Email())
		assert.ErrorIs(t, err, auth.ErrAdminAlreadyGranted)
		store.AssertNotCalled(t, "AddClaim", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("fails for unknown email", func(t *testing.T) {
		store := &MockCredentialStore{}
		store.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, auth.ErrIdentityNotFound)

		auther := auth.NewAuthenticator(store, nil, &MockMailer{}, newTestConfig())

		err := auther.GrantAdmin(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})
}
