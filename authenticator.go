package auth

import (
	"context"
	"reflect"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// Auther wires the credential store, the token service, and the command
// handlers into the Authenticator surface.
type Auther struct {
	store        CredentialStore
	repo         RepositoryManager
	mailer       Mailer
	logger       Logger
	tokenService TokenService
	validator    TokenValidator
	activitySink ActivitySink

	registerHandler *RegisterUserHandler
	resetInit       *InitializePasswordResetHandler
	resetFinalize   *FinalizePasswordResetHandler
	adminGrant      *GrantAdminHandler
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(store CredentialStore, repo RepositoryManager, mailer Mailer, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		jwt.ClaimStrings(opts.GetAudience()),
		defLogger{},
	)

	a := &Auther{
		store:        store,
		repo:         repo,
		mailer:       mailer,
		logger:       defLogger{},
		tokenService: tokenService,
		validator:    NewBearerValidator(tokenService, store),
		activitySink: noopActivitySink{},
	}

	a.registerHandler = NewRegisterUserHandler(repo)
	a.resetInit = NewInitializePasswordResetHandler(store, mailer)
	a.resetFinalize = NewFinalizePasswordResetHandler(store)
	a.adminGrant = NewGrantAdminHandler(store)

	return a
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger == nil {
		return s
	}
	s.logger = logger
	s.resetInit.WithLogger(logger)
	s.resetFinalize.WithLogger(logger)
	s.adminGrant.WithLogger(logger)
	if v, ok := s.validator.(*BearerValidator); ok {
		v.WithLogger(logger)
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	s.registerHandler.WithActivitySink(s.activitySink)
	s.resetInit.WithActivitySink(s.activitySink)
	s.resetFinalize.WithActivitySink(s.activitySink)
	s.adminGrant.WithActivitySink(s.activitySink)
	return s
}

// WithTokenValidator sets a custom token validator.
func (s *Auther) WithTokenValidator(validator TokenValidator) *Auther {
	if validator != nil {
		s.validator = validator
	}
	return s
}

// WithEmailRenderer overrides the renderer used for the reset email.
func (s *Auther) WithEmailRenderer(renderer EmailRenderer) *Auther {
	s.resetInit.WithRenderer(renderer)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Validator returns the token validator used for bearer validation.
func (s *Auther) Validator() TokenValidator {
	return s.validator
}

// Register creates the account and immediately issues a token for it, the
// same way a successful login would.
func (s *Auther) Register(ctx context.Context, msg RegisterUserMessage) (string, time.Time, error) {
	var created *User
	msg.OnResponse = func(user *User) {
		created = user
	}

	if err := s.registerHandler.Execute(ctx, msg); err != nil {
		return "", time.Time{}, err
	}

	if created == nil {
		return "", time.Time{}, errors.New("registration did not produce a user", errors.CategoryInternal)
	}

	return s.BuildTokenFor(ctx, identityFromUser(created))
}

func (s *Auther) Login(ctx context.Context, identifier, password string) (string, time.Time, error) {
	identity, err := s.store.VerifyPassword(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error: %s", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{}, "", map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return "", time.Time{}, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{}, "", map[string]any{
			"identifier": identifier,
			"error":      ErrIdentityNotFound.Error(),
		})
		return "", time.Time{}, ErrIdentityNotFound
	}

	token, expiresAt, err := s.BuildTokenFor(ctx, identity)
	if err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, s.actorFromIdentity(identity), identity.ID(), map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return "", time.Time{}, err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, s.actorFromIdentity(identity), identity.ID(), map[string]any{
		"identifier": identifier,
	})

	return token, expiresAt, nil
}

// BuildTokenFor snapshots the identity's claims, roles, and fingerprint into
// a signed token. The snapshot is frozen at issuance: later claim or role
// changes only show up in tokens minted after them, while a fingerprint
// rotation kills this token on its next validation.
func (s *Auther) BuildTokenFor(ctx context.Context, identity Identity) (string, time.Time, error) {
	extra, err := s.store.GetClaims(ctx, identity.ID())
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return "", time.Time{}, err
		}
		return "", time.Time{}, errors.Wrap(err, errors.CategoryInternal, "failed to load claims for token")
	}

	roles, err := s.store.GetRoles(ctx, identity.ID())
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return "", time.Time{}, err
		}
		return "", time.Time{}, errors.Wrap(err, errors.CategoryInternal, "failed to load roles for token")
	}

	claims := make(map[string]string, len(extra)+1)
	for name, value := range extra {
		claims[name] = value
	}

	for _, role := range roles {
		if role == RoleAdmin {
			claims[AdminClaim] = ClaimValueTrue
			break
		}
	}

	jwtClaims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: identity.ID(),
		},
		UserEmail: identity.Email(),
		Stamp:     identity.Fingerprint(),
		Extra:     claims,
	}

	return s.tokenService.IssueToken(jwtClaims)
}

// ValidateBearer runs the full validation chain including the live
// fingerprint check.
func (s *Auther) ValidateBearer(ctx context.Context, tokenString string) (AuthClaims, error) {
	return s.validator.Validate(ctx, tokenString)
}

// ForgotPassword starts the reset flow. It succeeds for unknown emails.
func (s *Auther) ForgotPassword(ctx context.Context, email, returnBaseURL string) error {
	return s.resetInit.Execute(ctx, InitializePasswordResetMessage{
		Email:         email,
		ReturnBaseURL: returnBaseURL,
	})
}

// ResetPassword consumes an emailed reset token and applies the new password.
func (s *Auther) ResetPassword(ctx context.Context, email, encodedToken, newPassword string) error {
	return s.resetFinalize.Execute(ctx, FinalizePasswordResetMesasge{
		Email:    email,
		Token:    encodedToken,
		Password: newPassword,
	})
}

// GrantAdmin stores the elevated claim for the user with the given email.
func (s *Auther) GrantAdmin(ctx context.Context, email string) error {
	return s.adminGrant.Execute(ctx, GrantAdminMessage{Email: email})
}

// ChangePassword verifies the current password and applies the new one,
// rotating the fingerprint as part of the same update.
func (s *Auther) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if err := s.store.ChangePassword(ctx, userID, currentPassword, newPassword); err != nil {
		return err
	}

	s.emitAuthEvent(ctx, ActivityEventPasswordChanged, ActorRef{ID: userID}, userID, nil)
	return nil
}

func (s *Auther) actorFromIdentity(identity Identity) ActorRef {
	return ActorRef{
		ID:    identity.ID(),
		Email: identity.Email(),
	}
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID string, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		Actor:      actor,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}

	if err := s.activitySink.Record(ctx, event); err != nil {
		s.logger.Warn("failed to record auth activity %s: %s", string(eventType), err)
	}
}
