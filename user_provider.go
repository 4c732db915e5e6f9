package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MaxLoginAttempts is the maximun number of attempts a user gets
// in a period
var MaxLoginAttempts = 5

// CoolDownPeriod is the period in which we enforce a cool down
var CoolDownPeriod = "24h"

// CredentialProvider implements CredentialStore on top of the repository
// manager. Password changes and reset consumption rotate the user's
// fingerprint inside the same transaction that touches the hash.
type CredentialProvider struct {
	db     *bun.DB
	repo   RepositoryManager
	logger Logger
}

var _ CredentialStore = (*CredentialProvider)(nil)

// NewCredentialProvider will create a new CredentialProvider
func NewCredentialProvider(db *bun.DB, repo RepositoryManager) *CredentialProvider {
	return &CredentialProvider{
		db:     db,
		repo:   repo,
		logger: defLogger{},
	}
}

func (p *CredentialProvider) WithLogger(l Logger) *CredentialProvider {
	if l != nil {
		p.logger = l
	}
	return p
}

func (p *CredentialProvider) FindByEmail(ctx context.Context, email string) (Identity, error) {
	return p.findIdentity(ctx, email)
}

func (p *CredentialProvider) FindByID(ctx context.Context, id string) (Identity, error) {
	return p.findIdentity(ctx, id)
}

func (p *CredentialProvider) findIdentity(ctx context.Context, identifier string) (Identity, error) {
	user, err := p.repo.Users().GetByIdentifier(ctx, identifier, ActiveUsers)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user")
	}
	return identityFromUser(user), nil
}

// VerifyPassword will find the user, compare to the password, and return identity
func (p *CredentialProvider) VerifyPassword(ctx context.Context, identifier, password string) (Identity, error) {
	user, err := p.repo.Users().GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user.LoginAttemptAt != nil {
		expired, err := IsOutsideThresholdPeriod(*user.LoginAttemptAt, CoolDownPeriod)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to calculdate login attempt cooldown")
		}

		if expired {
			user.LoginAttempts = 0
		}
	}

	//if we have too many attempts in the given window, cool off!
	if user.LoginAttempts > MaxLoginAttempts {
		return nil, ErrTooManyLoginAttempts
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		// We have to increment the login_attempts counter and login_attempt_at
		if err2 := p.repo.Users().TrackAttemptedLogin(ctx, user); err2 != nil {
			return nil, errors.Wrap(err2, errors.CategoryInternal, "failed to track login attempt")
		}

		return nil, ErrMismatchedHashAndPassword
	}

	// reset the login_attempts counter and login_attempt_at
	if err := p.repo.Users().TrackSucccessfulLogin(ctx, user); err != nil {
		p.logger.Error("failed to track successful login: %s", err)
	}

	return identityFromUser(user), nil
}

func (p *CredentialProvider) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	user, err := p.repo.Users().GetByIdentifier(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user for password change")
	}

	if err := ComparePasswordAndHash(currentPassword, user.PasswordHash); err != nil {
		return ErrMismatchedHashAndPassword
	}

	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid new password provided")
	}

	return p.repo.Users().ResetPassword(ctx, user.ID, passwordHash, NewFingerprint())
}

// GenerateResetSecret mints an opaque secret for a single-use reset ticket.
// Only the secret's digest is persisted.
func (p *CredentialProvider) GenerateResetSecret(ctx context.Context, id string) (string, error) {
	user, err := p.repo.Users().GetByIdentifier(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", ErrIdentityNotFound
		}
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user for reset secret")
	}

	secret, err := newResetSecret()
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate reset secret")
	}

	reset := &PasswordReset{
		UserID:       &user.ID,
		Email:        user.Email,
		SecretDigest: digestSecret(secret),
		Status:       ResetRequestedStatus,
	}

	err = p.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := p.repo.PasswordResets().CreateTx(ctx, tx, reset)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to create password reset record")
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return secret, nil
}

// ConsumeResetSecret validates the secret against its stored digest, applies
// the new password, rotates the fingerprint, and marks the ticket consumed.
// Everything happens in one transaction.
func (p *CredentialProvider) ConsumeResetSecret(ctx context.Context, id, secret, newPassword string) error {
	user, err := p.repo.Users().GetByIdentifier(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user for reset")
	}

	digest := digestSecret(secret)

	return p.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		reset := &PasswordReset{}
		err := tx.NewSelect().Model(reset).
			Where("?TableAlias.user_id = ?", user.ID).
			Where("?TableAlias.deleted_at IS NULL").
			Order("created_at DESC").
			Limit(1).
			Scan(ctx)
		if err != nil {
			return ErrResetTokenInvalid
		}

		if subtle.ConstantTimeCompare([]byte(reset.SecretDigest), []byte(digest)) != 1 {
			return ErrResetTokenInvalid
		}

		//make sure it was not used
		if reset.Status != ResetRequestedStatus {
			return ErrResetTokenUsed
		}

		if reset.CreatedAt == nil {
			return errors.New("password reset record is missing creation date", errors.CategoryInternal)
		}

		expired, err := IsOutsideThresholdPeriod(*reset.CreatedAt, ResetSecretWindow)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to check token expiration period")
		}

		if expired {
			r := &PasswordReset{}
			r.ID = reset.ID
			r.Status = ResetExpiredStatus
			if _, err := p.repo.PasswordResets().UpdateTx(ctx, tx, r); err != nil {
				p.logger.Error("failed to expire password reset record: %s", err)
			}
			return ErrResetTokenExpired
		}

		passwordHash, err := HashPassword(newPassword)
		if err != nil {
			return errors.Wrap(err, errors.CategoryValidation, "invalid new password provided")
		}

		if err := p.repo.Users().ResetPasswordTx(ctx, tx, user.ID, passwordHash, NewFingerprint()); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to update user password in database")
		}

		if _, err := p.repo.PasswordResets().UpdateTx(ctx, tx, MarkPasswordAsReseted(reset.ID)); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to update password reset status")
		}

		return nil
	})
}

func (p *CredentialProvider) GetClaims(ctx context.Context, id string) (map[string]string, error) {
	uid, err := p.resolveUserID(ctx, id)
	if err != nil {
		return nil, err
	}

	records := []*UserClaim{}
	err = p.db.NewSelect().Model(&records).
		Where("?TableAlias.user_id = ?", uid).
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user claims")
	}

	claims := make(map[string]string, len(records))
	for _, record := range records {
		claims[record.Name] = record.Value
	}
	return claims, nil
}

func (p *CredentialProvider) AddClaim(ctx context.Context, id, name, value string) error {
	uid, err := p.resolveUserID(ctx, id)
	if err != nil {
		return err
	}

	return p.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := &UserClaim{}
		err := tx.NewSelect().Model(existing).
			Where("?TableAlias.user_id = ?", uid).
			Where("?TableAlias.name = ?", name).
			Limit(1).
			Scan(ctx)
		if err == nil {
			existing.Value = value
			if _, err := p.repo.UserClaims().UpdateTx(ctx, tx, existing); err != nil {
				return errors.Wrap(err, errors.CategoryInternal, "failed to update user claim")
			}
			return nil
		}

		record := &UserClaim{
			UserID: uid,
			Name:   name,
			Value:  value,
		}
		if _, err := p.repo.UserClaims().CreateTx(ctx, tx, record); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to create user claim")
		}
		return nil
	})
}

func (p *CredentialProvider) GetRoles(ctx context.Context, id string) ([]string, error) {
	uid, err := p.resolveUserID(ctx, id)
	if err != nil {
		return nil, err
	}

	records := []*RoleAssignment{}
	err = p.db.NewSelect().Model(&records).
		Where("?TableAlias.user_id = ?", uid).
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user roles")
	}

	roles := make([]string, 0, len(records))
	for _, record := range records {
		roles = append(roles, record.Role)
	}
	return roles, nil
}

// resolveUserID confirms the record still exists before returning its id. A
// parseable UUID is not enough: the row may have been deleted between the
// caller resolving the identity and this lookup.
func (p *CredentialProvider) resolveUserID(ctx context.Context, id string) (uuid.UUID, error) {
	user, err := p.repo.Users().GetByIdentifier(ctx, id, ActiveUsers)
	if err != nil {
		if errors.IsNotFound(err) {
			return uuid.Nil, ErrIdentityNotFound
		}
		return uuid.Nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve user")
	}
	return user.ID, nil
}

type authIdentity struct {
	id          string
	username    string
	email       string
	fingerprint string
}

func (a authIdentity) ID() string {
	return a.id
}

func (a authIdentity) Username() string {
	return a.username
}

func (a authIdentity) Email() string {
	return a.email
}

func (a authIdentity) Fingerprint() string {
	return a.fingerprint
}

var _ Identity = authIdentity{}

func identityFromUser(user *User) authIdentity {
	return authIdentity{
		id:          user.ID.String(),
		email:       user.Email,
		username:    user.Username,
		fingerprint: user.SecurityStamp,
	}
}

func newResetSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func digestSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
