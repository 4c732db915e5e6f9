package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	UserClaims() repository.Repository[*UserClaim]
	UserRoles() repository.Repository[*RoleAssignment]
	PasswordResets() repository.Repository[*PasswordReset]
}

func NewPasswordResetsRepository(db *bun.DB) repository.Repository[*PasswordReset] {
	handlers := repository.ModelHandlers[*PasswordReset]{
		NewRecord: func() *PasswordReset {
			return &PasswordReset{}
		},
		GetID: func(record *PasswordReset) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *PasswordReset, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "email"
		},
	}
	return repository.NewRepository(db, handlers)
}

func NewUserClaimsRepository(db *bun.DB) repository.Repository[*UserClaim] {
	handlers := repository.ModelHandlers[*UserClaim]{
		NewRecord: func() *UserClaim {
			return &UserClaim{}
		},
		GetID: func(record *UserClaim) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *UserClaim, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
	}
	return repository.NewRepository(db, handlers)
}

func NewUserRolesRepository(db *bun.DB) repository.Repository[*RoleAssignment] {
	handlers := repository.ModelHandlers[*RoleAssignment]{
		NewRecord: func() *RoleAssignment {
			return &RoleAssignment{}
		},
		GetID: func(record *RoleAssignment) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *RoleAssignment, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "role"
		},
	}
	return repository.NewRepository(db, handlers)
}

type mngr struct {
	db             *bun.DB
	users          Users
	userClaims     repository.Repository[*UserClaim]
	userRoles      repository.Repository[*RoleAssignment]
	passwordResets repository.Repository[*PasswordReset]
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:             db,
		users:          NewUsersRepository(db),
		userClaims:     NewUserClaimsRepository(db),
		userRoles:      NewUserRolesRepository(db),
		passwordResets: NewPasswordResetsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.userClaims == nil {
		return errors.New("repository userClaims should be initialized")
	}

	if m.userRoles == nil {
		return errors.New("repository userRoles should be initialized")
	}

	if m.passwordResets == nil {
		return errors.New("repository passwordResets should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) UserClaims() repository.Repository[*UserClaim] {
	return m.userClaims
}

func (m mngr) UserRoles() repository.Repository[*RoleAssignment] {
	return m.userRoles
}

func (m mngr) PasswordResets() repository.Repository[*PasswordReset] {
	return m.passwordResets
}
