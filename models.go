package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Role names recognized by the system. RoleAdmin membership is projected into
// the elevated claim at token issuance time.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string    `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string    `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone         string    `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash  string    `bun:"password_hash" json:"password_hash,omitempty"`
	// SecurityStamp is the revocation fingerprint. It is rotated in the same
	// statement that changes the password hash so no token validated after a
	// completed change can observe the old value.
	SecurityStamp  string     `bun:"security_stamp,notnull" json:"security_stamp,omitempty"`
	LoginAttempts  int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// UserClaim is a key/value claim attached to a user. Claims are copied into
// tokens at issuance; they are never read live during validation.
type UserClaim struct {
	bun.BaseModel `bun:"table:user_claims,alias:uclm"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull" json:"user_id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Value         string     `bun:"value,notnull" json:"value,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// RoleAssignment is a role-name membership row for a user.
type RoleAssignment struct {
	bun.BaseModel `bun:"table:user_roles,alias:urol"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull" json:"user_id,omitempty"`
	Role          string     `bun:"role,notnull" json:"role,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

const (
	// ResetRequestedStatus marks a reset ticket that can still be consumed.
	ResetRequestedStatus = "requested"
	// ResetChangedStatus marks a consumed ticket. Consumption is one way.
	ResetChangedStatus = "changed"
	// ResetExpiredStatus marks a ticket rejected for being outside its window.
	ResetExpiredStatus = "expired"
)

// ResetSecretWindow is how long a reset secret stays consumable.
const ResetSecretWindow = "24h"

// PasswordReset is a single-use reset ticket. The opaque secret itself never
// hits the database; only its digest does.
type PasswordReset struct {
	bun.BaseModel `bun:"table:password_resets,alias:pwdr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        *uuid.UUID `bun:"user_id,notnull" json:"user_id,omitempty"`
	User          *User      `bun:"rel:has-one,join:user_id=id" json:"user,omitempty"`
	Email         string     `bun:"email,notnull" json:"email,omitempty"`
	SecretDigest  string     `bun:"secret_digest,notnull" json:"secret_digest,omitempty"`
	Status        string     `bun:"status,notnull" json:"status,omitempty"`
	ResetedAt     *time.Time `bun:"reseted_at,nullzero" json:"reseted_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// MarkPasswordAsReseted will create an update record flipping a ticket to the
// consumed state.
func MarkPasswordAsReseted(id uuid.UUID) *PasswordReset {
	r := &PasswordReset{}
	r.ID = id
	r.Status = ResetChangedStatus
	n := time.Now()
	r.ResetedAt = &n
	return r
}
