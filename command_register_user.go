package auth

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Username   string            `json:"username"`
	Email      string            `json:"email"`
	Phone      string            `json:"phone"`
	Password   string            `json:"password"`
	Claims     map[string]string `json:"claims"`
	UseHashid  bool
	OnResponse func(user *User)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

type RegisterUserHandler struct {
	repo     RepositoryManager
	activity ActivitySink
}

// NewRegisterUserHandler creates a handler with sane defaults.
func NewRegisterUserHandler(repo RepositoryManager) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:     repo,
		activity: noopActivitySink{},
	}
}

// WithActivitySink sets the sink used to emit registration events.
func (h *RegisterUserHandler) WithActivitySink(sink ActivitySink) *RegisterUserHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = event.Email
		user.Phone = normalizePhone(event.Phone)
		user.Username = getUsername(event.Username, event.Email)
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		role := &RoleAssignment{
			UserID: user.ID,
			Role:   RoleMember,
		}
		if _, err := h.repo.UserRoles().CreateTx(ctx, tx, role); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not assign default role")
		}

		for name, value := range event.Claims {
			claim := &UserClaim{
				UserID: user.ID,
				Name:   name,
				Value:  value,
			}
			if _, err := h.repo.UserClaims().CreateTx(ctx, tx, claim); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "could not store user claim")
			}
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	h.recordActivity(ctx, user)

	if event.OnResponse != nil {
		event.OnResponse(user)
	}

	return nil
}

func (h *RegisterUserHandler) recordActivity(ctx context.Context, user *User) {
	event := ActivityEvent{
		EventType: ActivityEventUserRegistered,
		Actor: ActorRef{
			ID:    user.ID.String(),
			Email: user.Email,
		},
		UserID:     user.ID.String(),
		OccurredAt: time.Now(),
	}
	_ = h.activity.Record(ctx, event)
}

func getUsername(username, email string) string {
	if username != "" {
		return username
	}

	if strings.Contains(email, "@") {
		username = strings.Split(email, "@")[0]
	}

	return username
}

func normalizePhone(phone string) string {
	if phone == "" {
		return ""
	}

	num, err := phonenumbers.Parse(phone, "US")
	if err != nil {
		return phone
	}

	return phonenumbers.Format(num, phonenumbers.E164)
}
