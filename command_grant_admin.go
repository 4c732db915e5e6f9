package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type GrantAdminMessage struct {
	Email string `json:"email" example:"pepe.rone@example.com" doc:"Email of the user receiving the elevated claim."`
}

func (e GrantAdminMessage) Type() string { return "user.grant_admin" }

// GrantAdminHandler writes the elevated claim for a user. The claim only
// reaches tokens issued after the grant; already issued tokens keep the
// snapshot they were minted with.
type GrantAdminHandler struct {
	store    CredentialStore
	activity ActivitySink
	logger   Logger
}

// NewGrantAdminHandler creates a handler with sane defaults.
func NewGrantAdminHandler(store CredentialStore) *GrantAdminHandler {
	return &GrantAdminHandler{
		store:    store,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit grant events.
func (h *GrantAdminHandler) WithActivitySink(sink ActivitySink) *GrantAdminHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *GrantAdminHandler) WithLogger(logger Logger) *GrantAdminHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *GrantAdminHandler) Execute(ctx context.Context, event GrantAdminMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during admin grant",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *GrantAdminHandler) execute(ctx context.Context, event GrantAdminMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	identity, err := h.store.FindByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve user for admin grant")
	}

	claims, err := h.store.GetClaims(ctx, identity.ID())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve user claims")
	}

	if claims[AdminClaim] == ClaimValueTrue {
		return ErrAdminAlreadyGranted
	}

	if err := h.store.AddClaim(ctx, identity.ID(), AdminClaim, ClaimValueTrue); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not store admin claim")
	}

	h.recordActivity(ctx, identity)

	return nil
}

func (h *GrantAdminHandler) recordActivity(ctx context.Context, identity Identity) {
	event := ActivityEvent{
		EventType: ActivityEventAdminGranted,
		Actor: ActorRef{
			ID:    identity.ID(),
			Email: identity.Email(),
		},
		UserID:     identity.ID(),
		OccurredAt: time.Now(),
	}
	_ = h.activity.Record(ctx, event)
}
