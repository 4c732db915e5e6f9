package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type FinalizePasswordResetMesasge struct {
	Email    string `json:"email" example:"pepe.rone@example.com" doc:"Customer email."`
	Token    string `json:"token" example:"c29tZV9zZWNyZXQ" doc:"Reset password token from the emailed link"`
	Password string `json:"password" example:"some_secret_word" doc:"Password"`
}

func (e FinalizePasswordResetMesasge) Type() string { return "user.password_reset_finalize" }

type FinalizePasswordResetHandler struct {
	store    CredentialStore
	activity ActivitySink
	logger   Logger
}

// NewFinalizePasswordResetHandler creates a handler with sane defaults.
func NewFinalizePasswordResetHandler(store CredentialStore) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{
		store:    store,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit password reset events.
func (h *FinalizePasswordResetHandler) WithActivitySink(sink ActivitySink) *FinalizePasswordResetHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *FinalizePasswordResetHandler) WithLogger(logger Logger) *FinalizePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMesasge) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMesasge) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	// Unknown emails fail loudly here, unlike initialization. Whoever holds a
	// reset link already knows the account exists.
	identity, err := h.store.FindByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve user for password reset")
	}

	secret, err := DecodeResetToken(event.Token)
	if err != nil {
		return err
	}

	if err := h.store.ConsumeResetSecret(ctx, identity.ID(), secret, event.Password); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to finalize password reset")
	}

	h.recordActivity(ctx, identity)

	return nil
}

func (h *FinalizePasswordResetHandler) recordActivity(ctx context.Context, identity Identity) {
	event := ActivityEvent{
		EventType: ActivityEventPasswordResetSuccess,
		Actor: ActorRef{
			ID:    identity.ID(),
			Email: identity.Email(),
		},
		UserID:     identity.ID(),
		OccurredAt: time.Now(),
	}
	_ = h.activity.Record(ctx, event)
}
