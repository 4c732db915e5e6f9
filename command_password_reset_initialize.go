package auth

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type InitializePasswordResetMessage struct {
	Email         string `json:"email" example:"pepe.rone@example.com" doc:"Customer email."`
	ReturnBaseURL string `json:"return_base_url" example:"https://app.example.com/reset" doc:"Base URL the reset link points at."`
	OnResponse    func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetResponse struct {
	ResetLink string
	Success   bool
}

// InitializePasswordResetHandler mints a single-use reset secret and mails the
// reset link. Unknown emails complete without error so callers cannot probe
// which addresses have accounts.
type InitializePasswordResetHandler struct {
	store    CredentialStore
	mailer   Mailer
	renderer EmailRenderer
	activity ActivitySink
	logger   Logger
}

// NewInitializePasswordResetHandler creates a handler with sane defaults.
func NewInitializePasswordResetHandler(store CredentialStore, mailer Mailer) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		store:    store,
		mailer:   mailer,
		renderer: defaultEmailRenderer{},
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit password reset events.
func (h *InitializePasswordResetHandler) WithActivitySink(sink ActivitySink) *InitializePasswordResetHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithRenderer overrides the template renderer used for the reset email.
func (h *InitializePasswordResetHandler) WithRenderer(renderer EmailRenderer) *InitializePasswordResetHandler {
	if renderer != nil {
		h.renderer = renderer
	}
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	identity, err := h.store.FindByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			// Report success for unknown accounts. The response carries no
			// link so the caller's view is identical either way.
			h.logger.Debug("password reset requested for unknown email")
			h.respond(event, &InitializePasswordResetResponse{Success: true})
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	secret, err := h.store.GenerateResetSecret(ctx, identity.ID())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create password reset record")
	}

	link := BuildResetLink(event.ReturnBaseURL, identity.Email(), secret)

	body, err := h.renderer.RenderPasswordReset(identity.Username(), link)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to render password reset email")
	}

	if err := h.mailer.Send(ctx, identity.Email(), "Reset your password", body); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to deliver password reset email")
	}

	h.recordActivity(ctx, identity)
	h.respond(event, &InitializePasswordResetResponse{
		ResetLink: link,
		Success:   true,
	})

	return nil
}

func (h *InitializePasswordResetHandler) respond(event InitializePasswordResetMessage, resp *InitializePasswordResetResponse) {
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}
}

func (h *InitializePasswordResetHandler) recordActivity(ctx context.Context, identity Identity) {
	event := ActivityEvent{
		EventType: ActivityEventPasswordResetRequest,
		Actor: ActorRef{
			ID:    identity.ID(),
			Email: identity.Email(),
		},
		UserID:     identity.ID(),
		OccurredAt: time.Now(),
	}
	_ = h.activity.Record(ctx, event)
}

// BuildResetLink renders the link users receive by email. The secret travels
// URL-safe base64 encoded and the email is query escaped.
func BuildResetLink(baseURL, email, secret string) string {
	return fmt.Sprintf(
		"%s?email=%s&token=%s",
		baseURL,
		url.QueryEscape(email),
		EncodeResetToken(secret),
	)
}

// EncodeResetToken encodes a reset secret for transport in a URL.
func EncodeResetToken(secret string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(secret))
}

// DecodeResetToken reverses EncodeResetToken.
func DecodeResetToken(token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		// tolerate padded variants produced by other encoders
		raw, err = base64.URLEncoding.DecodeString(token)
		if err != nil {
			return "", ErrResetTokenInvalid
		}
	}
	return string(raw), nil
}
