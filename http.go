package auth

import (
	"context"

	"github.com/Isra8Rubio/CocktailDockerizado/middleware/jwtware"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteAuthenticator exposes the authenticator as route middleware. Rejection
// responses are deliberately generic: the specific stage a token failed at
// (signature, expiry, fingerprint) stays in the logs, never on the wire.
type RouteAuthenticator struct {
	auth             Authenticator
	cfg              Config
	Logger           Logger
	AuthErrorHandler func(c router.Context, err error) error
	ErrorHandler     func(c router.Context, err error) error
}

var _ HTTPAuthenticator = (*RouteAuthenticator)(nil)

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	a := &RouteAuthenticator{
		cfg:    cfg,
		auth:   auther,
		Logger: defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler
	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// ProtectedRoute authenticates every request, including the live fingerprint
// check against the credential store.
func (a *RouteAuthenticator) ProtectedRoute(errorHandler router.ErrorHandler) router.MiddlewareFunc {
	return a.middleware(false, errorHandler)
}

// AdminRoute authenticates the request and additionally requires the elevated
// claim in the token's issuance snapshot.
func (a *RouteAuthenticator) AdminRoute(errorHandler router.ErrorHandler) router.MiddlewareFunc {
	return a.middleware(true, errorHandler)
}

func (a *RouteAuthenticator) middleware(requireAdmin bool, errorHandler router.ErrorHandler) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = a.AuthErrorHandler
	}

	return jwtware.New(jwtware.Config{
		ErrorHandler:    errorHandler,
		AuthScheme:      a.cfg.GetAuthScheme(),
		ContextKey:      a.cfg.GetContextKey(),
		TokenLookup:     a.cfg.GetTokenLookup(),
		RequireAdmin:    requireAdmin,
		TokenValidator:  jwtwareValidator{auth: a.auth},
		ContextEnricher: ContextEnricherAdapter,
	})
}

// Login authenticates the payload and returns the minted token.
func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginPayload) (string, error) {
	token, _, err := a.auth.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error", "error", err)
		return "", err
	}

	return token, nil
}

func (a *RouteAuthenticator) defaultAuthErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "An unexpected authentication error").
			WithCode(errors.CodeUnauthorized)
	}

	a.Logger.Info(
		"Authentication rejection",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", c.OriginalURL(),
	)

	// generic body regardless of rejection reason
	return c.JSON(router.StatusUnauthorized, map[string]any{
		"error": "invalid or expired token",
	})
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"Middleware error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return a.AuthErrorHandler(c, richErr)
	default:
		return c.JSON(richErr.Code, map[string]any{
			"error": "internal server error",
		})
	}
}

// jwtwareValidator bridges the authenticator into the middleware package
// without an import cycle.
type jwtwareValidator struct {
	auth Authenticator
}

func (v jwtwareValidator) Validate(ctx context.Context, tokenString string) (jwtware.AuthClaims, error) {
	claims, err := v.auth.ValidateBearer(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
