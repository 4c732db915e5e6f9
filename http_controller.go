package auth

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RegisterAuthRoutes mounts the account API. Admin routes require the
// elevated claim in the presented token's snapshot.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	protected := controller.HTTP.ProtectedRoute(nil)
	admin := controller.HTTP.AdminRoute(nil)

	app.Post("/account/register", controller.RegistrationCreate).
		SetName("account.register")
	app.Post("/account/login", controller.LoginPost).
		SetName("account.login")

	app.Post("/account/forgot-password", controller.ForgotPassword).
		SetName("account.forgot-password")
	app.Post("/account/reset-password", controller.ResetPassword).
		SetName("account.reset-password")

	app.Put("/account/password", protected(controller.ChangePassword)).
		SetName("account.password")

	app.Get("/account/users", admin(controller.ListUsers)).
		SetName("account.users")
	app.Get("/account/users/count", admin(controller.CountUsers)).
		SetName("account.users.count")
	app.Post("/account/do-admin", admin(controller.GrantAdmin)).
		SetName("account.do-admin")
	app.Delete("/account/users/:id", admin(controller.DeleteUser)).
		SetName("account.users.delete")
	app.Delete("/account/users/by-username/:username", admin(controller.DeleteUserByUsername)).
		SetName("account.users.delete-by-username")
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Auther       Authenticator
	HTTP         HTTPAuthenticator
	ErrorHandler router.ErrorHandler
	// ResetBaseURL is the page reset links point at; the emailed link carries
	// the email and encoded token as query parameters.
	ResetBaseURL string
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerHTTP(http HTTPAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.HTTP = http
		return c
	}
}

func WithControllerResetBaseURL(url string) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.ResetBaseURL = url
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ResetBaseURL: "/reset-password",
	}
	c.ErrorHandler = c.respondError

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.HTTP == nil {
		panic("Missing HTTPAuthenticator in auth controller...")
	}

	return c
}

// TokenResponse is the issuance payload returned by login and register.
type TokenResponse struct {
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, err)
	}

	if a.Debug {
		a.Logger.Debug("login payload", "payload", print.MaybePrettyJSON(payload))
	}

	token, expiration, err := a.Auther.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("login error", "error", err)
		// same body for wrong password and unknown account
		return ctx.JSON(router.StatusUnauthorized, map[string]any{
			"error": "invalid credentials",
		})
	}

	return ctx.JSON(router.StatusOK, TokenResponse{
		Token:      token,
		Expiration: expiration,
	})
}

// RegistrationCreatePayload is the registration payload
type RegistrationCreatePayload struct {
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	Phone           string `form:"phone_number" json:"phone_number"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.Length(10, 15)),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(10, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register user parse payload", "error", err)
		return a.badRequest(ctx, "failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register user validate payload", "error", err)
		return a.validationFailed(ctx, err)
	}

	token, expiration, err := a.Auther.Register(ctx.Context(), RegisterUserMessage{
		Username: payload.Username,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Password: payload.Password,
	})
	if err != nil {
		a.Logger.Error("register user error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, TokenResponse{
		Token:      token,
		Expiration: expiration,
	})
}

// ForgotPasswordPayload holds values for the reset request phase
type ForgotPasswordPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) ForgotPassword(ctx router.Context) error {
	payload := new(ForgotPasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, err)
	}

	if err := a.Auther.ForgotPassword(ctx.Context(), payload.Email, a.ResetBaseURL); err != nil {
		a.Logger.Error("forgot password error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	// identical response whether or not the account exists
	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "if the account exists, a reset email is on its way",
	})
}

// ResetPasswordPayload holds values for the reset consume phase
type ResetPasswordPayload struct {
	Email    string `form:"email" json:"email"`
	Token    string `form:"token" json:"token"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
	)
}

func (a *AuthController) ResetPassword(ctx router.Context) error {
	payload := new(ResetPasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, err)
	}

	if err := a.Auther.ResetPassword(ctx.Context(), payload.Email, payload.Token, payload.Password); err != nil {
		a.Logger.Error("reset password error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "password updated",
	})
}

// ChangePasswordPayload holds values for an authenticated password change
type ChangePasswordPayload struct {
	CurrentPassword string `form:"current_password" json:"current_password"`
	NewPassword     string `form:"new_password" json:"new_password"`
}

// Validate will run validation rules
func (r ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(10, 100)),
	)
}

func (a *AuthController) ChangePassword(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, "")
	if !ok {
		return ctx.JSON(router.StatusUnauthorized, map[string]any{
			"error": "invalid or expired token",
		})
	}

	payload := new(ChangePasswordPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, err)
	}

	if err := a.Auther.ChangePassword(ctx.Context(), claims.UserID(), payload.CurrentPassword, payload.NewPassword); err != nil {
		a.Logger.Error("change password error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "password updated",
	})
}

// UserResponse is the public projection of a user record.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (a *AuthController) ListUsers(ctx router.Context) error {
	records, err := a.Repo.Users().All(ctx.Context())
	if err != nil {
		a.Logger.Error("list users error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	users := make([]UserResponse, 0, len(records))
	for _, record := range records {
		users = append(users, UserResponse{
			ID:       record.ID.String(),
			Username: record.Username,
			Email:    record.Email,
		})
	}

	return ctx.JSON(router.StatusOK, users)
}

func (a *AuthController) CountUsers(ctx router.Context) error {
	count, err := a.Repo.Users().CountAll(ctx.Context())
	if err != nil {
		a.Logger.Error("count users error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"count": count,
	})
}

// GrantAdminPayload identifies the user receiving the elevated claim
type GrantAdminPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r GrantAdminPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) GrantAdmin(ctx router.Context) error {
	payload := new(GrantAdminPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, err)
	}

	if err := a.Auther.GrantAdmin(ctx.Context(), payload.Email); err != nil {
		a.Logger.Error("grant admin error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "admin claim granted",
	})
}

func (a *AuthController) DeleteUser(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return a.badRequest(ctx, "invalid user id")
	}

	if err := a.Repo.Users().SoftDelete(ctx.Context(), id); err != nil {
		a.Logger.Error("delete user error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "user deleted",
	})
}

func (a *AuthController) DeleteUserByUsername(ctx router.Context) error {
	username := ctx.Param("username")
	if username == "" {
		return a.badRequest(ctx, "missing username")
	}

	user, err := a.Repo.Users().GetByIdentifier(ctx.Context(), username)
	if err != nil {
		a.Logger.Error("delete user lookup error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	if err := a.Repo.Users().SoftDelete(ctx.Context(), user.ID); err != nil {
		a.Logger.Error("delete user error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "user deleted",
	})
}

func (a *AuthController) badRequest(ctx router.Context, message string) error {
	return ctx.JSON(router.StatusBadRequest, map[string]any{
		"error": message,
	})
}

func (a *AuthController) validationFailed(ctx router.Context, err error) error {
	return ctx.JSON(router.StatusBadRequest, map[string]any{
		"error":      "validation failed",
		"validation": FormatValidationErrorToMap(err),
	})
}

// respondError maps rich error categories to response codes. Authentication
// categories collapse into a generic body.
func (a *AuthController) respondError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	switch richErr.Category {
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ctx.JSON(router.StatusUnauthorized, map[string]any{
			"error": "invalid or expired token",
		})
	case goerrors.CategoryNotFound:
		return ctx.JSON(router.StatusNotFound, map[string]any{
			"error": richErr.Message,
		})
	case goerrors.CategoryConflict:
		return ctx.JSON(router.StatusConflict, map[string]any{
			"error": richErr.Message,
		})
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error": richErr.Message,
		})
	case goerrors.CategoryRateLimit:
		return ctx.JSON(router.StatusTooManyRequests, map[string]any{
			"error": richErr.Message,
		})
	default:
		a.Logger.Error("unexpected controller error", "error", richErr)
		return ctx.JSON(router.StatusInternalServerError, map[string]any{
			"error": "internal server error",
		})
	}
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field → message map for JSON responses.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}
	if err != nil {
		out["payload"] = err.Error()
	}
	return out
}
