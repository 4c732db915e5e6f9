package catalog_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	auth "github.com/Isra8Rubio/CocktailDockerizado"
	"github.com/Isra8Rubio/CocktailDockerizado/catalog"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routesConfig struct{}

func (routesConfig) GetSigningKey() string             { return "test-signing-key" }
func (routesConfig) GetSigningMethod() string          { return "HS256" }
func (routesConfig) GetContextKey() string             { return "user" }
func (routesConfig) GetTokenExpiration() time.Duration { return 30 * time.Minute }
func (routesConfig) GetTokenLookup() string            { return "header:Authorization" }
func (routesConfig) GetAuthScheme() string             { return "Bearer" }
func (routesConfig) GetIssuer() string                 { return "test-issuer" }
func (routesConfig) GetAudience() []string             { return []string{"test-audience"} }

// staticAuther resolves a fixed set of bearer tokens so route tests can
// exercise the middleware chain without a credential store.
type staticAuther struct {
	tokens map[string]auth.AuthClaims
}

func (s staticAuther) ValidateBearer(_ context.Context, token string) (auth.AuthClaims, error) {
	if claims, ok := s.tokens[token]; ok {
		return claims, nil
	}
	return nil, errors.New("invalid or expired token")
}

func (s staticAuther) Register(context.Context, auth.RegisterUserMessage) (string, time.Time, error) {
	return "", time.Time{}, errors.New("not supported")
}

func (s staticAuther) Login(context.Context, string, string) (string, time.Time, error) {
	return "", time.Time{}, errors.New("not supported")
}

func (s staticAuther) BuildTokenFor(context.Context, auth.Identity) (string, time.Time, error) {
	return "", time.Time{}, errors.New("not supported")
}

func (s staticAuther) ForgotPassword(context.Context, string, string) error {
	return errors.New("not supported")
}

func (s staticAuther) ResetPassword(context.Context, string, string, string) error {
	return errors.New("not supported")
}

func (s staticAuther) GrantAdmin(context.Context, string) error {
	return errors.New("not supported")
}

func (s staticAuther) ChangePassword(context.Context, string, string, string) error {
	return errors.New("not supported")
}

func memberClaims() auth.AuthClaims {
	return &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "11111111-1111-1111-1111-111111111111"},
		UserEmail:        "pepe.rone@example.com",
		Stamp:            "stamp-1",
	}
}

func adminClaims() auth.AuthClaims {
	return &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "22222222-2222-2222-2222-222222222222"},
		UserEmail:        "boss@example.com",
		Stamp:            "stamp-2",
		Extra:            map[string]string{auth.AdminClaim: auth.ClaimValueTrue},
	}
}

func TestRegisterRoutes_RequiresAuthentication(t *testing.T) {
	upstream := newFakeUpstream(t)

	auther := staticAuther{tokens: map[string]auth.AuthClaims{
		"member-token": memberClaims(),
		"admin-token":  adminClaims(),
	}}

	httpAuth, err := auth.NewHTTPAuthenticator(auther, routesConfig{})
	require.NoError(t, err)

	client := catalog.NewClient(upstream.URL)
	controller := catalog.NewController(client, nil, nil)

	srv := router.NewFiberAdapter()
	catalog.RegisterRoutes(srv.Router(), controller, httpAuth.ProtectedRoute(nil), httpAuth.AdminRoute(nil))
	app := srv.WrappedRouter()

	t.Run("browse without a token is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/cocktails/categories", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("cached random row without a token is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/cocktails/random/row", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("browse with an unknown token is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/cocktails/categories", nil)
		req.Header.Set("Authorization", "Bearer bogus-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("browse with a valid token succeeds", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/cocktails/categories", nil)
		req.Header.Set("Authorization", "Bearer member-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		assert.Contains(t, string(body), "Ordinary Drink")
	})

	t.Run("refresh rejects tokens without the elevated claim", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/cocktails/random/refresh-now", nil)
		req.Header.Set("Authorization", "Bearer member-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("refresh rejects requests without a token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/cocktails/random/refresh-now", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
