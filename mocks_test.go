package auth_test

import (
	"context"
	"time"

	auth "github.com/Isra8Rubio/CocktailDockerizado"
	"github.com/stretchr/testify/mock"
)

// MockLogger implements auth.Logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// NoopLogger swallows everything; used where log output is irrelevant.
type NoopLogger struct{}

func (NoopLogger) Debug(format string, args ...any) {}
func (NoopLogger) Info(format string, args ...any)  {}
func (NoopLogger) Warn(format string, args ...any)  {}
func (NoopLogger) Error(format string, args ...any) {}

// testIdentity implements auth.Identity
type testIdentity struct {
	id          string
	username    string
	email       string
	fingerprint string
}

func (t testIdentity) ID() string          { return t.id }
func (t testIdentity) Username() string    { return t.username }
func (t testIdentity) Email() string       { return t.email }
func (t testIdentity) Fingerprint() string { return t.fingerprint }

// MockCredentialStore implements auth.CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) FindByEmail(ctx context.Context, email string) (auth.Identity, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(auth.Identity), args.Error(1)
}

func (m *MockCredentialStore) FindByID(ctx context.Context, id string) (auth.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(auth.Identity), args.Error(1)
}

func (m *MockCredentialStore) VerifyPassword(ctx context.Context, identifier, password string) (auth.Identity, error) {
	args := m.Called(ctx, identifier, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(auth.Identity), args.Error(1)
}

func (m *MockCredentialStore) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	args := m.Called(ctx, id, currentPassword, newPassword)
	return args.Error(0)
}

func (m *MockCredentialStore) GenerateResetSecret(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockCredentialStore) ConsumeResetSecret(ctx context.Context, id, secret, newPassword string) error {
	args := m.Called(ctx, id, secret, newPassword)
	return args.Error(0)
}

func (m *MockCredentialStore) GetClaims(ctx context.Context, id string) (map[string]string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockCredentialStore) AddClaim(ctx context.Context, id, name, value string) error {
	args := m.Called(ctx, id, name, value)
	return args.Error(0)
}

func (m *MockCredentialStore) GetRoles(ctx context.Context, id string) ([]string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockMailer implements auth.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Error(0)
}

// testConfig implements auth.Config
type testConfig struct {
	signingKey      string
	tokenExpiration time.Duration
	issuer          string
	audience        []string
}

func (c testConfig) GetSigningKey() string             { return c.signingKey }
func (c testConfig) GetSigningMethod() string          { return "HS256" }
func (c testConfig) GetContextKey() string             { return "user" }
func (c testConfig) GetTokenExpiration() time.Duration { return c.tokenExpiration }
func (c testConfig) GetTokenLookup() string            { return "header:Authorization" }
func (c testConfig) GetAuthScheme() string             { return "Bearer" }
func (c testConfig) GetIssuer() string                 { return c.issuer }
func (c testConfig) GetAudience() []string             { return c.audience }

func newTestConfig() testConfig {
	return testConfig{
		signingKey:      "test-signing-key",
		tokenExpiration: 30 * time.Minute,
		issuer:          "test-issuer",
		audience:        []string{"test-audience"},
	}
}
