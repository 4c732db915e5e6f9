package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// serverConfig is the fully resolved runtime configuration. Values come
// from (lowest to highest precedence) built-in defaults, an optional
// config file, and COCKTAIL_* environment variables.
type serverConfig struct {
	HTTPAddr string

	SigningKey      string
	TokenExpiration string
	Issuer          string
	Audience        []string
	ContextKey      string
	TokenLookup     string
	AuthScheme      string

	DSN string

	ResetBaseURL string

	SMTPAddr     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	RefreshSpec string

	Debug bool
}

func (c serverConfig) GetSigningKey() string    { return c.SigningKey }
func (c serverConfig) GetSigningMethod() string { return "HS256" }
func (c serverConfig) GetContextKey() string    { return c.ContextKey }
func (c serverConfig) GetTokenLookup() string   { return c.TokenLookup }
func (c serverConfig) GetAuthScheme() string    { return c.AuthScheme }
func (c serverConfig) GetIssuer() string        { return c.Issuer }
func (c serverConfig) GetAudience() []string    { return c.Audience }

func (c serverConfig) GetTokenExpiration() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiration)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

func loadConfig(cfgFile string) (serverConfig, error) {
	v := viper.New()

	v.SetDefault("server.http_address", ":8572")
	v.SetDefault("auth.token_expiration", "30m")
	v.SetDefault("auth.issuer", "cocktail-api")
	v.SetDefault("auth.audience", []string{"cocktail-api"})
	v.SetDefault("auth.context_key", "user")
	v.SetDefault("auth.token_lookup", "header:Authorization")
	v.SetDefault("auth.auth_scheme", "Bearer")
	v.SetDefault("database.dsn", "file:cocktails.db?cache=shared&mode=rwc")
	v.SetDefault("reset.base_url", "http://localhost:8572/reset-password")
	v.SetDefault("smtp.addr", "")
	v.SetDefault("smtp.from", "no-reply@cocktails.local")
	v.SetDefault("catalog.refresh_spec", "@every 10s")
	v.SetDefault("debug", false)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("cocktails")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/cocktails/")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return serverConfig{}, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return serverConfig{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("COCKTAIL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for env, key := range map[string]string{
		"COCKTAIL_SERVER_HTTP_ADDRESS":   "server.http_address",
		"COCKTAIL_AUTH_SIGNING_KEY":      "auth.signing_key",
		"COCKTAIL_AUTH_TOKEN_EXPIRATION": "auth.token_expiration",
		"COCKTAIL_AUTH_ISSUER":           "auth.issuer",
		"COCKTAIL_DATABASE_DSN":          "database.dsn",
		"COCKTAIL_RESET_BASE_URL":        "reset.base_url",
		"COCKTAIL_SMTP_ADDR":             "smtp.addr",
		"COCKTAIL_SMTP_FROM":             "smtp.from",
		"COCKTAIL_SMTP_USERNAME":         "smtp.username",
		"COCKTAIL_SMTP_PASSWORD":         "smtp.password",
		"COCKTAIL_CATALOG_REFRESH_SPEC":  "catalog.refresh_spec",
		"COCKTAIL_DEBUG":                 "debug",
	} {
		_ = v.BindEnv(key, env)
	}

	cfg := serverConfig{
		HTTPAddr:        v.GetString("server.http_address"),
		SigningKey:      v.GetString("auth.signing_key"),
		TokenExpiration: v.GetString("auth.token_expiration"),
		Issuer:          v.GetString("auth.issuer"),
		Audience:        v.GetStringSlice("auth.audience"),
		ContextKey:      v.GetString("auth.context_key"),
		TokenLookup:     v.GetString("auth.token_lookup"),
		AuthScheme:      v.GetString("auth.auth_scheme"),
		DSN:             v.GetString("database.dsn"),
		ResetBaseURL:    v.GetString("reset.base_url"),
		SMTPAddr:        v.GetString("smtp.addr"),
		SMTPFrom:        v.GetString("smtp.from"),
		SMTPUsername:    v.GetString("smtp.username"),
		SMTPPassword:    v.GetString("smtp.password"),
		RefreshSpec:     v.GetString("catalog.refresh_spec"),
		Debug:           v.GetBool("debug"),
	}

	return cfg, cfg.validate()
}

// validate refuses to start a server that would mint unverifiable tokens.
func (c serverConfig) validate() error {
	if strings.TrimSpace(c.SigningKey) == "" {
		return fmt.Errorf("auth.signing_key is required: set COCKTAIL_AUTH_SIGNING_KEY or add it to the config file")
	}
	if c.TokenExpiration != "" {
		if _, err := time.ParseDuration(c.TokenExpiration); err != nil {
			return fmt.Errorf("auth.token_expiration %q is not a valid duration: %w", c.TokenExpiration, err)
		}
	}
	return nil
}
