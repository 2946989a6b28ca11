package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// OAuthConfig is the external identity provider. Leaving ClientID empty
// disables the oauth routes entirely.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	IssuerURL    string `env:"ISSUER_URL"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/v1/oauth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
}

// Enabled reports whether an external provider is configured.
func (c OAuthConfig) Enabled() bool { return c.ClientID != "" }

type Config struct {
	// SecretKey signs every credential; rotating it invalidates them all.
	// Must be at least 32 bytes.
	SecretKey string `env:"AUTH_SECRET_KEY"`

	Issuer   string        `env:"AUTH_ISSUER"    envDefault:"fieldbook-auth"`
	TokenTTL time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"1h"`

	CookieName   string `env:"AUTH_COOKIE_NAME"   envDefault:"session_token"`
	CookieSecure bool   `env:"AUTH_COOKIE_SECURE" envDefault:"true"`

	// FrontendCallbackURL is where the oauth callback sends the browser on
	// success; empty means the callback answers with JSON.
	FrontendCallbackURL string `env:"FRONTEND_CALLBACK_URL"`

	DatabaseFile string `env:"AUTH_DATABASE_FILE" envDefault:"fieldbook.db"`

	// RedisAddr selects the shared revocation backend. Empty means the
	// in-process store, which is only correct for a single instance.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"15m"`

	Env       string `env:"ENV"        envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Port                int           `env:"PORT"                  envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	OAuth OAuthConfig `envPrefix:"OAUTH_"`
}

// LoadConfig reads configuration from the environment, with an optional
// .env file for development.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.SecretKey == "" {
		return Config{}, errors.New("AUTH_SECRET_KEY is required")
	}

	return cfg, nil
}
