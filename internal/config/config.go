// Package config provides configuration types for BookGate.
//
// BookGate is configured from a single YAML file (bookgate.yaml) plus
// environment variable overrides with the BOOKGATE_ prefix. Accounts are
// configuration data, not code: they live inline under auth.accounts or in
// an external YAML file referenced by auth.accounts_file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/book-gate/bookgate/internal/domain/auth"
)

// Config is the top-level configuration for BookGate.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Auth configures token signing and the credential store.
	Auth AuthConfig `yaml:"auth" mapstructure:"auth"`

	// Data configures the dataset flat file.
	Data DataConfig `yaml:"data" mapstructure:"data"`

	// Scraper configures the external scraper command run by
	// POST /api/v1/scraping/trigger.
	Scraper ScraperConfig `yaml:"scraper" mapstructure:"scraper"`

	// RequestLog configures the JSON Lines request log served by
	// GET /api/v1/logs/recent.
	RequestLog RequestLogConfig `yaml:"request_log" mapstructure:"request_log"`

	// RateLimit configures optional per-IP rate limiting.
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`

	// DevMode enables development features: debug logging, stdout trace
	// export, and seeded admin/user accounts when none are configured.
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// HTTPAddr is the address to listen on (e.g. "127.0.0.1:8000", ":8000").
	// Defaults to "127.0.0.1:8000" if empty.
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr" validate:"omitempty,hostname_port"`

	// LogLevel sets the minimum log level: "debug", "info", "warn", "error".
	// Defaults to "info". DevMode=true overrides to "debug".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
}

// AuthConfig configures JWT issuance and the configured accounts.
type AuthConfig struct {
	// SecretKey signs access and refresh tokens (HS256). Required outside
	// dev mode; typically set via BOOKGATE_AUTH_SECRET_KEY.
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`

	// AccessTokenTTL is the access token lifetime (e.g. "30m").
	// Defaults to "30m".
	AccessTokenTTL string `yaml:"access_token_ttl" mapstructure:"access_token_ttl" validate:"omitempty,ttl"`

	// RefreshTokenTTL is the refresh token lifetime (e.g. "168h").
	// Defaults to "168h" (7 days).
	RefreshTokenTTL string `yaml:"refresh_token_ttl" mapstructure:"refresh_token_ttl" validate:"omitempty,ttl"`

	// Accounts are the configured credentials. Password hashes are Argon2id
	// PHC strings (bookgate hash-password) or legacy "sha256:<hex>".
	Accounts []auth.Account `yaml:"accounts" mapstructure:"accounts" validate:"omitempty,dive"`

	// AccountsFile optionally points at an external YAML file holding an
	// "accounts" list in the same shape. Entries are appended to Accounts.
	AccountsFile string `yaml:"accounts_file" mapstructure:"accounts_file"`
}

// DataConfig configures the dataset flat file.
type DataConfig struct {
	// File is the path to the scraped CSV dataset. Defaults to
	// "data/books.csv".
	File string `yaml:"file" mapstructure:"file"`
}

// ScraperConfig configures the external scraper process.
type ScraperConfig struct {
	// Command is the scraper executable. Empty disables the trigger endpoint.
	Command string `yaml:"command" mapstructure:"command"`

	// Args are fixed arguments passed before the per-request max-pages flag.
	Args []string `yaml:"args" mapstructure:"args"`

	// Timeout bounds one scraper run (e.g. "5m"). Defaults to "5m".
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty,ttl"`

	// MaxPages caps the pages a single trigger may request. Defaults to 50.
	MaxPages int `yaml:"max_pages" mapstructure:"max_pages" validate:"omitempty,gte=1"`
}

// RequestLogConfig configures the file-based request log.
type RequestLogConfig struct {
	// Dir is the directory request log files are written to. Empty disables
	// file persistence; the in-memory cache still serves /logs/recent.
	Dir string `yaml:"dir" mapstructure:"dir"`

	// CacheSize is the number of recent records kept in memory (default 1000).
	CacheSize int `yaml:"cache_size" mapstructure:"cache_size" validate:"omitempty,gte=1"`
}

// RateLimitConfig configures per-IP request limiting. Localhost is exempt.
type RateLimitConfig struct {
	// Enabled turns rate limiting on. Default: false.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// MaxRequests is the number of requests allowed per Window per IP.
	// Defaults to 120.
	MaxRequests int `yaml:"max_requests" mapstructure:"max_requests" validate:"omitempty,gte=1"`

	// Window is the rate limit window (e.g. "1m"). Defaults to "1m".
	Window string `yaml:"window" mapstructure:"window" validate:"omitempty,ttl"`
}

// Defaults used when fields are left empty.
const (
	DefaultHTTPAddr        = "127.0.0.1:8000"
	DefaultLogLevel        = "info"
	DefaultAccessTokenTTL  = 30 * time.Minute
	DefaultRefreshTokenTTL = 168 * time.Hour
	DefaultDataFile        = "data/books.csv"
	DefaultScraperTimeout  = 5 * time.Minute
	DefaultScraperMaxPages = 50
	DefaultCacheSize       = 1000
	DefaultRateLimitMax    = 120
	DefaultRateLimitWindow = time.Minute
)

// devSecretKey is used in dev mode when no secret is configured.
const devSecretKey = "bookgate-dev-secret-do-not-use-in-production"

// SetDevDefaults fills in dev-mode conveniences: a signing secret and the
// two seeded accounts (admin/admin123, user/user123) when none are
// configured. Production deployments must configure both explicitly.
func (c *Config) SetDevDefaults() {
	if !c.DevMode {
		return
	}
	if c.Auth.SecretKey == "" {
		c.Auth.SecretKey = devSecretKey
	}
	if len(c.Auth.Accounts) == 0 && c.Auth.AccountsFile == "" {
		c.Auth.Accounts = []auth.Account{
			{Username: "admin", PasswordHash: "sha256:240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9", Role: auth.RoleAdmin},
			{Username: "user", PasswordHash: "sha256:e606e38b0d8c19b24cf0ee3808183162ea7cd63ff7912dbb22b5e803286b4446", Role: auth.RoleUser},
		}
	}
}

// AccessTTL returns the parsed access token lifetime.
func (c *AuthConfig) AccessTTL() time.Duration {
	return parseDurationOr(c.AccessTokenTTL, DefaultAccessTokenTTL)
}

// RefreshTTL returns the parsed refresh token lifetime.
func (c *AuthConfig) RefreshTTL() time.Duration {
	return parseDurationOr(c.RefreshTokenTTL, DefaultRefreshTokenTTL)
}

// ScraperTimeout returns the parsed scraper run timeout.
func (c *ScraperConfig) ScraperTimeout() time.Duration {
	return parseDurationOr(c.Timeout, DefaultScraperTimeout)
}

// RateLimitWindow returns the parsed rate limit window.
func (c *RateLimitConfig) RateLimitWindow() time.Duration {
	return parseDurationOr(c.Window, DefaultRateLimitWindow)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// accountsFile is the shape of an external accounts YAML file.
type accountsFile struct {
	Accounts []auth.Account `yaml:"accounts"`
}

// LoadAccountsFile reads and appends accounts from auth.accounts_file.
// Called after Validate; a missing or malformed file is a startup error.
func (c *Config) LoadAccountsFile() error {
	if c.Auth.AccountsFile == "" {
		return nil
	}
	data, err := os.ReadFile(c.Auth.AccountsFile)
	if err != nil {
		return fmt.Errorf("read accounts file: %w", err)
	}
	var f accountsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse accounts file %s: %w", c.Auth.AccountsFile, err)
	}
	for _, a := range f.Accounts {
		if a.Username == "" || a.PasswordHash == "" || !a.Role.IsValid() {
			return fmt.Errorf("accounts file %s: account %q is incomplete or has an invalid role", c.Auth.AccountsFile, a.Username)
		}
	}
	c.Auth.Accounts = append(c.Auth.Accounts, f.Accounts...)
	return nil
}
