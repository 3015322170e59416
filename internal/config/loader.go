package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment
// variables. If configFile is empty, it searches standard locations for
// bookgate.yaml/.yml. The search requires an explicit YAML extension so the
// binary itself ("bookgate", no extension) is never matched.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// No config file found in any standard location. Set name/type
		// without search paths so ReadInConfig returns
		// ConfigFileNotFoundError (handled gracefully by callers).
		viper.SetConfigName("bookgate")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: BOOKGATE_SERVER_HTTP_ADDR etc.
	viper.SetEnvPrefix("BOOKGATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for a bookgate config file with
// an explicit YAML extension (.yaml or .yml).
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".bookgate"),
		"/etc/bookgate",
	}
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "bookgate"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds nested config keys for environment variable
// support. Example: BOOKGATE_AUTH_SECRET_KEY overrides auth.secret_key.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("server.http_addr")
	_ = viper.BindEnv("server.log_level")

	_ = viper.BindEnv("auth.secret_key")
	_ = viper.BindEnv("auth.access_token_ttl")
	_ = viper.BindEnv("auth.refresh_token_ttl")
	_ = viper.BindEnv("auth.accounts_file")
	// Note: auth.accounts is a list; use the config file or accounts_file.

	_ = viper.BindEnv("data.file")

	_ = viper.BindEnv("scraper.command")
	_ = viper.BindEnv("scraper.timeout")
	_ = viper.BindEnv("scraper.max_pages")

	_ = viper.BindEnv("request_log.dir")
	_ = viper.BindEnv("request_log.cache_size")

	_ = viper.BindEnv("rate_limit.enabled")
	_ = viper.BindEnv("rate_limit.max_requests")
	_ = viper.BindEnv("rate_limit.window")

	_ = viper.BindEnv("dev_mode")
}

// LoadConfig reads the configuration file, applies environment overrides,
// and returns the Config. Callers apply CLI flag overrides, then call
// SetDevDefaults, Validate, and LoadAccountsFile to complete initialization.
func LoadConfig() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found — continue with env vars only.
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// ConfigFileUsed returns the path of the config file Viper loaded, if any.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
