package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/book-gate/bookgate/internal/domain/auth"
)

// RegisterCustomValidators registers BookGate-specific validation rules.
// Must be called before validating Config.
func RegisterCustomValidators(v *validator.Validate) error {
	// ttl: validates Go duration strings like "30m", "168h".
	if err := v.RegisterValidation("ttl", validateTTL); err != nil {
		return fmt.Errorf("failed to register ttl validator: %w", err)
	}
	return nil
}

// validateTTL accepts any positive time.ParseDuration string.
func validateTTL(fl validator.FieldLevel) bool {
	d, err := time.ParseDuration(fl.Field().String())
	return err == nil && d > 0
}

// Validate validates the Config using struct tags plus cross-field rules.
// Returns an error with actionable messages if validation fails.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := RegisterCustomValidators(v); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	// Signing secret is mandatory outside dev mode (dev mode seeds one).
	if !c.DevMode && c.Auth.SecretKey == "" {
		return errors.New("auth.secret_key is required (set BOOKGATE_AUTH_SECRET_KEY or enable dev_mode)")
	}

	// Outside dev mode some credential source must exist, or every admin
	// endpoint would be unreachable.
	if !c.DevMode && len(c.Auth.Accounts) == 0 && c.Auth.AccountsFile == "" {
		return errors.New("auth.accounts or auth.accounts_file is required outside dev mode")
	}

	if err := c.validateAccountUniqueness(); err != nil {
		return err
	}

	return nil
}

// validateAccountUniqueness rejects duplicate usernames across inline
// accounts. The accounts file is checked at load time.
func (c *Config) validateAccountUniqueness() error {
	seen := make(map[string]struct{}, len(c.Auth.Accounts))
	for _, a := range c.Auth.Accounts {
		if _, dup := seen[a.Username]; dup {
			return fmt.Errorf("auth.accounts: duplicate username %q", a.Username)
		}
		seen[a.Username] = struct{}{}
		if t := auth.DetectHashType(a.PasswordHash); t == "unknown" {
			return fmt.Errorf("auth.accounts: account %q has an unrecognized password hash format (use 'bookgate hash-password')", a.Username)
		}
	}
	return nil
}

// formatValidationErrors converts validator errors into readable messages
// keyed by the config file field path.
func formatValidationErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q validation (value: %v)", fieldPath(fe), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("config validation failed:\n  %s", strings.Join(msgs, "\n  "))
}

// fieldPath converts "Config.Auth.AccessTokenTTL" into "auth.access_token_ttl".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	parts := strings.Split(ns, ".")
	for i, p := range parts {
		parts[i] = toSnake(p)
	}
	return strings.Join(parts, ".")
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && (s[i-1] < 'A' || s[i-1] > 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
