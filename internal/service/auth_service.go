package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/book-gate/bookgate/internal/domain/auth"
)

// AuthService issues and validates the stateless access/refresh token pair.
// Tokens carry no server-side state: validity is bounded only by signature
// and expiry, so there is no revocation path short of rotating the secret.
type AuthService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	accounts   map[string]auth.Account
	logger     *slog.Logger
}

// NewAuthService creates an AuthService over the configured accounts.
func NewAuthService(secret []byte, accessTTL, refreshTTL time.Duration, accounts []auth.Account, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	byName := make(map[string]auth.Account, len(accounts))
	for _, a := range accounts {
		byName[a.Username] = a
	}
	return &AuthService{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		accounts:   byName,
		logger:     logger,
	}
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int // access token lifetime in seconds
}

// AccessTTL returns the configured access token lifetime.
func (s *AuthService) AccessTTL() time.Duration { return s.accessTTL }

// Login verifies the credentials against the configured accounts and issues
// a token pair. Unknown users and wrong passwords both map to
// auth.ErrUnauthorized with no distinction, so login responses do not leak
// which usernames exist.
func (s *AuthService) Login(username, password string) (TokenPair, error) {
	account, ok := s.accounts[username]
	if !ok {
		return TokenPair{}, auth.ErrUnauthorized
	}
	match, err := auth.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		s.logger.Error("password verification failed", "username", username, "error", err)
		return TokenPair{}, auth.ErrUnauthorized
	}
	if !match {
		s.logger.Debug("login rejected", "username", username)
		return TokenPair{}, auth.ErrUnauthorized
	}
	return s.issuePair(account)
}

// Refresh exchanges a valid refresh token for a fresh token pair. The
// subject must still be a configured account: removing an account from
// config ends its ability to refresh.
func (s *AuthService) Refresh(refreshToken string) (TokenPair, error) {
	claims, err := auth.ParseToken(refreshToken, auth.TokenTypeRefresh, s.secret)
	if err != nil {
		return TokenPair{}, auth.ErrUnauthorized
	}
	account, ok := s.accounts[claims.Subject]
	if !ok {
		return TokenPair{}, auth.ErrUnauthorized
	}
	return s.issuePair(account)
}

// Authorize validates an access token and checks that its role satisfies
// the required role. Returns auth.ErrUnauthorized for invalid/expired
// tokens and auth.ErrForbidden for valid tokens with insufficient role.
func (s *AuthService) Authorize(accessToken string, required auth.Role) (*auth.Claims, error) {
	claims, err := auth.ParseToken(accessToken, auth.TokenTypeAccess, s.secret)
	if err != nil {
		return nil, auth.ErrUnauthorized
	}
	if !claims.Role.IsValid() {
		return nil, auth.ErrUnauthorized
	}
	if !claims.Role.Allows(required) {
		return nil, auth.ErrForbidden
	}
	return claims, nil
}

func (s *AuthService) issuePair(account auth.Account) (TokenPair, error) {
	access, err := auth.IssueToken(account.Username, account.Role, auth.TokenTypeAccess, s.secret, s.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := auth.IssueToken(account.Username, account.Role, auth.TokenTypeRefresh, s.secret, s.refreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.accessTTL.Seconds()),
	}, nil
}
