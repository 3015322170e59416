package service

import (
	"errors"
	"testing"
	"time"

	"github.com/book-gate/bookgate/internal/domain/auth"
)

// SHA-256 of "admin123" and "user123", the dev-mode seed credentials.
const (
	adminHash = "sha256:240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9"
	userHash  = "sha256:e606e38b0d8c19b24cf0ee3808183162ea7cd63ff7912dbb22b5e803286b4446"
)

var authSecret = []byte("test-signing-secret")

func testAccounts() []auth.Account {
	return []auth.Account{
		{Username: "admin", PasswordHash: adminHash, Role: auth.RoleAdmin},
		{Username: "user", PasswordHash: userHash, Role: auth.RoleUser},
	}
}

func newTestAuth() *AuthService {
	return NewAuthService(authSecret, 30*time.Minute, 168*time.Hour, testAccounts(), nil)
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	svc := newTestAuth()
	pair, err := svc.Login("admin", "admin123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("Login() returned empty tokens")
	}
	if pair.ExpiresIn != 1800 {
		t.Errorf("ExpiresIn = %d, want 1800", pair.ExpiresIn)
	}

	claims, err := auth.ParseToken(pair.AccessToken, auth.TokenTypeAccess, authSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "admin" || claims.Role != auth.RoleAdmin {
		t.Errorf("claims = %s/%s, want admin/admin", claims.Subject, claims.Role)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	svc := newTestAuth()
	if _, err := svc.Login("admin", "wrong"); !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("Login() error = %v, want ErrUnauthorized", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	t.Parallel()

	svc := newTestAuth()
	// Unknown users and wrong passwords return the same error.
	if _, err := svc.Login("nobody", "admin123"); !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("Login() error = %v, want ErrUnauthorized", err)
	}
}

func TestRefresh_Success(t *testing.T) {
	t.Parallel()

	svc := newTestAuth()
	pair, err := svc.Login("user", "user123")
	if err != nil {
		t.Fatal(err)
	}

	fresh, err := svc.Refresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	claims, err := auth.ParseToken(fresh.AccessToken, auth.TokenTypeAccess, authSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "user" || claims.Role != auth.RoleUser {
		t.Errorf("claims = %s/%s, want user/user", claims.Subject, claims.Role)
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuth()
	pair, err := svc.Login("user", "user123")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Refresh(pair.AccessToken); !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("Refresh(access token) error = %v, want ErrUnauthorized", err)
	}
}

func TestRefresh_RemovedAccount(t *testing.T) {
	t.Parallel()

	svc := newTestAuth()
	pair, err := svc.Login("user", "user123")
	if err != nil {
		t.Fatal(err)
	}

	// A service configured without the account must refuse the refresh.
	trimmed := NewAuthService(authSecret, 30*time.Minute, 168*time.Hour, testAccounts()[:1], nil)
	if _, err := trimmed.Refresh(pair.RefreshToken); !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("Refresh() error = %v, want ErrUnauthorized for removed account", err)
	}
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	svc := newTestAuth()
	adminPair, _ := svc.Login("admin", "admin123")
	userPair, _ := svc.Login("user", "user123")

	// Admin passes both requirements.
	if _, err := svc.Authorize(adminPair.AccessToken, auth.RoleAdmin); err != nil {
		t.Errorf("Authorize(admin, admin) error = %v", err)
	}
	if _, err := svc.Authorize(adminPair.AccessToken, auth.RoleUser); err != nil {
		t.Errorf("Authorize(admin, user) error = %v", err)
	}

	// User passes user, fails admin with ErrForbidden.
	if _, err := svc.Authorize(userPair.AccessToken, auth.RoleUser); err != nil {
		t.Errorf("Authorize(user, user) error = %v", err)
	}
	if _, err := svc.Authorize(userPair.AccessToken, auth.RoleAdmin); !errors.Is(err, auth.ErrForbidden) {
		t.Errorf("Authorize(user, admin) error = %v, want ErrForbidden", err)
	}
}

func TestAuthorize_InvalidTokens(t *testing.T) {
	t.Parallel()

	svc := newTestAuth()

	if _, err := svc.Authorize("garbage", auth.RoleUser); !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("Authorize(garbage) error = %v, want ErrUnauthorized", err)
	}

	// Refresh tokens do not authorize API calls.
	pair, _ := svc.Login("user", "user123")
	if _, err := svc.Authorize(pair.RefreshToken, auth.RoleUser); !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("Authorize(refresh token) error = %v, want ErrUnauthorized", err)
	}
}

func TestAuthorize_ExpiredToken(t *testing.T) {
	t.Parallel()

	short := NewAuthService(authSecret, -time.Second, 168*time.Hour, testAccounts(), nil)
	pair, err := short.Login("user", "user123")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := short.Authorize(pair.AccessToken, auth.RoleUser); !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("Authorize(expired) error = %v, want ErrUnauthorized", err)
	}
}
