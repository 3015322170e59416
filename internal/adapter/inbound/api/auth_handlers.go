package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/book-gate/bookgate/internal/domain/auth"
)

// LoginRequest is the payload of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the payload of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is the payload of successful login/refresh calls.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// handleLogin verifies credentials and issues an access/refresh token pair.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, kindValidation, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		h.respondError(w, http.StatusUnprocessableEntity, kindValidation, "username and password are required")
		return
	}

	pair, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    pair.ExpiresIn,
	})
}

// handleRefresh exchanges a refresh token for a new token pair.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, kindValidation, "invalid JSON body")
		return
	}
	if req.RefreshToken == "" {
		h.respondError(w, http.StatusUnprocessableEntity, kindValidation, "refresh_token is required")
		return
	}

	pair, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    pair.ExpiresIn,
	})
}

// claimsContextKey is the context key for validated access token claims.
type claimsContextKey struct{}

// ClaimsFromContext returns the validated claims stored by requireRole.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*auth.Claims)
	return claims, ok
}

// requireRole wraps a handler with bearer-token authorization. Missing or
// invalid tokens yield 401; valid tokens with insufficient role yield 403.
func (h *Handler) requireRole(required auth.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			h.respondError(w, http.StatusUnauthorized, kindUnauthorized, "missing bearer token")
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		claims, err := h.authService.Authorize(token, required)
		if err != nil {
			h.respondDomainError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
