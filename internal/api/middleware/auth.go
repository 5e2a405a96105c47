package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/kiranshivaraju/rfpmarket/internal/api/response"
)

// ErrNoRole is returned by a RoleLookup when the user has no role assigned.
var ErrNoRole = errors.New("user has no role")

// RoleLookup resolves the role of an authenticated user.
type RoleLookup interface {
	UserRole(ctx context.Context, userID uuid.UUID) (string, error)
}

// Auth provides bearer-token authentication and role checks.
type Auth struct {
	secret []byte
	roles  RoleLookup
}

// NewAuth creates a new Auth middleware verifying HS256 tokens signed with secret.
func NewAuth(secret string, roles RoleLookup) *Auth {
	return &Auth{secret: []byte(secret), roles: roles}
}

// Authenticate validates the Bearer token and sets the user id (the token
// subject) and the raw token in the request context.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearerToken(r)
		if raw == "" {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Missing or invalid Authorization header", nil)
			return
		}

		userID, err := a.parseSubject(raw)
		if err != nil {
			slog.Debug("token rejected", "error", err)
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Invalid or expired token", nil)
			return
		}

		ctx := SetUserID(r.Context(), userID)
		ctx = setBearerToken(ctx, raw)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Auth) parseSubject(raw string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	if !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}
	if claims.ExpiresAt == nil {
		return uuid.Nil, errors.New("token has no expiry")
	}
	return uuid.Parse(claims.Subject)
}

// RequireRole returns middleware that admits only callers holding one of roles.
func (a *Auth) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r)
			if !ok {
				response.Error(w, http.StatusUnauthorized,
					"INVALID_TOKEN", "Missing or invalid Authorization header", nil)
				return
			}

			role, err := a.roles.UserRole(r.Context(), userID)
			if err != nil && !errors.Is(err, ErrNoRole) {
				slog.Error("role lookup failed", "user_id", userID, "error", err)
				response.Error(w, http.StatusInternalServerError,
					"INTERNAL_ERROR", "Failed to verify permissions", nil)
				return
			}
			if !slices.Contains(roles, role) {
				response.Error(w, http.StatusForbidden,
					"FORBIDDEN", fmt.Sprintf("Only %s users can access this endpoint", strings.Join(roles, " or ")), nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(setRole(r.Context(), role)))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
