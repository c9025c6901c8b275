package handlers

import (
	"context"
	"net/http"
	"strings"

	"equiptrack/internal/services"
)

type contextKey string

const claimsKey contextKey = "claims"

// TokenValidator turns a bearer token into verified claims.
type TokenValidator interface {
	ValidateToken(token string) (*services.JWTClaims, error)
}

// AuthMiddleware guards routes behind a valid bearer token.
type AuthMiddleware struct {
	auth TokenValidator
}

func NewAuthMiddleware(auth TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Protect requires a valid token and stashes its claims in the request
// context.
func (m *AuthMiddleware) Protect(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.authenticate(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// ProtectAdmin additionally requires the admin role.
func (m *AuthMiddleware) ProtectAdmin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.authenticate(w, r)
		if !ok {
			return
		}
		if claims.Role != "admin" {
			writeMessage(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

func (m *AuthMiddleware) authenticate(w http.ResponseWriter, r *http.Request) (*services.JWTClaims, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		writeMessage(w, http.StatusUnauthorized, "Authorization header required")
		return nil, false
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		writeMessage(w, http.StatusUnauthorized, "Invalid authorization header format")
		return nil, false
	}

	claims, err := m.auth.ValidateToken(tokenString)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid token")
		return nil, false
	}
	return claims, true
}

// ClaimsFrom returns the verified claims stored by Protect.
func ClaimsFrom(r *http.Request) *services.JWTClaims {
	claims, _ := r.Context().Value(claimsKey).(*services.JWTClaims)
	return claims
}
