package middleware

import (
	"context"
	"net/http"
	"strings"

	"tambo-herd/internal/domain/aggregate"
	jwtutil "tambo-herd/pkg/jwt"
)

// ContextKey is a custom type for context keys
type ContextKey string

const (
	// UserIDKey is the context key for user ID
	UserIDKey ContextKey = "user_id"
	// RoleKey is the context key for the caller's role
	RoleKey ContextKey = "user_role"
	// EstablishmentKey is the context key for the caller's establishment scope
	EstablishmentKey ContextKey = "establishment_id"
)

// JWTAuth validates the bearer token and loads identity, role and
// establishment scope into the request context.
func JWTAuth(manager *jwtutil.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				sendUnauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				sendUnauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := manager.ValidateToken(parts[1])
			if err != nil {
				sendUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, RoleKey, claims.Role)
			ctx = context.WithValue(ctx, EstablishmentKey, claims.EstablishmentID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles rejects callers whose role is not in the allowed set.
func RequireRoles(allowed ...aggregate.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRole(r.Context())
			if !ok {
				sendUnauthorized(w, "User role not found")
				return
			}
			for _, a := range allowed {
				if role == a {
					next.ServeHTTP(w, r)
					return
				}
			}
			sendForbidden(w, "Insufficient permissions")
		})
	}
}

// GetUserID extracts the caller's user ID from context.
func GetUserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok
}

// GetRole extracts the caller's role from context.
func GetRole(ctx context.Context) (aggregate.UserRole, bool) {
	role, ok := ctx.Value(RoleKey).(aggregate.UserRole)
	return role, ok
}

// GetEstablishment extracts the caller's establishment scope from context.
func GetEstablishment(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(EstablishmentKey).(string)
	return id, ok
}
