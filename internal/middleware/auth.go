package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/spacedigitalia/jelajah-kode-sub000/internal/entity"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/session"
)

// SessionAuth authenticates requests from the session cookie and places
// the claims into the request context.
func SessionAuth(issuer *session.Issuer, logger *zap.Logger) func(http.Handler) http.Handler {
	log := logger.Named("SessionAuth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w, "Authentication required")
				return
			}

			claims, err := issuer.Verify(cookie.Value)
			if err != nil {
				if errors.Is(err, session.ErrExpired) {
					unauthorized(w, "Session has expired")
					return
				}
				log.Warn("Rejected invalid session token", zap.Error(err))
				unauthorized(w, "Invalid session")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDCtxKey, claims.UserID)
			ctx = context.WithValue(ctx, UserEmailCtxKey, claims.Email)
			ctx = context.WithValue(ctx, UserRoleCtxKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a route group to accounts with the admin role. Must
// run after SessionAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _ := r.Context().Value(UserRoleCtxKey).(string)
		if role != entity.RoleAdmin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"error": "Admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
