package server

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Auth guards the admin endpoints with a single bearer token, verified against a
// bcrypt hash so the configuration file never holds the plain value.
type Auth struct {
	adminTokenHash string
}

func NewAuth(cfg ServerConfig) *Auth {
	return &Auth{
		adminTokenHash: strings.TrimSpace(cfg.Security.AdminTokenHash),
	}
}

func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.adminTokenHash == "" {
			writeError(w, http.StatusForbidden, "admin access not configured")
			return
		}
		token := strings.TrimSpace(r.Header.Get("X-Admin-Token"))
		if token == "" {
			if header := strings.TrimSpace(r.Header.Get("Authorization")); strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			}
		}
		if token == "" {
			writeError(w, http.StatusUnauthorized, "admin token required")
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(a.adminTokenHash), []byte(token)) != nil {
			writeError(w, http.StatusUnauthorized, "invalid admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
