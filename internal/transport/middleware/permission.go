package middleware

import (
	"net/http"

	"github.com/frahmantamala/campus-resources/internal/auth"
	"github.com/frahmantamala/campus-resources/pkg/logger"
)

// RequireRole lets through only callers whose role is one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				writeDetail(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.From(r.Context()).Warn("access denied",
				"user_id", claims.UserID,
				"role", claims.Role,
				"required_roles", roles)
			writeDetail(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}
