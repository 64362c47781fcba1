package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/frahmantamala/campus-resources/internal/auth"
	"github.com/frahmantamala/campus-resources/pkg/logger"
)

type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Authenticate rejects requests without a valid bearer token and puts the
// claims on the request context.
func Authenticate(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				writeDetail(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			claims, err := tokens.Validate(strings.TrimSpace(raw))
			if err != nil {
				msg := "Could not validate credentials"
				if appErr, ok := internal.IsAppError(err); ok && appErr.Code == internal.ErrCodeTokenExpired {
					msg = "Token has expired"
				}
				writeDetail(w, http.StatusUnauthorized, msg)
				return
			}

			ctx := auth.ContextWithClaims(r.Context(), claims)
			ctx = logger.With(ctx, "user_id", claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
