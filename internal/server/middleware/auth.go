package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/nesthost/internal/auth"
)

// Authenticate verifies the bearer session token and stores the caller's
// user id, tenant id and email in the request context.
//
// A request without a bearer token is rejected with 401. A token that fails
// verification (bad signature, expired, malformed claims) is rejected with
// 403.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := extractBearer(r)
			if tok == "" {
				WriteProblem(w, http.StatusUnauthorized, "missing token")
				return
			}

			claims, err := auth.ValidateToken(jwtSecret, tok)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("auth: rejected token")
				WriteProblem(w, http.StatusForbidden, "invalid token")
				return
			}

			userID, tenantID, err := claims.Identity()
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("auth: rejected token claims")
				WriteProblem(w, http.StatusForbidden, "invalid token")
				return
			}

			ctx := WithIdentity(r.Context(), userID, tenantID, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
