package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequireTenant rejects requests whose context carries no tenant. It must be
// chained after Authenticate.
func RequireTenant() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tid, ok := TenantIDFromContext(r.Context())
			if !ok || tid == uuid.Nil {
				WriteProblem(w, http.StatusForbidden, "valid tenant required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
