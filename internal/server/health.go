package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck is a dependency pinged by /healthz.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// healthHandler answers 200 when every check passes and 503 naming the
// failed checks otherwise.
func healthHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		failed := []string{}
		for _, c := range checks {
			if err := c.Ping(ctx); err != nil {
				log.Warn().Err(err).Str("check", c.Name).Msg("health check failed")
				failed = append(failed, c.Name)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if len(failed) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(struct {
				Status string   `json:"status"`
				Failed []string `json:"failed"`
			}{Status: "unavailable", Failed: failed})
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
