package httpx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	healthResponse = `{"status":"ok"}`
	readyTimeout   = 2 * time.Second
)

// healthHandler returns a simple 200 OK status for liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}

// ReadinessCheck reports whether a backing dependency is reachable.
type ReadinessCheck func(ctx context.Context) error

// readyHandler runs every check and answers 503 if any fails.
func readyHandler(checks map[string]ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		status := map[string]string{}
		var failed error
		for name, check := range checks {
			if err := check(ctx); err != nil {
				slog.WarnContext(ctx, "readiness check failed", "check", name, "error", err)
				status[name] = "unavailable"
				failed = errors.Join(failed, err)
				continue
			}
			status[name] = "ok"
		}
		if failed != nil {
			WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "checks": status})
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "checks": status})
	}
}
