// Package health serves the liveness probe outside the Huma API so it stays
// out of the OpenAPI document.
package health

import (
	"encoding/json"
	"net/http"

	applog "github.com/janisto/huma-greeter/internal/platform/logging"
)

// Path is where the probe is mounted.
const Path = "/health"

// Response is the payload for the health endpoint.
type Response struct {
	Status string `json:"status"`
}

// Handler reports the process as healthy. HEAD requests get headers only.
func Handler(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	if err := json.NewEncoder(w).Encode(Response{Status: "healthy"}); err != nil {
		applog.LogError(r.Context(), "failed to write health response", err)
	}
}
