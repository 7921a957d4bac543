package health

import (
	"encoding/json"
	"net/http"

	"github.com/lewisedginton/chat-gateway/pkg/logger"
)

// Response represents the JSON body served by the HTTP health endpoints.
type Response struct {
	Status string                 `json:"status"`           // "healthy" | "unhealthy"
	Checks map[string]CheckStatus `json:"checks,omitempty"` // check name -> status
}

// CheckStatus represents the status of an individual check in the HTTP response.
type CheckStatus struct {
	Status  string `json:"status"`            // "ok" | "error"
	Error   string `json:"error,omitempty"`   // error message if status is "error"
	Latency string `json:"latency,omitempty"` // latency in human-readable format
}

// LivenessHandler returns an HTTP handler for liveness checks.
// Returns 200 OK if the process is alive, 503 if it should be restarted.
func (h *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.writeStatus(w, h.CheckLiveness(r.Context()))
	}
}

// ReadinessHandler returns an HTTP handler for readiness checks.
// Returns 200 OK if the service is ready for traffic, 503 if not.
func (h *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.writeStatus(w, h.CheckReadiness(r.Context()))
	}
}

func (h *Checker) writeStatus(w http.ResponseWriter, status *Status) {
	w.Header().Set("Content-Type", "application/json")

	response := Response{Checks: make(map[string]CheckStatus)}
	if status.Healthy {
		response.Status = "healthy"
		w.WriteHeader(http.StatusOK)
	} else {
		response.Status = "unhealthy"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	for _, result := range status.Checks {
		cs := CheckStatus{Latency: result.Latency.String()}
		if result.Healthy {
			cs.Status = "ok"
		} else {
			cs.Status = "error"
			cs.Error = result.Error
		}
		response.Checks[result.Name] = cs
	}

	if err := json.NewEncoder(w).Encode(response); err != nil && h.logger != nil {
		h.logger.Error("Failed to encode health response", logger.ErrorField(err))
	}
}
