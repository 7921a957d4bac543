package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lewisedginton/chat-gateway/pkg/logger"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply   string     `json:"reply"`
	Request any        `json:"request"`
	Debug   *debugInfo `json:"debug,omitempty"`
}

type debugInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Project  string `json:"project,omitempty"`
	Region   string `json:"region,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// echoHandler answers any GET on the root path with a health message and the
// request body echoed back. It never touches the provider.
func (s *Server) echoHandler(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Health check successful",
		"request": echoValue(body),
	})
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil || strings.TrimSpace(req.Message) == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Message is required"})
		return
	}

	start := time.Now()
	reply, err := s.provider.Generate(r.Context(), req.Message)
	if s.metrics != nil {
		s.metrics.ObserveGeneration(time.Since(start), err)
	}
	if err != nil {
		s.log.Error("Content generation failed", logger.ErrorField(err))
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Error generating content",
			Details: err.Error(),
		})
		return
	}

	resp := chatResponse{
		Reply:   reply,
		Request: echoValue(body),
	}
	if s.cfg.DebugResponse {
		resp.Debug = &debugInfo{
			Provider: s.provider.Kind(),
			Model:    s.cfg.Provider.Model,
			Project:  s.cfg.Provider.Project,
			Region:   s.cfg.Provider.Region,
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// readBody reads the request body subject to the configured size cap. On
// failure it writes the error response itself and returns ok=false.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestSize))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request body too large"})
		} else {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Could not read request body"})
		}
		return nil, false
	}
	return body, true
}

// echoValue returns the request body in the form it should be echoed back:
// valid JSON is embedded as-is, anything else as a plain string.
func echoValue(body []byte) any {
	if len(body) == 0 {
		return ""
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("Failed to encode response", logger.ErrorField(err))
	}
}
