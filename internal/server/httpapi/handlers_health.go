package httpapi

import (
	"context"
	"net/http"
	"time"
)

type healthBody struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthBody{
		Success:   true,
		Message:   "Smart Health API is running",
		Timestamp: s.now().UTC(),
	})
}

// ready answers 503 while the store cannot be pinged.
func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.PingContext(ctx); err != nil {
		s.logger.Warn(r.Context(), "readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: errorBody{
			Code:    "SERVICE_UNAVAILABLE",
			Message: "Database is not reachable",
		}})
		return
	}
	writeMessage(w, "ready")
}
