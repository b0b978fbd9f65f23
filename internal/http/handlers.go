package http

import (
	"context"
	"net/http"
	"time"

	"spendlog/internal/log"
)

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	OK(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	}).Write(w)
}

// handleReady probes the storage backend with a lightweight call.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{}

	switch {
	case s.storage == nil:
		checks["storage"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	default:
		if err := s.storage.Ping(ctx); err != nil {
			s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			checks["storage"] = "failed: " + classifyError(err).message
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["storage"] = "ok"
		}
	}

	limits := s.rateLimiter.GetMetrics()
	checks["rate_limiter"] = map[string]any{
		"active_clients": limits.ClientCount,
		"rejected":       limits.TotalHits,
	}
	checks["requests"] = s.traceMiddleware.GetMetrics().TotalRequests

	NewJSONResponse().
		Status(code).
		Body(map[string]any{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"checks":    checks,
		}).
		Write(w)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", log.ErrorTypeRateLimit).Write(w)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusNotFound, "Not found", log.ErrorTypeNotFound).Write(w)
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", log.ErrorTypeValidation).Write(w)
}
