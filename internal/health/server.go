// Package health exposes the radar's HTTP surfaces: a liveness endpoint
// and, optionally, Prometheus metrics on a separate port.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sugawarayuuta/sonnet"

	"alpha-radar/internal/domain"
)

// StatusFunc produces a point-in-time health snapshot.
type StatusFunc func(ctx context.Context) domain.HealthStatus

// Server serves GET /health, and GET /metrics on a second listener when a
// metrics port is configured.
type Server struct {
	status  StatusFunc
	logger  *slog.Logger
	servers []*http.Server
}

// NewServer creates the health server. metricsPort <= 0 disables the
// metrics listener.
func NewServer(healthPort, metricsPort int, status StatusFunc, logger *slog.Logger) *Server {
	s := &Server{
		status: status,
		logger: logger.With("component", "health"),
	}

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("GET /health", s.handleHealth)
	s.servers = append(s.servers, &http.Server{
		Addr:         fmt.Sprintf(":%d", healthPort),
		Handler:      healthMux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	if metricsPort > 0 {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("GET /metrics", promhttp.Handler())
		s.servers = append(s.servers, &http.Server{
			Addr:         fmt.Sprintf(":%d", metricsPort),
			Handler:      metricsMux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		})
	}

	return s
}

// Start begins serving on all listeners. Listener errors other than
// graceful shutdown are logged, not fatal; the radar keeps alerting
// without its HTTP surfaces.
func (s *Server) Start() {
	for _, srv := range s.servers {
		srv := srv
		go func() {
			s.logger.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.logger.Error("http surface failed", "addr", srv.Addr, "error", err)
			}
		}()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.status(r.Context())

	code := http.StatusOK
	payload := map[string]any{
		"status":  "healthy",
		"details": status,
	}
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
		payload["status"] = "unhealthy"
		payload["reason"] = status.Reason()
	}

	body, err := sonnet.Marshal(payload)
	if err != nil {
		http.Error(w, "encoding failure", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}

// Shutdown drains all listeners.
func (s *Server) Shutdown(ctx context.Context) error {
	var firstErr error
	for _, srv := range s.servers {
		if err := srv.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
