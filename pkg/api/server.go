// Package api serves the operational HTTP endpoints of the tfrecord tool:
// Prometheus metrics and a liveness check.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// ServerConfig holds configuration for the metrics server
type ServerConfig struct {
	Addr     string              // host:port to listen on
	Gatherer prometheus.Gatherer // Metrics source
	Logger   *zerolog.Logger     // Optional logger
}

// Server exposes /metrics and /healthz
type Server struct {
	http *http.Server
	addr string
	log  zerolog.Logger
	done chan error
}

// NewRouter builds the HTTP routes
func NewRouter(gatherer prometheus.Gatherer, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	return r
}

// StartServer listens on config.Addr and serves in the background until
// Shutdown is called
func StartServer(config ServerConfig) (*Server, error) {
	log := zerolog.Nop()
	if config.Logger != nil {
		log = *config.Logger
	}

	ln, err := net.Listen("tcp", config.Addr)
	if err != nil {
		return nil, err
	}

	s := &Server{
		http: &http.Server{
			Handler:           NewRouter(config.Gatherer, log),
			ReadHeaderTimeout: 5 * time.Second,
		},
		addr: ln.Addr().String(),
		log:  log,
		done: make(chan error, 1),
	}

	go func() {
		err := s.http.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()

	log.Info().Str("addr", s.addr).Msg("serving metrics")
	return s, nil
}

// Addr returns the address the server listens on
func (s *Server) Addr() string {
	return s.addr
}

// Shutdown stops the server, waiting for in-flight scrapes up to the
// context deadline
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return err
	}
	err := <-s.done
	s.log.Debug().Err(err).Str("addr", s.addr).Msg("metrics server stopped")
	return err
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}
