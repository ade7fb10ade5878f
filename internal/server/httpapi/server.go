// Package httpapi serves the browser-facing HTTP endpoints: email
// confirmation, health probes and Prometheus metrics.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/studyshare/internal/common"
	"github.com/dmitrijs2005/studyshare/internal/logging"
	"github.com/dmitrijs2005/studyshare/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// Confirmer confirms an email address and returns where to send the user.
type Confirmer interface {
	Confirm(ctx context.Context, token string) (string, error)
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HTTPServer struct {
	address   string
	confirmer Confirmer
	db        Pinger
	logger    logging.Logger
}

func NewHTTPServer(address string, l logging.Logger, c Confirmer, db Pinger) *HTTPServer {
	return &HTTPServer{
		address:   address,
		confirmer: c,
		db:        db,
		logger:    l.With("module", "http_server"),
	}
}

// Router builds the chi mux with every route mounted.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(metrics.Middleware)

	r.Get("/auth/confirm", s.confirm)
	r.Get("/health/live", s.live)
	r.Get("/health/ready", s.ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *HTTPServer) confirm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	target, err := s.confirmer.Confirm(r.Context(), token)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			http.Error(w, "confirmation link is invalid or already used", http.StatusBadRequest)
			return
		}
		s.logger.Error(r.Context(), "confirmation failed", "error", err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if target != "" {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("email confirmed, you can sign in now\n"))
}

func (s *HTTPServer) live(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *HTTPServer) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn(r.Context(), "readiness check failed", "error", err.Error())
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
