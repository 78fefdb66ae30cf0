package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Options configures the HTTP surface
type Options struct {
	RequestTimeout time.Duration
	HealthTimeout  time.Duration
	StaticDir      string              // empty disables /static/
	Registry       *prometheus.Registry // nil uses a private registry
	AccessLog      io.Writer            // nil disables access logging
}

// NewHandler builds the gateway's routes around backend
func NewHandler(backend *Backend, log logrus.FieldLogger, opts Options) http.Handler {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	h := &handler{
		backend:        backend,
		log:            log,
		requestTimeout: opts.RequestTimeout,
		healthTimeout:  opts.HealthTimeout,
		staticEnabled:  opts.StaticDir != "",
	}

	r := mux.NewRouter()
	r.Use(withRequestID, newMetrics(reg).middleware)

	r.HandleFunc("/", h.root).Methods(http.MethodGet)
	r.HandleFunc("/consumption", h.consumption).Methods(http.MethodGet)
	r.HandleFunc("/api/consumption", h.consumption).Methods(http.MethodGet)
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	if opts.StaticDir != "" {
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	var out http.Handler = r
	out = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", RequestIDHeader}),
		handlers.ExposedHeaders([]string{RequestIDHeader}),
	)(out)
	if opts.AccessLog != nil {
		out = handlers.CombinedLoggingHandler(opts.AccessLog, out)
	}
	return handlers.RecoveryHandler(handlers.RecoveryLogger(log))(out)
}

// Serve runs an HTTP server for h on lis until ctx is cancelled, then shuts
// it down gracefully.
func Serve(ctx context.Context, lis net.Listener, h http.Handler, writeTimeout time.Duration, log logrus.FieldLogger) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(lis)
	}()

	log.WithField("addr", lis.Addr().String()).Info("HTTP server listening")

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving HTTP: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("HTTP server shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	return nil
}
