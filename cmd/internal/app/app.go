// Package app wires the messenger server runtime: config, logging, metrics,
// Cassandra connectivity, and HTTP routes.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gocql/gocql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"messenger/cmd/internal/chat"
	chatapi "messenger/cmd/internal/chat/api"
)

// App is the messenger server runtime: it owns the HTTP server wiring and the
// Cassandra session lifecycle.
type App struct {
	cfg Config
	log Logger

	session   *gocql.Session
	dbEnabled bool

	api      *chatapi.Handler
	registry *prometheus.Registry
	httpM    *HTTPMetrics
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, session, dbEnabled, err := newStore(cfg, log, registry)
	if err != nil {
		return nil, err
	}

	api, err := chatapi.NewHandler(log, store)
	if err != nil {
		if session != nil {
			session.Close()
		}
		return nil, err
	}

	return &App{
		cfg:       cfg,
		log:       log,
		session:   session,
		dbEnabled: dbEnabled,
		api:       api,
		registry:  registry,
		httpM:     NewHTTPMetrics(registry),
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()

	metricsHandler := promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
	registerHTTP(mux, a.log, a.cfg, a.session, a.dbEnabled, a.api, metricsHandler)

	var handler http.Handler = mux
	handler = WithRequestMetrics(handler, a.httpM)
	handler = WithRequestLogging(handler, a.log)
	handler = WithRequestID(handler)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "cassandra_enabled", a.dbEnabled)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if a.session != nil {
		a.session.Close()
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// newStore decides between Cassandra-backed persistence and the in-memory dev store.
func newStore(cfg Config, log Logger, reg prometheus.Registerer) (chat.Store, *gocql.Session, bool, error) {
	if len(cfg.CassandraHosts) == 0 {
		log.Info("cassandra.disabled.inmemory_store")
		return chat.NewMemoryStore(), nil, false, nil
	}

	session, err := NewCassandraSession(cfg)
	if err != nil {
		return nil, nil, false, err
	}

	log.Info("cassandra.enabled", "hosts", cfg.CassandraHosts, "keyspace", cfg.CassandraKeyspace)

	exec, err := chat.NewSessionExecutor(session)
	if err != nil {
		session.Close()
		return nil, nil, false, err
	}

	store, err := chat.NewCassandraStore(chat.NewMetrics(reg).Instrument(exec), log)
	if err != nil {
		session.Close()
		return nil, nil, false, err
	}

	return store, session, true, nil
}
