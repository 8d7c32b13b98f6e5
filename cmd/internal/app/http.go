package app

import (
	"net/http"
	"time"

	"github.com/gocql/gocql"

	chatapi "messenger/cmd/internal/chat/api"
)

func registerHTTP(
	mux *http.ServeMux,
	log Logger,
	cfg Config,
	session *gocql.Session,
	dbEnabled bool,
	api *chatapi.Handler,
	metrics http.Handler,
) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.ReadinessRequireDB && !dbEnabled {
			http.Error(w, "cassandra not configured", http.StatusServiceUnavailable)
			return
		}

		if dbEnabled && session != nil {
			if err := PingCassandra(r.Context(), session, 2*time.Second); err != nil {
				http.Error(w, "cassandra not ready", http.StatusServiceUnavailable)
				log.Info("readyz.cassandra.not_ready", "err", err)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	if api != nil {
		api.Register(mux)
	}
}
