package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// Empty CassandraHosts runs the server against the in-memory store.
	CassandraHosts          []string
	CassandraPort           int
	CassandraKeyspace       string
	CassandraTimeout        time.Duration
	CassandraConnectTimeout time.Duration

	// If true:
	// - /readyz returns 503 unless Cassandra is configured and reachable.
	ReadinessRequireDB bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("MESSENGER_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("MESSENGER_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("MESSENGER_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("MESSENGER_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("MESSENGER_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("MESSENGER_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("MESSENGER_HTTP_MAX_HEADER_BYTES", 1<<20),

		CassandraHosts:          EnvStrings("MESSENGER_CASSANDRA_HOSTS", nil),
		CassandraPort:           EnvInt("MESSENGER_CASSANDRA_PORT", 9042),
		CassandraKeyspace:       EnvString("MESSENGER_CASSANDRA_KEYSPACE", "messenger"),
		CassandraTimeout:        EnvDuration("MESSENGER_CASSANDRA_TIMEOUT", 10*time.Second),
		CassandraConnectTimeout: EnvDuration("MESSENGER_CASSANDRA_CONNECT_TIMEOUT", 10*time.Second),

		ReadinessRequireDB: EnvBool("MESSENGER_READINESS_REQUIRE_DB", false),
	}
}
