package app

import (
	"context"
	"time"

	"github.com/gocql/gocql"
)

// NewCassandraSession dials the configured cluster scoped to the app keyspace
// and validates connectivity. The keyspace must already exist; schema
// management is handled by messenger-setup.
func NewCassandraSession(cfg Config) (*gocql.Session, error) {
	cluster := newCluster(cfg)
	cluster.Keyspace = cfg.CassandraKeyspace

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, err
	}

	if err := PingCassandra(context.Background(), session, 3*time.Second); err != nil {
		session.Close()
		return nil, err
	}

	return session, nil
}

// NewCassandraAdminSession dials the cluster without a keyspace so that setup
// tooling can create one.
func NewCassandraAdminSession(cfg Config) (*gocql.Session, error) {
	return newCluster(cfg).CreateSession()
}

func newCluster(cfg Config) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.CassandraHosts...)
	cluster.Port = cfg.CassandraPort
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = cfg.CassandraTimeout
	cluster.ConnectTimeout = cfg.CassandraConnectTimeout
	return cluster
}

// PingCassandra checks that the cluster answers a trivial read within timeout.
func PingCassandra(parent context.Context, session *gocql.Session, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	var release string
	return session.Query("SELECT release_version FROM system.local").
		WithContext(ctx).
		Scan(&release)
}

// ConnectWithRetry keeps dialing until connect succeeds or ctx is done.
// Setup tooling uses it to wait out a cluster that is still bootstrapping.
func ConnectWithRetry(ctx context.Context, log Logger, backoff time.Duration, connect func() (*gocql.Session, error)) (*gocql.Session, error) {
	for {
		session, err := connect()
		if err == nil {
			return session, nil
		}

		log.Warn("cassandra.connect.retry", "err", err, "backoff", backoff.String())

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
