// Command messenger-setup creates the keyspace and (re)creates the chat
// tables. It waits for the cluster to come up, so it is safe to run as an
// init container.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gocql/gocql"

	"messenger/cmd/internal/app"
	"messenger/cmd/internal/chat"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	session, err := app.ConnectWithRetry(ctx, logger, 2*time.Second, func() (*gocql.Session, error) {
		return app.NewCassandraAdminSession(cfg)
	})
	if err != nil {
		return err
	}
	defer session.Close()

	exec, err := chat.NewSessionExecutor(session)
	if err != nil {
		return err
	}

	logger.Info("setup.keyspace.create", "keyspace", cfg.CassandraKeyspace)
	if err := chat.CreateKeyspace(ctx, exec, cfg.CassandraKeyspace); err != nil {
		return err
	}

	scoped, err := app.NewCassandraSession(cfg)
	if err != nil {
		return err
	}
	defer scoped.Close()

	scopedExec, err := chat.NewSessionExecutor(scoped)
	if err != nil {
		return err
	}

	logger.Info("setup.tables.recreate", "keyspace", cfg.CassandraKeyspace)
	if err := chat.RecreateTables(ctx, scopedExec); err != nil {
		return err
	}

	logger.Info("setup.done")
	return nil
}
