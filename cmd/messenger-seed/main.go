// Command messenger-seed fills the configured keyspace with random users,
// conversations, and message history for manual testing.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

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

	session, err := app.NewCassandraSession(cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	exec, err := chat.NewSessionExecutor(session)
	if err != nil {
		return err
	}

	seedCfg := chat.SeedConfig{
		Users:                      app.EnvInt("MESSENGER_SEED_USERS", 10),
		Conversations:              app.EnvInt("MESSENGER_SEED_CONVERSATIONS", 15),
		MaxMessagesPerConversation: app.EnvInt("MESSENGER_SEED_MAX_MESSAGES", 50),
	}

	logger.Info("seed.start",
		"users", seedCfg.Users,
		"conversations", seedCfg.Conversations,
		"max_messages", seedCfg.MaxMessagesPerConversation,
	)

	if err := chat.Seed(ctx, exec, logger, seedCfg); err != nil {
		return err
	}

	logger.Info("seed.done")
	return nil
}
