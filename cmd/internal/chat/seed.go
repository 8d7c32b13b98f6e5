package chat

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// SeedConfig controls the shape of generated test data.
type SeedConfig struct {
	Users                      int
	Conversations              int
	MaxMessagesPerConversation int

	// Rand makes generation deterministic in tests; nil seeds from Now.
	Rand *rand.Rand

	// Now anchors the generated timestamps; zero means wall clock.
	Now time.Time
}

func (c SeedConfig) withDefaults() SeedConfig {
	if c.Users <= 1 {
		c.Users = 10
	}
	if c.Conversations <= 0 {
		c.Conversations = 15
	}
	if c.MaxMessagesPerConversation <= 0 {
		c.MaxMessagesPerConversation = 50
	}
	if c.Now.IsZero() {
		c.Now = time.Now().UTC()
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(c.Now.UnixNano()))
	}
	return c
}

// Seed populates the keyspace with random conversations and messages for
// local testing: conversation ids 1..Conversations between random distinct
// user pairs drawn from 1..Users, each with 1..MaxMessagesPerConversation
// messages older than the conversation's last activity.
//
// Rows are written with explicit ids rather than through the allocator, the
// same way the summary and message tables are bulk-loaded for development.
func Seed(ctx context.Context, exec Executor, log *slog.Logger, cfg SeedConfig) error {
	if log == nil {
		log = slog.Default()
	}
	cfg = cfg.withDefaults()
	rng := cfg.Rand

	for conversationID := 1; conversationID <= cfg.Conversations; conversationID++ {
		user1 := int64(rng.Intn(cfg.Users) + 1)
		user2 := int64(rng.Intn(cfg.Users) + 1)
		for user2 == user1 {
			user2 = int64(rng.Intn(cfg.Users) + 1)
		}

		lastTimestamp := cfg.Now.AddDate(0, 0, -rng.Intn(31))
		lastMessage := fmt.Sprintf("Last message in conversation %d", conversationID)

		if _, err := exec.Execute(ctx, stmtInsertSummary,
			conversationID, user1, user2, lastTimestamp, lastMessage,
		); err != nil {
			return fmt.Errorf("seed conversation %d: %w", conversationID, err)
		}

		numMessages := rng.Intn(cfg.MaxMessagesPerConversation) + 1
		for messageID := 1; messageID <= numMessages; messageID++ {
			timestamp := lastTimestamp.Add(-time.Duration(rng.Intn(1000)+1) * time.Minute)

			senderID, receiverID := user1, user2
			if rng.Intn(2) == 0 {
				senderID, receiverID = user2, user1
			}

			if _, err := exec.Execute(ctx, stmtInsertMessage,
				messageID, conversationID, senderID, receiverID,
				fmt.Sprintf("Message %d in conversation %d", messageID, conversationID),
				timestamp,
			); err != nil {
				return fmt.Errorf("seed message %d/%d: %w", conversationID, messageID, err)
			}
		}
	}

	log.Info("seed.done",
		"users", cfg.Users,
		"conversations", cfg.Conversations,
		"max_messages_per_conversation", cfg.MaxMessagesPerConversation,
	)
	return nil
}
