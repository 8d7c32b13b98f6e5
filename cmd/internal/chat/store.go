// Package chat is the Cassandra-backed data-access layer for two-party
// conversations: message persistence, conversation identity and dedup, and the
// denormalized conversation summaries that back the conversation list.
package chat

import (
	"context"
	"time"
)

// Message is a single immutable message row.
type Message struct {
	ID             int64
	ConversationID int64
	SenderID       int64
	ReceiverID     int64
	Content        string
	Timestamp      time.Time
}

// ConversationSummary is the denormalized per-conversation row holding the
// latest message's metadata. It is overwritten on every new message; it is a
// materialized "most recent message" view, not an append log.
type ConversationSummary struct {
	ID            int64
	SenderID      int64
	ReceiverID    int64
	LastTimestamp time.Time
	LastMessage   string // empty until the first message lands
}

// ConversationIdentity is the secondary record used only to detect whether a
// conversation already exists between two users. Participant order is NOT
// canonicalized in storage, so existence checks must probe both orderings.
type ConversationIdentity struct {
	ID         int64
	SenderID   int64
	ReceiverID int64
	CreatedAt  time.Time
}

// CreateMessageInput describes a message send.
type CreateMessageInput struct {
	ConversationID int64
	SenderID       int64
	ReceiverID     int64
	Content        string

	// Now overrides the message timestamp; zero means wall clock.
	Now time.Time
}

// Store is the access-layer API surface consumed by the HTTP layer.
//
// Contract notes:
//   - Not-found is a value (the found flag on GetConversation), never an error.
//   - Empty result sets read as an empty page and total 0.
//   - page and limit are caller-trusted; no validation happens at this layer.
type Store interface {
	CreateMessage(ctx context.Context, in CreateMessageInput) (Message, error)
	GetConversationMessages(ctx context.Context, conversationID int64, page, limit int) ([]Message, int, error)
	GetMessagesBeforeTimestamp(ctx context.Context, conversationID int64, before time.Time, page, limit int) ([]Message, int, error)
	GetUserConversations(ctx context.Context, userID int64, page, limit int) ([]ConversationSummary, int, error)
	CreateConversation(ctx context.Context, senderID, receiverID int64) (ConversationIdentity, error)
	GetConversation(ctx context.Context, conversationID int64) (ConversationSummary, bool, error)
	CreateOrGetConversation(ctx context.Context, user1ID, user2ID int64) (ConversationSummary, error)
}
