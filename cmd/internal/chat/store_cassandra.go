package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// CassandraStore is a Store backed by the four-table Cassandra layout in
// schema.go. Every operation is a sequence of independent Execute round trips;
// there is no cross-statement transaction and no in-process locking, so the
// known races (duplicate ids, lost summary updates) are accepted rather than
// masked. See the Allocator and CreateMessage docs for the specifics.
type CassandraStore struct {
	exec  Executor
	alloc *Allocator
	log   *slog.Logger
}

// NewCassandraStore builds a store over the given executor.
func NewCassandraStore(exec Executor, log *slog.Logger) (*CassandraStore, error) {
	if exec == nil {
		return nil, errors.New("chat: nil executor")
	}
	if log == nil {
		log = slog.Default()
	}
	return &CassandraStore{
		exec:  exec,
		alloc: NewAllocator(exec, log),
		log:   log,
	}, nil
}

// CreateMessage allocates a message id, writes the message row, then upserts
// the conversation summary to reflect it.
//
// Side-effect ordering matters: the message row always lands first, and the
// summary upsert is allowed to fail independently. A lost summary update is
// logged and the message still returned, because the message row is the
// durable record; there is no compensating rollback.
func (s *CassandraStore) CreateMessage(ctx context.Context, in CreateMessageInput) (Message, error) {
	id, err := s.alloc.NextID(ctx, CounterMessageID)
	if err != nil {
		return Message{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if _, err := s.exec.Execute(ctx, stmtInsertMessage,
		id, in.ConversationID, in.SenderID, in.ReceiverID, in.Content, now,
	); err != nil {
		return Message{}, fmt.Errorf("insert message: %w", err)
	}

	msg := Message{
		ID:             id,
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		ReceiverID:     in.ReceiverID,
		Content:        in.Content,
		Timestamp:      now,
	}

	if err := s.upsertSummary(ctx, msg); err != nil {
		s.log.Warn("summary.upsert.fail",
			"conversation_id", in.ConversationID,
			"message_id", id,
			"err", err,
		)
	}

	return msg, nil
}

func (s *CassandraStore) upsertSummary(ctx context.Context, msg Message) error {
	rows, err := s.exec.Execute(ctx, stmtCheckSummary, msg.ConversationID)
	if err != nil {
		return fmt.Errorf("check summary: %w", err)
	}

	if len(rows) == 0 {
		if _, err := s.exec.Execute(ctx, stmtInsertSummary,
			msg.ConversationID, msg.SenderID, msg.ReceiverID, msg.Timestamp, msg.Content,
		); err != nil {
			return fmt.Errorf("insert summary: %w", err)
		}
		return nil
	}

	if _, err := s.exec.Execute(ctx, stmtUpdateSummary,
		msg.Timestamp, msg.Content, msg.SenderID, msg.ReceiverID, msg.ConversationID,
	); err != nil {
		return fmt.Errorf("update summary: %w", err)
	}
	return nil
}

// GetConversationMessages returns one page of a conversation's messages,
// newest first, with the total number of messages in the conversation.
//
// The partition is fetched whole in clustering order (timestamp DESC) and the
// page is sliced in memory. The COUNT statement is issued for every read but
// total is recomputed from the fetched rows; the counted value is discarded.
func (s *CassandraStore) GetConversationMessages(ctx context.Context, conversationID int64, page, limit int) ([]Message, int, error) {
	if _, err := s.exec.Execute(ctx, stmtCountMessages, conversationID); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	rows, err := s.exec.Execute(ctx, stmtSelectMessages, conversationID)
	if err != nil {
		return nil, 0, fmt.Errorf("select messages: %w", err)
	}

	msgs, total := paginate(scanMessages(rows, conversationID), page, limit)
	return msgs, total, nil
}

// GetMessagesBeforeTimestamp is GetConversationMessages with an upper bound:
// only messages strictly older than before are fetched. This is the "load
// older messages" path; ordering and slicing are identical.
func (s *CassandraStore) GetMessagesBeforeTimestamp(ctx context.Context, conversationID int64, before time.Time, page, limit int) ([]Message, int, error) {
	if _, err := s.exec.Execute(ctx, stmtCountMessagesBefore, conversationID, before); err != nil {
		return nil, 0, fmt.Errorf("count messages before: %w", err)
	}

	rows, err := s.exec.Execute(ctx, stmtSelectMessagesBefore, conversationID, before)
	if err != nil {
		return nil, 0, fmt.Errorf("select messages before: %w", err)
	}

	msgs, total := paginate(scanMessages(rows, conversationID), page, limit)
	return msgs, total, nil
}

// GetUserConversations returns one page of the user's conversations ordered by
// recency. The summary table has no key on either participant column, so this
// runs two filtered scans (user as sender, user as receiver), concatenates
// them, sorts by last_timestamp descending, and slices in memory. Either scan
// coming back empty is a normal outcome, not an error.
func (s *CassandraStore) GetUserConversations(ctx context.Context, userID int64, page, limit int) ([]ConversationSummary, int, error) {
	asSender, err := s.exec.Execute(ctx, stmtSummariesBySender, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("scan by sender: %w", err)
	}
	asReceiver, err := s.exec.Execute(ctx, stmtSummariesByReceiver, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("scan by receiver: %w", err)
	}

	merged := make([]ConversationSummary, 0, len(asSender)+len(asReceiver))
	for _, row := range asSender {
		merged = append(merged, scanSummary(row))
	}
	for _, row := range asReceiver {
		merged = append(merged, scanSummary(row))
	}

	sortSummariesByRecency(merged)

	out, total := paginate(merged, page, limit)
	return out, total, nil
}

// CreateConversation allocates a conversation id and writes the identity row
// plus a bare summary row (no last message yet). It does NOT check whether a
// conversation between the pair already exists; that is the caller's job.
// Callers that cannot know should use CreateOrGetConversation.
func (s *CassandraStore) CreateConversation(ctx context.Context, senderID, receiverID int64) (ConversationIdentity, error) {
	id, err := s.alloc.NextID(ctx, CounterConversationID)
	if err != nil {
		return ConversationIdentity{}, err
	}

	now := time.Now().UTC()

	if _, err := s.exec.Execute(ctx, stmtInsertIdentity, id, senderID, receiverID, now); err != nil {
		return ConversationIdentity{}, fmt.Errorf("insert identity: %w", err)
	}
	if _, err := s.exec.Execute(ctx, stmtInsertSummary, id, senderID, receiverID, now, ""); err != nil {
		return ConversationIdentity{}, fmt.Errorf("insert summary: %w", err)
	}

	return ConversationIdentity{
		ID:         id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		CreatedAt:  now,
	}, nil
}

// GetConversation looks up a conversation summary by id. A missing row reads
// as found=false, never as an error.
func (s *CassandraStore) GetConversation(ctx context.Context, conversationID int64) (ConversationSummary, bool, error) {
	rows, err := s.exec.Execute(ctx, stmtSelectSummary, conversationID)
	if err != nil {
		return ConversationSummary{}, false, fmt.Errorf("select summary: %w", err)
	}
	if len(rows) == 0 {
		return ConversationSummary{}, false, nil
	}
	return scanSummary(rows[0]), true, nil
}

// CreateOrGetConversation returns the existing conversation between the two
// users or creates a new one.
//
// Participant order in the identity table follows whoever created the
// conversation, so both orderings are probed. Both probes are always issued;
// the second is ignored when the first already hit. A hit is returned as-is
// via GetConversation with no canonicalization or merge.
func (s *CassandraStore) CreateOrGetConversation(ctx context.Context, user1ID, user2ID int64) (ConversationSummary, error) {
	probe1, err := s.exec.Execute(ctx, stmtProbeIdentity, user1ID, user2ID)
	if err != nil {
		return ConversationSummary{}, fmt.Errorf("probe identity: %w", err)
	}
	probe2, err := s.exec.Execute(ctx, stmtProbeIdentity, user2ID, user1ID)
	if err != nil {
		return ConversationSummary{}, fmt.Errorf("probe identity reversed: %w", err)
	}

	hit := probe1
	if len(hit) == 0 {
		hit = probe2
	}
	if len(hit) > 0 {
		id := hit[0].Int64("conversation_id")
		summary, found, err := s.GetConversation(ctx, id)
		if err != nil {
			return ConversationSummary{}, err
		}
		if !found {
			// Identity row without a summary row: a half-created conversation.
			// Hand back what is known rather than failing.
			return ConversationSummary{ID: id}, nil
		}
		return summary, nil
	}

	created, err := s.CreateConversation(ctx, user1ID, user2ID)
	if err != nil {
		return ConversationSummary{}, err
	}

	return ConversationSummary{
		ID:            created.ID,
		SenderID:      created.SenderID,
		ReceiverID:    created.ReceiverID,
		LastTimestamp: created.CreatedAt,
	}, nil
}

func scanMessages(rows []Row, conversationID int64) []Message {
	msgs := make([]Message, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, Message{
			ID:             row.Int64("message_id"),
			ConversationID: conversationID,
			SenderID:       row.Int64("sender_id"),
			ReceiverID:     row.Int64("receiver_id"),
			Content:        row.String("content"),
			Timestamp:      row.Time("timestamp"),
		})
	}
	return msgs
}

func scanSummary(row Row) ConversationSummary {
	return ConversationSummary{
		ID:            row.Int64("conversation_id"),
		SenderID:      row.Int64("sender_id"),
		ReceiverID:    row.Int64("receiver_id"),
		LastTimestamp: row.Time("last_timestamp"),
		LastMessage:   row.String("last_message"),
	}
}
