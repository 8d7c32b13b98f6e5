package chat

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a dev-only Store used when no Cassandra hosts are configured.
// It keeps the same read semantics as CassandraStore (clustering order on
// message reads, recency sort plus in-memory slicing everywhere) so handlers
// behave identically in both modes. Writes are serialized by a mutex, so the
// allocator races of the real store do not occur here.
type MemoryStore struct {
	mu         sync.Mutex
	counters   map[string]int64
	messages   map[int64][]Message
	summaries  map[int64]ConversationSummary
	identities []ConversationIdentity
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters:  make(map[string]int64),
		messages:  make(map[int64][]Message),
		summaries: make(map[int64]ConversationSummary),
	}
}

func (s *MemoryStore) nextIDLocked(name string) int64 {
	s.counters[name]++
	return s.counters[name]
}

// CreateMessage appends the message and refreshes the conversation summary.
func (s *MemoryStore) CreateMessage(ctx context.Context, in CreateMessageInput) (Message, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := Message{
		ID:             s.nextIDLocked(CounterMessageID),
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		ReceiverID:     in.ReceiverID,
		Content:        in.Content,
		Timestamp:      now,
	}
	s.messages[in.ConversationID] = append(s.messages[in.ConversationID], msg)

	s.summaries[in.ConversationID] = ConversationSummary{
		ID:            in.ConversationID,
		SenderID:      in.SenderID,
		ReceiverID:    in.ReceiverID,
		LastTimestamp: now,
		LastMessage:   in.Content,
	}

	return msg, nil
}

// GetConversationMessages pages the conversation newest-first.
func (s *MemoryStore) GetConversationMessages(ctx context.Context, conversationID int64, page, limit int) ([]Message, int, error) {
	return s.getMessages(ctx, conversationID, time.Time{}, page, limit)
}

// GetMessagesBeforeTimestamp pages messages strictly older than before.
func (s *MemoryStore) GetMessagesBeforeTimestamp(ctx context.Context, conversationID int64, before time.Time, page, limit int) ([]Message, int, error) {
	return s.getMessages(ctx, conversationID, before, page, limit)
}

func (s *MemoryStore) getMessages(ctx context.Context, conversationID int64, before time.Time, page, limit int) ([]Message, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	s.mu.Lock()
	snap := make([]Message, 0, len(s.messages[conversationID]))
	for _, m := range s.messages[conversationID] {
		if !before.IsZero() && !m.Timestamp.Before(before) {
			continue
		}
		snap = append(snap, m)
	}
	s.mu.Unlock()

	sortMessagesByClustering(snap)

	out, total := paginate(snap, page, limit)
	return out, total, nil
}

// GetUserConversations pages the user's conversations by recency.
func (s *MemoryStore) GetUserConversations(ctx context.Context, userID int64, page, limit int) ([]ConversationSummary, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	s.mu.Lock()
	merged := make([]ConversationSummary, 0, len(s.summaries))
	for _, c := range s.summaries {
		if c.SenderID == userID || c.ReceiverID == userID {
			merged = append(merged, c)
		}
	}
	s.mu.Unlock()

	sortSummariesByRecency(merged)

	out, total := paginate(merged, page, limit)
	return out, total, nil
}

// CreateConversation writes identity and bare summary rows without any
// existence check, mirroring the Cassandra path.
func (s *MemoryStore) CreateConversation(ctx context.Context, senderID, receiverID int64) (ConversationIdentity, error) {
	if err := ctx.Err(); err != nil {
		return ConversationIdentity{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createConversationLocked(senderID, receiverID), nil
}

func (s *MemoryStore) createConversationLocked(senderID, receiverID int64) ConversationIdentity {
	ident := ConversationIdentity{
		ID:         s.nextIDLocked(CounterConversationID),
		SenderID:   senderID,
		ReceiverID: receiverID,
		CreatedAt:  time.Now().UTC(),
	}
	s.identities = append(s.identities, ident)
	s.summaries[ident.ID] = ConversationSummary{
		ID:            ident.ID,
		SenderID:      senderID,
		ReceiverID:    receiverID,
		LastTimestamp: ident.CreatedAt,
	}
	return ident
}

// GetConversation looks up a summary; missing reads as found=false.
func (s *MemoryStore) GetConversation(ctx context.Context, conversationID int64) (ConversationSummary, bool, error) {
	if err := ctx.Err(); err != nil {
		return ConversationSummary{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.summaries[conversationID]
	return c, ok, nil
}

// CreateOrGetConversation returns the conversation between the pair in either
// participant order, creating it when neither ordering exists.
func (s *MemoryStore) CreateOrGetConversation(ctx context.Context, user1ID, user2ID int64) (ConversationSummary, error) {
	if err := ctx.Err(); err != nil {
		return ConversationSummary{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ident := range s.identities {
		if (ident.SenderID == user1ID && ident.ReceiverID == user2ID) ||
			(ident.SenderID == user2ID && ident.ReceiverID == user1ID) {
			return s.summaries[ident.ID], nil
		}
	}

	ident := s.createConversationLocked(user1ID, user2ID)
	return s.summaries[ident.ID], nil
}
