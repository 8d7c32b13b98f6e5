package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func newTestStore(t *testing.T) (*CassandraStore, *fakeCluster) {
	t.Helper()

	fake := newFakeCluster()
	store, err := NewCassandraStore(fake, testLogger())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, fake
}

func TestCreateMessage_FirstMessageCreatesSummary(t *testing.T) {
	t.Parallel()

	store, fake := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	msg, err := store.CreateMessage(ctx, CreateMessageInput{
		ConversationID: 7, SenderID: 1, ReceiverID: 2, Content: "hello", Now: now,
	})
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	if msg.ID != 1 {
		t.Fatalf("message id: got %d want 1", msg.ID)
	}
	if !msg.Timestamp.Equal(now) {
		t.Fatalf("timestamp: got %v want %v", msg.Timestamp, now)
	}

	summary, found, err := store.GetConversation(ctx, 7)
	if err != nil || !found {
		t.Fatalf("get conversation: found=%v err=%v", found, err)
	}
	if summary.LastMessage != "hello" || !summary.LastTimestamp.Equal(now) {
		t.Fatalf("summary not created from message: %+v", summary)
	}

	if n := fake.statementCount(stmtInsertSummary); n != 1 {
		t.Fatalf("expected 1 summary insert, got %d", n)
	}
}

func TestCreateMessage_LaterMessageOverwritesSummary(t *testing.T) {
	t.Parallel()

	store, fake := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if _, err := store.CreateMessage(ctx, CreateMessageInput{
		ConversationID: 7, SenderID: 1, ReceiverID: 2, Content: "first", Now: base,
	}); err != nil {
		t.Fatalf("create message: %v", err)
	}

	// Reply flows the other way; the summary must reflect the new direction.
	if _, err := store.CreateMessage(ctx, CreateMessageInput{
		ConversationID: 7, SenderID: 2, ReceiverID: 1, Content: "second", Now: base.Add(time.Minute),
	}); err != nil {
		t.Fatalf("create message: %v", err)
	}

	summary, _, err := store.GetConversation(ctx, 7)
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if summary.LastMessage != "second" || summary.SenderID != 2 || summary.ReceiverID != 1 {
		t.Fatalf("summary not overwritten: %+v", summary)
	}
	if !summary.LastTimestamp.Equal(base.Add(time.Minute)) {
		t.Fatalf("last timestamp not advanced: %v", summary.LastTimestamp)
	}

	if n := fake.statementCount(stmtUpdateSummary); n != 1 {
		t.Fatalf("expected 1 summary update, got %d", n)
	}
}

func TestCreateMessage_SummaryFailureDoesNotLoseMessage(t *testing.T) {
	t.Parallel()

	fake := newFakeCluster()
	exec := &scriptedExecutor{inner: fake, fail: map[string]error{stmtCheckSummary: errors.New("timeout")}}
	store, err := NewCassandraStore(exec, testLogger())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	msg, err := store.CreateMessage(ctx, CreateMessageInput{
		ConversationID: 7, SenderID: 1, ReceiverID: 2, Content: "hello",
	})
	if err != nil {
		t.Fatalf("message must survive a lost summary update: %v", err)
	}

	// The message row landed even though the summary never did.
	msgs, total, err := store.GetConversationMessages(ctx, 7, 1, 20)
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if total != 1 || len(msgs) != 1 || msgs[0].ID != msg.ID {
		t.Fatalf("message row missing after summary failure: total=%d msgs=%v", total, msgs)
	}
	if _, found, _ := store.GetConversation(ctx, 7); found {
		t.Fatalf("summary unexpectedly present")
	}
}

func TestCreateMessage_MessageInsertFailurePropagates(t *testing.T) {
	t.Parallel()

	fake := newFakeCluster()
	boom := errors.New("unavailable")
	exec := &scriptedExecutor{inner: fake, fail: map[string]error{stmtInsertMessage: boom}}
	store, err := NewCassandraStore(exec, testLogger())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.CreateMessage(context.Background(), CreateMessageInput{
		ConversationID: 7, SenderID: 1, ReceiverID: 2, Content: "hello",
	}); !errors.Is(err, boom) {
		t.Fatalf("expected insert failure to propagate, got %v", err)
	}
}

func TestGetConversationMessages_OrderAndTiling(t *testing.T) {
	t.Parallel()

	store, fake := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	const n = 7
	for i := 0; i < n; i++ {
		if _, err := store.CreateMessage(ctx, CreateMessageInput{
			ConversationID: 3, SenderID: 1, ReceiverID: 2,
			Content: fmt.Sprintf("m%d", i),
			Now:     base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("create message %d: %v", i, err)
		}
	}

	// Pages are newest-first and tiling page by page reconstructs the set.
	seen := make(map[int64]bool)
	var prev time.Time
	for page := 1; ; page++ {
		msgs, total, err := store.GetConversationMessages(ctx, 3, page, 3)
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if total != n {
			t.Fatalf("page %d: total %d want %d", page, total, n)
		}
		if len(msgs) == 0 {
			break
		}
		for _, m := range msgs {
			if !prev.IsZero() && m.Timestamp.After(prev) {
				t.Fatalf("messages not timestamp-descending across pages")
			}
			prev = m.Timestamp
			if seen[m.ID] {
				t.Fatalf("duplicate message %d across pages", m.ID)
			}
			seen[m.ID] = true
		}
	}
	if len(seen) != n {
		t.Fatalf("tiling dropped messages: got %d want %d", len(seen), n)
	}

	// The count statement is issued on every read even though its result is
	// discarded in favor of the fetched-set size.
	if got := fake.statementCount(stmtCountMessages); got == 0 {
		t.Fatalf("count statement never issued")
	}
}

func TestGetConversationMessages_EmptyConversation(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)

	msgs, total, err := store.GetConversationMessages(context.Background(), 42, 1, 20)
	if err != nil {
		t.Fatalf("empty conversation must not fail: %v", err)
	}
	if total != 0 || len(msgs) != 0 {
		t.Fatalf("got (%v, %d), want ([], 0)", msgs, total)
	}
}

func TestGetMessagesBeforeTimestamp_FiltersStrictly(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if _, err := store.CreateMessage(ctx, CreateMessageInput{
			ConversationID: 3, SenderID: 1, ReceiverID: 2,
			Content: fmt.Sprintf("m%d", i),
			Now:     base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("create message: %v", err)
		}
	}

	cutoff := base.Add(2 * time.Minute)
	older, total, err := store.GetMessagesBeforeTimestamp(ctx, 3, cutoff, 1, 20)
	if err != nil {
		t.Fatalf("before timestamp: %v", err)
	}
	if total != 2 || len(older) != 2 {
		t.Fatalf("got total %d len %d, want 2/2", total, len(older))
	}
	for _, m := range older {
		if !m.Timestamp.Before(cutoff) {
			t.Fatalf("message %d at %v not strictly before %v", m.ID, m.Timestamp, cutoff)
		}
	}

	// The bounded read is a subset of the full read.
	all, _, err := store.GetConversationMessages(ctx, 3, 1, 20)
	if err != nil {
		t.Fatalf("full read: %v", err)
	}
	ids := make(map[int64]bool, len(all))
	for _, m := range all {
		ids[m.ID] = true
	}
	for _, m := range older {
		if !ids[m.ID] {
			t.Fatalf("bounded read returned unknown message %d", m.ID)
		}
	}
}

func TestCreateOrGetConversation_DedupAcrossOrderings(t *testing.T) {
	t.Parallel()

	store, fake := newTestStore(t)
	ctx := context.Background()

	first, err := store.CreateOrGetConversation(ctx, 1, 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID != 1 {
		t.Fatalf("fresh conversation id: got %d want 1", first.ID)
	}
	if first.LastMessage != "" {
		t.Fatalf("fresh conversation has a last message: %+v", first)
	}

	same, err := store.CreateOrGetConversation(ctx, 1, 2)
	if err != nil {
		t.Fatalf("get same order: %v", err)
	}
	reversed, err := store.CreateOrGetConversation(ctx, 2, 1)
	if err != nil {
		t.Fatalf("get reversed order: %v", err)
	}
	if same.ID != first.ID || reversed.ID != first.ID {
		t.Fatalf("dedup failed: first=%d same=%d reversed=%d", first.ID, same.ID, reversed.ID)
	}

	if n := fake.statementCount(stmtInsertIdentity); n != 1 {
		t.Fatalf("expected a single identity row, got %d inserts", n)
	}
	// Both orderings are probed on every call, hit or not.
	if n := fake.statementCount(stmtProbeIdentity); n != 6 {
		t.Fatalf("expected 2 probes per call (6 total), got %d", n)
	}
}

func TestCreateConversation_NoDedup(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	a, err := store.CreateConversation(ctx, 1, 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := store.CreateConversation(ctx, 1, 2)
	if err != nil {
		t.Fatalf("create again: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("CreateConversation must not dedup; got same id %d", a.ID)
	}
}

func TestGetConversation_Absent(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)

	_, found, err := store.GetConversation(context.Background(), 99)
	if err != nil {
		t.Fatalf("absent conversation must not fail: %v", err)
	}
	if found {
		t.Fatalf("expected found=false")
	}
}

func TestGetUserConversations_MergesAndSortsByRecency(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// User 1 appears as sender in one conversation and receiver in another;
	// a third conversation does not involve them at all.
	mustCreateConversationMessage(t, store, 1, 1, 2, base.Add(-2*time.Hour))
	mustCreateConversationMessage(t, store, 2, 3, 1, base)
	mustCreateConversationMessage(t, store, 3, 3, 4, base.Add(-time.Hour))

	convs, total, err := store.GetUserConversations(ctx, 1, 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(convs) != 2 {
		t.Fatalf("got total %d len %d, want 2/2", total, len(convs))
	}
	if convs[0].ID != 2 || convs[1].ID != 1 {
		t.Fatalf("not ordered by recency: got [%d %d]", convs[0].ID, convs[1].ID)
	}
}

func TestGetUserConversations_NoConversations(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)

	convs, total, err := store.GetUserConversations(context.Background(), 5, 1, 20)
	if err != nil {
		t.Fatalf("empty scans must not fail: %v", err)
	}
	if total != 0 || len(convs) != 0 {
		t.Fatalf("got (%v, %d), want ([], 0)", convs, total)
	}
}

// TestSendAndReadScenario walks the canonical flow end to end: fresh
// conversation, first message, summary refresh, single-page listing.
func TestSendAndReadScenario(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	conv, err := store.CreateOrGetConversation(ctx, 1, 2)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	if conv.ID != 1 || conv.LastMessage != "" {
		t.Fatalf("fresh conversation: %+v", conv)
	}

	msg, err := store.CreateMessage(ctx, CreateMessageInput{
		ConversationID: conv.ID, SenderID: 1, ReceiverID: 2, Content: "hi",
	})
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	if msg.ID != 1 {
		t.Fatalf("first message id: got %d want 1", msg.ID)
	}

	summary, found, err := store.GetConversation(ctx, conv.ID)
	if err != nil || !found {
		t.Fatalf("get conversation: found=%v err=%v", found, err)
	}
	if summary.LastMessage != "hi" || !summary.LastTimestamp.Equal(msg.Timestamp) {
		t.Fatalf("summary does not reflect the message: %+v", summary)
	}

	msgs, total, err := store.GetConversationMessages(ctx, conv.ID, 1, 20)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if total != 1 || len(msgs) != 1 || msgs[0].ID != 1 || msgs[0].Content != "hi" {
		t.Fatalf("listing: got (%v, %d)", msgs, total)
	}
}

func mustCreateConversationMessage(t *testing.T, store *CassandraStore, conv, sender, receiver int64, at time.Time) {
	t.Helper()

	if _, err := store.CreateMessage(context.Background(), CreateMessageInput{
		ConversationID: conv, SenderID: sender, ReceiverID: receiver,
		Content: fmt.Sprintf("in conversation %d", conv),
		Now:     at,
	}); err != nil {
		t.Fatalf("create message in conversation %d: %v", conv, err)
	}
}
