package chat

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// fakeCluster is an in-memory stand-in for the Cassandra session at the
// Executor seam. It understands exactly the statements this package issues and
// applies them to plain maps/slices, mirroring the storage semantics that
// matter: counter rows, clustering order on message reads, and unkeyed
// participant scans. It also logs every statement so tests can assert on query
// patterns (e.g. the identity double probe).
type fakeCluster struct {
	mu sync.Mutex

	counters   map[string]int64
	messages   []fakeMessage
	summaries  map[int64]ConversationSummary
	identities []ConversationIdentity

	stmts []string
}

type fakeMessage struct {
	id        int64
	conv      int64
	sender    int64
	receiver  int64
	content   string
	timestamp time.Time
}

func newFakeCluster() *fakeCluster {
	return &fakeCluster{
		counters:  make(map[string]int64),
		summaries: make(map[int64]ConversationSummary),
	}
}

func (f *fakeCluster) Execute(ctx context.Context, stmt string, params ...any) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.stmts = append(f.stmts, stmt)

	switch stmt {
	case stmtSelectCounter:
		name := params[0].(string)
		v, ok := f.counters[name]
		if !ok {
			return nil, nil
		}
		return []Row{{"index_value": v}}, nil

	case stmtIncrementCounter:
		f.counters[params[0].(string)]++
		return nil, nil

	case stmtInsertMessage:
		f.messages = append(f.messages, fakeMessage{
			id:        asInt64(params[0]),
			conv:      asInt64(params[1]),
			sender:    asInt64(params[2]),
			receiver:  asInt64(params[3]),
			content:   params[4].(string),
			timestamp: params[5].(time.Time),
		})
		return nil, nil

	case stmtCountMessages:
		return []Row{{"count": int64(len(f.partition(asInt64(params[0]), time.Time{})))}}, nil

	case stmtCountMessagesBefore:
		return []Row{{"count": int64(len(f.partition(asInt64(params[0]), params[1].(time.Time))))}}, nil

	case stmtSelectMessages:
		return f.messageRows(asInt64(params[0]), time.Time{}), nil

	case stmtSelectMessagesBefore:
		return f.messageRows(asInt64(params[0]), params[1].(time.Time)), nil

	case stmtSelectSummary:
		c, ok := f.summaries[asInt64(params[0])]
		if !ok {
			return nil, nil
		}
		return []Row{summaryRow(c)}, nil

	case stmtCheckSummary:
		c, ok := f.summaries[asInt64(params[0])]
		if !ok {
			return nil, nil
		}
		return []Row{{"conversation_id": int(c.ID)}}, nil

	case stmtInsertSummary:
		id := asInt64(params[0])
		f.summaries[id] = ConversationSummary{
			ID:            id,
			SenderID:      asInt64(params[1]),
			ReceiverID:    asInt64(params[2]),
			LastTimestamp: params[3].(time.Time),
			LastMessage:   params[4].(string),
		}
		return nil, nil

	case stmtUpdateSummary:
		id := asInt64(params[4])
		c := f.summaries[id]
		c.ID = id
		c.LastTimestamp = params[0].(time.Time)
		c.LastMessage = params[1].(string)
		c.SenderID = asInt64(params[2])
		c.ReceiverID = asInt64(params[3])
		f.summaries[id] = c
		return nil, nil

	case stmtSummariesBySender:
		return f.summaryScan(func(c ConversationSummary) bool { return c.SenderID == asInt64(params[0]) }), nil

	case stmtSummariesByReceiver:
		return f.summaryScan(func(c ConversationSummary) bool { return c.ReceiverID == asInt64(params[0]) }), nil

	case stmtInsertIdentity:
		f.identities = append(f.identities, ConversationIdentity{
			ID:         asInt64(params[0]),
			SenderID:   asInt64(params[1]),
			ReceiverID: asInt64(params[2]),
			CreatedAt:  params[3].(time.Time),
		})
		return nil, nil

	case stmtProbeIdentity:
		sender, receiver := asInt64(params[0]), asInt64(params[1])
		var rows []Row
		for _, ident := range f.identities {
			if ident.SenderID == sender && ident.ReceiverID == receiver {
				rows = append(rows, Row{"conversation_id": int(ident.ID)})
			}
		}
		return rows, nil
	}

	return nil, fmt.Errorf("fake cluster: unexpected statement: %s", stmt)
}

// partition returns the conversation's messages in clustering order
// (timestamp DESC, message_id ASC), optionally bounded to timestamp < before.
func (f *fakeCluster) partition(conv int64, before time.Time) []fakeMessage {
	var out []fakeMessage
	for _, m := range f.messages {
		if m.conv != conv {
			continue
		}
		if !before.IsZero() && !m.timestamp.Before(before) {
			continue
		}
		out = append(out, m)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a, b := out[j-1], out[j]
			if b.timestamp.After(a.timestamp) || (b.timestamp.Equal(a.timestamp) && b.id < a.id) {
				out[j-1], out[j] = b, a
			}
		}
	}
	return out
}

func (f *fakeCluster) messageRows(conv int64, before time.Time) []Row {
	var rows []Row
	for _, m := range f.partition(conv, before) {
		rows = append(rows, Row{
			"message_id":  int(m.id),
			"sender_id":   int(m.sender),
			"receiver_id": int(m.receiver),
			"content":     m.content,
			"timestamp":   m.timestamp,
		})
	}
	return rows
}

func (f *fakeCluster) summaryScan(match func(ConversationSummary) bool) []Row {
	var rows []Row
	for _, c := range f.summaries {
		if match(c) {
			rows = append(rows, summaryRow(c))
		}
	}
	return rows
}

func summaryRow(c ConversationSummary) Row {
	return Row{
		"conversation_id": int(c.ID),
		"sender_id":       int(c.SenderID),
		"receiver_id":     int(c.ReceiverID),
		"last_timestamp":  c.LastTimestamp,
		"last_message":    c.LastMessage,
	}
}

func (f *fakeCluster) statementCount(stmt string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, s := range f.stmts {
		if s == stmt {
			n++
		}
	}
	return n
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	}
	panic(fmt.Sprintf("fake cluster: non-integer param %T", v))
}

// scriptedExecutor fails selected statements and forwards the rest.
type scriptedExecutor struct {
	inner Executor
	fail  map[string]error
}

func (s *scriptedExecutor) Execute(ctx context.Context, stmt string, params ...any) ([]Row, error) {
	if err, ok := s.fail[stmt]; ok {
		return nil, err
	}
	return s.inner.Execute(ctx, stmt, params...)
}
