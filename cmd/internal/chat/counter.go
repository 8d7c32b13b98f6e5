package chat

import (
	"context"
	"fmt"
	"log/slog"
)

// Counter names in the indexes table.
const (
	CounterMessageID      = "message_id"
	CounterConversationID = "conversation_id"
)

// Allocator hands out sequential ids from the shared counter table.
//
// The protocol is read-then-increment, not fetch-and-add: the returned id is
// computed in this process from the value read, while the persisted counter is
// advanced by a separate blind increment. Two concurrent callers can read the
// same value before either increment lands and both receive the same id.
// Uniqueness is therefore best-effort.
type Allocator struct {
	exec Executor
	log  *slog.Logger
}

// NewAllocator builds an Allocator over the given executor.
func NewAllocator(exec Executor, log *slog.Logger) *Allocator {
	if log == nil {
		log = slog.Default()
	}
	return &Allocator{exec: exec, log: log}
}

// NextID returns currentValue+1 for the named counter (absent counters read as
// 0) and issues the increment. A failed increment after a successful read only
// under-advances the counter relative to the id already handed out; that drift
// is expected, so the id is still returned.
func (a *Allocator) NextID(ctx context.Context, name string) (int64, error) {
	rows, err := a.exec.Execute(ctx, stmtSelectCounter, name)
	if err != nil {
		return 0, fmt.Errorf("read counter %q: %w", name, err)
	}

	next := int64(1)
	if len(rows) > 0 {
		next = rows[0].Int64("index_value") + 1
	}

	if _, err := a.exec.Execute(ctx, stmtIncrementCounter, name); err != nil {
		a.log.Warn("counter.increment.fail", "name", name, "id", next, "err", err)
	}

	return next, nil
}
