package chat

import (
	"context"
	"errors"

	"github.com/gocql/gocql"
)

// SessionExecutor adapts a gocql session to the Executor seam.
//
// Ownership model:
// - SessionExecutor does NOT own the session. The caller must close it.
type SessionExecutor struct {
	session *gocql.Session
}

// NewSessionExecutor wraps an open gocql session.
func NewSessionExecutor(session *gocql.Session) (*SessionExecutor, error) {
	if session == nil {
		return nil, errors.New("chat: nil session")
	}
	return &SessionExecutor{session: session}, nil
}

// Execute runs stmt with params and materializes the full result set.
func (e *SessionExecutor) Execute(ctx context.Context, stmt string, params ...any) ([]Row, error) {
	if e == nil || e.session == nil {
		return nil, errors.New("chat: nil executor")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	iter := e.session.Query(stmt, params...).WithContext(ctx).Iter()
	raw, err := iter.SliceMap()
	if cerr := iter.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}

	rows := make([]Row, len(raw))
	for i, m := range raw {
		rows[i] = Row(m)
	}
	return rows, nil
}
