package chat

import (
	"context"
	"time"
)

// Row is a single result row keyed by column name, as returned by the driver.
type Row map[string]any

// Executor runs one CQL statement and returns every resulting row.
//
// This is the single seam between the stores and the cluster: every operation
// in this package is a sequence of Execute round trips with no coordination
// between them. Tests substitute an in-memory fake at this seam.
type Executor interface {
	Execute(ctx context.Context, stmt string, params ...any) ([]Row, error)
}

// Int64 reads an integer column. The driver hands back int for INT columns and
// int64 for COUNTER/BIGINT, so both are accepted. Missing or non-integer
// columns read as 0.
func (r Row) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	}
	return 0
}

// Time reads a timestamp column; missing columns read as the zero time.
func (r Row) Time(col string) time.Time {
	v, _ := r[col].(time.Time)
	return v
}

// String reads a text column; missing or null columns read as "".
func (r Row) String(col string) string {
	v, _ := r[col].(string)
	return v
}
