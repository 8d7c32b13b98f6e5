package chat

import "sort"

// paginate slices the offset/limit window for the given page out of rows and
// returns it with the fetched-set size. total is always the size of rows, not
// the window: callers fetch everything and slice in memory.
//
// page and limit arrive unvalidated. The offset arithmetic is applied as-is;
// any window falling outside the fetched set (non-positive pages included)
// reads as an empty page.
func paginate[T any](rows []T, page, limit int) ([]T, int) {
	total := len(rows)

	offset := (page - 1) * limit
	if limit <= 0 || offset < 0 || offset >= total {
		return []T{}, total
	}

	end := offset + limit
	if end > total {
		end = total
	}
	return rows[offset:end], total
}

// sortSummariesByRecency orders conversation summaries by last_timestamp
// descending, in place. The two participant scans come back unordered, so this
// is the only ordering the conversation list gets.
func sortSummariesByRecency(rows []ConversationSummary) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].LastTimestamp.After(rows[j].LastTimestamp)
	})
}

// sortMessagesByClustering mirrors the messages table clustering order:
// timestamp descending, message_id ascending within equal timestamps.
func sortMessagesByClustering(rows []Message) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Timestamp.Equal(rows[j].Timestamp) {
			return rows[i].ID < rows[j].ID
		}
		return rows[i].Timestamp.After(rows[j].Timestamp)
	})
}
