package chat

// Every CQL statement issued by this package. Keeping them in one place pins
// the wire contract with the schema in schema.go and lets the test fake match
// on exact statement identity.
//
// The sender_id/receiver_id lookups carry ALLOW FILTERING: neither column is
// part of a key on its tables, so those reads are full scans.
const (
	stmtSelectCounter    = `SELECT index_value FROM indexes WHERE index_name = ?`
	stmtIncrementCounter = `UPDATE indexes SET index_value = index_value + 1 WHERE index_name = ?`

	stmtInsertMessage = `INSERT INTO messages (message_id, conversation_id, sender_id, receiver_id, content, timestamp) VALUES (?, ?, ?, ?, ?, ?)`

	stmtSelectMessages = `SELECT message_id, sender_id, receiver_id, content, timestamp FROM messages WHERE conversation_id = ? ORDER BY timestamp DESC`
	stmtCountMessages  = `SELECT COUNT(*) AS count FROM messages WHERE conversation_id = ?`

	stmtSelectMessagesBefore = `SELECT message_id, sender_id, receiver_id, content, timestamp FROM messages WHERE conversation_id = ? AND timestamp < ? ORDER BY timestamp DESC`
	stmtCountMessagesBefore  = `SELECT COUNT(*) AS count FROM messages WHERE conversation_id = ? AND timestamp < ?`

	stmtSelectSummary = `SELECT conversation_id, sender_id, receiver_id, last_timestamp, last_message FROM user_conversations WHERE conversation_id = ?`
	stmtCheckSummary  = `SELECT conversation_id FROM user_conversations WHERE conversation_id = ?`
	stmtInsertSummary = `INSERT INTO user_conversations (conversation_id, sender_id, receiver_id, last_timestamp, last_message) VALUES (?, ?, ?, ?, ?)`
	stmtUpdateSummary = `UPDATE user_conversations SET last_timestamp = ?, last_message = ?, sender_id = ?, receiver_id = ? WHERE conversation_id = ?`

	stmtSummariesBySender   = `SELECT conversation_id, sender_id, receiver_id, last_timestamp, last_message FROM user_conversations WHERE sender_id = ? ALLOW FILTERING`
	stmtSummariesByReceiver = `SELECT conversation_id, sender_id, receiver_id, last_timestamp, last_message FROM user_conversations WHERE receiver_id = ? ALLOW FILTERING`

	stmtInsertIdentity = `INSERT INTO conversations (conversation_id, sender_id, receiver_id, last_timestamp) VALUES (?, ?, ?, ?)`
	stmtProbeIdentity  = `SELECT conversation_id FROM conversations WHERE sender_id = ? AND receiver_id = ? ALLOW FILTERING`
)
