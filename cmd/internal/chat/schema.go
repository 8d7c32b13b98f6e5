package chat

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Schema bootstrap for the messenger keyspace. The four tables:
//
//   - indexes:            one counter row per logical sequence
//   - messages:           partition per conversation, clustered newest-first
//   - user_conversations: one summary row per conversation
//   - conversations:      identity rows for pair-existence checks
//
// Clustering on messages is (timestamp DESC, message_id ASC) so reads come
// back newest-first without an ORDER BY from the application.
const (
	ddlIndexes = `CREATE TABLE IF NOT EXISTS indexes (
	index_name TEXT,
	index_value COUNTER,
	PRIMARY KEY (index_name)
)`

	ddlMessages = `CREATE TABLE IF NOT EXISTS messages (
	conversation_id INT,
	sender_id INT,
	receiver_id INT,
	timestamp TIMESTAMP,
	message_id INT,
	content TEXT,
	PRIMARY KEY (conversation_id, timestamp, message_id)
) WITH CLUSTERING ORDER BY (timestamp DESC, message_id ASC)`

	ddlSummaries = `CREATE TABLE IF NOT EXISTS user_conversations (
	sender_id INT,
	receiver_id INT,
	conversation_id INT,
	last_timestamp TIMESTAMP,
	last_message TEXT,
	PRIMARY KEY (conversation_id)
)`

	ddlIdentities = `CREATE TABLE IF NOT EXISTS conversations (
	conversation_id INT,
	sender_id INT,
	receiver_id INT,
	last_timestamp TIMESTAMP,
	PRIMARY KEY (conversation_id, sender_id)
)`
)

var keyspaceRE = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// CreateKeyspace creates the keyspace if it does not exist (SimpleStrategy,
// replication factor 1, single-node development topology). The executor must
// be connected without a keyspace scope. The name is validated because CQL has
// no placeholder position for identifiers.
func CreateKeyspace(ctx context.Context, exec Executor, keyspace string) error {
	if !keyspaceRE.MatchString(keyspace) {
		return errors.New("chat: invalid keyspace identifier")
	}

	stmt := fmt.Sprintf(`CREATE KEYSPACE IF NOT EXISTS %s WITH REPLICATION = {
	'class': 'SimpleStrategy',
	'replication_factor': 1
}`, keyspace)

	if _, err := exec.Execute(ctx, stmt); err != nil {
		return fmt.Errorf("create keyspace %s: %w", keyspace, err)
	}
	return nil
}

// DropKeyspace removes the keyspace and everything in it. Used by the
// integration tests to discard throwaway keyspaces.
func DropKeyspace(ctx context.Context, exec Executor, keyspace string) error {
	if !keyspaceRE.MatchString(keyspace) {
		return errors.New("chat: invalid keyspace identifier")
	}
	if _, err := exec.Execute(ctx, `DROP KEYSPACE IF EXISTS `+keyspace); err != nil {
		return fmt.Errorf("drop keyspace %s: %w", keyspace, err)
	}
	return nil
}

// RecreateTables drops and recreates the four tables inside the executor's
// keyspace. Existing rows are discarded.
func RecreateTables(ctx context.Context, exec Executor) error {
	steps := []struct {
		name string
		stmt string
	}{
		{"drop indexes", `DROP TABLE IF EXISTS indexes`},
		{"create indexes", ddlIndexes},
		{"drop messages", `DROP TABLE IF EXISTS messages`},
		{"create messages", ddlMessages},
		{"drop user_conversations", `DROP TABLE IF EXISTS user_conversations`},
		{"create user_conversations", ddlSummaries},
		{"drop conversations", `DROP TABLE IF EXISTS conversations`},
		{"create conversations", ddlIdentities},
	}

	for _, step := range steps {
		if _, err := exec.Execute(ctx, step.stmt); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}
	return nil
}
