// Package schema holds the keyspace and table definitions plus their
// idempotent provisioning. It is deployment tooling, run once by
// cmd/provision, and never consulted on the request path.
package schema

import (
	"context"
	"fmt"

	"github.com/wirechat/messenger/internal/cassandra"
	"github.com/wirechat/messenger/internal/logger"
)

const createKeyspaceCQL = `
	CREATE KEYSPACE IF NOT EXISTS %s
	WITH REPLICATION = {
		'class': 'SimpleStrategy',
		'replication_factor': 3
	}`

// The clustering orders below are what make newest-first reads cheap: the
// stores still re-sort defensively, but the storage layout already agrees
// with every read pattern.
var createTableCQL = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id uuid,
		username text,
		created_at timestamp,
		PRIMARY KEY (user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS messages (
		conversation_id int,
		timestamp timestamp,
		message_id uuid,
		sender_id uuid,
		receiver_id uuid,
		content text,
		read_at timestamp,
		PRIMARY KEY (conversation_id, timestamp, message_id)
	) WITH CLUSTERING ORDER BY (timestamp DESC, message_id ASC)`,

	`CREATE TABLE IF NOT EXISTS messages_by_user (
		user_id uuid,
		conversation_id int,
		timestamp timestamp,
		message_id uuid,
		sender_id uuid,
		receiver_id uuid,
		content text,
		read_at timestamp,
		PRIMARY KEY ((user_id), conversation_id, timestamp, message_id)
	) WITH CLUSTERING ORDER BY (conversation_id ASC, timestamp DESC, message_id ASC)`,

	`CREATE TABLE IF NOT EXISTS conversations (
		conversation_id int,
		user1_id uuid,
		user2_id uuid,
		created_at timestamp,
		last_message_at timestamp,
		last_message_content text,
		PRIMARY KEY (conversation_id)
	)`,

	`CREATE TABLE IF NOT EXISTS conversations_by_user (
		user_id uuid,
		conversation_id int,
		other_user_id uuid,
		last_message_at timestamp,
		last_message_content text,
		PRIMARY KEY (user_id, last_message_at, conversation_id)
	) WITH CLUSTERING ORDER BY (last_message_at DESC, conversation_id ASC)`,

	// Canonical pair lookup: one row per unordered participant pair,
	// written with a conditional insert so two concurrent first messages
	// cannot create two conversations.
	`CREATE TABLE IF NOT EXISTS conversation_by_pair (
		user_lo uuid,
		user_hi uuid,
		conversation_id int,
		PRIMARY KEY ((user_lo, user_hi))
	)`,

	// Compare-and-set sequence rows used for conversation id allocation.
	`CREATE TABLE IF NOT EXISTS id_sequences (
		name text,
		value int,
		PRIMARY KEY (name)
	)`,
}

// EnsureKeyspace creates the keyspace if it does not exist. The executor
// must be connected without a keyspace.
func EnsureKeyspace(ctx context.Context, exec cassandra.Executor, keyspace string) error {
	log := logger.New("schema")
	log.Info("ensuring keyspace %q exists", keyspace)
	if _, err := exec.Execute(ctx, fmt.Sprintf(createKeyspaceCQL, keyspace)); err != nil {
		return fmt.Errorf("creating keyspace %s: %w", keyspace, err)
	}
	return nil
}

// EnsureTables creates every table the stores read and write. Safe to run
// repeatedly.
func EnsureTables(ctx context.Context, exec cassandra.Executor) error {
	log := logger.New("schema")
	log.Info("ensuring %d tables exist", len(createTableCQL))
	for _, stmt := range createTableCQL {
		if _, err := exec.Execute(ctx, stmt); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}
	return nil
}
