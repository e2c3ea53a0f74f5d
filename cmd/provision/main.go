// Command provision creates the keyspace and tables. It is run once at
// deployment time; the server never touches the schema.
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/wirechat/messenger/internal/cassandra"
	"github.com/wirechat/messenger/internal/config"
	"github.com/wirechat/messenger/internal/schema"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	// Keyspace creation needs a session without a keyspace bound.
	admin := cassandra.NewClient(cassandra.Config{
		Host:       cfg.CassandraHost,
		Port:       cfg.CassandraPort,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay(),
		Timeout:    cfg.QueryTimeout,
	})
	if err := admin.ConnectWithRetry(ctx); err != nil {
		log.Fatalf("Failed to connect to Cassandra: %v", err)
	}
	if err := schema.EnsureKeyspace(ctx, admin, cfg.CassandraKeyspace); err != nil {
		log.Fatalf("Failed to create keyspace: %v", err)
	}
	admin.Close()

	client := cassandra.NewClient(cassandra.Config{
		Host:       cfg.CassandraHost,
		Port:       cfg.CassandraPort,
		Keyspace:   cfg.CassandraKeyspace,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay(),
		Timeout:    cfg.QueryTimeout,
	})
	defer client.Close()
	if err := client.Connect(); err != nil {
		log.Fatalf("Failed to connect to keyspace %q: %v", cfg.CassandraKeyspace, err)
	}
	if err := schema.EnsureTables(ctx, client); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	log.Println("Schema provisioning completed")
}
