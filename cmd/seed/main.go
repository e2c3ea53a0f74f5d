// Command seed fills the keyspace with sample users, conversations, and
// messages for local development. It writes through the real stores so the
// denormalized tables stay consistent with each other.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/wirechat/messenger/internal/cassandra"
	"github.com/wirechat/messenger/internal/config"
	"github.com/wirechat/messenger/internal/models"
	"github.com/wirechat/messenger/internal/store"
)

const insertUserCQL = `INSERT INTO users (user_id, username, created_at) VALUES (?, ?, ?)`

func main() {
	users := flag.Int("users", 10, "number of users to create")
	conversations := flag.Int("conversations", 15, "number of conversations to create")
	maxMessages := flag.Int("max-messages", 50, "maximum messages per conversation")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	client := cassandra.NewClient(cassandra.Config{
		Host:       cfg.CassandraHost,
		Port:       cfg.CassandraPort,
		Keyspace:   cfg.CassandraKeyspace,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay(),
		Timeout:    cfg.QueryTimeout,
	})
	ctx := context.Background()
	if err := client.ConnectWithRetry(ctx); err != nil {
		log.Fatalf("Failed to connect to Cassandra: %v", err)
	}
	defer client.Close()

	messageStore := store.NewMessageStore(client)
	conversationStore := store.NewConversationStore(client)

	seeded := make([]models.User, 0, *users)
	for i := 0; i < *users; i++ {
		user := models.User{
			ID:        uuid.New(),
			Username:  usernameFor(i),
			CreatedAt: time.Now().UTC(),
		}
		if _, err := client.Execute(ctx, insertUserCQL, gocql.UUID(user.ID), user.Username, user.CreatedAt); err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		seeded = append(seeded, user)
	}
	log.Printf("Created %d users", len(seeded))

	messageCount := 0
	conversationCount := 0
	for i := 0; i < *conversations; i++ {
		a := seeded[rand.Intn(len(seeded))]
		b := seeded[rand.Intn(len(seeded))]
		if a.ID == b.ID {
			continue
		}

		conv, err := conversationStore.CreateOrGet(ctx, a.ID, b.ID)
		if err != nil {
			log.Fatalf("Failed to create conversation: %v", err)
		}
		conversationCount++

		n := 1 + rand.Intn(*maxMessages)
		for j := 0; j < n; j++ {
			sender, receiver := a, b
			if j%2 == 1 {
				sender, receiver = b, a
			}
			msg, err := messageStore.Create(ctx, conv.ID, sender.ID, receiver.ID, sampleContent())
			if err != nil {
				log.Fatalf("Failed to create message: %v", err)
			}
			if err := conversationStore.UpdateLastMessage(ctx, conv.ID, sender.ID, receiver.ID, msg.CreatedAt, msg.Content); err != nil {
				log.Fatalf("Failed to update conversation: %v", err)
			}
			messageCount++
		}
	}

	log.Printf("Seeding complete: %d conversations, %d messages", conversationCount, messageCount)
}

var usernames = []string{
	"alice", "bob", "carol", "dave", "erin", "frank", "grace", "heidi", "ivan", "judy",
}

func usernameFor(i int) string {
	if i < len(usernames) {
		return usernames[i]
	}
	return usernames[i%len(usernames)] + uuid.NewString()[:8]
}

var phrases = []string{
	"hey, how's it going?",
	"did you see the game last night?",
	"running a bit late, be there soon",
	"sounds good to me",
	"let's catch up this weekend",
	"can you send me that link again?",
	"haha, exactly",
	"on my way",
}

func sampleContent() string {
	return phrases[rand.Intn(len(phrases))]
}
