package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the canonical record of a two-party conversation. The
// participant pair is unordered; User1ID/User2ID only reflect who was named
// first when the row was created. LastMessageAt and LastMessageContent are
// denormalized copies of the most recent message, refreshed on every write.
type Conversation struct {
	ID                 int       `json:"id"`
	User1ID            uuid.UUID `json:"user1_id"`
	User2ID            uuid.UUID `json:"user2_id"`
	CreatedAt          time.Time `json:"created_at"`
	LastMessageAt      time.Time `json:"last_message_at"`
	LastMessageContent string    `json:"last_message_content,omitempty"`
}
