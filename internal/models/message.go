package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single message within a conversation. Messages are immutable
// once written except for ReadAt, which is set when the receiver marks the
// message as read.
type Message struct {
	ID             uuid.UUID  `json:"id"`
	ConversationID int        `json:"conversation_id"`
	SenderID       uuid.UUID  `json:"sender_id"`
	ReceiverID     uuid.UUID  `json:"receiver_id"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"created_at"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
}

// SendMessageRequest is the structure for message creation requests.
// ConversationID is optional; when absent the conversation for the pair is
// resolved (or created) before the message is written.
type SendMessageRequest struct {
	SenderID       uuid.UUID `json:"sender_id" binding:"required"`
	ReceiverID     uuid.UUID `json:"receiver_id" binding:"required"`
	Content        string    `json:"content" binding:"required,min=1"`
	ConversationID *int      `json:"conversation_id,omitempty"`
}
