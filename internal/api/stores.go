package api

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wirechat/messenger/internal/models"
	"github.com/wirechat/messenger/internal/pagination"
)

// MessageStore is the message persistence surface the handlers depend on.
type MessageStore interface {
	Create(ctx context.Context, conversationID int, senderID, receiverID uuid.UUID, content string) (*models.Message, error)
	ListByConversation(ctx context.Context, conversationID, page, limit int) (pagination.PagedResult[models.Message], error)
	ListBefore(ctx context.Context, conversationID int, before time.Time, page, limit int) (pagination.PagedResult[models.Message], error)
	ListLatest(ctx context.Context, conversationID int, before *time.Time, limit int) ([]models.Message, error)
	MarkRead(ctx context.Context, conversationID int, messageID uuid.UUID) error
}

// ConversationStore is the conversation persistence surface the handlers
// depend on.
type ConversationStore interface {
	CreateOrGet(ctx context.Context, user1ID, user2ID uuid.UUID) (*models.Conversation, error)
	Get(ctx context.Context, conversationID int) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) (pagination.PagedResult[models.Conversation], error)
	UpdateLastMessage(ctx context.Context, conversationID int, senderID, receiverID uuid.UUID, at time.Time, content string) error
}
