package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/wirechat/messenger/internal/models"
	"github.com/wirechat/messenger/internal/pagination"
)

// MockMessageStore implements MessageStore for testing.
type MockMessageStore struct {
	mock.Mock
}

func (m *MockMessageStore) Create(ctx context.Context, conversationID int, senderID, receiverID uuid.UUID, content string) (*models.Message, error) {
	args := m.Called(ctx, conversationID, senderID, receiverID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockMessageStore) ListByConversation(ctx context.Context, conversationID, page, limit int) (pagination.PagedResult[models.Message], error) {
	args := m.Called(ctx, conversationID, page, limit)
	return args.Get(0).(pagination.PagedResult[models.Message]), args.Error(1)
}

func (m *MockMessageStore) ListBefore(ctx context.Context, conversationID int, before time.Time, page, limit int) (pagination.PagedResult[models.Message], error) {
	args := m.Called(ctx, conversationID, before, page, limit)
	return args.Get(0).(pagination.PagedResult[models.Message]), args.Error(1)
}

func (m *MockMessageStore) ListLatest(ctx context.Context, conversationID int, before *time.Time, limit int) ([]models.Message, error) {
	args := m.Called(ctx, conversationID, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageStore) MarkRead(ctx context.Context, conversationID int, messageID uuid.UUID) error {
	args := m.Called(ctx, conversationID, messageID)
	return args.Error(0)
}

// MockConversationStore implements ConversationStore for testing.
type MockConversationStore struct {
	mock.Mock
}

func (m *MockConversationStore) CreateOrGet(ctx context.Context, user1ID, user2ID uuid.UUID) (*models.Conversation, error) {
	args := m.Called(ctx, user1ID, user2ID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockConversationStore) Get(ctx context.Context, conversationID int) (*models.Conversation, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockConversationStore) ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) (pagination.PagedResult[models.Conversation], error) {
	args := m.Called(ctx, userID, page, limit)
	return args.Get(0).(pagination.PagedResult[models.Conversation]), args.Error(1)
}

func (m *MockConversationStore) UpdateLastMessage(ctx context.Context, conversationID int, senderID, receiverID uuid.UUID, at time.Time, content string) error {
	args := m.Called(ctx, conversationID, senderID, receiverID, at, content)
	return args.Error(0)
}
