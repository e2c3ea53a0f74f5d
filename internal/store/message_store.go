package store

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"github.com/wirechat/messenger/internal/cassandra"
	"github.com/wirechat/messenger/internal/models"
	"github.com/wirechat/messenger/internal/pagination"
)

const (
	insertMessageCQL = `INSERT INTO messages (conversation_id, timestamp, message_id, sender_id, receiver_id, content) VALUES (?, ?, ?, ?, ?, ?)`

	insertMessageByUserCQL = `INSERT INTO messages_by_user (user_id, conversation_id, timestamp, message_id, sender_id, receiver_id, content) VALUES (?, ?, ?, ?, ?, ?, ?)`

	selectConversationMessagesCQL = `SELECT conversation_id, timestamp, message_id, sender_id, receiver_id, content, read_at FROM messages WHERE conversation_id = ?`

	selectLatestMessagesCQL = `SELECT conversation_id, timestamp, message_id, sender_id, receiver_id, content, read_at FROM messages WHERE conversation_id = ? LIMIT ?`

	selectLatestMessagesBeforeCQL = `SELECT conversation_id, timestamp, message_id, sender_id, receiver_id, content, read_at FROM messages WHERE conversation_id = ? AND timestamp < ? LIMIT ?`

	markMessageReadCQL = `UPDATE messages SET read_at = ? WHERE conversation_id = ? AND timestamp = ? AND message_id = ?`

	markMessageByUserReadCQL = `UPDATE messages_by_user SET read_at = ? WHERE user_id = ? AND conversation_id = ? AND timestamp = ? AND message_id = ?`
)

// MessageStore reads and writes the canonical messages table and its
// per-user denormalized copy.
type MessageStore struct {
	db cassandra.Executor
}

func NewMessageStore(db cassandra.Executor) *MessageStore {
	return &MessageStore{db: db}
}

// Create writes the canonical message row plus one messages_by_user copy per
// participant. The three writes are independent round-trips with no
// transaction across them: a failure partway through leaves the copies out
// of sync with the canonical row. Every write is keyed by the message id, so
// retrying a failed Create with the same message does not duplicate entries.
func (s *MessageStore) Create(ctx context.Context, conversationID int, senderID, receiverID uuid.UUID, content string) (*models.Message, error) {
	msg := &models.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}

	_, err := s.db.Execute(ctx, insertMessageCQL,
		msg.ConversationID, msg.CreatedAt, gocql.UUID(msg.ID),
		gocql.UUID(senderID), gocql.UUID(receiverID), content)
	if err != nil {
		return nil, fmt.Errorf("writing message: %w", err)
	}

	for _, userID := range []uuid.UUID{senderID, receiverID} {
		_, err := s.db.Execute(ctx, insertMessageByUserCQL,
			gocql.UUID(userID), msg.ConversationID, msg.CreatedAt, gocql.UUID(msg.ID),
			gocql.UUID(senderID), gocql.UUID(receiverID), content)
		if err != nil {
			return nil, fmt.Errorf("writing per-user message copy: %w", err)
		}
	}

	return msg, nil
}

// ListByConversation returns one page of a conversation's messages, newest
// first. The whole partition is fetched and re-sorted before slicing; Total
// reflects the full set.
func (s *MessageStore) ListByConversation(ctx context.Context, conversationID, page, limit int) (pagination.PagedResult[models.Message], error) {
	messages, err := s.fetchConversation(ctx, conversationID)
	if err != nil {
		return pagination.PagedResult[models.Message]{}, err
	}

	sortNewestFirst(messages)
	return pagination.Paginate(messages, page, limit), nil
}

// ListBefore is ListByConversation restricted to messages strictly older
// than the given timestamp.
func (s *MessageStore) ListBefore(ctx context.Context, conversationID int, before time.Time, page, limit int) (pagination.PagedResult[models.Message], error) {
	messages, err := s.fetchConversation(ctx, conversationID)
	if err != nil {
		return pagination.PagedResult[models.Message]{}, err
	}

	filtered := messages[:0]
	for _, msg := range messages {
		if msg.CreatedAt.Before(before) {
			filtered = append(filtered, msg)
		}
	}

	sortNewestFirst(filtered)
	return pagination.Paginate(filtered, page, limit), nil
}

// ListLatest is the keyset variant: it leans on the table's clustering order
// and a server-side LIMIT instead of materializing the partition. A non-nil
// before continues from that point; pass the oldest CreatedAt of the
// previous call to fetch the next batch.
func (s *MessageStore) ListLatest(ctx context.Context, conversationID int, before *time.Time, limit int) ([]models.Message, error) {
	if limit <= 0 {
		return []models.Message{}, nil
	}

	var (
		rows []map[string]interface{}
		err  error
	)
	if before != nil {
		rows, err = s.db.Execute(ctx, selectLatestMessagesBeforeCQL, conversationID, *before, limit)
	} else {
		rows, err = s.db.Execute(ctx, selectLatestMessagesCQL, conversationID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching latest messages: %w", err)
	}

	messages := make([]models.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, messageFromRow(row))
	}
	return messages, nil
}

// MarkRead stamps read_at on a message in the canonical table and in both
// per-user copies. The message's clustering key is recovered by scanning the
// conversation partition.
func (s *MessageStore) MarkRead(ctx context.Context, conversationID int, messageID uuid.UUID) error {
	messages, err := s.fetchConversation(ctx, conversationID)
	if err != nil {
		return err
	}

	var target *models.Message
	for i := range messages {
		if messages[i].ID == messageID {
			target = &messages[i]
			break
		}
	}
	if target == nil {
		return ErrMessageNotFound
	}

	readAt := time.Now().UTC()
	_, err = s.db.Execute(ctx, markMessageReadCQL,
		readAt, conversationID, target.CreatedAt, gocql.UUID(messageID))
	if err != nil {
		return fmt.Errorf("marking message read: %w", err)
	}

	for _, userID := range []uuid.UUID{target.SenderID, target.ReceiverID} {
		_, err := s.db.Execute(ctx, markMessageByUserReadCQL,
			readAt, gocql.UUID(userID), conversationID, target.CreatedAt, gocql.UUID(messageID))
		if err != nil {
			return fmt.Errorf("marking per-user message copy read: %w", err)
		}
	}

	return nil
}

func (s *MessageStore) fetchConversation(ctx context.Context, conversationID int) ([]models.Message, error) {
	rows, err := s.db.Execute(ctx, selectConversationMessagesCQL, conversationID)
	if err != nil {
		return nil, fmt.Errorf("fetching conversation messages: %w", err)
	}

	messages := make([]models.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, messageFromRow(row))
	}
	return messages, nil
}

// sortNewestFirst orders by creation time descending; ties at identical
// timestamps break by ascending message id so the order is stable.
func sortNewestFirst(messages []models.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].CreatedAt.After(messages[j].CreatedAt)
		}
		return bytes.Compare(messages[i].ID[:], messages[j].ID[:]) < 0
	})
}
