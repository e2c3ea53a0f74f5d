package store

import (
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"github.com/wirechat/messenger/internal/models"
)

// Helpers for pulling typed values out of the row mappings the executor
// returns. gocql hands back its own UUID type and zero values for absent
// columns; everything here is tolerant of both.

func rowUUID(row map[string]interface{}, col string) uuid.UUID {
	switch v := row[col].(type) {
	case gocql.UUID:
		return uuid.UUID(v)
	case uuid.UUID:
		return v
	case [16]byte:
		return uuid.UUID(v)
	}
	return uuid.Nil
}

func rowInt(row map[string]interface{}, col string) int {
	switch v := row[col].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	}
	return 0
}

func rowTime(row map[string]interface{}, col string) time.Time {
	if v, ok := row[col].(time.Time); ok {
		return v
	}
	return time.Time{}
}

func rowString(row map[string]interface{}, col string) string {
	if v, ok := row[col].(string); ok {
		return v
	}
	return ""
}

// rowApplied reports the outcome of a lightweight transaction.
func rowApplied(row map[string]interface{}) bool {
	applied, ok := row["[applied]"].(bool)
	return ok && applied
}

func messageFromRow(row map[string]interface{}) models.Message {
	msg := models.Message{
		ID:             rowUUID(row, "message_id"),
		ConversationID: rowInt(row, "conversation_id"),
		SenderID:       rowUUID(row, "sender_id"),
		ReceiverID:     rowUUID(row, "receiver_id"),
		Content:        rowString(row, "content"),
		CreatedAt:      rowTime(row, "timestamp"),
	}
	// A null timestamp column comes back as the zero time.
	if readAt := rowTime(row, "read_at"); !readAt.IsZero() {
		msg.ReadAt = &readAt
	}
	return msg
}

func conversationFromRow(row map[string]interface{}) models.Conversation {
	return models.Conversation{
		ID:                 rowInt(row, "conversation_id"),
		User1ID:            rowUUID(row, "user1_id"),
		User2ID:            rowUUID(row, "user2_id"),
		CreatedAt:          rowTime(row, "created_at"),
		LastMessageAt:      rowTime(row, "last_message_at"),
		LastMessageContent: rowString(row, "last_message_content"),
	}
}
