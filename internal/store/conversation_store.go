package store

import (
	"bytes"
	"context"
	"errors"
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
	selectConversationCQL = `SELECT conversation_id, user1_id, user2_id, created_at, last_message_at, last_message_content FROM conversations WHERE conversation_id = ?`

	insertConversationCQL = `INSERT INTO conversations (conversation_id, user1_id, user2_id, created_at, last_message_at) VALUES (?, ?, ?, ?, ?)`

	updateLastMessageCQL = `UPDATE conversations SET last_message_at = ?, last_message_content = ? WHERE conversation_id = ?`

	selectUserConversationsCQL = `SELECT user_id, conversation_id, other_user_id, last_message_at, last_message_content FROM conversations_by_user WHERE user_id = ?`

	insertUserConversationCQL = `INSERT INTO conversations_by_user (user_id, conversation_id, other_user_id, last_message_at, last_message_content) VALUES (?, ?, ?, ?, ?)`

	deleteUserConversationCQL = `DELETE FROM conversations_by_user WHERE user_id = ? AND last_message_at = ? AND conversation_id = ?`

	selectPairCQL = `SELECT conversation_id FROM conversation_by_pair WHERE user_lo = ? AND user_hi = ?`

	insertPairCQL = `INSERT INTO conversation_by_pair (user_lo, user_hi, conversation_id) VALUES (?, ?, ?) IF NOT EXISTS`

	selectSequenceCQL = `SELECT value FROM id_sequences WHERE name = ?`

	insertSequenceCQL = `INSERT INTO id_sequences (name, value) VALUES (?, 1) IF NOT EXISTS`

	updateSequenceCQL = `UPDATE id_sequences SET value = ? WHERE name = ? IF value = ?`
)

const conversationIDSequence = "conversation_id"

// ConversationStore manages the canonical conversations table, the
// per-participant pair lookup, and the per-user conversation index.
type ConversationStore struct {
	db cassandra.Executor
}

func NewConversationStore(db cassandra.Executor) *ConversationStore {
	return &ConversationStore{db: db}
}

// CreateOrGet returns the conversation between the two users, creating it if
// none exists. The pair is looked up under its normalized (lo, hi) byte
// order, so argument order does not matter; creation goes through a
// conditional insert on the pair table, and a lost race returns the winner's
// conversation instead of inserting a duplicate.
func (s *ConversationStore) CreateOrGet(ctx context.Context, user1ID, user2ID uuid.UUID) (*models.Conversation, error) {
	lo, hi := normalizePair(user1ID, user2ID)

	rows, err := s.db.Execute(ctx, selectPairCQL, gocql.UUID(lo), gocql.UUID(hi))
	if err != nil {
		return nil, fmt.Errorf("looking up conversation pair: %w", err)
	}
	if len(rows) > 0 {
		return s.Get(ctx, rowInt(rows[0], "conversation_id"))
	}

	id, err := s.nextConversationID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err = s.db.Execute(ctx, insertPairCQL, gocql.UUID(lo), gocql.UUID(hi), id)
	if err != nil {
		return nil, fmt.Errorf("claiming conversation pair: %w", err)
	}
	if len(rows) > 0 && !rowApplied(rows[0]) {
		// Another writer claimed the pair first; its conversation id comes
		// back on the transaction result.
		return s.Get(ctx, rowInt(rows[0], "conversation_id"))
	}

	now := time.Now().UTC()
	conv := &models.Conversation{
		ID:            id,
		User1ID:       user1ID,
		User2ID:       user2ID,
		CreatedAt:     now,
		LastMessageAt: now,
	}
	_, err = s.db.Execute(ctx, insertConversationCQL,
		conv.ID, gocql.UUID(user1ID), gocql.UUID(user2ID), now, now)
	if err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}

	return conv, nil
}

// Get looks up a conversation by id. Absence is ErrConversationNotFound.
func (s *ConversationStore) Get(ctx context.Context, conversationID int) (*models.Conversation, error) {
	rows, err := s.db.Execute(ctx, selectConversationCQL, conversationID)
	if err != nil {
		return nil, fmt.Errorf("fetching conversation: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrConversationNotFound
	}

	conv := conversationFromRow(rows[0])
	return &conv, nil
}

type indexEntry struct {
	conversationID int
	lastMessageAt  time.Time
}

// ListForUser pages through a user's conversation index, most recently
// active first, then resolves each surviving entry against the canonical
// table. Index entries whose canonical row is missing are skipped.
func (s *ConversationStore) ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) (pagination.PagedResult[models.Conversation], error) {
	rows, err := s.db.Execute(ctx, selectUserConversationsCQL, gocql.UUID(userID))
	if err != nil {
		return pagination.PagedResult[models.Conversation]{}, fmt.Errorf("fetching user conversations: %w", err)
	}

	entries := make([]indexEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, indexEntry{
			conversationID: rowInt(row, "conversation_id"),
			lastMessageAt:  rowTime(row, "last_message_at"),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].lastMessageAt.Equal(entries[j].lastMessageAt) {
			return entries[i].lastMessageAt.After(entries[j].lastMessageAt)
		}
		return entries[i].conversationID < entries[j].conversationID
	})

	pageResult := pagination.Paginate(entries, page, limit)

	conversations := make([]models.Conversation, 0, len(pageResult.Data))
	for _, entry := range pageResult.Data {
		conv, err := s.Get(ctx, entry.conversationID)
		if errors.Is(err, ErrConversationNotFound) {
			continue
		}
		if err != nil {
			return pagination.PagedResult[models.Conversation]{}, err
		}
		conversations = append(conversations, *conv)
	}

	return pagination.PagedResult[models.Conversation]{
		Total: pageResult.Total,
		Page:  pageResult.Page,
		Limit: pageResult.Limit,
		Data:  conversations,
	}, nil
}

// UpdateLastMessage refreshes the denormalized last-message fields after a
// write: the canonical row is updated in place, and each participant's index
// entry is moved to its new clustering position. The old entry is deleted
// first so the index keeps exactly one row per (user, conversation) pair.
func (s *ConversationStore) UpdateLastMessage(ctx context.Context, conversationID int, senderID, receiverID uuid.UUID, at time.Time, content string) error {
	var previous *time.Time
	conv, err := s.Get(ctx, conversationID)
	if err != nil && !errors.Is(err, ErrConversationNotFound) {
		return err
	}
	if err == nil && !conv.LastMessageAt.IsZero() {
		previous = &conv.LastMessageAt
	}

	if _, err := s.db.Execute(ctx, updateLastMessageCQL, at, content, conversationID); err != nil {
		return fmt.Errorf("updating conversation last message: %w", err)
	}

	participants := []struct{ user, other uuid.UUID }{
		{senderID, receiverID},
		{receiverID, senderID},
	}
	for _, p := range participants {
		if previous != nil && !previous.Equal(at) {
			_, err := s.db.Execute(ctx, deleteUserConversationCQL,
				gocql.UUID(p.user), *previous, conversationID)
			if err != nil {
				return fmt.Errorf("removing stale conversation index entry: %w", err)
			}
		}
		_, err := s.db.Execute(ctx, insertUserConversationCQL,
			gocql.UUID(p.user), conversationID, gocql.UUID(p.other), at, content)
		if err != nil {
			return fmt.Errorf("writing conversation index entry: %w", err)
		}
	}

	return nil
}

// nextConversationID allocates a cluster-unique id through a compare-and-set
// loop on the sequence row. Contention just retries; cancellation is the
// only way out of a loss streak.
func (s *ConversationStore) nextConversationID(ctx context.Context) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		rows, err := s.db.Execute(ctx, selectSequenceCQL, conversationIDSequence)
		if err != nil {
			return 0, fmt.Errorf("reading id sequence: %w", err)
		}

		if len(rows) == 0 {
			rows, err = s.db.Execute(ctx, insertSequenceCQL, conversationIDSequence)
			if err != nil {
				return 0, fmt.Errorf("initializing id sequence: %w", err)
			}
			if len(rows) > 0 && rowApplied(rows[0]) {
				return 1, nil
			}
			continue
		}

		current := rowInt(rows[0], "value")
		rows, err = s.db.Execute(ctx, updateSequenceCQL, current+1, conversationIDSequence, current)
		if err != nil {
			return 0, fmt.Errorf("advancing id sequence: %w", err)
		}
		if len(rows) > 0 && rowApplied(rows[0]) {
			return current + 1, nil
		}
	}
}

// normalizePair orders two user ids by their byte representation so both
// argument orders land on the same pair row.
func normalizePair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return a, b
	}
	return b, a
}
