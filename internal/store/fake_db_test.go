package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// fakeDB is an in-memory stand-in for the cassandra client. It dispatches on
// the store packages' exact statements and keeps table state in maps, close
// enough to Cassandra semantics (upsert inserts, LWT [applied] rows,
// clustering order on LIMIT reads) for the stores to run unmodified.
type fakeDB struct {
	mu sync.Mutex

	messages       []map[string]interface{}
	messagesByUser []map[string]interface{}
	conversations  map[int]map[string]interface{}
	userConvs      []map[string]interface{}
	pairs          map[string]int
	sequences      map[string]int

	// failOn returns the mapped error for a statement instead of running it.
	failOn map[string]error
	// pairSelectMisses makes the pair lookup miss N times, emulating a
	// concurrent writer that lands between the read and the conditional
	// insert.
	pairSelectMisses int

	calls []string
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		conversations: map[int]map[string]interface{}{},
		pairs:         map[string]int{},
		sequences:     map[string]int{},
		failOn:        map[string]error{},
	}
}

func pairKey(lo, hi gocql.UUID) string {
	return fmt.Sprintf("%s/%s", lo, hi)
}

func (f *fakeDB) Execute(_ context.Context, stmt string, params ...interface{}) ([]map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, stmt)
	if err := f.failOn[stmt]; err != nil {
		return nil, err
	}

	switch stmt {
	case insertMessageCQL:
		f.messages = append(f.messages, map[string]interface{}{
			"conversation_id": params[0].(int),
			"timestamp":       params[1].(time.Time),
			"message_id":      params[2].(gocql.UUID),
			"sender_id":       params[3].(gocql.UUID),
			"receiver_id":     params[4].(gocql.UUID),
			"content":         params[5].(string),
			"read_at":         time.Time{},
		})
		return nil, nil

	case insertMessageByUserCQL:
		f.messagesByUser = append(f.messagesByUser, map[string]interface{}{
			"user_id":         params[0].(gocql.UUID),
			"conversation_id": params[1].(int),
			"timestamp":       params[2].(time.Time),
			"message_id":      params[3].(gocql.UUID),
			"sender_id":       params[4].(gocql.UUID),
			"receiver_id":     params[5].(gocql.UUID),
			"content":         params[6].(string),
			"read_at":         time.Time{},
		})
		return nil, nil

	case selectConversationMessagesCQL:
		return f.partition(params[0].(int), nil, 0), nil

	case selectLatestMessagesCQL:
		return f.partition(params[0].(int), nil, params[1].(int)), nil

	case selectLatestMessagesBeforeCQL:
		before := params[1].(time.Time)
		return f.partition(params[0].(int), &before, params[2].(int)), nil

	case markMessageReadCQL:
		readAt, convID, ts, msgID := params[0].(time.Time), params[1].(int), params[2].(time.Time), params[3].(gocql.UUID)
		for _, row := range f.messages {
			if row["conversation_id"] == convID && row["timestamp"].(time.Time).Equal(ts) && row["message_id"] == msgID {
				row["read_at"] = readAt
			}
		}
		return nil, nil

	case markMessageByUserReadCQL:
		readAt, userID, convID := params[0].(time.Time), params[1].(gocql.UUID), params[2].(int)
		ts, msgID := params[3].(time.Time), params[4].(gocql.UUID)
		for _, row := range f.messagesByUser {
			if row["user_id"] == userID && row["conversation_id"] == convID &&
				row["timestamp"].(time.Time).Equal(ts) && row["message_id"] == msgID {
				row["read_at"] = readAt
			}
		}
		return nil, nil

	case selectConversationCQL:
		if row, ok := f.conversations[params[0].(int)]; ok {
			return []map[string]interface{}{copyRow(row)}, nil
		}
		return nil, nil

	case insertConversationCQL:
		f.conversations[params[0].(int)] = map[string]interface{}{
			"conversation_id":      params[0].(int),
			"user1_id":             params[1].(gocql.UUID),
			"user2_id":             params[2].(gocql.UUID),
			"created_at":           params[3].(time.Time),
			"last_message_at":      params[4].(time.Time),
			"last_message_content": "",
		}
		return nil, nil

	case updateLastMessageCQL:
		convID := params[2].(int)
		row, ok := f.conversations[convID]
		if !ok {
			// Cassandra UPDATE is an upsert.
			row = map[string]interface{}{"conversation_id": convID}
			f.conversations[convID] = row
		}
		row["last_message_at"] = params[0].(time.Time)
		row["last_message_content"] = params[1].(string)
		return nil, nil

	case selectUserConversationsCQL:
		userID := params[0].(gocql.UUID)
		var rows []map[string]interface{}
		for _, row := range f.userConvs {
			if row["user_id"] == userID {
				rows = append(rows, copyRow(row))
			}
		}
		return rows, nil

	case insertUserConversationCQL:
		userID, convID := params[0].(gocql.UUID), params[1].(int)
		at := params[3].(time.Time)
		for _, row := range f.userConvs {
			if row["user_id"] == userID && row["conversation_id"] == convID && row["last_message_at"].(time.Time).Equal(at) {
				row["other_user_id"] = params[2].(gocql.UUID)
				row["last_message_content"] = params[4].(string)
				return nil, nil
			}
		}
		f.userConvs = append(f.userConvs, map[string]interface{}{
			"user_id":              userID,
			"conversation_id":      convID,
			"other_user_id":        params[2].(gocql.UUID),
			"last_message_at":      at,
			"last_message_content": params[4].(string),
		})
		return nil, nil

	case deleteUserConversationCQL:
		userID, at, convID := params[0].(gocql.UUID), params[1].(time.Time), params[2].(int)
		kept := f.userConvs[:0]
		for _, row := range f.userConvs {
			if row["user_id"] == userID && row["conversation_id"] == convID && row["last_message_at"].(time.Time).Equal(at) {
				continue
			}
			kept = append(kept, row)
		}
		f.userConvs = kept
		return nil, nil

	case selectPairCQL:
		if f.pairSelectMisses > 0 {
			f.pairSelectMisses--
			return nil, nil
		}
		key := pairKey(params[0].(gocql.UUID), params[1].(gocql.UUID))
		if id, ok := f.pairs[key]; ok {
			return []map[string]interface{}{{"conversation_id": id}}, nil
		}
		return nil, nil

	case insertPairCQL:
		key := pairKey(params[0].(gocql.UUID), params[1].(gocql.UUID))
		if existing, ok := f.pairs[key]; ok {
			return []map[string]interface{}{{"[applied]": false, "conversation_id": existing}}, nil
		}
		f.pairs[key] = params[2].(int)
		return []map[string]interface{}{{"[applied]": true}}, nil

	case selectSequenceCQL:
		if value, ok := f.sequences[params[0].(string)]; ok {
			return []map[string]interface{}{{"value": value}}, nil
		}
		return nil, nil

	case insertSequenceCQL:
		name := params[0].(string)
		if value, ok := f.sequences[name]; ok {
			return []map[string]interface{}{{"[applied]": false, "value": value}}, nil
		}
		f.sequences[name] = 1
		return []map[string]interface{}{{"[applied]": true}}, nil

	case updateSequenceCQL:
		next, name, expected := params[0].(int), params[1].(string), params[2].(int)
		if f.sequences[name] != expected {
			return []map[string]interface{}{{"[applied]": false, "value": f.sequences[name]}}, nil
		}
		f.sequences[name] = next
		return []map[string]interface{}{{"[applied]": true}}, nil
	}

	return nil, fmt.Errorf("fakeDB: unhandled statement %q", stmt)
}

// partition returns a conversation's message rows in clustering order
// (timestamp DESC, message_id ASC), optionally bounded and limited.
func (f *fakeDB) partition(conversationID int, before *time.Time, limit int) []map[string]interface{} {
	var rows []map[string]interface{}
	for _, row := range f.messages {
		if row["conversation_id"] != conversationID {
			continue
		}
		if before != nil && !row["timestamp"].(time.Time).Before(*before) {
			continue
		}
		rows = append(rows, copyRow(row))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ti, tj := rows[i]["timestamp"].(time.Time), rows[j]["timestamp"].(time.Time)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return rows[i]["message_id"].(gocql.UUID).String() < rows[j]["message_id"].(gocql.UUID).String()
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// addMessage seeds a message row (canonical table only) with a chosen
// timestamp, bypassing the store's clock.
func (f *fakeDB) addMessage(conversationID int, id uuid.UUID, sender, receiver uuid.UUID, content string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, map[string]interface{}{
		"conversation_id": conversationID,
		"timestamp":       at,
		"message_id":      gocql.UUID(id),
		"sender_id":       gocql.UUID(sender),
		"receiver_id":     gocql.UUID(receiver),
		"content":         content,
		"read_at":         time.Time{},
	})
}

func copyRow(row map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
