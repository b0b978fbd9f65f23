package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message kinds, also used as routing keys on the direct exchange.
const (
	KindExpenseRecorded = "expense.recorded"
	KindUserCreated     = "user.created"
)

// SyncMessage is a lightweight notification that a row was written to the
// local store. It carries only the key; the worker reads the full record
// from the database before mirroring it.
type SyncMessage struct {
	Kind      string    `json:"kind"`
	ExpenseID int64     `json:"expenseId,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseRecorded(id int64) *SyncMessage {
	return &SyncMessage{Kind: KindExpenseRecorded, ExpenseID: id, Timestamp: time.Now()}
}

func NewUserCreated(userID string) *SyncMessage {
	return &SyncMessage{Kind: KindUserCreated, UserID: userID, Timestamp: time.Now()}
}

// ToJSON converts the message to JSON bytes
func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SyncMessageFromJSON decodes and checks a message body.
func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case KindExpenseRecorded:
		if msg.ExpenseID <= 0 {
			return nil, fmt.Errorf("%s message without expense id", msg.Kind)
		}
	case KindUserCreated:
		if msg.UserID == "" {
			return nil, fmt.Errorf("%s message without user id", msg.Kind)
		}
	default:
		return nil, fmt.Errorf("unknown message kind %q", msg.Kind)
	}
	return &msg, nil
}
