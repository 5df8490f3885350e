package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types carried on the queue.
const (
	EventBatchImported      = "batch.imported"
	EventTransactionChanged = "transaction.changed"
)

// Actions of a transaction.changed event.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event is a lightweight notification. It carries ids only; consumers load
// the records they need from the database.
type Event struct {
	Type           string    `json:"type"`
	BatchID        string    `json:"batch_id,omitempty"`
	UserID         int64     `json:"user_id"`
	Source         string    `json:"source,omitempty"`
	TransactionIDs []int64   `json:"transaction_ids"`
	Action         string    `json:"action,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewBatchID returns a fresh identifier for an import batch.
func NewBatchID() string {
	return uuid.NewString()
}

// NewBatchImportedEvent announces a committed import.
func NewBatchImportedEvent(batchID string, userID int64, source string, ids []int64) *Event {
	return &Event{
		Type:           EventBatchImported,
		BatchID:        batchID,
		UserID:         userID,
		Source:         source,
		TransactionIDs: ids,
		Timestamp:      time.Now(),
	}
}

// NewTransactionChangedEvent announces a single-record mutation.
func NewTransactionChangedEvent(userID, id int64, action string) *Event {
	return &Event{
		Type:           EventTransactionChanged,
		UserID:         userID,
		TransactionIDs: []int64{id},
		Action:         action,
		Timestamp:      time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes an event and rejects unknown types.
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Type {
	case EventBatchImported, EventTransactionChanged:
	case "":
		return nil, errors.New("event type is missing")
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	return &e, nil
}
