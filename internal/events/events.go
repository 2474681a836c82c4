// Package events carries notifications about ledger changes to other
// processes.
package events

import (
	"context"
	"encoding/json"
	"time"

	"budget/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordAdded is published after a record has been durably appended.
type RecordAdded struct {
	ID        string          `json:"id"`
	Position  int             `json:"position"`
	Type      string          `json:"type"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewRecordAdded describes r, stored at the given zero-based position.
func NewRecordAdded(position int, r core.Record) RecordAdded {
	return RecordAdded{
		ID:        uuid.NewString(),
		Position:  position,
		Type:      r.Kind().String(),
		Category:  r.Category(),
		Amount:    r.Amount(),
		Date:      r.Date(),
		Timestamp: time.Now().UTC(),
	}
}

// Record rebuilds the record the message describes.
func (m RecordAdded) Record() (core.Record, error) {
	return core.NewRecordOn(core.Kind(m.Type), m.Category, m.Amount, m.Date)
}

// ToJSON converts the message to JSON bytes
func (m RecordAdded) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordAddedFromJSON creates a message from JSON bytes
func RecordAddedFromJSON(data []byte) (*RecordAdded, error) {
	var msg RecordAdded
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Publisher sends ledger notifications.
type Publisher interface {
	PublishRecordAdded(ctx context.Context, msg RecordAdded) error
	Close() error
}

// Handler processes one consumed notification.
type Handler func(ctx context.Context, msg *RecordAdded) error

// Consumer delivers notifications to a handler until ctx is done.
type Consumer interface {
	ConsumeRecordAdded(ctx context.Context, handler Handler) error
}

// Nop drops every message. It is used when no event bus is configured.
type Nop struct{}

func (Nop) PublishRecordAdded(context.Context, RecordAdded) error { return nil }
func (Nop) Close() error                                           { return nil }
