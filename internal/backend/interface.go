package backend

import (
	"context"

	"budget/internal/events"
	"budget/internal/storage"
)

// BackendType names a ledger store implementation
type BackendType string

const (
	JSONBackend   BackendType = "json"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

func (t BackendType) IsValid() bool {
	switch t {
	case JSONBackend, SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	}
	return false
}

func (t BackendType) String() string { return string(t) }

// EventsType names a notification transport
type EventsType string

const (
	NoEvents    EventsType = "none"
	AMQPEvents  EventsType = "amqp"
	KafkaEvents EventsType = "kafka"
)

func (t EventsType) IsValid() bool {
	switch t {
	case NoEvents, AMQPEvents, KafkaEvents, "":
		return true
	}
	return false
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the store and an optional cleanup function
type Result struct {
	Store   storage.Store
	Cleanup CleanupFunc
}

// ConsumerResult contains a consumer and the function that releases it
type ConsumerResult struct {
	Consumer events.Consumer
	Cleanup  CleanupFunc
}

// Factory creates stores and event transports based on configuration
type Factory interface {
	// CreateStore opens the store selected by config.Type
	CreateStore(ctx context.Context, config Config) (*Result, error)
	// CreatePublisher returns events.Nop when events are disabled
	CreatePublisher(ctx context.Context, config Config) (events.Publisher, error)
	// CreateConsumer fails when events are disabled
	CreateConsumer(ctx context.Context, config Config) (*ConsumerResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// JSON file
	LedgerFile string

	// SQLite
	SQLiteDBPath string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Events
	Events       EventsType
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroup   string
}
