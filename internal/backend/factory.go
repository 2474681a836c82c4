package backend

import (
	"context"
	"fmt"

	"budget/internal/events"
	"budget/internal/events/amqp"
	"budget/internal/events/kafka"
	applog "budget/internal/log"
	"budget/internal/storage/jsonfile"
	"budget/internal/storage/memory"
	"budget/internal/storage/sheets"
	"budget/internal/storage/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateStore implements Factory.CreateStore
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case JSONBackend:
		return f.createJSONStore(config)
	case SQLiteBackend:
		return f.createSQLiteStore(config)
	case SheetsBackend:
		return f.createSheetsStore(ctx, config)
	case MemoryBackend:
		return f.createMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createJSONStore(config Config) (*Result, error) {
	store := jsonfile.New(config.LedgerFile)

	f.logger.Debug("Initialized JSON file backend", applog.FieldPath, store.Path())

	return &Result{Store: store}, nil
}

func (f *DefaultFactory) createSQLiteStore(config Config) (*Result, error) {
	store, err := sqlite.Open(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.Debug("Initialized SQLite backend", applog.FieldPath, config.SQLiteDBPath)

	return &Result{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsStore(ctx context.Context, config Config) (*Result, error) {
	store, err := sheets.New(ctx, sheets.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets store: %w", err)
	}

	f.logger.Debug("Initialized Google Sheets backend")

	return &Result{Store: store}, nil
}

func (f *DefaultFactory) createMemoryStore() (*Result, error) {
	f.logger.Debug("Initialized memory backend")
	return &Result{Store: memory.New()}, nil
}

// CreatePublisher implements Factory.CreatePublisher
func (f *DefaultFactory) CreatePublisher(ctx context.Context, config Config) (events.Publisher, error) {
	switch config.Events {
	case NoEvents, "":
		return events.Nop{}, nil
	case AMQPEvents:
		client, err := amqp.NewClient(ctx, config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
		}
		f.logger.Info("Initialized AMQP publisher",
			"exchange", config.AMQPExchange,
			"queue", config.AMQPQueue)
		return client, nil
	case KafkaEvents:
		p, err := kafka.NewPublisher(config.KafkaBrokers, config.KafkaTopic)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Kafka publisher: %w", err)
		}
		f.logger.Info("Initialized Kafka publisher", applog.FieldTopic, config.KafkaTopic)
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported events type: %s", config.Events)
	}
}

// CreateConsumer implements Factory.CreateConsumer
func (f *DefaultFactory) CreateConsumer(ctx context.Context, config Config) (*ConsumerResult, error) {
	switch config.Events {
	case AMQPEvents:
		client, err := amqp.NewClient(ctx, config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
		}
		return &ConsumerResult{Consumer: client, Cleanup: client.Close}, nil
	case KafkaEvents:
		c, err := kafka.NewConsumer(config.KafkaBrokers, config.KafkaTopic, config.KafkaGroup)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Kafka consumer: %w", err)
		}
		return &ConsumerResult{Consumer: c, Cleanup: c.Close}, nil
	case NoEvents, "":
		return nil, fmt.Errorf("no events backend configured")
	default:
		return nil, fmt.Errorf("unsupported events type: %s", config.Events)
	}
}
