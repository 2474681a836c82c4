package services

import (
	"context"
	"errors"
	"fmt"

	"budget/internal/core"
	"budget/internal/events"
	"budget/internal/ledger"
	applog "budget/internal/log"

	"github.com/shopspring/decimal"
)

// LedgerService orchestrates ledger appends and change notifications.
type LedgerService struct {
	ledger    *ledger.Ledger
	publisher events.Publisher
	cleanup   func() error
	logger    *applog.Logger
}

// NewLedgerService wires l to p. A nil publisher disables notifications and
// cleanup, when set, releases the store on Close.
func NewLedgerService(l *ledger.Ledger, p events.Publisher, cleanup func() error, logger *applog.Logger) *LedgerService {
	if p == nil {
		p = events.Nop{}
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &LedgerService{
		ledger:    l,
		publisher: p,
		cleanup:   cleanup,
		logger:    logger.WithComponent(applog.ComponentEvents),
	}
}

// Add appends a record and publishes a notification for it.
func (s *LedgerService) Add(ctx context.Context, kind core.Kind, category string, amount decimal.Decimal) (core.Record, error) {
	rec, err := s.ledger.AddTransaction(ctx, kind, category, amount)
	if err != nil {
		return core.Record{}, err
	}

	// The record is durable at this point; publishing is best effort.
	msg := events.NewRecordAdded(s.ledger.Len()-1, rec)
	if err := s.publisher.PublishRecordAdded(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish record added message",
			applog.NewFields().WithOperation(applog.OpPublish).WithRecord(rec).WithError(err).ToSlice()...)
	}
	return rec, nil
}

func (s *LedgerService) Ledger() *ledger.Ledger { return s.ledger }

// Close closes the publisher and the store.
func (s *LedgerService) Close() error {
	var errs []error

	if err := s.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("publisher: %w", err))
	}
	if s.cleanup != nil {
		if err := s.cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}
	return nil
}
