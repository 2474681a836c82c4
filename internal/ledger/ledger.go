// Package ledger holds the ordered record sequence of a budget and keeps it
// in step with a backing store.
//
// A Ledger is owned by a single caller; it does no locking. Every mutation is
// followed by a full rewrite of the store, and a failed rewrite undoes the
// in-memory change so memory never runs ahead of the store.
package ledger

import (
	"context"
	"errors"
	"iter"
	"slices"
	"time"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/storage"

	"github.com/shopspring/decimal"
)

type Ledger struct {
	store   storage.Store
	records []core.Record
	now     func() time.Time
	logger  *applog.Logger
}

type Option func(*Ledger)

// WithClock overrides the clock used to date new records.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithLogger(logger *applog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger.WithComponent(applog.ComponentLedger)
		}
	}
}

// New builds a ledger over store and loads everything it holds.
func New(ctx context.Context, store storage.Store, opts ...Option) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("ledger: nil store")
	}
	l := &Ledger{
		store:  store,
		now:    time.Now,
		logger: applog.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.load(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) load(ctx context.Context) error {
	recs, err := l.store.Load(ctx)
	if err != nil {
		l.logger.ErrorContext(ctx, "Failed to load ledger",
			applog.NewFields().WithOperation(applog.OpLoad).WithStore(l.store.Name()).WithError(err).ToSlice()...)
		return asPersistence("ledger.load", l.store.Name(), err)
	}
	l.records = slices.Clone(recs)
	l.logger.DebugContext(ctx, "Ledger loaded",
		applog.FieldStore, l.store.Name(),
		applog.FieldCount, len(l.records))
	return nil
}

func (l *Ledger) persist(ctx context.Context) error {
	if err := l.store.Save(ctx, slices.Clone(l.records)); err != nil {
		return asPersistence("ledger.persist", l.store.Name(), err)
	}
	return nil
}

// AddTransaction records a new entry dated today and rewrites the store.
func (l *Ledger) AddTransaction(ctx context.Context, kind core.Kind, category string, amount decimal.Decimal) (core.Record, error) {
	rec, err := core.NewRecordOn(kind, category, amount, l.now().Format(core.DateLayout))
	if err != nil {
		return core.Record{}, err
	}
	if err := l.append(ctx, rec); err != nil {
		return core.Record{}, err
	}
	return rec, nil
}

func (l *Ledger) append(ctx context.Context, rec core.Record) error {
	l.records = append(l.records, rec)
	if err := l.persist(ctx); err != nil {
		l.records = l.records[:len(l.records)-1]
		l.logger.ErrorContext(ctx, "Failed to persist record, append rolled back",
			applog.NewFields().WithOperation(applog.OpAppend).WithStore(l.store.Name()).WithRecord(rec).WithError(err).ToSlice()...)
		return err
	}
	l.logger.InfoContext(ctx, "Record appended",
		applog.NewFields().WithOperation(applog.OpAppend).WithStore(l.store.Name()).WithRecord(rec).ToSlice()...)
	return nil
}

// CalculateBalance returns total income minus total expense.
func (l *Ledger) CalculateBalance() decimal.Decimal {
	balance := decimal.Zero
	for _, r := range l.records {
		balance = balance.Add(r.Signed())
	}
	return balance
}

// AnalyzeExpenses sums expense amounts per category. Categories that only
// have income entries are absent from the result.
func (l *Ledger) AnalyzeExpenses() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, r := range l.records {
		if !r.IsExpense() {
			continue
		}
		out[r.Category()] = out[r.Category()].Add(r.Amount())
	}
	return out
}

// ExpenseBreakdown is AnalyzeExpenses in the order each category's first
// expense was added.
func (l *Ledger) ExpenseBreakdown() []core.CategoryTotal {
	var out []core.CategoryTotal
	index := make(map[string]int)
	for _, r := range l.records {
		if !r.IsExpense() {
			continue
		}
		i, ok := index[r.Category()]
		if !ok {
			i = len(out)
			index[r.Category()] = i
			out = append(out, core.CategoryTotal{Name: r.Category(), Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(r.Amount())
	}
	return out
}

// ExpenseBreakdownByTotal is AnalyzeExpenses ordered largest category first.
func (l *Ledger) ExpenseBreakdownByTotal() []core.CategoryTotal {
	return core.SortedTotals(l.AnalyzeExpenses())
}

// Totals summarises the whole ledger.
func (l *Ledger) Totals() core.Summary {
	s := core.Summary{Income: decimal.Zero, Expense: decimal.Zero, Count: len(l.records)}
	for _, r := range l.records {
		if r.IsExpense() {
			s.Expense = s.Expense.Add(r.Amount())
		} else {
			s.Income = s.Income.Add(r.Amount())
		}
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s
}

// ListTransactions yields the display string of every record in insertion
// order. Each call starts over from the first record.
func (l *Ledger) ListTransactions() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, r := range l.records {
			if !yield(r.String()) {
				return
			}
		}
	}
}

// Records returns a copy of the record sequence.
func (l *Ledger) Records() []core.Record {
	return slices.Clone(l.records)
}

func (l *Ledger) Len() int { return len(l.records) }

// StoreName names the backing store, for display.
func (l *Ledger) StoreName() string { return l.store.Name() }

func asPersistence(op, store string, err error) error {
	var pe *core.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &core.PersistenceError{Op: op, Store: store, Err: err}
}
