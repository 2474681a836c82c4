// Package sqlite persists a ledger in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"budget/internal/core"
	"budget/internal/storage"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const (
	driverName = "sqlite"
	storeName  = "sqlite"
)

type Store struct {
	db   *sql.DB
	path string
}

var _ storage.Store = (*Store)(nil)

// Open creates the database file if needed and applies migrations.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open(driverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// One writer at a time; SQLite serialises anyway.
	db.SetMaxOpenConns(1)

	return &Store{db: db, path: dbPath}, nil
}

func (s *Store) Name() string { return storeName }

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Load(ctx context.Context) ([]core.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type, category, amount, date FROM records ORDER BY position`)
	if err != nil {
		return nil, &core.PersistenceError{Op: "sqlite.query", Store: storeName, Path: s.path, Err: err}
	}
	defer rows.Close()

	var recs []core.Record
	for rows.Next() {
		var kind, category, amount, date string
		if err := rows.Scan(&kind, &category, &amount, &date); err != nil {
			return nil, &core.PersistenceError{Op: "sqlite.scan", Store: storeName, Path: s.path, Err: err}
		}
		r, err := toRecord(kind, category, amount, date)
		if err != nil {
			return nil, core.Corrupt("sqlite.decode", storeName, s.path, fmt.Errorf("row %d: %w", len(recs), err))
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.PersistenceError{Op: "sqlite.rows", Store: storeName, Path: s.path, Err: err}
	}
	return recs, nil
}

// Save replaces the stored sequence inside a single transaction.
func (s *Store) Save(ctx context.Context, records []core.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &core.PersistenceError{Op: "sqlite.begin", Store: storeName, Path: s.path, Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return &core.PersistenceError{Op: "sqlite.clear", Store: storeName, Path: s.path, Err: err}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (position, type, category, amount, date) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return &core.PersistenceError{Op: "sqlite.prepare", Store: storeName, Path: s.path, Err: err}
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, i, r.Kind().String(), r.Category(), r.Amount().String(), r.Date()); err != nil {
			return &core.PersistenceError{Op: "sqlite.insert", Store: storeName, Path: s.path, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &core.PersistenceError{Op: "sqlite.commit", Store: storeName, Path: s.path, Err: err}
	}
	return nil
}

func toRecord(kind, category, amount, date string) (core.Record, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Record{}, fmt.Errorf("amount %q: %w", amount, err)
	}
	return core.NewRecordOn(core.Kind(kind), category, d, date)
}
