// Package jsonfile persists a ledger as a single JSON array on disk.
//
// The file holds one object per record with exactly the fields type,
// category, amount (a JSON number) and date (YYYY-MM-DD). Every Save rewrites
// the whole file through a temporary file and a rename.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"budget/internal/core"
	"budget/internal/storage"

	"github.com/shopspring/decimal"
)

// DefaultFile is the file name used when none is configured.
const DefaultFile = "transactions.json"

const storeName = "json"

// recordDTO is the fixed on-disk schema of a record.
type recordDTO struct {
	Type     string          `json:"type"`
	Category string          `json:"category"`
	Amount   json.RawMessage `json:"amount"`
	Date     string          `json:"date"`
}

type Store struct {
	path string
	perm fs.FileMode
}

type Option func(*Store)

// WithPerm sets the mode used when the file is created.
func WithPerm(perm fs.FileMode) Option {
	return func(s *Store) { s.perm = perm }
}

var _ storage.Store = (*Store)(nil)

func New(path string, opts ...Option) *Store {
	if path == "" {
		path = DefaultFile
	}
	s := &Store{path: path, perm: 0o644}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Name() string { return storeName }

// Path returns the file the store reads and writes.
func (s *Store) Path() string { return s.path }

func (s *Store) Load(_ context.Context) ([]core.Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &core.PersistenceError{Op: "jsonfile.read", Store: storeName, Path: s.path, Err: err}
	}

	recs, err := Decode(data)
	if err != nil {
		return nil, core.Corrupt("jsonfile.decode", storeName, s.path, err)
	}
	return recs, nil
}

func (s *Store) Save(_ context.Context, records []core.Record) error {
	b, err := Encode(records)
	if err != nil {
		return &core.PersistenceError{Op: "jsonfile.marshal", Store: storeName, Path: s.path, Err: err}
	}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &core.PersistenceError{Op: "jsonfile.mkdir", Store: storeName, Path: dir, Err: err}
		}
	}

	// Write to a sibling temp file, then rename over the target.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, s.perm); err != nil {
		_ = os.Remove(tmp)
		return &core.PersistenceError{Op: "jsonfile.write", Store: storeName, Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return &core.PersistenceError{Op: "jsonfile.rename", Store: storeName, Path: s.path, Err: err}
	}
	return nil
}

// Encode renders records in the on-disk format.
func Encode(records []core.Record) ([]byte, error) {
	dtos := make([]recordDTO, 0, len(records))
	for _, r := range records {
		dtos = append(dtos, recordDTO{
			Type:     r.Kind().String(),
			Category: r.Category(),
			Amount:   json.RawMessage(r.Amount().String()),
			Date:     r.Date(),
		})
	}
	b, err := json.MarshalIndent(dtos, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// Decode parses the on-disk format. Unknown fields, trailing data and
// records that fail validation are all rejected.
func Decode(data []byte) ([]core.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var dtos []recordDTO
	if err := dec.Decode(&dtos); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after record array")
	}

	if len(dtos) == 0 {
		return nil, nil
	}
	recs := make([]core.Record, 0, len(dtos))
	for i, d := range dtos {
		r, err := fromDTO(d)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		recs = append(recs, r)
	}
	return recs, nil
}

func fromDTO(d recordDTO) (core.Record, error) {
	if len(d.Amount) == 0 {
		return core.Record{}, errors.New("missing amount")
	}
	// Only a bare number literal is an amount; strings, null and the like
	// are not.
	if c := d.Amount[0]; c != '-' && (c < '0' || c > '9') {
		return core.Record{}, fmt.Errorf("amount %s: not a JSON number", d.Amount)
	}
	amount, err := decimal.NewFromString(string(d.Amount))
	if err != nil {
		return core.Record{}, fmt.Errorf("amount %s: %w", d.Amount, err)
	}
	return core.NewRecordOn(core.Kind(d.Type), d.Category, amount, d.Date)
}
