// Package sheets keeps a ledger in a Google Sheets tab. Row 1 holds the
// header; each following row is one record in columns A:D.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"budget/internal/core"
	"budget/internal/storage"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	storeName = "sheets"

	// DefaultSheetName is the tab used when none is configured.
	DefaultSheetName = "Ledger"
)

var (
	header = []any{"type", "category", "amount", "date"}

	errNoService = errors.New("sheets service not initialized")
)

// Config selects the spreadsheet and the service-account credentials.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Store struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
}

var _ storage.Store = (*Store)(nil)

// New creates a Sheets-backed store using service-account credentials.
// Extra client options are appended after the credentials.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Store, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	credentialsJSON, err := readCredentials(cfg)
	if err != nil {
		return nil, err
	}

	all := append([]goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, opts...)
	svc, err := gsheet.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", cfg.SpreadsheetID, "sheet", cfg.SheetName)
	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheet string) *Store {
	if strings.TrimSpace(sheet) == "" {
		sheet = DefaultSheetName
	}
	return &Store{svc: svc, spreadsheetID: spreadsheetID, sheet: sheet}
}

func readCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

func (s *Store) Name() string { return storeName }

func (s *Store) dataRange() string {
	return fmt.Sprintf("%s!A2:D", s.sheet)
}

func (s *Store) Load(ctx context.Context) ([]core.Record, error) {
	if s.svc == nil {
		return nil, &core.PersistenceError{Op: "sheets.get", Store: storeName, Err: errNoService}
	}
	rng := s.dataRange()
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		if isMissingSheet(err) {
			return nil, nil
		}
		return nil, &core.PersistenceError{Op: "sheets.get", Store: storeName, Path: rng, Err: err}
	}

	recs, err := parseRows(resp.Values)
	if err != nil {
		return nil, core.Corrupt("sheets.parse", storeName, rng, err)
	}
	return recs, nil
}

// Save writes header plus records over the top of the tab, then clears any
// rows left over from a longer sequence. A failed write leaves the previous
// rows in place. The tab is created when it does not exist yet.
func (s *Store) Save(ctx context.Context, records []core.Record) error {
	if s.svc == nil {
		return &core.PersistenceError{Op: "sheets.update", Store: storeName, Err: errNoService}
	}

	values := make([][]any, 0, len(records)+1)
	values = append(values, header)
	for _, r := range records {
		values = append(values, toRow(r))
	}

	target := fmt.Sprintf("%s!A1:D%d", s.sheet, len(values))
	err := s.update(ctx, target, values)
	if err != nil && isMissingSheet(err) {
		if err := s.addSheet(ctx); err != nil {
			return &core.PersistenceError{Op: "sheets.add_sheet", Store: storeName, Path: s.sheet, Err: err}
		}
		err = s.update(ctx, target, values)
	}
	if err != nil {
		return &core.PersistenceError{Op: "sheets.update", Store: storeName, Path: target, Err: err}
	}

	tail := fmt.Sprintf("%s!A%d:D", s.sheet, len(values)+1)
	if _, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, tail, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return &core.PersistenceError{Op: "sheets.clear", Store: storeName, Path: tail, Err: err}
	}
	return nil
}

func (s *Store) update(ctx context.Context, target string, values [][]any) error {
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, target, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (s *Store) addSheet(ctx context.Context) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: s.sheet},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Created sheet tab", "spreadsheet_id", s.spreadsheetID, "sheet", s.sheet)
	return nil
}

// isMissingSheet reports whether the API rejected the range because the tab
// does not exist yet.
func isMissingSheet(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	return gerr.Code == http.StatusBadRequest && strings.Contains(gerr.Message, "Unable to parse range")
}
