package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"budget/internal/core"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// fakeSheets is a minimal stand-in for the values and batchUpdate endpoints
// of the Sheets API. grid holds the whole tab, header included.
type fakeSheets struct {
	mu      sync.Mutex
	grid    [][]any
	missing bool
	failPut bool
	clears  int
	puts    int
	adds    int
	lastID  string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// /v4/spreadsheets/{id}/values/{range}[:clear] or /v4/spreadsheets/{id}:batchUpdate
	rest := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) == 2 {
		f.lastID = parts[0]
	}
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(rest, ":batchUpdate"):
		f.adds++
		f.missing = false
		_, _ = w.Write([]byte(`{}`))
	case f.missing:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Unable to parse range: Ledger!A2:D","status":"INVALID_ARGUMENT"}}`))
	case r.Method == http.MethodGet:
		rows := [][]any{}
		if len(f.grid) > 1 {
			rows = f.grid[1:]
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"range": "Ledger!A2:D", "values": rows})
	case r.Method == http.MethodPost && strings.HasSuffix(rest, ":clear"):
		f.clears++
		if from := firstRow(strings.TrimSuffix(parts[1], ":clear")); from > 0 && len(f.grid) >= from {
			f.grid = f.grid[:from-1]
		}
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPut:
		if f.failPut {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"forbidden"}}`))
			return
		}
		f.puts++
		var vr struct {
			Values [][]any `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		// Update writes over the top rows and leaves the rest alone.
		for i, row := range vr.Values {
			if i < len(f.grid) {
				f.grid[i] = row
			} else {
				f.grid = append(f.grid, row)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"updatedRows": len(vr.Values)})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// firstRow extracts the starting row from "values/<sheet>!A<row>:D".
func firstRow(path string) int {
	_, rng, ok := strings.Cut(path, "!A")
	if !ok {
		return 0
	}
	digits, _, _ := strings.Cut(rng, ":")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

func (f *fakeSheets) setFailPut(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPut = fail
}

func (f *fakeSheets) snapshot() (clears, puts int, id string, grid [][]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clears, f.puts, f.lastID, f.grid
}

func newTestStore(t *testing.T, fake *fakeSheets) *Store {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return NewWithService(svc, "sheet-id", "")
}

func rec(t *testing.T, kind core.Kind, category, amount, date string) core.Record {
	t.Helper()
	r, err := core.NewRecordOn(kind, category, decimal.RequireFromString(amount), date)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	return r
}

func TestLoadMissingSheetIsEmpty(t *testing.T) {
	s := newTestStore(t, &fakeSheets{missing: true})
	recs, err := s.Load(context.Background())
	if err != nil || len(recs) != 0 {
		t.Fatalf("expected empty, got %v err=%v", recs, err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	fake := &fakeSheets{}
	s := newTestStore(t, fake)
	ctx := context.Background()

	in := []core.Record{
		rec(t, core.Income, "Salary", "1000", "2025-01-01"),
		rec(t, core.Expense, "Rent", "400.25", "2025-01-02"),
	}
	if err := s.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	clears, puts, id, grid := fake.snapshot()
	if clears != 1 || puts != 1 {
		t.Fatalf("expected one clear and one update, got %d/%d", clears, puts)
	}
	if id != "sheet-id" {
		t.Fatalf("unexpected spreadsheet id %q", id)
	}
	if len(grid) != 3 || grid[0][0] != "type" {
		t.Fatalf("expected header plus two rows, got %v", grid)
	}

	out, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 2 || !out[0].Equal(in[0]) || !out[1].Equal(in[1]) {
		t.Fatalf("round trip mismatch: %v", out)
	}
}

func TestLoadCorruptRow(t *testing.T) {
	fake := &fakeSheets{grid: [][]any{
		header,
		{"income", "Salary", "a lot", "2025-01-01"},
	}}
	s := newTestStore(t, fake)
	_, err := s.Load(context.Background())
	if !errors.Is(err, core.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestSaveFailureIsPersistenceError(t *testing.T) {
	s := newTestStore(t, &fakeSheets{failPut: true})
	err := s.Save(context.Background(), []core.Record{rec(t, core.Income, "A", "1", "2025-01-01")})
	if !core.IsPersistence(err) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
}

func TestFailedSaveKeepsPreviousRows(t *testing.T) {
	fake := &fakeSheets{}
	s := newTestStore(t, fake)
	ctx := context.Background()

	before := []core.Record{
		rec(t, core.Income, "Salary", "1000", "2025-01-01"),
		rec(t, core.Expense, "Rent", "400", "2025-01-02"),
	}
	if err := s.Save(ctx, before); err != nil {
		t.Fatalf("save: %v", err)
	}

	fake.setFailPut(true)
	longer := append(before, rec(t, core.Expense, "Food", "12", "2025-01-03"))
	if err := s.Save(ctx, longer); !core.IsPersistence(err) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || !got[0].Equal(before[0]) || !got[1].Equal(before[1]) {
		t.Fatalf("records lost after failed save: %v", got)
	}
}

func TestSaveShorterSequenceClearsTail(t *testing.T) {
	fake := &fakeSheets{}
	s := newTestStore(t, fake)
	ctx := context.Background()

	three := []core.Record{
		rec(t, core.Income, "A", "1", "2025-01-01"),
		rec(t, core.Income, "B", "2", "2025-01-01"),
		rec(t, core.Income, "C", "3", "2025-01-01"),
	}
	if err := s.Save(ctx, three); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, three[:1]); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil || len(got) != 1 || !got[0].Equal(three[0]) {
		t.Fatalf("expected only the first record, got %v err=%v", got, err)
	}
	if _, _, _, grid := fake.snapshot(); len(grid) != 2 {
		t.Fatalf("expected header plus one row, got %v", grid)
	}
}

func TestSaveCreatesMissingSheet(t *testing.T) {
	fake := &fakeSheets{missing: true}
	s := newTestStore(t, fake)
	ctx := context.Background()

	r := rec(t, core.Expense, "Rent", "400", "2025-01-02")
	if err := s.Save(ctx, []core.Record{r}); err != nil {
		t.Fatalf("save into a missing tab: %v", err)
	}
	fake.mu.Lock()
	adds := fake.adds
	fake.mu.Unlock()
	if adds != 1 {
		t.Fatalf("expected the tab to be created once, got %d", adds)
	}

	got, err := s.Load(ctx)
	if err != nil || len(got) != 1 || !got[0].Equal(r) {
		t.Fatalf("load after create: %v err=%v", got, err)
	}
}

func TestParseRows(t *testing.T) {
	recs, err := parseRows([][]any{
		{"expense", "Food", "12.5", "2025-05-01"},
		{},
		{"", "", "", ""},
		{"income", "Gift", "30", "2025-05-02"},
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(recs) != 2 || recs[0].Category() != "Food" || recs[1].Kind() != core.Income {
		t.Fatalf("unexpected records: %v", recs)
	}

	if _, err := parseRows([][]any{{"expense", "Food"}}); err == nil {
		t.Fatalf("expected error for short row")
	}
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for missing spreadsheet id")
	}
	_, err := New(context.Background(), Config{SpreadsheetID: "x"})
	if err == nil || !strings.Contains(err.Error(), "credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestNilServiceIsPersistenceError(t *testing.T) {
	s := &Store{}
	if _, err := s.Load(context.Background()); !core.IsPersistence(err) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if err := s.Save(context.Background(), nil); !core.IsPersistence(err) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
}
