package sheets

import (
	"fmt"
	"strings"

	"budget/internal/core"

	"github.com/shopspring/decimal"
)

// parseRows converts a values matrix (as returned by the Sheets API, header
// excluded) into records. Blank rows are skipped.
func parseRows(values [][]any) ([]core.Record, error) {
	var out []core.Record
	for i, row := range values {
		cells := toStrings(row)
		if isBlank(cells) {
			continue
		}
		if len(cells) < 4 {
			return nil, fmt.Errorf("row %d: expected 4 columns, got %d", i+2, len(cells))
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(cells[2]))
		if err != nil {
			return nil, fmt.Errorf("row %d: amount %q: %w", i+2, cells[2], err)
		}
		r, err := core.NewRecordOn(core.Kind(strings.TrimSpace(cells[0])), cells[1], amount, strings.TrimSpace(cells[3]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func toRow(r core.Record) []any {
	return []any{r.Kind().String(), r.Category(), r.Amount().String(), r.Date()}
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
