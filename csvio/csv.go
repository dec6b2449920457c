/*
Package csvio implements the CSV interchange format for shifts.

PURPOSE:
  Export writes one row per shift: the raw fields followed by five
  computed_* metric columns from the engine, so a spreadsheet shows the
  same numbers as every screen. Import reads the same format back,
  matching columns by header name (case-insensitive, order-independent)
  and ignoring the id and computed_* columns - metrics are never
  trusted from a file, they are recomputed from raw fields.

VALIDATION:
  Import is row-by-row and non-fatal: invalid rows are skipped and
  reported with 1-based row numbers (the header is row 1); valid rows
  still proceed. Numeric cells go through the engine's canonical
  normalization, the same one used everywhere else.
*/
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/tiptally/shift-engine/engine"
)

// Headers is the canonical column order for export.
var Headers = []string{
	"id", "date", "shift_type", "hours_worked", "cash_tips", "card_tips",
	"tip_out_basis", "tip_out_percent", "sales", "tip_out_override_amount",
	"base_hourly_wage", "notes",
	"computed_tip_out", "computed_net_tips", "computed_wages_earned",
	"computed_effective_hourly", "computed_shift_gross",
}

// Export writes all records as CSV, raw fields plus computed metrics.
func Export(w io.Writer, records []engine.ShiftRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, r := range records {
		m := engine.ComputeShiftMetrics(r.ShiftInput)
		row := []string{
			r.ID,
			r.Date,
			r.ShiftType,
			r.HoursWorked.Raw(),
			r.CashTips.Raw(),
			r.CardTips.Raw(),
			string(r.TipOutBasis),
			r.TipOutPercent.Raw(),
			r.Sales.Raw(),
			r.TipOutOverride.Raw(),
			r.BaseHourlyWage.Raw(),
			r.Notes,
			m.TipOut.StringFixed(2),
			m.NetTips.StringFixed(2),
			m.WagesEarned.StringFixed(2),
			m.EffectiveHourly.StringFixed(2),
			m.ShiftGross.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ParseResult is the outcome of parsing an import file.
type ParseResult struct {
	Rows    []engine.ShiftInput // valid rows, ready to insert
	Errors  []string            // human-readable problems, 1-based row numbers
	Header  []string            // normalized header columns as parsed
	Skipped int                 // rows dropped due to errors
}

// importedColumns are the header names import recognizes. id and the
// computed_* columns are accepted but ignored.
var importedColumns = map[string]bool{
	"date": true, "shift_type": true, "hours_worked": true,
	"cash_tips": true, "card_tips": true, "tip_out_basis": true,
	"tip_out_percent": true, "sales": true,
	"tip_out_override_amount": true, "base_hourly_wage": true,
	"notes": true,
}

// Parse reads CSV from r and validates each row. It never fails on a
// bad row; see ParseResult.
func Parse(r io.Reader) ParseResult {
	result := ParseResult{}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = false

	records, err := cr.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Malformed CSV: %v", err))
		return result
	}
	if len(records) == 0 || len(records[0]) == 0 || (len(records[0]) == 1 && strings.TrimSpace(records[0][0]) == "") {
		result.Errors = append(result.Errors, "Empty CSV")
		return result
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	result.Header = header

	hasDate, hasHours := false, false
	for _, h := range header {
		if h == "date" {
			hasDate = true
		}
		if h == "hours_worked" {
			hasHours = true
		}
	}
	if !hasDate || !hasHours {
		result.Errors = append(result.Errors, "Missing required columns: date, hours_worked")
	}

	for i, record := range records[1:] {
		rowNum := i + 2 // 1-based, header is row 1

		if isBlankRow(record) {
			continue
		}

		cells := make(map[string]string, len(header))
		for c, h := range header {
			if !importedColumns[h] {
				continue
			}
			if c < len(record) {
				cells[h] = record[c]
			}
		}

		in, ok := validateRow(cells, rowNum, &result.Errors)
		if !ok {
			result.Skipped++
			continue
		}
		result.Rows = append(result.Rows, in)
	}

	return result
}

func isBlankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// cellNumeric maps an empty cell to absent and anything else to a raw
// Numeric for canonical normalization.
func cellNumeric(v string) engine.Numeric {
	if strings.TrimSpace(v) == "" {
		return engine.Numeric{}
	}
	return engine.Str(v)
}

// validateRow applies the import rules. Fatal problems (bad date,
// negative hours, sales missing for a sales basis) skip the row; field
// problems (unknown basis, out-of-range percent) are reported and the
// offending field is cleared, keeping the row.
func validateRow(cells map[string]string, rowNum int, errs *[]string) (engine.ShiftInput, bool) {
	var in engine.ShiftInput

	in.Date = strings.TrimSpace(cells["date"])
	if !engine.ValidDate(in.Date) {
		*errs = append(*errs, fmt.Sprintf("Row %d: invalid date %q (expected YYYY-MM-DD)", rowNum, in.Date))
		return in, false
	}

	in.HoursWorked = cellNumeric(cells["hours_worked"])
	if engine.Normalize(in.HoursWorked).IsNegative() {
		*errs = append(*errs, fmt.Sprintf("Row %d: hours_worked must be >= 0", rowNum))
		return in, false
	}

	in.ShiftType = strings.TrimSpace(cells["shift_type"])
	in.CashTips = cellNumeric(cells["cash_tips"])
	in.CardTips = cellNumeric(cells["card_tips"])

	basisRaw := strings.ToLower(strings.TrimSpace(cells["tip_out_basis"]))
	switch basisRaw {
	case "":
	case string(engine.BasisTips), string(engine.BasisSales):
		in.TipOutBasis = engine.Basis(basisRaw)
	default:
		*errs = append(*errs, fmt.Sprintf(`Row %d: tip_out_basis must be "tips" or "sales"`, rowNum))
	}

	in.TipOutPercent = cellNumeric(cells["tip_out_percent"])
	if in.TipOutPercent.Present() {
		pct := engine.Normalize(in.TipOutPercent)
		if pct.IsNegative() || pct.GreaterThan(engine.Normalize(engine.Str("100"))) {
			*errs = append(*errs, fmt.Sprintf("Row %d: tip_out_percent out of range 0..100", rowNum))
			in.TipOutPercent = engine.Numeric{}
		}
	}

	in.Sales = cellNumeric(cells["sales"])
	in.TipOutOverride = cellNumeric(cells["tip_out_override_amount"])
	in.BaseHourlyWage = cellNumeric(cells["base_hourly_wage"])
	in.Notes = strings.TrimSpace(cells["notes"])

	if in.TipOutBasis == engine.BasisSales {
		if !in.Sales.Present() || engine.Normalize(in.Sales).IsNegative() {
			*errs = append(*errs, fmt.Sprintf(`Row %d: tip_out_basis is "sales" but sales is missing/invalid`, rowNum))
			return in, false
		}
	}

	return in, true
}
