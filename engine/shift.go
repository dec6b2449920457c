/*
shift.go - Shift input/record types and validation

PURPOSE:
  Defines the shapes exchanged with storage, forms, and CSV: the raw
  ShiftInput as entered by a user, the persisted ShiftRecord (input plus
  an immutable id), and validation for new entries.

VALIDATION SPLIT:
  The engine itself never rejects input; computation is best-effort
  (see numeric.go). Strict validation lives at the edges - the add/edit
  form and the CSV importer - and both call ValidateNewShift here so
  the rules stay in one place.
*/
package engine

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// Basis selects what the tip-out percentage is applied to.
type Basis string

const (
	BasisTips  Basis = "tips"
	BasisSales Basis = "sales"
)

// Conventional shift labels. The engine treats the type as an opaque
// label; these exist for forms and seeds.
const (
	ShiftBrunch = "Brunch"
	ShiftLunch  = "Lunch"
	ShiftDinner = "Dinner"
)

// ShiftInput is one shift as entered by a user or read from storage/CSV.
// Numeric fields arrive as numbers or free-form text; Normalize is the
// only way they become numbers.
type ShiftInput struct {
	Date           string  `json:"date"` // YYYY-MM-DD
	ShiftType      string  `json:"shift_type"`
	HoursWorked    Numeric `json:"hours_worked"`
	CashTips       Numeric `json:"cash_tips"`
	CardTips       Numeric `json:"card_tips"`
	TipOutBasis    Basis   `json:"tip_out_basis"` // "tips" | "sales"
	TipOutPercent  Numeric `json:"tip_out_percent"`
	Sales          Numeric `json:"sales"`
	TipOutOverride Numeric `json:"tip_out_override_amount"`
	BaseHourlyWage Numeric `json:"base_hourly_wage"`
	Notes          string  `json:"notes"`
}

// ShiftRecord is a persisted shift. The id is assigned by the store at
// insert time and never changes; deleting a record is destructive at
// the identity level (an "undo" re-creates a new record, new id).
type ShiftRecord struct {
	ID string `json:"id"`
	ShiftInput
}

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidDate reports whether s matches the exact YYYY-MM-DD pattern.
func ValidDate(s string) bool { return dateRe.MatchString(s) }

// maxShiftHours is the business upper bound for a single new entry.
var maxShiftHours = decimal.NewFromInt(18)

// ValidateNewShift applies the new-entry business rules and returns
// human-readable problems. An empty slice means the shift is accepted.
//
// Note the hours rule here is (0, 18]; the CSV importer deliberately
// accepts 0 hours for historical rows and has its own row validation.
func ValidateNewShift(in ShiftInput) []string {
	var problems []string

	if !ValidDate(in.Date) {
		problems = append(problems, fmt.Sprintf("invalid date %q (expected YYYY-MM-DD)", in.Date))
	}

	hours := Normalize(in.HoursWorked)
	if !hours.IsPositive() {
		problems = append(problems, "hours_worked must be greater than 0")
	} else if hours.GreaterThan(maxShiftHours) {
		problems = append(problems, "hours_worked must be at most 18")
	}

	switch in.TipOutBasis {
	case BasisTips, BasisSales:
	default:
		problems = append(problems, `tip_out_basis must be "tips" or "sales"`)
	}

	pct := Normalize(in.TipOutPercent)
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		problems = append(problems, "tip_out_percent out of range 0..100")
	}

	if in.TipOutBasis == BasisSales {
		if !in.Sales.Present() {
			problems = append(problems, `sales is required when tip_out_basis is "sales"`)
		} else if Normalize(in.Sales).IsNegative() {
			problems = append(problems, "sales must be >= 0")
		}
	}

	if Normalize(in.CashTips).IsNegative() || Normalize(in.CardTips).IsNegative() {
		problems = append(problems, "tips must be >= 0")
	}
	if Normalize(in.BaseHourlyWage).IsNegative() {
		problems = append(problems, "base_hourly_wage must be >= 0")
	}

	return problems
}
