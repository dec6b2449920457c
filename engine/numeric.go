/*
Package engine is the shift metrics calculation engine.

PURPOSE:
  Pure, stateless functions that turn raw per-shift earnings data
  (hours, cash/card tips, tip-out policy, wage) into a consistent set
  of financial metrics. Every screen, export, and rollup in the system
  computes money through this package so the numbers agree everywhere.

KEY CONCEPTS IN THIS FILE (numeric.go):
  - Numeric:   A raw numeric-ish input (number, free-form string, or
               absent). The single boundary type for duck-typed fields.
  - Normalize: The one canonical coercion from Numeric to a decimal.
  - Round2:    Cent rounding (half away from zero) for monetary outputs.

DESIGN PRINCIPLES:
  1. Best effort: malformed input normalizes to 0, it never errors.
  2. One algorithm: there is exactly one normalization routine; callers
     must not re-implement it (history showed two drifting copies).
  3. Precision: decimal.Decimal for all money, no float accumulation.

SEE ALSO:
  - tipout.go:  Tip-out policy (override, tips/sales basis)
  - metrics.go: Derived metrics (net tips, wages, gross, rates)
  - shift.go:   Shift input/record types and validation
*/
package engine

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// NUMERIC - Raw boundary value (number | string | absent)
// =============================================================================

// Numeric holds a numeric field exactly as it arrived at the boundary:
// a number, a string that may contain currency symbols or locale commas,
// or nothing at all. The zero value is "absent".
//
// Absence matters for exactly one rule: a present (non-blank) tip-out
// override replaces the percentage computation, even when it is "0".
type Numeric struct {
	raw     string
	number  bool
	present bool
}

// Num wraps an already-numeric value. Non-finite floats are treated as
// absent so they normalize to zero.
func Num(v float64) Numeric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Numeric{}
	}
	return Numeric{raw: strconv.FormatFloat(v, 'f', -1, 64), number: true, present: true}
}

// Str wraps a free-form text value ("$120", "5,0", "").
func Str(s string) Numeric {
	return Numeric{raw: s, present: true}
}

// Present reports whether a non-blank value was supplied. This is the
// override-precedence test: trimmed-empty counts as absent.
func (n Numeric) Present() bool {
	return n.present && strings.TrimSpace(n.raw) != ""
}

// Raw returns the value as it arrived, "" when absent.
func (n Numeric) Raw() string { return n.raw }

// UnmarshalJSON accepts a JSON number, string, or null.
func (n *Numeric) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*n = Numeric{}
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Str(s)
		return nil
	}
	// Exponent notation must be canonicalized up front: the scrubbing
	// path in Normalize has no concept of "e" and would mangle the value
	// ("1e5" -> 15). Plain tokens are kept verbatim so "5.0" round-trips
	// as "5.0".
	if strings.ContainsAny(trimmed, "eE") {
		d, err := decimal.NewFromString(trimmed)
		if err != nil {
			return err
		}
		*n = Numeric{raw: d.String(), number: true, present: true}
		return nil
	}
	*n = Numeric{raw: trimmed, number: true, present: true}
	return nil
}

// MarshalJSON emits null when absent, the raw token when the value
// arrived as a number, otherwise the raw text as a string.
func (n Numeric) MarshalJSON() ([]byte, error) {
	if !n.present {
		return []byte("null"), nil
	}
	if n.number {
		return []byte(n.raw), nil
	}
	return json.Marshal(n.raw)
}

// =============================================================================
// NORMALIZATION - The canonical coercion
// =============================================================================

// Normalize turns any Numeric into a finite decimal, defaulting to zero
// for anything unparseable. The step order is load-bearing; every call
// site in the system depends on these exact semantics:
//
//  1. Absent -> 0.
//  2. Trim whitespace; empty -> 0.
//  3. Replace the FIRST comma with "." (comma-decimal locales: "5,0" -> "5.0").
//     This is a targeted replacement, not thousands-grouping removal.
//  4. Strip every character that is not a digit, ".", or "-".
//  5. Drop a trailing "." ("5." -> "5").
//  6. Parse the longest leading numeric prefix; nothing parseable -> 0.
func Normalize(n Numeric) decimal.Decimal {
	if !n.present {
		return decimal.Zero
	}
	s := strings.TrimSpace(n.raw)
	if s == "" {
		return decimal.Zero
	}
	s = strings.Replace(s, ",", ".", 1)
	s = stripNonNumeric(s)
	s = strings.TrimSuffix(s, ".")
	s = numericPrefix(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func stripNonNumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// numericPrefix scans the longest leading "[-]digits[.digits]" run.
// Stray separators after the prefix are ignored ("1.234.50" -> "1.234"),
// which is what the historical implementation did.
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	digits := false
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits = true
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits = true
		}
	}
	if !digits {
		return ""
	}
	return strings.TrimSuffix(s[:i], ".")
}

// Round2 rounds to cents, half away from zero. Applied to every
// monetary output, never to intermediates still in flight.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
