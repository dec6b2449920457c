/*
tipout.go - Tip-out policy

PURPOSE:
  Computes the amount deducted from a shift's tips under one of three
  policies, in strict precedence order:

    1. Manual override: a present (non-blank) override amount wins
       unconditionally. No other field is consulted. Negative overrides
       floor to zero.
    2. Percentage of sales: basis "sales" applies the percent to sales.
    3. Percentage of tips: anything else applies it to cash + card.

EDGE CASES:
  - Basis "sales" with no sales entered yields a 0 tip-out silently;
    whether sales was required is a form/import concern, not the
    engine's.
  - The resulting tip-out may exceed the tips collected. Net tips go
    negative downstream and are shown as-is.
*/
package engine

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// ComputeTipOut returns the rounded tip-out amount for a shift. Only
// the tip-out fields of in are consulted (cash/card tips, basis,
// percent, sales, override).
func ComputeTipOut(in ShiftInput) decimal.Decimal {
	if in.TipOutOverride.Present() {
		amount := Round2(Normalize(in.TipOutOverride))
		if amount.IsNegative() {
			return decimal.Zero
		}
		return amount
	}

	base := Normalize(in.CashTips).Add(Normalize(in.CardTips))
	if in.TipOutBasis == BasisSales {
		base = Normalize(in.Sales)
	}
	pct := Normalize(in.TipOutPercent).Div(oneHundred)
	return Round2(base.Mul(pct))
}
