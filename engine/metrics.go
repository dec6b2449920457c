/*
metrics.go - Derived financial metrics

PURPOSE:
  Turns a normalized shift into the metric set used identically by the
  add-shift form, history list, detail view, CSV export, and insights:

    tips_base        cash + card
    tip_out          see tipout.go
    net_tips         tips_base - tip_out (may be negative, not clamped)
    wages_earned     wage * hours
    shift_gross      net_tips + wages_earned
    hourly_tips      net_tips / hours   (0 when hours <= 0)
    effective_hourly shift_gross / hours (0 when hours <= 0)

TWO ENTRY POINTS:
  ComputeShiftMetrics is the full pipeline. ComputeDerived takes a
  pre-computed tip-out so a form can show the tip-out live before
  saving. The two must agree bit-for-bit for equivalent inputs; the
  engine tests pin that property.
*/
package engine

import "github.com/shopspring/decimal"

// DerivedMetrics is a pure function of ShiftInput. It is recomputed on
// every read and never persisted as primary truth.
type DerivedMetrics struct {
	TipsBase        decimal.Decimal `json:"tips_base"`
	TipOut          decimal.Decimal `json:"tip_out"`
	NetTips         decimal.Decimal `json:"net_tips"`
	WagesEarned     decimal.Decimal `json:"wages_earned"`
	ShiftGross      decimal.Decimal `json:"shift_gross"`
	HourlyTips      decimal.Decimal `json:"hourly_tips"`
	EffectiveHourly decimal.Decimal `json:"effective_hourly"`
}

// ComputeDerived computes every metric except the tip-out itself, which
// the caller supplies (typically from ComputeTipOut, but a form showing
// a live preview passes its displayed value so saved numbers match the
// preview exactly).
func ComputeDerived(in ShiftInput, tipOut decimal.Decimal) DerivedMetrics {
	tipsBase := Normalize(in.CashTips).Add(Normalize(in.CardTips))
	hours := Normalize(in.HoursWorked)

	netTips := Round2(tipsBase.Sub(tipOut))
	wages := Round2(Normalize(in.BaseHourlyWage).Mul(hours))
	gross := Round2(netTips.Add(wages))

	hourlyTips := decimal.Zero
	effective := decimal.Zero
	if hours.IsPositive() {
		hourlyTips = Round2(netTips.Div(hours))
		effective = Round2(gross.Div(hours))
	}

	return DerivedMetrics{
		TipsBase:        tipsBase,
		TipOut:          tipOut,
		NetTips:         netTips,
		WagesEarned:     wages,
		ShiftGross:      gross,
		HourlyTips:      hourlyTips,
		EffectiveHourly: effective,
	}
}

// ComputeShiftMetrics is the full pipeline: tip-out policy first, then
// the derived metrics from it.
func ComputeShiftMetrics(in ShiftInput) DerivedMetrics {
	return ComputeDerived(in, ComputeTipOut(in))
}
