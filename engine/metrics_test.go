package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tiptally/shift-engine/engine"
)

// =============================================================================
// TIP-OUT POLICY
// =============================================================================

func TestComputeTipOut_PercentOfTips(t *testing.T) {
	// GIVEN: 120 cash + 280 card, 5% of tips
	// THEN: tip-out is 20.00

	out := engine.ComputeTipOut(engine.ShiftInput{
		CashTips:      engine.Num(120),
		CardTips:      engine.Num(280),
		TipOutBasis:   engine.BasisTips,
		TipOutPercent: engine.Num(5),
	})
	assertDecimal(t, out, "20", "5% of 400 in tips")
}

func TestComputeTipOut_PercentOfSales(t *testing.T) {
	// GIVEN: basis "sales", 1.5% of 1000 in sales
	// THEN: tip-out is 15.00, tips fields are never consulted

	in := engine.ShiftInput{
		CashTips:      engine.Num(90),
		CardTips:      engine.Num(110),
		TipOutBasis:   engine.BasisSales,
		TipOutPercent: engine.Num(1.5),
		Sales:         engine.Num(1000),
	}
	assertDecimal(t, engine.ComputeTipOut(in), "15", "1.5% of 1000 in sales")

	// Changing the tips must not move a sales-basis tip-out.
	in.CashTips = engine.Num(9999)
	in.CardTips = engine.Str("$1,000,000")
	assertDecimal(t, engine.ComputeTipOut(in), "15", "sales basis ignores tips")
}

func TestComputeTipOut_TipsBasisIgnoresSales(t *testing.T) {
	in := engine.ShiftInput{
		CashTips:      engine.Num(100),
		CardTips:      engine.Num(100),
		TipOutBasis:   engine.BasisTips,
		TipOutPercent: engine.Num(10),
		Sales:         engine.Num(50000),
	}
	assertDecimal(t, engine.ComputeTipOut(in), "20", "tips basis ignores sales")
}

func TestComputeTipOut_OverrideWins(t *testing.T) {
	// GIVEN: an override amount
	// THEN: it replaces the percentage computation unconditionally

	in := engine.ShiftInput{
		CashTips:       engine.Num(500),
		CardTips:       engine.Num(500),
		TipOutBasis:    engine.BasisSales,
		TipOutPercent:  engine.Num(50),
		Sales:          engine.Num(10000),
		TipOutOverride: engine.Str(" $12.345 "),
	}
	assertDecimal(t, engine.ComputeTipOut(in), "12.35", "override is normalized and rounded")

	// Override "0" is present, so it still wins.
	in.TipOutOverride = engine.Str("0")
	assertDecimal(t, engine.ComputeTipOut(in), "0", "zero override wins")

	// Blank override is absent; the percentage path applies again.
	in.TipOutOverride = engine.Str("   ")
	assertDecimal(t, engine.ComputeTipOut(in), "5000", "blank override falls through")
}

func TestComputeTipOut_NegativeOverrideFloorsToZero(t *testing.T) {
	out := engine.ComputeTipOut(engine.ShiftInput{
		CashTips:       engine.Num(100),
		TipOutBasis:    engine.BasisTips,
		TipOutPercent:  engine.Num(5),
		TipOutOverride: engine.Num(-25),
	})
	assertDecimal(t, out, "0", "negative override floors to 0")
}

func TestComputeTipOut_SalesBasisWithoutSales(t *testing.T) {
	// Basis "sales" with no sales entered is a silent 0, not an error;
	// requiring sales is the form's job.
	out := engine.ComputeTipOut(engine.ShiftInput{
		CashTips:      engine.Num(200),
		TipOutBasis:   engine.BasisSales,
		TipOutPercent: engine.Num(3),
	})
	assertDecimal(t, out, "0", "missing sales yields 0 tip-out")
}

// =============================================================================
// DERIVED METRICS
// =============================================================================

func TestComputeShiftMetrics_DinnerScenario(t *testing.T) {
	// GIVEN: 6h dinner, 120 cash + 280 card, 5% of tips, $5 wage
	m := engine.ComputeShiftMetrics(engine.ShiftInput{
		HoursWorked:    engine.Num(6),
		CashTips:       engine.Num(120),
		CardTips:       engine.Num(280),
		TipOutBasis:    engine.BasisTips,
		TipOutPercent:  engine.Num(5),
		BaseHourlyWage: engine.Num(5),
	})

	assertDecimal(t, m.TipOut, "20", "tip_out")
	assertDecimal(t, m.NetTips, "380", "net_tips")
	assertDecimal(t, m.WagesEarned, "30", "wages_earned")
	assertDecimal(t, m.ShiftGross, "410", "shift_gross")
	assertDecimal(t, m.HourlyTips, "63.33", "hourly_tips")
	assertDecimal(t, m.EffectiveHourly, "68.33", "effective_hourly")
}

func TestComputeShiftMetrics_BrunchSalesScenario(t *testing.T) {
	// GIVEN: 5h brunch, 90 cash + 110 card, 1.5% of 1000 sales, $5 wage
	m := engine.ComputeShiftMetrics(engine.ShiftInput{
		HoursWorked:    engine.Num(5),
		CashTips:       engine.Num(90),
		CardTips:       engine.Num(110),
		TipOutBasis:    engine.BasisSales,
		TipOutPercent:  engine.Num(1.5),
		Sales:          engine.Num(1000),
		BaseHourlyWage: engine.Num(5),
	})

	assertDecimal(t, m.TipOut, "15", "tip_out")
	assertDecimal(t, m.NetTips, "185", "net_tips")
	assertDecimal(t, m.WagesEarned, "25", "wages_earned")
	assertDecimal(t, m.ShiftGross, "210", "shift_gross")
	assertDecimal(t, m.EffectiveHourly, "42", "effective_hourly")
}

func TestComputeShiftMetrics_ZeroHoursGuard(t *testing.T) {
	// GIVEN: zero (or negative) hours
	// THEN: only the two rate fields are zeroed; money is still computed

	for _, hours := range []float64{0, -2} {
		m := engine.ComputeShiftMetrics(engine.ShiftInput{
			HoursWorked:    engine.Num(hours),
			CashTips:       engine.Num(100),
			CardTips:       engine.Num(50),
			TipOutBasis:    engine.BasisTips,
			TipOutPercent:  engine.Num(10),
			BaseHourlyWage: engine.Num(20),
		})
		assertDecimal(t, m.HourlyTips, "0", "hourly_tips with no hours")
		assertDecimal(t, m.EffectiveHourly, "0", "effective_hourly with no hours")
		assertDecimal(t, m.NetTips, "135", "net_tips still computed")
	}
}

func TestComputeShiftMetrics_NegativeNetTipsAllowed(t *testing.T) {
	// GIVEN: an override larger than the tips collected
	// THEN: net tips go negative and are not clamped

	m := engine.ComputeShiftMetrics(engine.ShiftInput{
		HoursWorked:    engine.Num(4),
		CashTips:       engine.Num(10),
		CardTips:       engine.Num(0),
		TipOutBasis:    engine.BasisTips,
		TipOutPercent:  engine.Num(0),
		TipOutOverride: engine.Num(50),
		BaseHourlyWage: engine.Num(0),
	})
	assertDecimal(t, m.NetTips, "-40", "net_tips may be negative")
	assertDecimal(t, m.ShiftGross, "-40", "gross follows")
}

func TestComputeDerived_AgreesWithComputeShiftMetrics(t *testing.T) {
	// GIVEN: equivalent raw inputs, one path going through a
	// pre-computed tip-out (the live form) and one through the full
	// pipeline
	// THEN: every output matches bit-for-bit

	inputs := []engine.ShiftInput{
		{
			HoursWorked:    engine.Str("6"),
			CashTips:       engine.Str("$120"),
			CardTips:       engine.Str("280"),
			TipOutBasis:    engine.BasisTips,
			TipOutPercent:  engine.Str("5,0"),
			BaseHourlyWage: engine.Num(5),
		},
		{
			HoursWorked:    engine.Num(7.25),
			CashTips:       engine.Num(33.33),
			CardTips:       engine.Num(66.67),
			TipOutBasis:    engine.BasisSales,
			TipOutPercent:  engine.Num(2),
			Sales:          engine.Num(1234.56),
			BaseHourlyWage: engine.Num(16.5),
		},
		{
			HoursWorked:    engine.Num(0),
			TipOutOverride: engine.Str("17"),
		},
	}

	for i, in := range inputs {
		full := engine.ComputeShiftMetrics(in)
		form := engine.ComputeDerived(in, engine.ComputeTipOut(in))
		if !full.NetTips.Equal(form.NetTips) ||
			!full.WagesEarned.Equal(form.WagesEarned) ||
			!full.ShiftGross.Equal(form.ShiftGross) ||
			!full.HourlyTips.Equal(form.HourlyTips) ||
			!full.EffectiveHourly.Equal(form.EffectiveHourly) {
			t.Errorf("input %d: form and full pipeline disagree: %+v vs %+v", i, form, full)
		}
	}
}

func TestComputeShiftMetrics_MonetaryOutputsAreCents(t *testing.T) {
	// Every monetary output is a multiple of 0.01.

	m := engine.ComputeShiftMetrics(engine.ShiftInput{
		HoursWorked:    engine.Num(3.7),
		CashTips:       engine.Num(101.013),
		CardTips:       engine.Num(55.555),
		TipOutBasis:    engine.BasisTips,
		TipOutPercent:  engine.Num(3.33),
		BaseHourlyWage: engine.Num(15.25),
	})

	hundred := decimal.NewFromInt(100)
	for name, v := range map[string]decimal.Decimal{
		"tip_out":          m.TipOut,
		"net_tips":         m.NetTips,
		"wages_earned":     m.WagesEarned,
		"shift_gross":      m.ShiftGross,
		"hourly_tips":      m.HourlyTips,
		"effective_hourly": m.EffectiveHourly,
	} {
		if !v.Mul(hundred).IsInteger() {
			t.Errorf("%s = %s is not a whole number of cents", name, v)
		}
	}
}

// =============================================================================
// NEW-ENTRY VALIDATION
// =============================================================================

func TestValidateNewShift(t *testing.T) {
	valid := engine.ShiftInput{
		Date:           "2025-08-02",
		ShiftType:      engine.ShiftDinner,
		HoursWorked:    engine.Num(7.5),
		CashTips:       engine.Num(200),
		CardTips:       engine.Num(300),
		TipOutBasis:    engine.BasisTips,
		TipOutPercent:  engine.Num(3),
		BaseHourlyWage: engine.Num(5),
	}
	if problems := engine.ValidateNewShift(valid); len(problems) != 0 {
		t.Fatalf("expected valid shift, got %v", problems)
	}

	cases := []struct {
		name   string
		mutate func(*engine.ShiftInput)
	}{
		{"bad date", func(in *engine.ShiftInput) { in.Date = "08/02/2025" }},
		{"zero hours", func(in *engine.ShiftInput) { in.HoursWorked = engine.Num(0) }},
		{"too many hours", func(in *engine.ShiftInput) { in.HoursWorked = engine.Num(19) }},
		{"bad basis", func(in *engine.ShiftInput) { in.TipOutBasis = "percent" }},
		{"percent over 100", func(in *engine.ShiftInput) { in.TipOutPercent = engine.Num(101) }},
		{"sales basis without sales", func(in *engine.ShiftInput) {
			in.TipOutBasis = engine.BasisSales
			in.Sales = engine.Numeric{}
		}},
		{"negative wage", func(in *engine.ShiftInput) { in.BaseHourlyWage = engine.Num(-1) }},
	}
	for _, c := range cases {
		in := valid
		c.mutate(&in)
		if problems := engine.ValidateNewShift(in); len(problems) == 0 {
			t.Errorf("%s: expected a validation problem", c.name)
		}
	}
}
