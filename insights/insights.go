/*
Package insights computes multi-shift rollups for the analytics screens.

PURPOSE:
  Given a collection of shift records (already filtered by date range
  and/or shift type), produce summary totals, hours-weighted "best slot"
  recommendations, weekly buckets, and the series behind the charts.
  All per-shift money comes from the engine package, so these numbers
  agree with every other screen.

WEIGHTING RULE:
  Every average rate in this package is hours-weighted:

      sum(rate_i * hours_i) / sum(hours_i)

  never a plain mean of per-shift rates. A 2-hour fluke shift must not
  count the same as an 8-hour one. Groups with zero total hours are
  excluded from "best" selection so a guard-less division can never
  crown a false winner.

FAILURE POLICY:
  Empty input produces zero-valued results, never an error. No division
  executes without a non-zero denominator check.
*/
package insights

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tiptally/shift-engine/engine"
)

const dateLayout = "2006-01-02"

// =============================================================================
// SUMMARY TOTALS
// =============================================================================

// Summary is the grand-total rollup across a set of shifts.
type Summary struct {
	Count    int
	Hours    decimal.Decimal
	TipsBase decimal.Decimal
	TipOut   decimal.Decimal
	NetTips  decimal.Decimal
	Wages    decimal.Decimal
	Gross    decimal.Decimal

	// AvgEffHourly divides grand totals (gross / hours), which makes it
	// hours-weighted by construction. It is NOT the mean of the
	// per-shift effective rates.
	AvgEffHourly decimal.Decimal
}

// Summarize computes grand totals for the given shifts. An empty slice
// yields an all-zero summary.
func Summarize(records []engine.ShiftRecord) Summary {
	s := Summary{
		Hours:        decimal.Zero,
		TipsBase:     decimal.Zero,
		TipOut:       decimal.Zero,
		NetTips:      decimal.Zero,
		Wages:        decimal.Zero,
		Gross:        decimal.Zero,
		AvgEffHourly: decimal.Zero,
	}

	for _, r := range records {
		m := engine.ComputeShiftMetrics(r.ShiftInput)
		s.Count++
		s.Hours = s.Hours.Add(engine.Normalize(r.HoursWorked))
		s.TipsBase = s.TipsBase.Add(m.TipsBase)
		s.TipOut = s.TipOut.Add(m.TipOut)
		s.NetTips = s.NetTips.Add(m.NetTips)
		s.Wages = s.Wages.Add(m.WagesEarned)
		s.Gross = s.Gross.Add(m.ShiftGross)
	}

	if s.Hours.IsPositive() {
		s.AvgEffHourly = engine.Round2(s.Gross.Div(s.Hours))
	}
	s.TipsBase = engine.Round2(s.TipsBase)
	s.TipOut = engine.Round2(s.TipOut)
	s.NetTips = engine.Round2(s.NetTips)
	s.Wages = engine.Round2(s.Wages)
	s.Gross = engine.Round2(s.Gross)
	return s
}

// =============================================================================
// GROUPED BESTS (hours-weighted)
// =============================================================================

// Confidence is advisory metadata on a recommendation, derived from the
// sample count. It never participates in the ranking itself.
type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// ConfidenceFor maps a sample count to a confidence label.
func ConfidenceFor(n int) Confidence {
	switch {
	case n >= 8:
		return ConfidenceHigh
	case n >= 3:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// GroupStat is one group's hours-weighted performance.
type GroupStat struct {
	Key         string
	Count       int
	Hours       decimal.Decimal
	WeightedEff decimal.Decimal // sum(eff_i * hours_i) / sum(hours_i)
	Confidence  Confidence
}

type groupAcc struct {
	effHours decimal.Decimal // sum(eff * hours)
	hours    decimal.Decimal
	count    int
}

// groupBy accumulates hours-weighted effective rates by key. keyFn may
// return ok=false to skip a record (e.g. unparseable date).
func groupBy(records []engine.ShiftRecord, keyFn func(engine.ShiftRecord) (string, bool)) map[string]*groupAcc {
	groups := make(map[string]*groupAcc)
	for _, r := range records {
		key, ok := keyFn(r)
		if !ok {
			continue
		}
		m := engine.ComputeShiftMetrics(r.ShiftInput)
		hours := engine.Normalize(r.HoursWorked)

		g := groups[key]
		if g == nil {
			g = &groupAcc{effHours: decimal.Zero, hours: decimal.Zero}
			groups[key] = g
		}
		g.effHours = g.effHours.Add(m.EffectiveHourly.Mul(hours))
		g.hours = g.hours.Add(hours)
		g.count++
	}
	return groups
}

// bestOf picks the group with the highest weighted rate. Groups with
// zero total hours are excluded. Ties break on key for determinism.
func bestOf(groups map[string]*groupAcc) *GroupStat {
	var best *GroupStat
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		g := groups[k]
		if !g.hours.IsPositive() {
			continue
		}
		stat := GroupStat{
			Key:         k,
			Count:       g.count,
			Hours:       g.hours,
			WeightedEff: engine.Round2(g.effHours.Div(g.hours)),
			Confidence:  ConfidenceFor(g.count),
		}
		if best == nil || stat.WeightedEff.GreaterThan(best.WeightedEff) {
			best = &stat
		}
	}
	return best
}

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func shiftTypeKey(r engine.ShiftRecord) (string, bool) {
	t := r.ShiftType
	if t == "" {
		t = "Unknown"
	}
	return t, true
}

func weekdayKey(r engine.ShiftRecord) (string, bool) {
	d, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return "", false
	}
	return weekdayNames[int(d.Weekday())], true
}

func slotKey(r engine.ShiftRecord) (string, bool) {
	day, ok := weekdayKey(r)
	if !ok {
		return "", false
	}
	t, _ := shiftTypeKey(r)
	return day + " " + t, true
}

// BestShiftType returns the best-performing shift type by hours-weighted
// effective hourly rate, or nil when no group has hours.
func BestShiftType(records []engine.ShiftRecord) *GroupStat {
	return bestOf(groupBy(records, shiftTypeKey))
}

// BestWeekday returns the best-performing day of week.
func BestWeekday(records []engine.ShiftRecord) *GroupStat {
	return bestOf(groupBy(records, weekdayKey))
}

// BestSlot returns the best day-of-week x shift-type combination
// (e.g. "Fri Dinner").
func BestSlot(records []engine.ShiftRecord) *GroupStat {
	return bestOf(groupBy(records, slotKey))
}

// SlotMean is a per-slot plain mean of a total (not a rate), used for
// the "best total slot" recommendation.
type SlotMean struct {
	Key        string
	Count      int
	MeanTotal  decimal.Decimal // mean of (net_tips + wages) per shift
	Confidence Confidence
}

// BestTotalSlot returns the slot with the highest average take-home
// total per shift. Totals are averaged with a plain mean; hours
// weighting applies to rates, not totals.
func BestTotalSlot(records []engine.ShiftRecord) *SlotMean {
	type acc struct {
		sum   decimal.Decimal
		count int
	}
	groups := make(map[string]*acc)
	for _, r := range records {
		key, ok := slotKey(r)
		if !ok {
			continue
		}
		m := engine.ComputeShiftMetrics(r.ShiftInput)
		g := groups[key]
		if g == nil {
			g = &acc{sum: decimal.Zero}
			groups[key] = g
		}
		g.sum = g.sum.Add(m.NetTips.Add(m.WagesEarned))
		g.count++
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var best *SlotMean
	for _, k := range keys {
		g := groups[k]
		if g.count == 0 {
			continue
		}
		mean := SlotMean{
			Key:        k,
			Count:      g.count,
			MeanTotal:  engine.Round2(g.sum.Div(decimal.NewFromInt(int64(g.count)))),
			Confidence: ConfidenceFor(g.count),
		}
		if best == nil || mean.MeanTotal.GreaterThan(best.MeanTotal) {
			best = &mean
		}
	}
	return best
}
