/*
weekly.go - Time-based series: weekly buckets and daily trend points

PURPOSE:
  Assigns shifts to calendar buckets for the trend charts. Weekly
  buckets key on the start-of-week date, which is configurable (Sunday
  or Monday). A bucket's effective rate divides its summed gross by its
  summed hours - the same hours-weighted rule as everywhere else, never
  an average of per-shift rates.
*/
package insights

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tiptally/shift-engine/engine"
)

// StartOfWeek selects which day begins a week bucket.
type StartOfWeek string

const (
	WeekStartsSunday StartOfWeek = "sun"
	WeekStartsMonday StartOfWeek = "mon"
)

// WeekStart returns the bucket start date for d. Anything other than
// "mon" behaves as Sunday-start, matching the settings default.
func WeekStart(d time.Time, sow StartOfWeek) time.Time {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	weekday := int(day.Weekday()) // 0=Sun .. 6=Sat
	offset := weekday
	if sow == WeekStartsMonday {
		if weekday == 0 {
			offset = 6
		} else {
			offset = weekday - 1
		}
	}
	return day.AddDate(0, 0, -offset)
}

// WeekBucket is one week's rollup.
type WeekBucket struct {
	Start     time.Time // bucket key: the start-of-week date
	Count     int
	Hours     decimal.Decimal
	TipsBase  decimal.Decimal
	Gross     decimal.Decimal
	EffHourly decimal.Decimal // sum(gross) / sum(hours), 0 when no hours
}

// WeeklyBuckets groups shifts into week buckets, sorted by start date.
// Records with unparseable dates are skipped.
func WeeklyBuckets(records []engine.ShiftRecord, sow StartOfWeek) []WeekBucket {
	byStart := make(map[time.Time]*WeekBucket)

	for _, r := range records {
		d, err := time.Parse(dateLayout, r.Date)
		if err != nil {
			continue
		}
		start := WeekStart(d, sow)

		b := byStart[start]
		if b == nil {
			b = &WeekBucket{
				Start:    start,
				Hours:    decimal.Zero,
				TipsBase: decimal.Zero,
				Gross:    decimal.Zero,
			}
			byStart[start] = b
		}

		m := engine.ComputeShiftMetrics(r.ShiftInput)
		b.Count++
		b.Hours = b.Hours.Add(engine.Normalize(r.HoursWorked))
		b.TipsBase = b.TipsBase.Add(m.TipsBase)
		b.Gross = b.Gross.Add(m.ShiftGross)
	}

	buckets := make([]WeekBucket, 0, len(byStart))
	for _, b := range byStart {
		b.EffHourly = decimal.Zero
		if b.Hours.IsPositive() {
			b.EffHourly = engine.Round2(b.Gross.Div(b.Hours))
		}
		b.TipsBase = engine.Round2(b.TipsBase)
		b.Gross = engine.Round2(b.Gross)
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Start.Before(buckets[j].Start) })
	return buckets
}

// DayPoint is one calendar day on the daily trend chart.
type DayPoint struct {
	Date         string // YYYY-MM-DD
	Count        int
	AvgEffHourly decimal.Decimal // plain mean across the day's shifts
	TipsBase     decimal.Decimal
}

// DailySeries rolls shifts up by calendar date, sorted ascending. The
// daily chart shows a plain mean of the day's effective rates (the
// same-day shifts chart as one point, matching the original trend
// view); the weighted rule applies to cross-day aggregates only.
func DailySeries(records []engine.ShiftRecord) []DayPoint {
	type acc struct {
		effSum decimal.Decimal
		tips   decimal.Decimal
		count  int
	}
	byDate := make(map[string]*acc)

	for _, r := range records {
		if !engine.ValidDate(r.Date) {
			continue
		}
		m := engine.ComputeShiftMetrics(r.ShiftInput)
		a := byDate[r.Date]
		if a == nil {
			a = &acc{effSum: decimal.Zero, tips: decimal.Zero}
			byDate[r.Date] = a
		}
		a.effSum = a.effSum.Add(m.EffectiveHourly)
		a.tips = a.tips.Add(m.TipsBase)
		a.count++
	}

	points := make([]DayPoint, 0, len(byDate))
	for date, a := range byDate {
		points = append(points, DayPoint{
			Date:         date,
			Count:        a.count,
			AvgEffHourly: engine.Round2(a.effSum.Div(decimal.NewFromInt(int64(a.count)))),
			TipsBase:     engine.Round2(a.tips),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}
