/*
distribution.go - Heatmap cells and per-type rate distributions

These back the two density views on the insights screen: the weekday x
shift-type heatmap and the box plot of effective rates per shift type.
Both use the plain mean / raw samples of per-shift rates - they describe
spread, not a ranking, so the weighted rule does not apply here.
*/
package insights

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tiptally/shift-engine/engine"
)

// HeatmapCell is one weekday x shift-type cell. Cells with no samples
// are emitted with zero values so the grid renders complete rows.
type HeatmapCell struct {
	Weekday      time.Weekday
	ShiftType    string
	Count        int
	AvgEffHourly decimal.Decimal
}

// Heatmap computes the full weekday x shift-type grid for the observed
// shift types, ordered by type then weekday.
func Heatmap(records []engine.ShiftRecord) []HeatmapCell {
	type cellKey struct {
		day time.Weekday
		typ string
	}
	type acc struct {
		sum   decimal.Decimal
		count int
	}

	cells := make(map[cellKey]*acc)
	typeSet := make(map[string]bool)

	for _, r := range records {
		d, err := time.Parse(dateLayout, r.Date)
		if err != nil {
			continue
		}
		typ, _ := shiftTypeKey(r)
		typeSet[typ] = true

		k := cellKey{day: d.Weekday(), typ: typ}
		a := cells[k]
		if a == nil {
			a = &acc{sum: decimal.Zero}
			cells[k] = a
		}
		m := engine.ComputeShiftMetrics(r.ShiftInput)
		a.sum = a.sum.Add(m.EffectiveHourly)
		a.count++
	}

	types := make([]string, 0, len(typeSet))
	for t := range typeSet {
		types = append(types, t)
	}
	sort.Strings(types)

	out := make([]HeatmapCell, 0, len(types)*7)
	for _, typ := range types {
		for day := time.Sunday; day <= time.Saturday; day++ {
			cell := HeatmapCell{Weekday: day, ShiftType: typ, AvgEffHourly: decimal.Zero}
			if a := cells[cellKey{day: day, typ: typ}]; a != nil {
				cell.Count = a.count
				cell.AvgEffHourly = engine.Round2(a.sum.Div(decimal.NewFromInt(int64(a.count))))
			}
			out = append(out, cell)
		}
	}
	return out
}

// Distribution summarizes the spread of effective hourly rates within
// one shift type.
type Distribution struct {
	ShiftType string
	Count     int
	Min       decimal.Decimal
	Q1        decimal.Decimal
	Median    decimal.Decimal
	Q3        decimal.Decimal
	Max       decimal.Decimal
}

// Distributions computes quartiles of effective hourly rate per shift
// type, sorted by type name.
func Distributions(records []engine.ShiftRecord) []Distribution {
	byType := make(map[string][]float64)
	for _, r := range records {
		typ, _ := shiftTypeKey(r)
		m := engine.ComputeShiftMetrics(r.ShiftInput)
		byType[typ] = append(byType[typ], m.EffectiveHourly.InexactFloat64())
	}

	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)

	out := make([]Distribution, 0, len(types))
	for _, typ := range types {
		samples := byType[typ]
		sort.Float64s(samples)
		out = append(out, Distribution{
			ShiftType: typ,
			Count:     len(samples),
			Min:       round2f(samples[0]),
			Q1:        round2f(quantile(samples, 0.25)),
			Median:    round2f(quantile(samples, 0.5)),
			Q3:        round2f(quantile(samples, 0.75)),
			Max:       round2f(samples[len(samples)-1]),
		})
	}
	return out
}

// quantile interpolates linearly between the two nearest ranks of an
// already-sorted sample.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := float64(len(sorted)-1) * q
	base := int(pos)
	rest := pos - float64(base)
	if base+1 >= len(sorted) {
		return sorted[base]
	}
	return sorted[base] + (sorted[base+1]-sorted[base])*rest
}

func round2f(v float64) decimal.Decimal {
	return engine.Round2(decimal.NewFromFloat(v))
}
