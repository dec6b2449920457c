/*
dto.go - Request/response shapes for the HTTP API

Raw shift fields cross the wire as they were entered (numbers, strings,
or null - engine.Numeric accepts all three), and every response that
carries a shift also carries its freshly computed metrics. Metrics are
plain JSON numbers rounded to cents by the engine.
*/
package api

import (
	"github.com/tiptally/shift-engine/engine"
	"github.com/tiptally/shift-engine/insights"
)

// ErrorResponse is the JSON body for any non-2xx response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details string   `json:"details,omitempty"`
	Rows    []string `json:"rows,omitempty"` // per-row problems (validation, import)
}

// MetricsDTO is the computed metric set for one shift.
type MetricsDTO struct {
	TipsBase        float64 `json:"tips_base"`
	TipOut          float64 `json:"tip_out"`
	NetTips         float64 `json:"net_tips"`
	WagesEarned     float64 `json:"wages_earned"`
	ShiftGross      float64 `json:"shift_gross"`
	HourlyTips      float64 `json:"hourly_tips"`
	EffectiveHourly float64 `json:"effective_hourly"`
}

func toMetricsDTO(m engine.DerivedMetrics) MetricsDTO {
	// TipsBase is the one metric the engine leaves unrounded (it feeds
	// net_tips before rounding); the wire format is uniformly cents.
	return MetricsDTO{
		TipsBase:        engine.Round2(m.TipsBase).InexactFloat64(),
		TipOut:          m.TipOut.InexactFloat64(),
		NetTips:         m.NetTips.InexactFloat64(),
		WagesEarned:     m.WagesEarned.InexactFloat64(),
		ShiftGross:      m.ShiftGross.InexactFloat64(),
		HourlyTips:      m.HourlyTips.InexactFloat64(),
		EffectiveHourly: m.EffectiveHourly.InexactFloat64(),
	}
}

// ShiftDTO is a stored shift plus its computed metrics.
type ShiftDTO struct {
	engine.ShiftRecord
	Metrics MetricsDTO `json:"metrics"`
}

func toShiftDTO(r engine.ShiftRecord) ShiftDTO {
	return ShiftDTO{
		ShiftRecord: r,
		Metrics:     toMetricsDTO(engine.ComputeShiftMetrics(r.ShiftInput)),
	}
}

// CreateShiftResponse returns the new identity.
type CreateShiftResponse struct {
	ID string `json:"id"`
}

// TipOutPreviewResponse backs the live tip-out display on the form.
type TipOutPreviewResponse struct {
	TipOut  float64    `json:"tip_out"`
	Metrics MetricsDTO `json:"metrics"`
}

// GroupStatDTO is a recommendation group.
type GroupStatDTO struct {
	Key        string  `json:"key"`
	Count      int     `json:"count"`
	Hours      float64 `json:"hours,omitempty"`
	Value      float64 `json:"value"`
	Confidence string  `json:"confidence"`
}

func toGroupStatDTO(g *insights.GroupStat) *GroupStatDTO {
	if g == nil {
		return nil
	}
	return &GroupStatDTO{
		Key:        g.Key,
		Count:      g.Count,
		Hours:      g.Hours.InexactFloat64(),
		Value:      g.WeightedEff.InexactFloat64(),
		Confidence: string(g.Confidence),
	}
}

func toSlotMeanDTO(g *insights.SlotMean) *GroupStatDTO {
	if g == nil {
		return nil
	}
	return &GroupStatDTO{
		Key:        g.Key,
		Count:      g.Count,
		Value:      g.MeanTotal.InexactFloat64(),
		Confidence: string(g.Confidence),
	}
}

// SummaryDTO is the KPI card row.
type SummaryDTO struct {
	Count        int     `json:"count"`
	Hours        float64 `json:"hours"`
	TipsBase     float64 `json:"tips_base"`
	TipOut       float64 `json:"tip_out"`
	NetTips      float64 `json:"net_tips"`
	Wages        float64 `json:"wages"`
	Gross        float64 `json:"gross"`
	AvgEffHourly float64 `json:"avg_eff_hourly"`
}

// WeekBucketDTO is one bar on the weekly charts.
type WeekBucketDTO struct {
	Start     string  `json:"start"` // YYYY-MM-DD
	Count     int     `json:"count"`
	Hours     float64 `json:"hours"`
	TipsBase  float64 `json:"tips_base"`
	Gross     float64 `json:"gross"`
	EffHourly float64 `json:"eff_hourly"`
}

// DayPointDTO is one point on the daily trend chart.
type DayPointDTO struct {
	Date         string  `json:"date"`
	Count        int     `json:"count"`
	AvgEffHourly float64 `json:"avg_eff_hourly"`
	TipsBase     float64 `json:"tips_base"`
}

// HeatmapCellDTO is one weekday x shift-type cell.
type HeatmapCellDTO struct {
	Weekday      string  `json:"weekday"`
	ShiftType    string  `json:"shift_type"`
	Count        int     `json:"count"`
	AvgEffHourly float64 `json:"avg_eff_hourly"`
}

// DistributionDTO is one box plot row.
type DistributionDTO struct {
	ShiftType string  `json:"shift_type"`
	Count     int     `json:"count"`
	Min       float64 `json:"min"`
	Q1        float64 `json:"q1"`
	Median    float64 `json:"median"`
	Q3        float64 `json:"q3"`
	Max       float64 `json:"max"`
}

// InsightsResponse is the full analytics payload for one filter.
type InsightsResponse struct {
	Range         string            `json:"range"`
	ShiftType     string            `json:"shift_type,omitempty"`
	Summary       SummaryDTO        `json:"summary"`
	BestShiftType *GroupStatDTO     `json:"best_shift_type"`
	BestWeekday   *GroupStatDTO     `json:"best_weekday"`
	BestSlot      *GroupStatDTO     `json:"best_slot"`
	BestTotalSlot *GroupStatDTO     `json:"best_total_slot"`
	Weekly        []WeekBucketDTO   `json:"weekly"`
	Daily         []DayPointDTO     `json:"daily"`
	Heatmap       []HeatmapCellDTO  `json:"heatmap"`
	Distributions []DistributionDTO `json:"distributions"`
}

// ImportResponse reports an import outcome.
type ImportResponse struct {
	Mode     string   `json:"mode"`
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}
