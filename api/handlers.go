/*
handlers.go - HTTP API handlers for the shift earnings tracker

PURPOSE:
  Exposes the shift engine, analytics, CSV interchange, and settings via
  REST. Handles HTTP request/response, JSON serialization, and delegates
  to domain logic.

ENDPOINTS:
  Shifts:
    GET    /api/shifts             List shifts (optional ?range= and ?shift_type=)
    POST   /api/shifts             Create shift (validated)
    DELETE /api/shifts             Delete all shifts
    POST   /api/shifts/preview     Compute metrics without saving
    GET    /api/shifts/{id}        Get one shift with metrics
    PUT    /api/shifts/{id}        Replace a shift's fields (id never changes)
    DELETE /api/shifts/{id}        Delete (destructive; undo gets a new id)

  Analytics:
    GET    /api/insights           Summary, bests, weekly/daily series,
                                   heatmap, distributions

  CSV:
    GET    /api/export/csv         Download all shifts as CSV
    POST   /api/import/csv         Upload CSV (?mode=append|replace)

  Settings:
    GET    /api/settings           Current preferences (defaults if unset)
    PUT    /api/settings           Save preferences

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Shift not found
  - 500: Internal errors

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (engine.ValidateNewShift for shift bodies)
  3. Call domain logic (engine, insights, csvio, store)
  4. Serialize response

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tiptally/shift-engine/csvio"
	"github.com/tiptally/shift-engine/engine"
	"github.com/tiptally/shift-engine/insights"
	"github.com/tiptally/shift-engine/settings"
	"github.com/tiptally/shift-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store

	// now is injectable for tests; range filtering is relative to it.
	now func() time.Time
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store, now: time.Now}
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListShifts returns shifts newest first, optionally filtered by
// ?range=7d|30d|all and ?shift_type=.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListShifts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}

	if q := r.URL.Query(); q.Get("range") != "" || q.Get("shift_type") != "" {
		rng := insights.ParseRange(q.Get("range"))
		records = insights.Filter(records, rng, q.Get("shift_type"), h.now())
	}

	dtos := make([]ShiftDTO, len(records))
	for i, rec := range records {
		dtos[i] = toShiftDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetShift returns a single shift with its computed metrics.
func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.Store.GetShift(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get shift", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Shift not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toShiftDTO(*rec))
}

// CreateShift validates and stores a new shift.
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var in engine.ShiftInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if problems := engine.ValidateNewShift(in); len(problems) > 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "Invalid shift",
			Rows:  problems,
		})
		return
	}

	id, err := h.Store.InsertShift(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create shift", err)
		return
	}

	rec, err := h.Store.GetShift(r.Context(), id)
	if err != nil || rec == nil {
		writeJSON(w, http.StatusCreated, CreateShiftResponse{ID: id})
		return
	}
	writeJSON(w, http.StatusCreated, toShiftDTO(*rec))
}

// UpdateShift replaces a shift's fields. The id never changes.
func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.Store.GetShift(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get shift", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Shift not found", nil)
		return
	}

	var in engine.ShiftInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if problems := engine.ValidateNewShift(in); len(problems) > 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "Invalid shift",
			Rows:  problems,
		})
		return
	}

	if err := h.Store.UpdateShift(r.Context(), id, sqlite.UpdateFromInput(in)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update shift", err)
		return
	}

	rec, err := h.Store.GetShift(r.Context(), id)
	if err != nil || rec == nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload shift", err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(*rec))
}

// DeleteShift removes a shift. Destructive: re-creating the same field
// values afterwards produces a new record with a new id.
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.Store.GetShift(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get shift", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Shift not found", nil)
		return
	}

	if err := h.Store.DeleteShift(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete shift", err)
		return
	}

	// Return the deleted record so a client can offer undo (which will
	// re-create it under a new id).
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "deleted",
		"deleted": toShiftDTO(*rec),
	})
}

// DeleteAllShifts wipes every shift.
func (h *Handler) DeleteAllShifts(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteAllShifts(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete shifts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// PreviewTipOut computes tip-out and full metrics for an unsaved shift,
// backing the live display on the entry form. No validation: preview is
// best-effort like the engine itself.
func (h *Handler) PreviewTipOut(w http.ResponseWriter, r *http.Request) {
	var in engine.ShiftInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	m := engine.ComputeShiftMetrics(in)
	writeJSON(w, http.StatusOK, TipOutPreviewResponse{
		TipOut:  m.TipOut.InexactFloat64(),
		Metrics: toMetricsDTO(m),
	})
}

// =============================================================================
// INSIGHTS HANDLER
// =============================================================================

// GetInsights returns the full analytics payload for ?range= and
// ?shift_type=. Weekly bucketing follows the saved start-of-week.
func (h *Handler) GetInsights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := h.Store.ListShifts(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}

	cfg, err := h.Store.LoadSettings(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}

	rng := insights.ParseRange(r.URL.Query().Get("range"))
	shiftType := r.URL.Query().Get("shift_type")
	filtered := insights.Filter(records, rng, shiftType, h.now())

	resp := InsightsResponse{
		Range:         string(rng),
		ShiftType:     shiftType,
		Summary:       toSummaryDTO(insights.Summarize(filtered)),
		BestShiftType: toGroupStatDTO(insights.BestShiftType(filtered)),
		BestWeekday:   toGroupStatDTO(insights.BestWeekday(filtered)),
		BestSlot:      toGroupStatDTO(insights.BestSlot(filtered)),
		BestTotalSlot: toSlotMeanDTO(insights.BestTotalSlot(filtered)),
		Weekly:        toWeeklyDTOs(insights.WeeklyBuckets(filtered, insights.StartOfWeek(cfg.StartOfWeek))),
		Daily:         toDailyDTOs(insights.DailySeries(filtered)),
		Heatmap:       toHeatmapDTOs(insights.Heatmap(filtered)),
		Distributions: toDistributionDTOs(insights.Distributions(filtered)),
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// CSV HANDLERS
// =============================================================================

// ExportCSV streams all shifts as a CSV download.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListShifts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="shifts-%s.csv"`, h.now().Format("2006-01-02")))
	if err := csvio.Export(w, records); err != nil {
		// Headers are already out; nothing useful left to send.
		return
	}
}

// ImportCSV parses the request body as CSV and inserts valid rows.
// ?mode=append (default) keeps existing shifts; ?mode=replace wipes
// them first. Row-level problems are reported, not fatal.
func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	mode := csvio.ModeAppend
	if m := r.URL.Query().Get("mode"); m != "" {
		parsed, err := csvio.ParseMode(m)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid import mode", err)
			return
		}
		mode = parsed
	}

	result := csvio.Parse(r.Body)
	if len(result.Rows) == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "No importable rows",
			Rows:  result.Errors,
		})
		return
	}

	inserted, err := csvio.Import(r.Context(), h.Store, mode, result.Rows)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to import shifts", err)
		return
	}

	writeJSON(w, http.StatusOK, ImportResponse{
		Mode:     string(mode),
		Inserted: inserted,
		Skipped:  result.Skipped,
		Errors:   result.Errors,
	})
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the saved preferences, or the defaults when
// nothing has been saved yet.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Store.LoadSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// UpdateSettings saves preferences. Out-of-domain values are snapped
// back to the defaults rather than rejected.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var cfg settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Store.SaveSettings(r.Context(), cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}

	saved, err := h.Store.LoadSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload settings", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// =============================================================================
// SEED HANDLER
// =============================================================================

// SeedData inserts a few sample shifts so a fresh database has
// something to show.
func (h *Handler) SeedData(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.SeedSampleData(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed data", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "seeded"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func toSummaryDTO(s insights.Summary) SummaryDTO {
	return SummaryDTO{
		Count:        s.Count,
		Hours:        s.Hours.InexactFloat64(),
		TipsBase:     s.TipsBase.InexactFloat64(),
		TipOut:       s.TipOut.InexactFloat64(),
		NetTips:      s.NetTips.InexactFloat64(),
		Wages:        s.Wages.InexactFloat64(),
		Gross:        s.Gross.InexactFloat64(),
		AvgEffHourly: s.AvgEffHourly.InexactFloat64(),
	}
}

func toWeeklyDTOs(buckets []insights.WeekBucket) []WeekBucketDTO {
	dtos := make([]WeekBucketDTO, len(buckets))
	for i, b := range buckets {
		dtos[i] = WeekBucketDTO{
			Start:     b.Start.Format("2006-01-02"),
			Count:     b.Count,
			Hours:     b.Hours.InexactFloat64(),
			TipsBase:  b.TipsBase.InexactFloat64(),
			Gross:     b.Gross.InexactFloat64(),
			EffHourly: b.EffHourly.InexactFloat64(),
		}
	}
	return dtos
}

func toDailyDTOs(points []insights.DayPoint) []DayPointDTO {
	dtos := make([]DayPointDTO, len(points))
	for i, p := range points {
		dtos[i] = DayPointDTO{
			Date:         p.Date,
			Count:        p.Count,
			AvgEffHourly: p.AvgEffHourly.InexactFloat64(),
			TipsBase:     p.TipsBase.InexactFloat64(),
		}
	}
	return dtos
}

func toHeatmapDTOs(cells []insights.HeatmapCell) []HeatmapCellDTO {
	dtos := make([]HeatmapCellDTO, len(cells))
	for i, c := range cells {
		dtos[i] = HeatmapCellDTO{
			Weekday:      c.Weekday.String()[:3],
			ShiftType:    c.ShiftType,
			Count:        c.Count,
			AvgEffHourly: c.AvgEffHourly.InexactFloat64(),
		}
	}
	return dtos
}

func toDistributionDTOs(dists []insights.Distribution) []DistributionDTO {
	dtos := make([]DistributionDTO, len(dists))
	for i, d := range dists {
		dtos[i] = DistributionDTO{
			ShiftType: d.ShiftType,
			Count:     d.Count,
			Min:       d.Min.InexactFloat64(),
			Q1:        d.Q1.InexactFloat64(),
			Median:    d.Median.InexactFloat64(),
			Q3:        d.Q3.InexactFloat64(),
			Max:       d.Max.InexactFloat64(),
		}
	}
	return dtos
}
