/*
Package sqlite provides the SQLite-backed shift and settings store.

PURPOSE:
  Persists shift records and user settings on-device. The engine never
  touches this package directly; it consumes ShiftRecord values handed
  to it by callers. Derived metrics are never stored - they are
  recomputed from raw fields on every read.

KEY TABLES:
  shifts:    One row per logged shift, raw fields only.
  settings:  A single JSON blob row (id = 1) of user preferences.

IDENTITY:
  Ids are uuids assigned at insert and immutable afterwards. Delete is
  destructive at the identity level: an "undo" re-inserts the field
  values and receives a NEW id. Callers must not assume a restored
  record keeps its identity.

CONCURRENCY:
  A sync.RWMutex serializes writers; SQLite runs in WAL mode so readers
  do not block.

USAGE:
  store, err := sqlite.New("tiptally.db")   // or ":memory:"
  if err != nil { ... }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tiptally/shift-engine/engine"
	"github.com/tiptally/shift-engine/settings"
)

// Store implements shift and settings persistence on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and migrates the
// schema. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY NOT NULL,
		date TEXT NOT NULL,
		shift_type TEXT NOT NULL DEFAULT '',
		hours_worked REAL NOT NULL DEFAULT 0,
		cash_tips REAL NOT NULL DEFAULT 0,
		card_tips REAL NOT NULL DEFAULT 0,
		tip_out_basis TEXT NOT NULL DEFAULT 'tips',
		tip_out_percent REAL NOT NULL DEFAULT 0,
		sales REAL,
		tip_out_override_amount REAL,
		base_hourly_wage REAL NOT NULL DEFAULT 0,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_shifts_date ON shifts(date DESC);
	CREATE INDEX IF NOT EXISTS idx_shifts_type ON shifts(shift_type);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		config_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SHIFT STORE
// =============================================================================

const shiftColumns = `id, date, shift_type, hours_worked, cash_tips, card_tips,
	tip_out_basis, tip_out_percent, sales, tip_out_override_amount,
	base_hourly_wage, notes`

// InsertShift stores a new shift and returns its generated id.
func (s *Store) InsertShift(ctx context.Context, in engine.ShiftInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shifts
		(id, date, shift_type, hours_worked, cash_tips, card_tips,
		 tip_out_basis, tip_out_percent, sales, tip_out_override_amount,
		 base_hourly_wage, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		in.Date,
		in.ShiftType,
		numValue(in.HoursWorked),
		numValue(in.CashTips),
		numValue(in.CardTips),
		string(in.TipOutBasis),
		numValue(in.TipOutPercent),
		numOrNull(in.Sales),
		numOrNull(in.TipOutOverride),
		numValue(in.BaseHourlyWage),
		nullString(in.Notes),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert shift: %w", err)
	}
	return id, nil
}

// ListShifts returns all shifts, newest date first.
func (s *Store) ListShifts(ctx context.Context) ([]engine.ShiftRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+shiftColumns+` FROM shifts ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	defer rows.Close()

	var records []engine.ShiftRecord
	for rows.Next() {
		rec, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetShift returns a shift by id, or nil when no such record exists.
// Absence is not an error.
func (s *Store) GetShift(ctx context.Context, id string) (*engine.ShiftRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+shiftColumns+` FROM shifts WHERE id = ?`, id)
	rec, err := scanShift(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ShiftUpdate is a partial update: nil fields are left untouched.
// Setting Sales or TipOutOverride to an absent Numeric clears the
// column.
type ShiftUpdate struct {
	Date           *string
	ShiftType      *string
	HoursWorked    *engine.Numeric
	CashTips       *engine.Numeric
	CardTips       *engine.Numeric
	TipOutBasis    *engine.Basis
	TipOutPercent  *engine.Numeric
	Sales          *engine.Numeric
	TipOutOverride *engine.Numeric
	BaseHourlyWage *engine.Numeric
	Notes          *string
}

// UpdateFromInput builds a full-field update, for callers that edit the
// whole record at once.
func UpdateFromInput(in engine.ShiftInput) ShiftUpdate {
	return ShiftUpdate{
		Date:           &in.Date,
		ShiftType:      &in.ShiftType,
		HoursWorked:    &in.HoursWorked,
		CashTips:       &in.CashTips,
		CardTips:       &in.CardTips,
		TipOutBasis:    &in.TipOutBasis,
		TipOutPercent:  &in.TipOutPercent,
		Sales:          &in.Sales,
		TipOutOverride: &in.TipOutOverride,
		BaseHourlyWage: &in.BaseHourlyWage,
		Notes:          &in.Notes,
	}
}

// UpdateShift mutates the given fields in place. The id never changes.
// Updating a missing id is a no-op, not an error.
func (s *Store) UpdateShift(ctx context.Context, id string, upd ShiftUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if upd.Date != nil {
		set("date", *upd.Date)
	}
	if upd.ShiftType != nil {
		set("shift_type", *upd.ShiftType)
	}
	if upd.HoursWorked != nil {
		set("hours_worked", numValue(*upd.HoursWorked))
	}
	if upd.CashTips != nil {
		set("cash_tips", numValue(*upd.CashTips))
	}
	if upd.CardTips != nil {
		set("card_tips", numValue(*upd.CardTips))
	}
	if upd.TipOutBasis != nil {
		set("tip_out_basis", string(*upd.TipOutBasis))
	}
	if upd.TipOutPercent != nil {
		set("tip_out_percent", numValue(*upd.TipOutPercent))
	}
	if upd.Sales != nil {
		set("sales", numOrNull(*upd.Sales))
	}
	if upd.TipOutOverride != nil {
		set("tip_out_override_amount", numOrNull(*upd.TipOutOverride))
	}
	if upd.BaseHourlyWage != nil {
		set("base_hourly_wage", numValue(*upd.BaseHourlyWage))
	}
	if upd.Notes != nil {
		set("notes", nullString(*upd.Notes))
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	_, err := s.db.ExecContext(ctx,
		"UPDATE shifts SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}
	return nil
}

// DeleteShift removes a shift. This is destructive at the identity
// level: re-inserting the same field values afterwards produces a new
// record with a new id.
func (s *Store) DeleteShift(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM shifts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	return nil
}

// DeleteAllShifts wipes every shift (replace-mode import, dev reset).
func (s *Store) DeleteAllShifts(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM shifts`); err != nil {
		return fmt.Errorf("failed to delete shifts: %w", err)
	}
	return nil
}

// =============================================================================
// SETTINGS STORE
// =============================================================================

// LoadSettings returns the saved settings merged over the defaults.
// A missing or corrupt blob yields the defaults rather than an error
// for the missing case; corrupt JSON is reported.
func (s *Store) LoadSettings(ctx context.Context) (settings.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT config_json FROM settings WHERE id = 1`).Scan(&blob)
	if err == sql.ErrNoRows {
		return settings.Defaults(), nil
	}
	if err != nil {
		return settings.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	cfg := settings.Defaults()
	if err := json.Unmarshal([]byte(blob), &cfg); err != nil {
		return settings.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return cfg.Normalized(), nil
}

// SaveSettings persists the full settings blob.
func (s *Store) SaveSettings(ctx context.Context, cfg settings.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := json.Marshal(cfg.Normalized())
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (id, config_json, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET config_json = excluded.config_json,
			updated_at = excluded.updated_at`,
		string(blob), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanShift(row scanner) (engine.ShiftRecord, error) {
	var (
		rec        engine.ShiftRecord
		hours      float64
		cash, card float64
		basis      string
		percent    float64
		sales      sql.NullFloat64
		override   sql.NullFloat64
		wage       float64
		notes      sql.NullString
	)
	err := row.Scan(
		&rec.ID,
		&rec.Date,
		&rec.ShiftType,
		&hours,
		&cash,
		&card,
		&basis,
		&percent,
		&sales,
		&override,
		&wage,
		&notes,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return rec, err
		}
		return rec, fmt.Errorf("failed to scan shift: %w", err)
	}

	rec.HoursWorked = engine.Num(hours)
	rec.CashTips = engine.Num(cash)
	rec.CardTips = engine.Num(card)
	rec.TipOutBasis = engine.Basis(basis)
	rec.TipOutPercent = engine.Num(percent)
	rec.Sales = numFromNull(sales)
	rec.TipOutOverride = numFromNull(override)
	rec.BaseHourlyWage = engine.Num(wage)
	if notes.Valid {
		rec.Notes = notes.String
	}
	return rec, nil
}

// numValue normalizes a Numeric for a NOT NULL column; absent becomes 0.
func numValue(n engine.Numeric) float64 {
	return engine.Normalize(n).InexactFloat64()
}

// numOrNull normalizes a Numeric for a nullable column; absent becomes NULL.
func numOrNull(n engine.Numeric) any {
	if !n.Present() {
		return nil
	}
	return engine.Normalize(n).InexactFloat64()
}

func numFromNull(v sql.NullFloat64) engine.Numeric {
	if !v.Valid {
		return engine.Numeric{}
	}
	return engine.Num(v.Float64)
}

func nullString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// =============================================================================
// SEED DATA
// =============================================================================

// SeedSampleData inserts a few example shifts so a fresh database has
// something to show.
func (s *Store) SeedSampleData(ctx context.Context) error {
	samples := []engine.ShiftInput{
		{
			Date:           "2025-07-21",
			ShiftType:      engine.ShiftDinner,
			HoursWorked:    engine.Num(6),
			CashTips:       engine.Num(120),
			CardTips:       engine.Num(280),
			TipOutBasis:    engine.BasisTips,
			TipOutPercent:  engine.Num(5),
			BaseHourlyWage: engine.Num(5),
		},
		{
			Date:           "2025-07-27",
			ShiftType:      engine.ShiftBrunch,
			HoursWorked:    engine.Num(5),
			CashTips:       engine.Num(90),
			CardTips:       engine.Num(110),
			TipOutBasis:    engine.BasisSales,
			TipOutPercent:  engine.Num(1.5),
			Sales:          engine.Num(1000),
			BaseHourlyWage: engine.Num(5),
			Notes:          "slow brunch",
		},
		{
			Date:           "2025-08-02",
			ShiftType:      engine.ShiftDinner,
			HoursWorked:    engine.Num(7.5),
			CashTips:       engine.Num(200),
			CardTips:       engine.Num(300),
			TipOutBasis:    engine.BasisTips,
			TipOutPercent:  engine.Num(3),
			BaseHourlyWage: engine.Num(5),
			Notes:          "busy patio",
		},
	}

	for _, in := range samples {
		if _, err := s.InsertShift(ctx, in); err != nil {
			return err
		}
	}
	return nil
}
