package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiptally/shift-engine/engine"
	"github.com/tiptally/shift-engine/settings"
	"github.com/tiptally/shift-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err, "create store")
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleShift() engine.ShiftInput {
	return engine.ShiftInput{
		Date:           "2025-08-02",
		ShiftType:      engine.ShiftDinner,
		HoursWorked:    engine.Num(6),
		CashTips:       engine.Num(120),
		CardTips:       engine.Num(280),
		TipOutBasis:    engine.BasisTips,
		TipOutPercent:  engine.Num(5),
		BaseHourlyWage: engine.Num(5),
		Notes:          "busy patio",
	}
}

func TestInsertAndGetShift(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.InsertShift(ctx, sampleShift())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := store.GetShift(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "2025-08-02", rec.Date)
	assert.Equal(t, engine.ShiftDinner, rec.ShiftType)
	assert.Equal(t, engine.BasisTips, rec.TipOutBasis)
	assert.Equal(t, "busy patio", rec.Notes)
	assert.False(t, rec.Sales.Present(), "absent sales stays absent")
	assert.False(t, rec.TipOutOverride.Present(), "absent override stays absent")

	// Metrics recompute from the stored raw fields.
	m := engine.ComputeShiftMetrics(rec.ShiftInput)
	assert.True(t, m.TipOut.Equal(engine.Normalize(engine.Str("20"))), "tip_out from stored fields")
	assert.True(t, m.NetTips.Equal(engine.Normalize(engine.Str("380"))), "net_tips from stored fields")
}

func TestInsert_NormalizesRawText(t *testing.T) {
	// Free-form text is normalized once at the boundary; storage keeps
	// clean numbers.
	store := newTestStore(t)
	ctx := context.Background()

	in := sampleShift()
	in.CashTips = engine.Str("$120.00")
	in.HoursWorked = engine.Str("6,0")

	id, err := store.InsertShift(ctx, in)
	require.NoError(t, err)

	rec, err := store.GetShift(ctx, id)
	require.NoError(t, err)
	assert.True(t, engine.Normalize(rec.CashTips).Equal(engine.Normalize(engine.Num(120))))
	assert.True(t, engine.Normalize(rec.HoursWorked).Equal(engine.Normalize(engine.Num(6))))
}

func TestGetShift_MissingIsNilNotError(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.GetShift(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestListShifts_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := sampleShift()
	older.Date = "2025-07-01"
	newer := sampleShift()
	newer.Date = "2025-08-15"

	_, err := store.InsertShift(ctx, older)
	require.NoError(t, err)
	_, err = store.InsertShift(ctx, newer)
	require.NoError(t, err)

	records, err := store.ListShifts(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2025-08-15", records[0].Date)
	assert.Equal(t, "2025-07-01", records[1].Date)
}

func TestUpdateShift_PartialAndClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	in := sampleShift()
	in.TipOutOverride = engine.Num(30)
	id, err := store.InsertShift(ctx, in)
	require.NoError(t, err)

	// WHEN: changing one field and clearing the override
	cash := engine.Num(150)
	cleared := engine.Numeric{}
	err = store.UpdateShift(ctx, id, sqlite.ShiftUpdate{
		CashTips:       &cash,
		TipOutOverride: &cleared,
	})
	require.NoError(t, err)

	rec, err := store.GetShift(ctx, id)
	require.NoError(t, err)
	assert.True(t, engine.Normalize(rec.CashTips).Equal(engine.Normalize(engine.Num(150))))
	assert.False(t, rec.TipOutOverride.Present(), "override cleared to absent")
	// Untouched fields survive.
	assert.Equal(t, "2025-08-02", rec.Date)
	assert.True(t, engine.Normalize(rec.CardTips).Equal(engine.Normalize(engine.Num(280))))
}

func TestDeleteShift_UndoGetsNewID(t *testing.T) {
	// GIVEN: a deleted shift
	// WHEN: "undoing" by re-inserting the same field values
	// THEN: the restored record is a new entity with a new id

	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.InsertShift(ctx, sampleShift())
	require.NoError(t, err)

	rec, err := store.GetShift(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, rec)

	require.NoError(t, store.DeleteShift(ctx, id))
	gone, err := store.GetShift(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, gone, "deleted record is gone")

	restoredID, err := store.InsertShift(ctx, rec.ShiftInput)
	require.NoError(t, err)
	assert.NotEqual(t, id, restoredID, "undo produces a new identity")
}

func TestDeleteAllShifts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SeedSampleData(ctx))
	records, err := store.ListShifts(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.NoError(t, store.DeleteAllShifts(ctx))
	records, err = store.ListShifts(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSettings_DefaultsAndRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Nothing saved yet: defaults.
	cfg, err := store.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.Defaults(), cfg)

	wage := 18.5
	cfg.StartOfWeek = "mon"
	cfg.DefaultTipOutBasis = "sales"
	cfg.DefaultTipOutPercent = 2.5
	cfg.RememberLastWage = true
	cfg.LastWage = &wage

	require.NoError(t, store.SaveSettings(ctx, cfg))

	loaded, err := store.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mon", loaded.StartOfWeek)
	assert.Equal(t, "sales", loaded.DefaultTipOutBasis)
	assert.Equal(t, 2.5, loaded.DefaultTipOutPercent)
	require.NotNil(t, loaded.LastWage)
	assert.Equal(t, 18.5, *loaded.LastWage)
	assert.Equal(t, 18.5, loaded.WageForNewShift())
}

func TestSettings_InvalidValuesSnapToDefaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cfg := settings.Defaults()
	cfg.StartOfWeek = "fri"
	cfg.DefaultTipOutPercent = 250

	require.NoError(t, store.SaveSettings(ctx, cfg))
	loaded, err := store.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sun", loaded.StartOfWeek)
	assert.Equal(t, float64(3), loaded.DefaultTipOutPercent)
}
