/*
import.go - Applying parsed rows to the store

Two modes: append inserts the valid rows alongside whatever exists;
replace wipes every shift first. Insert failures are logged and skipped
so one bad row cannot abort the rest of a file.
*/
package csvio

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tiptally/shift-engine/engine"
	"github.com/tiptally/shift-engine/store/sqlite"
)

// Mode selects how imported rows combine with existing records.
type Mode string

const (
	ModeAppend  Mode = "append"
	ModeReplace Mode = "replace"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAppend, ModeReplace:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid import mode %q (expected append or replace)", s)
	}
}

// Import inserts the given rows and returns how many made it in.
// Replace mode deletes all existing shifts first; that deletion is
// destructive (re-imported rows get fresh ids).
func Import(ctx context.Context, store *sqlite.Store, mode Mode, rows []engine.ShiftInput) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	if mode == ModeReplace {
		if err := store.DeleteAllShifts(ctx); err != nil {
			return 0, fmt.Errorf("failed to clear shifts for replace import: %w", err)
		}
	}

	inserted := 0
	for i, row := range rows {
		if _, err := store.InsertShift(ctx, row); err != nil {
			log.Warn().Err(err).Int("row", i).Str("date", row.Date).Msg("import insert failed")
			continue
		}
		inserted++
	}
	return inserted, nil
}
