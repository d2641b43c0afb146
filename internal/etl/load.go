package etl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const tableName = "ouvidoria_sap"

var tableColumns = []string{
	"note_id",
	"opening_date",
	"note_type",
	"description",
	"status",
	"work_center",
	"maintenance_order",
	"equipment",
	"location",
	"loaded_at",
}

// Stats summarizes one load.
type Stats struct {
	Deleted  int64
	Inserted int64
}

// Loader writes merged records into Postgres. Reloads are idempotent per
// opening-date window: existing rows in the window are replaced.
type Loader struct {
	Pool *pgxpool.Pool
	Log  *slog.Logger
}

// Load replaces the records' opening-date window inside one transaction.
func (l *Loader) Load(ctx context.Context, records []Record) (Stats, error) {
	if len(records) == 0 {
		return Stats{}, nil
	}
	low, high := dateWindow(records)

	tx, err := l.Pool.Begin(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("begin load transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE opening_date >= $1 AND opening_date < $2`, tableName),
		low, high.AddDate(0, 0, 1))
	if err != nil {
		return Stats{}, fmt.Errorf("clear window %s..%s: %w", low.Format("2006-01-02"), high.Format("2006-01-02"), err)
	}

	loadedAt := time.Now().UTC()
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{
			r.NoteID, r.OpeningDate, r.NoteType, r.Description, r.Status,
			r.WorkCenter, r.Order, r.Equipment, r.Location, loadedAt,
		}
	}
	inserted, err := tx.CopyFrom(ctx, pgx.Identifier{tableName}, tableColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return Stats{}, fmt.Errorf("copy %d records: %w", len(records), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Stats{}, fmt.Errorf("commit load: %w", err)
	}

	stats := Stats{Deleted: tag.RowsAffected(), Inserted: inserted}
	l.Log.Info("load finished",
		"deleted", stats.Deleted,
		"inserted", stats.Inserted,
		"window_start", low.Format("2006-01-02"),
		"window_end", high.Format("2006-01-02"))
	return stats, nil
}

// dateWindow returns the inclusive opening-date bounds of records, truncated
// to days.
func dateWindow(records []Record) (time.Time, time.Time) {
	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	low, high := day(records[0].OpeningDate), day(records[0].OpeningDate)
	for _, r := range records[1:] {
		d := day(r.OpeningDate)
		if d.Before(low) {
			low = d
		}
		if d.After(high) {
			high = d
		}
	}
	return low, high
}
