package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/useattune/attune/store"
)

func (d *DB) EnsureCheckInTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS check_in (
			id                 SERIAL  PRIMARY KEY,
			uid                TEXT    NOT NULL UNIQUE,
			creator_id         INTEGER NOT NULL,
			date               TEXT    NOT NULL,
			mood               INTEGER NOT NULL,
			energy             INTEGER NOT NULL,
			note               TEXT    NOT NULL DEFAULT '',
			completed_routines TEXT    NOT NULL DEFAULT '[]',
			created_ts         BIGINT  NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
			updated_ts         BIGINT  NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
			UNIQUE(creator_id, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_check_in_creator_date ON check_in(creator_id, date)`,
	}
	for _, s := range stmts {
		if _, err := d.db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) UpsertCheckIn(ctx context.Context, upsert *store.CheckIn) (*store.CheckIn, error) {
	completed, err := marshalList(upsert.CompletedRoutines)
	if err != nil {
		return nil, err
	}
	stmt := `INSERT INTO check_in (uid, creator_id, date, mood, energy, note, completed_routines)
	         VALUES ($1, $2, $3, $4, $5, $6, $7)
	         ON CONFLICT (creator_id, date) DO UPDATE SET
	           mood               = EXCLUDED.mood,
	           energy             = EXCLUDED.energy,
	           note               = EXCLUDED.note,
	           completed_routines = EXCLUDED.completed_routines,
	           updated_ts         = EXTRACT(EPOCH FROM NOW())
	         RETURNING id, uid, created_ts, updated_ts`
	if err := d.db.QueryRowContext(ctx, stmt,
		upsert.UID, upsert.CreatorID, upsert.Date, upsert.Mood, upsert.Energy, upsert.Note, completed,
	).Scan(&upsert.ID, &upsert.UID, &upsert.CreatedTs, &upsert.UpdatedTs); err != nil {
		return nil, err
	}
	return upsert, nil
}

func (d *DB) ListCheckIns(ctx context.Context, find *store.FindCheckIn) ([]*store.CheckIn, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Date; v != nil {
		where, args = append(where, "date = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.DateFrom; v != nil {
		where, args = append(where, "date >= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.DateTo; v != nil {
		where, args = append(where, "date <= "+placeholder(len(args)+1)), append(args, *v)
	}
	query := fmt.Sprintf(
		`SELECT id, uid, creator_id, date, mood, energy, note, completed_routines, created_ts, updated_ts
		 FROM check_in WHERE %s ORDER BY date DESC`,
		strings.Join(where, " AND "),
	)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*store.CheckIn
	for rows.Next() {
		ci := &store.CheckIn{}
		var completed string
		if err := rows.Scan(&ci.ID, &ci.UID, &ci.CreatorID, &ci.Date, &ci.Mood, &ci.Energy, &ci.Note, &completed, &ci.CreatedTs, &ci.UpdatedTs); err != nil {
			return nil, err
		}
		ci.CompletedRoutines = unmarshalList(completed)
		list = append(list, ci)
	}
	return list, rows.Err()
}

func (d *DB) GetCheckIn(ctx context.Context, find *store.FindCheckIn) (*store.CheckIn, error) {
	list, err := d.ListCheckIns(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}
