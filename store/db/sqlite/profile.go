package sqlite

import (
	"context"

	"github.com/useattune/attune/store"
)

func (d *DB) EnsureProfileTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_profile (
			user_id          INTEGER PRIMARY KEY,
			display_name     TEXT    NOT NULL DEFAULT '',
			focus_areas      TEXT    NOT NULL DEFAULT '[]',
			wake_time        TEXT    NOT NULL DEFAULT '',
			sleep_time       TEXT    NOT NULL DEFAULT '',
			reminder_enabled INTEGER NOT NULL DEFAULT 0,
			onboarded        INTEGER NOT NULL DEFAULT 0,
			updated_ts       BIGINT  NOT NULL DEFAULT (strftime('%s', 'now'))
		)`,
	}
	for _, s := range stmts {
		if _, err := d.db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) UpsertProfile(ctx context.Context, upsert *store.Profile) (*store.Profile, error) {
	focusAreas, err := marshalList(upsert.FocusAreas)
	if err != nil {
		return nil, err
	}
	stmt := `INSERT INTO user_profile (user_id, display_name, focus_areas, wake_time, sleep_time, reminder_enabled, onboarded, updated_ts)
	         VALUES (?, ?, ?, ?, ?, ?, ?, strftime('%s', 'now'))
	         ON CONFLICT(user_id) DO UPDATE SET
	           display_name     = excluded.display_name,
	           focus_areas      = excluded.focus_areas,
	           wake_time        = excluded.wake_time,
	           sleep_time       = excluded.sleep_time,
	           reminder_enabled = excluded.reminder_enabled,
	           onboarded        = excluded.onboarded,
	           updated_ts       = excluded.updated_ts
	         RETURNING updated_ts`
	if err := d.db.QueryRowContext(ctx, stmt,
		upsert.UserID, upsert.DisplayName, focusAreas, upsert.WakeTime, upsert.SleepTime,
		upsert.ReminderEnabled, upsert.Onboarded,
	).Scan(&upsert.UpdatedTs); err != nil {
		return nil, err
	}
	return upsert, nil
}

func (d *DB) GetProfile(ctx context.Context, find *store.FindProfile) (*store.Profile, error) {
	query := `SELECT user_id, display_name, focus_areas, wake_time, sleep_time, reminder_enabled, onboarded, updated_ts
	          FROM user_profile WHERE user_id = ?`
	rows, err := d.db.QueryContext(ctx, query, find.UserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	p := &store.Profile{}
	var focusAreas string
	if err := rows.Scan(&p.UserID, &p.DisplayName, &focusAreas, &p.WakeTime, &p.SleepTime, &p.ReminderEnabled, &p.Onboarded, &p.UpdatedTs); err != nil {
		return nil, err
	}
	p.FocusAreas = unmarshalList(focusAreas)
	return p, rows.Err()
}
