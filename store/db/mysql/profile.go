package mysql

import (
	"context"

	"github.com/useattune/attune/store"
)

func (d *DB) EnsureProfileTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_profile (
			user_id          INT NOT NULL PRIMARY KEY,
			display_name     VARCHAR(256) NOT NULL DEFAULT '',
			focus_areas      TEXT NOT NULL,
			wake_time        VARCHAR(16) NOT NULL DEFAULT '',
			sleep_time       VARCHAR(16) NOT NULL DEFAULT '',
			reminder_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			onboarded        BOOLEAN NOT NULL DEFAULT FALSE,
			updated_ts       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
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
	stmt := "INSERT INTO `user_profile` (`user_id`, `display_name`, `focus_areas`, `wake_time`, `sleep_time`, `reminder_enabled`, `onboarded`)" +
		" VALUES (?, ?, ?, ?, ?, ?, ?)" +
		" ON DUPLICATE KEY UPDATE `display_name` = ?, `focus_areas` = ?, `wake_time` = ?, `sleep_time` = ?, `reminder_enabled` = ?, `onboarded` = ?, `updated_ts` = CURRENT_TIMESTAMP"
	if _, err := d.db.ExecContext(ctx, stmt,
		upsert.UserID, upsert.DisplayName, focusAreas, upsert.WakeTime, upsert.SleepTime, upsert.ReminderEnabled, upsert.Onboarded,
		upsert.DisplayName, focusAreas, upsert.WakeTime, upsert.SleepTime, upsert.ReminderEnabled, upsert.Onboarded,
	); err != nil {
		return nil, err
	}
	return d.GetProfile(ctx, &store.FindProfile{UserID: upsert.UserID})
}

func (d *DB) GetProfile(ctx context.Context, find *store.FindProfile) (*store.Profile, error) {
	query := "SELECT `user_id`, `display_name`, `focus_areas`, `wake_time`, `sleep_time`, `reminder_enabled`, `onboarded`, UNIX_TIMESTAMP(`updated_ts`) FROM `user_profile` WHERE `user_id` = ?"
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
