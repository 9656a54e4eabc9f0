package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/useattune/attune/store"
)

func (d *DB) EnsureRoutineTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS routine (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			uid         TEXT    NOT NULL UNIQUE,
			creator_id  INTEGER NOT NULL,
			title       TEXT    NOT NULL,
			emoji       TEXT    NOT NULL DEFAULT '',
			time_of_day TEXT    NOT NULL DEFAULT 'anytime',
			weekdays    TEXT    NOT NULL DEFAULT '[]',
			position    INTEGER NOT NULL DEFAULT 0,
			archived    INTEGER NOT NULL DEFAULT 0,
			created_ts  BIGINT  NOT NULL DEFAULT (strftime('%s', 'now')),
			updated_ts  BIGINT  NOT NULL DEFAULT (strftime('%s', 'now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_routine_creator ON routine(creator_id)`,
	}
	for _, s := range stmts {
		if _, err := d.db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) CreateRoutine(ctx context.Context, create *store.Routine) (*store.Routine, error) {
	weekdays, err := marshalList(create.Weekdays)
	if err != nil {
		return nil, err
	}
	stmt := `INSERT INTO routine (uid, creator_id, title, emoji, time_of_day, weekdays, position)
	         VALUES (?, ?, ?, ?, ?, ?, ?)
	         RETURNING id, created_ts, updated_ts`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID, create.CreatorID, create.Title, create.Emoji, create.TimeOfDay, weekdays, create.Position,
	).Scan(&create.ID, &create.CreatedTs, &create.UpdatedTs); err != nil {
		return nil, err
	}
	return create, nil
}

func (d *DB) ListRoutines(ctx context.Context, find *store.FindRoutine) ([]*store.Routine, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = ?"), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "creator_id = ?"), append(args, *v)
	}
	if v := find.Archived; v != nil {
		where, args = append(where, "archived = ?"), append(args, *v)
	}
	query := fmt.Sprintf(
		`SELECT id, uid, creator_id, title, emoji, time_of_day, weekdays, position, archived, created_ts, updated_ts
		 FROM routine WHERE %s ORDER BY position ASC, id ASC`,
		strings.Join(where, " AND "),
	)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*store.Routine
	for rows.Next() {
		r := &store.Routine{}
		var weekdays string
		if err := rows.Scan(&r.ID, &r.UID, &r.CreatorID, &r.Title, &r.Emoji, &r.TimeOfDay, &weekdays, &r.Position, &r.Archived, &r.CreatedTs, &r.UpdatedTs); err != nil {
			return nil, err
		}
		r.Weekdays = unmarshalList(weekdays)
		list = append(list, r)
	}
	return list, rows.Err()
}

func (d *DB) GetRoutine(ctx context.Context, find *store.FindRoutine) (*store.Routine, error) {
	list, err := d.ListRoutines(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (d *DB) UpdateRoutine(ctx context.Context, update *store.UpdateRoutine) (*store.Routine, error) {
	set, args := []string{}, []any{}
	if v := update.Title; v != nil {
		set, args = append(set, "title = ?"), append(args, *v)
	}
	if v := update.Emoji; v != nil {
		set, args = append(set, "emoji = ?"), append(args, *v)
	}
	if v := update.TimeOfDay; v != nil {
		set, args = append(set, "time_of_day = ?"), append(args, *v)
	}
	if v := update.Weekdays; v != nil {
		weekdays, err := marshalList(*v)
		if err != nil {
			return nil, err
		}
		set, args = append(set, "weekdays = ?"), append(args, weekdays)
	}
	if v := update.Position; v != nil {
		set, args = append(set, "position = ?"), append(args, *v)
	}
	if v := update.Archived; v != nil {
		set, args = append(set, "archived = ?"), append(args, *v)
	}
	if len(set) == 0 {
		return d.GetRoutine(ctx, &store.FindRoutine{UID: &update.UID})
	}
	set = append(set, "updated_ts = strftime('%s', 'now')")
	args = append(args, update.UID)
	stmt := fmt.Sprintf(
		`UPDATE routine SET %s WHERE uid = ?
		 RETURNING id, uid, creator_id, title, emoji, time_of_day, weekdays, position, archived, created_ts, updated_ts`,
		strings.Join(set, ", "),
	)
	r := &store.Routine{}
	var weekdays string
	if err := d.db.QueryRowContext(ctx, stmt, args...).
		Scan(&r.ID, &r.UID, &r.CreatorID, &r.Title, &r.Emoji, &r.TimeOfDay, &weekdays, &r.Position, &r.Archived, &r.CreatedTs, &r.UpdatedTs); err != nil {
		return nil, err
	}
	r.Weekdays = unmarshalList(weekdays)
	return r, nil
}

func (d *DB) DeleteRoutine(ctx context.Context, uid string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM routine WHERE uid = ?`, uid)
	return err
}
