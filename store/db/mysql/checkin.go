package mysql

import (
	"context"
	"fmt"
	"strings"

	"github.com/useattune/attune/store"
)

func (d *DB) EnsureCheckInTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS check_in (
			id                 INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			uid                VARCHAR(256) NOT NULL UNIQUE,
			creator_id         INT NOT NULL,
			date               VARCHAR(16) NOT NULL,
			mood               INT NOT NULL,
			energy             INT NOT NULL,
			note               TEXT NOT NULL,
			completed_routines TEXT NOT NULL,
			created_ts         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_ts         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT uq_check_in_creator_date UNIQUE (creator_id, date)
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
	stmt := "INSERT INTO `check_in` (`uid`, `creator_id`, `date`, `mood`, `energy`, `note`, `completed_routines`)" +
		" VALUES (?, ?, ?, ?, ?, ?, ?)" +
		" ON DUPLICATE KEY UPDATE `mood` = ?, `energy` = ?, `note` = ?, `completed_routines` = ?, `updated_ts` = CURRENT_TIMESTAMP"
	if _, err := d.db.ExecContext(ctx, stmt,
		upsert.UID, upsert.CreatorID, upsert.Date, upsert.Mood, upsert.Energy, upsert.Note, completed,
		upsert.Mood, upsert.Energy, upsert.Note, completed,
	); err != nil {
		return nil, err
	}
	return d.GetCheckIn(ctx, &store.FindCheckIn{CreatorID: &upsert.CreatorID, Date: &upsert.Date})
}

func (d *DB) ListCheckIns(ctx context.Context, find *store.FindCheckIn) ([]*store.CheckIn, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "`creator_id` = ?"), append(args, *v)
	}
	if v := find.Date; v != nil {
		where, args = append(where, "`date` = ?"), append(args, *v)
	}
	if v := find.DateFrom; v != nil {
		where, args = append(where, "`date` >= ?"), append(args, *v)
	}
	if v := find.DateTo; v != nil {
		where, args = append(where, "`date` <= ?"), append(args, *v)
	}
	query := fmt.Sprintf(
		"SELECT `id`, `uid`, `creator_id`, `date`, `mood`, `energy`, `note`, `completed_routines`, UNIX_TIMESTAMP(`created_ts`), UNIX_TIMESTAMP(`updated_ts`) FROM `check_in` WHERE %s ORDER BY `date` DESC",
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
