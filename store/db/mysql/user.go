package mysql

import (
	"context"
	"fmt"
	"strings"

	"github.com/useattune/attune/store"
)

func (d *DB) EnsureUserTables(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS `user` (" + `
			id            INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			email         VARCHAR(256) NOT NULL UNIQUE,
			nickname      VARCHAR(256) NOT NULL DEFAULT '',
			password_hash VARCHAR(256) NOT NULL,
			created_ts    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_ts    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, s := range stmts {
		if _, err := d.db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	stmt := "INSERT INTO `user` (`email`, `nickname`, `password_hash`) VALUES (?, ?, ?)"
	result, err := d.db.ExecContext(ctx, stmt, create.Email, create.Nickname, create.PasswordHash)
	if err != nil {
		return nil, err
	}
	rawID, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	id := int32(rawID)
	return d.GetUser(ctx, &store.FindUser{ID: &id})
}

func (d *DB) ListUsers(ctx context.Context, find *store.FindUser) ([]*store.User, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "`id` = ?"), append(args, *v)
	}
	if v := find.Email; v != nil {
		where, args = append(where, "`email` = ?"), append(args, *v)
	}
	query := fmt.Sprintf(
		"SELECT `id`, `email`, `nickname`, `password_hash`, UNIX_TIMESTAMP(`created_ts`), UNIX_TIMESTAMP(`updated_ts`) FROM `user` WHERE %s ORDER BY `id` ASC",
		strings.Join(where, " AND "),
	)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*store.User
	for rows.Next() {
		u := &store.User{}
		if err := rows.Scan(&u.ID, &u.Email, &u.Nickname, &u.PasswordHash, &u.CreatedTs, &u.UpdatedTs); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func (d *DB) GetUser(ctx context.Context, find *store.FindUser) (*store.User, error) {
	list, err := d.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (d *DB) UpdateUser(ctx context.Context, update *store.UpdateUser) (*store.User, error) {
	set, args := []string{}, []any{}
	if v := update.Nickname; v != nil {
		set, args = append(set, "`nickname` = ?"), append(args, *v)
	}
	if v := update.PasswordHash; v != nil {
		set, args = append(set, "`password_hash` = ?"), append(args, *v)
	}
	if len(set) == 0 {
		return d.GetUser(ctx, &store.FindUser{ID: &update.ID})
	}
	set = append(set, "`updated_ts` = CURRENT_TIMESTAMP")
	args = append(args, update.ID)
	stmt := fmt.Sprintf("UPDATE `user` SET %s WHERE `id` = ?", strings.Join(set, ", "))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, err
	}
	return d.GetUser(ctx, &store.FindUser{ID: &update.ID})
}
