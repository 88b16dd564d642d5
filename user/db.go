// Copyright 2024, CityPair, Inc.

package user

import (
	"database/sql"

	"github.com/go-sql-driver/mysql"

	serr "github.com/citypair/matching-service/errors"
	"github.com/citypair/matching-service/proto"
)

const (
	insertUser = "INSERT INTO users (telegram_id, display_name, home_city, home_country, timezone, created_at) " +
		"VALUES (?, ?, ?, ?, ?, ?)"
	selectUser = "SELECT id, telegram_id, display_name, home_city, home_country, timezone, created_at " +
		"FROM users WHERE id = ?"
	deleteUser = "DELETE FROM users WHERE id = ?"

	// MySQL error number for a unique-key violation.
	dupEntryErr = 1062
)

// A DBAccessor persists users to a database.
type DBAccessor interface {
	// SaveUser saves a proto.User in the database and returns the
	// system-assigned id.
	SaveUser(proto.User) (int64, error)

	// GetUser retrieves a user from the database.
	GetUser(int64) (proto.User, error)

	// DeleteUser deletes a user from the database. The user's requests are
	// deleted by the requests table's ON DELETE CASCADE foreign key.
	DeleteUser(int64) error
}

type dbAccessor struct {
	db *sql.DB
}

func NewDBAccessor(db *sql.DB) DBAccessor {
	return &dbAccessor{
		db: db,
	}
}

func (d *dbAccessor) SaveUser(user proto.User) (int64, error) {
	res, err := d.db.Exec(insertUser,
		user.TelegramId,
		user.DisplayName,
		user.HomeCity,
		user.HomeCountry,
		user.Timezone,
		user.CreatedAt)
	if err != nil {
		if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == dupEntryErr {
			telegramId := ""
			if user.TelegramId != nil {
				telegramId = *user.TelegramId
			}
			return 0, serr.DuplicateEntry{Field: "telegram_id", Value: telegramId}
		}
		return 0, serr.NewDbError(err, insertUser)
	}
	return res.LastInsertId()
}

func (d *dbAccessor) GetUser(userId int64) (proto.User, error) {
	var user proto.User

	// telegram_id is the only nullable column the app reads back.
	var telegramId sql.NullString

	if err := d.db.QueryRow(selectUser, userId).Scan(
		&user.Id,
		&telegramId,
		&user.DisplayName,
		&user.HomeCity,
		&user.HomeCountry,
		&user.Timezone,
		&user.CreatedAt); err != nil {
		switch err {
		case sql.ErrNoRows:
			return user, serr.UserNotFound{UserId: userId}
		default:
			return user, serr.NewDbError(err, selectUser)
		}
	}

	if telegramId.Valid {
		user.TelegramId = &telegramId.String
	}

	return user, nil
}

func (d *dbAccessor) DeleteUser(userId int64) error {
	res, err := d.db.Exec(deleteUser, userId)
	if err != nil {
		return serr.NewDbError(err, deleteUser)
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if cnt == 0 {
		return serr.UserNotFound{UserId: userId}
	}
	return nil
}
