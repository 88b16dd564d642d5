// Copyright 2024, CityPair, Inc.

package request

import (
	"database/sql"

	serr "github.com/citypair/matching-service/errors"
	"github.com/citypair/matching-service/proto"
)

const (
	insertRequest = "INSERT INTO requests (user_id, raw_text, type, city, country, status, created_at) " +
		"VALUES (?, ?, ?, ?, ?, ?, ?)"
	selectRequest = "SELECT id, user_id, raw_text, type, city, country, status, created_at " +
		"FROM requests WHERE id = ?"
)

// A DBAccessor persists requests to a database.
type DBAccessor interface {
	// SaveRequest saves a proto.Request in the database and returns the
	// system-assigned id.
	SaveRequest(proto.Request) (int64, error)

	// GetRequest retrieves a request from the database.
	GetRequest(int64) (proto.Request, error)
}

type dbAccessor struct {
	db *sql.DB
}

func NewDBAccessor(db *sql.DB) DBAccessor {
	return &dbAccessor{
		db: db,
	}
}

func (d *dbAccessor) SaveRequest(req proto.Request) (int64, error) {
	res, err := d.db.Exec(insertRequest,
		req.UserId,
		req.RawText,
		req.Type,
		req.City,
		req.Country,
		req.Status,
		req.CreatedAt)
	if err != nil {
		return 0, serr.NewDbError(err, insertRequest)
	}
	return res.LastInsertId()
}

func (d *dbAccessor) GetRequest(requestId int64) (proto.Request, error) {
	var req proto.Request

	if err := d.db.QueryRow(selectRequest, requestId).Scan(
		&req.Id,
		&req.UserId,
		&req.RawText,
		&req.Type,
		&req.City,
		&req.Country,
		&req.Status,
		&req.CreatedAt); err != nil {
		switch err {
		case sql.ErrNoRows:
			return req, serr.RequestNotFound{RequestId: requestId}
		default:
			return req, serr.NewDbError(err, selectRequest)
		}
	}

	return req, nil
}
