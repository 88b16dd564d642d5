// Copyright 2024, CityPair, Inc.

// Package request provides an interface for managing requests, the demand and
// offer records that users submit.
package request

import (
	"time"

	serr "github.com/citypair/matching-service/errors"
	"github.com/citypair/matching-service/proto"
	"github.com/citypair/matching-service/user"
)

// A Manager is used to create and manage requests.
type Manager interface {
	// Create validates the params, verifies that the owning user exists,
	// assigns the id and creation timestamp, persists the request, and
	// returns the persisted record. The request's user reference is checked
	// before insert; a missing user is a not-found error and nothing is
	// persisted.
	Create(proto.CreateRequestParams) (proto.Request, error)

	// Get retrieves the request corresponding to the provided request id.
	Get(requestId int64) (proto.Request, error)
}

type manager struct {
	// Persists requests in a database.
	db DBAccessor

	// Resolves user references before insert.
	users user.Manager
}

func NewManager(dbAccessor DBAccessor, userManager user.Manager) Manager {
	return &manager{
		db:    dbAccessor,
		users: userManager,
	}
}

func (m *manager) Create(params proto.CreateRequestParams) (proto.Request, error) {
	var req proto.Request
	if params.UserId == 0 {
		return req, serr.ValidationError{Field: "user_id", Message: "required"}
	}
	if params.RawText == "" {
		return req, serr.ValidationError{Field: "raw_text", Message: "required"}
	}
	if params.Type == "" {
		return req, serr.ValidationError{Field: "type", Message: "required"}
	}
	if params.City == "" {
		return req, serr.ValidationError{Field: "city", Message: "required"}
	}
	if params.Country == "" {
		return req, serr.ValidationError{Field: "country", Message: "required"}
	}

	// The owning user must exist. This returns serr.UserNotFound before
	// anything is inserted.
	if _, err := m.users.Get(params.UserId); err != nil {
		return req, err
	}

	status := params.Status
	if status == "" {
		status = proto.STATUS_ACTIVE
	}

	req = proto.Request{
		UserId:    params.UserId,
		RawText:   params.RawText,
		Type:      params.Type,
		City:      params.City,
		Country:   params.Country,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}

	requestId, err := m.db.SaveRequest(req)
	if err != nil {
		return proto.Request{}, err
	}
	req.Id = requestId

	return req, nil
}

func (m *manager) Get(requestId int64) (proto.Request, error) {
	return m.db.GetRequest(requestId)
}
