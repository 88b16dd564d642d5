// Copyright 2024, CityPair, Inc.

// Package user provides an interface for managing users, the identity records
// that own requests.
package user

import (
	"time"

	serr "github.com/citypair/matching-service/errors"
	"github.com/citypair/matching-service/proto"
)

// A Manager is used to create and manage users.
type Manager interface {
	// Create validates the params, assigns the id and creation timestamp,
	// persists the user, and returns the persisted record.
	Create(proto.CreateUserParams) (proto.User, error)

	// Get retrieves the user corresponding to the provided user id.
	Get(userId int64) (proto.User, error)

	// Delete deletes a user and, by cascade, all of the user's requests.
	// There is no API endpoint for this; it is used operationally.
	Delete(userId int64) error
}

type manager struct {
	// Persists users in a database.
	db DBAccessor
}

func NewManager(dbAccessor DBAccessor) Manager {
	return &manager{
		db: dbAccessor,
	}
}

func (m *manager) Create(params proto.CreateUserParams) (proto.User, error) {
	var user proto.User
	if params.DisplayName == "" {
		return user, serr.ValidationError{Field: "display_name", Message: "required"}
	}
	if params.HomeCity == "" {
		return user, serr.ValidationError{Field: "home_city", Message: "required"}
	}
	if params.HomeCountry == "" {
		return user, serr.ValidationError{Field: "home_country", Message: "required"}
	}
	if params.Timezone == "" {
		return user, serr.ValidationError{Field: "timezone", Message: "required"}
	}

	user = proto.User{
		TelegramId:  params.TelegramId,
		DisplayName: params.DisplayName,
		HomeCity:    params.HomeCity,
		HomeCountry: params.HomeCountry,
		Timezone:    params.Timezone,
		CreatedAt:   time.Now().UTC(),
	}

	userId, err := m.db.SaveUser(user)
	if err != nil {
		return proto.User{}, err
	}
	user.Id = userId

	return user, nil
}

func (m *manager) Get(userId int64) (proto.User, error) {
	return m.db.GetUser(userId)
}

func (m *manager) Delete(userId int64) error {
	return m.db.DeleteUser(userId)
}
