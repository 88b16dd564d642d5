// Copyright 2024, CityPair, Inc.

// Package proto provides API message structures. These are the data structures
// that the Matching Service and its clients send to each other.
package proto

import (
	"fmt"
	"time"
)

// User is an identity record. Users are created once and never updated;
// the id and created_at fields are assigned by the service at insert time.
type User struct {
	Id          int64     `json:"id"`
	TelegramId  *string   `json:"telegram_id"` // optional external identity, unique when present
	DisplayName string    `json:"display_name"`
	HomeCity    string    `json:"home_city"`
	HomeCountry string    `json:"home_country"`
	Timezone    string    `json:"timezone"`   // IANA timezone name, e.g. "Europe/Berlin"
	CreatedAt   time.Time `json:"created_at"` // when the user was created (UTC)
}

// CreateUserParams are the user-provided params for creating a new user.
type CreateUserParams struct {
	TelegramId  *string `json:"telegram_id"`
	DisplayName string  `json:"display_name"`
	HomeCity    string  `json:"home_city"`
	HomeCountry string  `json:"home_country"`
	Timezone    string  `json:"timezone"`
}

// Request is a demand/offer record tied to exactly one user.
type Request struct {
	Id        int64     `json:"id"`
	UserId    int64     `json:"user_id"`  // owning user, must exist
	RawText   string    `json:"raw_text"` // free-text body as submitted
	Type      string    `json:"type"`     // category tag, e.g. "ride"
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Status    string    `json:"status"`     // defaults to STATUS_ACTIVE
	CreatedAt time.Time `json:"created_at"` // when the request was created (UTC)
}

// CreateRequestParams are the user-provided params for creating a new request.
type CreateRequestParams struct {
	UserId  int64  `json:"user_id"`
	RawText string `json:"raw_text"`
	Type    string `json:"type"`
	City    string `json:"city"`
	Country string `json:"country"`
	Status  string `json:"status"` // optional, defaults to STATUS_ACTIVE
}

const (
	// STATUS_ACTIVE is the default status of a new request.
	STATUS_ACTIVE = "active"
)

// Error is the standard response for all handled errors. The API maps typed
// errors from other packages to an Error and sends it to the client.
type Error struct {
	Message    string `json:"message"`    // human-readable and loggable error message
	HTTPStatus int    `json:"httpStatus"` // HTTP status code
}

func NewError(msgFmt string, msgArgs ...interface{}) Error {
	e := Error{}
	if msgFmt != "" {
		e.Message = fmt.Sprintf(msgFmt, msgArgs...)
	}
	return e
}
