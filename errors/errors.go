// Copyright 2024, CityPair, Inc.

// Package errors provides errors reported to the user. These are mapped to a
// proto.Error by the API and sent to the user. All errors must implement the
// error interface and return a helpful error message. The message can be terse
// because it will be reported in context. For example, the UserNotFound error
// message makes sense in response to "GET /users/42" when user 42 does not
// exist.
package errors

import (
	"fmt"
)

var _ error = UserNotFound{}

type UserNotFound struct {
	UserId int64
}

func (e UserNotFound) Error() string {
	return fmt.Sprintf("user %d not found", e.UserId)
}

// --------------------------------------------------------------------------

var _ error = RequestNotFound{}

type RequestNotFound struct {
	RequestId int64
}

func (e RequestNotFound) Error() string {
	return fmt.Sprintf("request %d not found", e.RequestId)
}

// --------------------------------------------------------------------------

var _ error = ValidationError{}

// ValidationError is a malformed or missing input field. It is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return e.Message
}

// --------------------------------------------------------------------------

var _ error = DuplicateEntry{}

// DuplicateEntry is a unique-key constraint violation, e.g. creating a user
// with a telegram_id that another user already has.
type DuplicateEntry struct {
	Field string
	Value string
}

func (e DuplicateEntry) Error() string {
	return fmt.Sprintf("duplicate %s: %s", e.Field, e.Value)
}

// --------------------------------------------------------------------------

var _ error = DbError{}

// DbError represents a generic database error. This struct is not superfluous,
// it allows the API to distinguish the error type and return an appropriate
// proto.Error.
type DbError struct {
	err   error
	query string
}

func NewDbError(err error, query string) DbError {
	return DbError{err: err, query: query}
}

func (e DbError) Error() string {
	return fmt.Sprintf("database error: %s (%s)", e.err, e.query)
}
