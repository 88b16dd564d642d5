// Copyright 2024, CityPair, Inc.

package mock

import (
	"errors"

	"github.com/citypair/matching-service/proto"
)

var (
	ErrUserDBAccessor = errors.New("forced error in user dbaccessor")
)

type UserDBAccessor struct {
	SaveUserFunc   func(proto.User) (int64, error)
	GetUserFunc    func(int64) (proto.User, error)
	DeleteUserFunc func(int64) error
}

func (a *UserDBAccessor) SaveUser(user proto.User) (int64, error) {
	if a.SaveUserFunc != nil {
		return a.SaveUserFunc(user)
	}
	return 0, nil
}

func (a *UserDBAccessor) GetUser(userId int64) (proto.User, error) {
	if a.GetUserFunc != nil {
		return a.GetUserFunc(userId)
	}
	return proto.User{}, nil
}

func (a *UserDBAccessor) DeleteUser(userId int64) error {
	if a.DeleteUserFunc != nil {
		return a.DeleteUserFunc(userId)
	}
	return nil
}
