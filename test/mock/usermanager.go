// Copyright 2024, CityPair, Inc.

package mock

import (
	"errors"

	"github.com/citypair/matching-service/proto"
)

var (
	ErrUserManager = errors.New("forced error in user manager")
)

type UserManager struct {
	CreateFunc func(proto.CreateUserParams) (proto.User, error)
	GetFunc    func(int64) (proto.User, error)
	DeleteFunc func(int64) error
}

func (m *UserManager) Create(params proto.CreateUserParams) (proto.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(params)
	}
	return proto.User{}, nil
}

func (m *UserManager) Get(userId int64) (proto.User, error) {
	if m.GetFunc != nil {
		return m.GetFunc(userId)
	}
	return proto.User{}, nil
}

func (m *UserManager) Delete(userId int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(userId)
	}
	return nil
}
