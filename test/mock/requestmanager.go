// Copyright 2024, CityPair, Inc.

package mock

import (
	"errors"

	"github.com/citypair/matching-service/proto"
)

var (
	ErrRequestManager = errors.New("forced error in request manager")
)

type RequestManager struct {
	CreateFunc func(proto.CreateRequestParams) (proto.Request, error)
	GetFunc    func(int64) (proto.Request, error)
}

func (m *RequestManager) Create(params proto.CreateRequestParams) (proto.Request, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(params)
	}
	return proto.Request{}, nil
}

func (m *RequestManager) Get(requestId int64) (proto.Request, error) {
	if m.GetFunc != nil {
		return m.GetFunc(requestId)
	}
	return proto.Request{}, nil
}
