// Copyright 2024, CityPair, Inc.

package mock

import (
	"errors"

	"github.com/citypair/matching-service/proto"
)

var (
	ErrRequestDBAccessor = errors.New("forced error in request dbaccessor")
)

type RequestDBAccessor struct {
	SaveRequestFunc func(proto.Request) (int64, error)
	GetRequestFunc  func(int64) (proto.Request, error)
}

func (a *RequestDBAccessor) SaveRequest(req proto.Request) (int64, error) {
	if a.SaveRequestFunc != nil {
		return a.SaveRequestFunc(req)
	}
	return 0, nil
}

func (a *RequestDBAccessor) GetRequest(requestId int64) (proto.Request, error) {
	if a.GetRequestFunc != nil {
		return a.GetRequestFunc(requestId)
	}
	return proto.Request{}, nil
}
