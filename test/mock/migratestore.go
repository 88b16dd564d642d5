// Copyright 2024, CityPair, Inc.

package mock

import (
	"errors"

	"github.com/citypair/matching-service/migrate"
)

var (
	ErrMigrateStore = errors.New("forced error in migrate store")
)

// MigrateStore is an in-memory migrate.Store. By default it tracks the
// current version like a real store: Apply records the change-set's id and
// Revert records its predecessor's id. Any func field overrides the default.
type MigrateStore struct {
	InitFunc    func() error
	LockFunc    func() error
	UnlockFunc  func() error
	CurrentFunc func() (string, error)
	ApplyFunc   func(migrate.Changeset) error
	RevertFunc  func(migrate.Changeset) error

	// State tracked by the default implementations.
	Version  string   // current version, "" = base
	Applied  []string // ids passed to Apply, in order
	Reverted []string // ids passed to Revert, in order
}

func (s *MigrateStore) Init() error {
	if s.InitFunc != nil {
		return s.InitFunc()
	}
	return nil
}

func (s *MigrateStore) Lock() error {
	if s.LockFunc != nil {
		return s.LockFunc()
	}
	return nil
}

func (s *MigrateStore) Unlock() error {
	if s.UnlockFunc != nil {
		return s.UnlockFunc()
	}
	return nil
}

func (s *MigrateStore) Current() (string, error) {
	if s.CurrentFunc != nil {
		return s.CurrentFunc()
	}
	return s.Version, nil
}

func (s *MigrateStore) Apply(cs migrate.Changeset) error {
	if s.ApplyFunc != nil {
		return s.ApplyFunc(cs)
	}
	s.Applied = append(s.Applied, cs.ID)
	s.Version = cs.ID
	return nil
}

func (s *MigrateStore) Revert(cs migrate.Changeset) error {
	if s.RevertFunc != nil {
		return s.RevertFunc(cs)
	}
	s.Reverted = append(s.Reverted, cs.ID)
	s.Version = cs.PrevID
	return nil
}
