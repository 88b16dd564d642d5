// Copyright 2024, CityPair, Inc.

package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	// Version-tracking queries. schema_version holds at most one row: the
	// id of the most recently applied change-set.
	createVersionTable = "CREATE TABLE IF NOT EXISTS schema_version (version VARCHAR(64) NOT NULL, PRIMARY KEY (version)) ENGINE=InnoDB"
	selectVersion      = "SELECT version FROM schema_version"
	deleteVersion      = "DELETE FROM schema_version"
	insertVersion      = "INSERT INTO schema_version (version) VALUES (?)"

	// Advisory-lock queries. GET_LOCK serializes concurrent runners: the
	// second invocation blocks until the first releases the lock or the
	// wait times out, so a change-set is never applied twice.
	acquireLock = "SELECT GET_LOCK(?, ?)"
	releaseLock = "SELECT RELEASE_LOCK(?)"

	lockName = "matching_service_schema_migration"
)

// DefaultLockWait is how long a runner waits for the migration lock before
// failing cleanly.
const DefaultLockWait = 60 * time.Second

type dbStore struct {
	db       *sql.DB
	lockWait time.Duration
	lockConn *sql.Conn // session holding the advisory lock
}

// NewDBStore returns a Store backed by a MySQL database. Each change-set is
// applied in one transaction together with its version-record update. MySQL
// commits implicitly on DDL, so the version update strictly follows the last
// successful statement; a failed statement leaves the version record
// untouched and the change-set is reported as not applied.
func NewDBStore(db *sql.DB) Store {
	return NewDBStoreWithLockWait(db, DefaultLockWait)
}

// NewDBStoreWithLockWait is NewDBStore with a custom lock wait.
func NewDBStoreWithLockWait(db *sql.DB, lockWait time.Duration) Store {
	return &dbStore{
		db:       db,
		lockWait: lockWait,
	}
}

func (s *dbStore) Init() error {
	if _, err := s.db.Exec(createVersionTable); err != nil {
		return fmt.Errorf("%s: %s", createVersionTable, err)
	}
	return nil
}

// Lock acquires the advisory lock. GET_LOCK is scoped to a MySQL session, so
// the lock is taken on a dedicated connection that is pinned until Unlock.
func (s *dbStore) Lock() error {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return err
	}
	var got sql.NullInt64
	if err := conn.QueryRowContext(context.Background(), acquireLock, lockName, int(s.lockWait.Seconds())).Scan(&got); err != nil {
		conn.Close()
		return err
	}
	if !got.Valid || got.Int64 != 1 {
		conn.Close()
		return fmt.Errorf("could not acquire migration lock %s within %s; another migration may be running",
			lockName, s.lockWait)
	}
	s.lockConn = conn
	return nil
}

func (s *dbStore) Unlock() error {
	if s.lockConn == nil {
		return nil
	}
	var released sql.NullInt64
	err := s.lockConn.QueryRowContext(context.Background(), releaseLock, lockName).Scan(&released)
	s.lockConn.Close()
	s.lockConn = nil
	return err
}

func (s *dbStore) Current() (string, error) {
	var version string
	if err := s.db.QueryRow(selectVersion).Scan(&version); err != nil {
		switch err {
		case sql.ErrNoRows:
			return "", nil // before the first change-set
		default:
			return "", err
		}
	}
	return version, nil
}

func (s *dbStore) Apply(cs Changeset) error {
	return s.run(cs.Up, cs.ID)
}

func (s *dbStore) Revert(cs Changeset) error {
	return s.run(cs.Down, cs.PrevID)
}

// run executes the statements and records version as current, in one
// transaction.
func (s *dbStore) run(statements []string, version string) error {
	txn, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer txn.Rollback()

	for _, stmt := range statements {
		if _, err := txn.Exec(stmt); err != nil {
			return fmt.Errorf("%s: %s", stmt, err)
		}
	}

	if _, err := txn.Exec(deleteVersion); err != nil {
		return err
	}
	if version != "" {
		if _, err := txn.Exec(insertVersion, version); err != nil {
			return err
		}
	}

	return txn.Commit()
}
