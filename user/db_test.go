// Copyright 2024, CityPair, Inc.

package user_test

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/go-test/deep"

	serr "github.com/citypair/matching-service/errors"
	"github.com/citypair/matching-service/migrate"
	"github.com/citypair/matching-service/proto"
	"github.com/citypair/matching-service/request"
	"github.com/citypair/matching-service/user"
)

// These tests run against a real MySQL database. Set MATCHING_SERVICE_TEST_DSN
// to a DSN for a disposable test database to enable them, ex:
// root:@tcp(localhost:3306)/matching_service_test

var db *sql.DB
var dbA user.DBAccessor

func setup(t *testing.T) {
	dsn := os.Getenv("MATCHING_SERVICE_TEST_DSN")
	if dsn == "" {
		t.Skip("MATCHING_SERVICE_TEST_DSN not set")
	}

	var err error
	db, err = sql.Open("mysql", dsn+"?parseTime=true")
	if err != nil {
		t.Fatalf("error opening sql db: %s", err)
	}
	if err = db.Ping(); err != nil {
		t.Fatalf("error connecting to sql db: %s", err)
	}

	// Start from a blank schema and migrate up.
	for _, stmt := range []string{
		"DROP TABLE IF EXISTS requests",
		"DROP TABLE IF EXISTS users",
		"DROP TABLE IF EXISTS schema_version",
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("error resetting test db: %s", err)
		}
	}
	chain, err := migrate.NewChainFromChangesets()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := migrate.NewRunner(chain, migrate.NewDBStore(db)).Upgrade(migrate.TargetHead); err != nil {
		t.Fatalf("error migrating test db: %s", err)
	}

	dbA = user.NewDBAccessor(db)
}

func cleanup() {
	db.Close()
	db = nil
	dbA = nil
}

func getCount(t *testing.T, table string) int {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatal(err)
	}
	return count
}

// //////////////////////////////////////////////////////////////////////////
// Tests
// //////////////////////////////////////////////////////////////////////////

func TestSaveAndGetUser(t *testing.T) {
	setup(t)
	defer cleanup()

	m := user.NewManager(dbA)
	created, err := m.Create(proto.CreateUserParams{
		DisplayName: "Ann",
		HomeCity:    "Berlin",
		HomeCountry: "DE",
		Timezone:    "Europe/Berlin",
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.Id == 0 {
		t.Error("user id = 0, expected a system-assigned id")
	}

	got, err := m.Get(created.Id)
	if err != nil {
		t.Fatal(err)
	}
	// MySQL DATETIME has second precision; compare at that precision.
	created.CreatedAt = created.CreatedAt.Truncate(1e9)
	got.CreatedAt = got.CreatedAt.Truncate(1e9)
	if diff := deep.Equal(got, created); diff != nil {
		t.Error(diff)
	}
}

func TestGetUserNotFound(t *testing.T) {
	setup(t)
	defer cleanup()

	_, err := dbA.GetUser(999)
	if diff := deep.Equal(err, serr.UserNotFound{UserId: 999}); diff != nil {
		t.Error(diff)
	}
}

func TestDuplicateTelegramId(t *testing.T) {
	setup(t)
	defer cleanup()

	telegramId := "tg-1"
	m := user.NewManager(dbA)
	params := proto.CreateUserParams{
		TelegramId:  &telegramId,
		DisplayName: "Ann",
		HomeCity:    "Berlin",
		HomeCountry: "DE",
		Timezone:    "Europe/Berlin",
	}
	if _, err := m.Create(params); err != nil {
		t.Fatal(err)
	}

	params.DisplayName = "Ben"
	_, err := m.Create(params)
	if diff := deep.Equal(err, serr.DuplicateEntry{Field: "telegram_id", Value: telegramId}); diff != nil {
		t.Error(diff)
	}
	if count := getCount(t, "users"); count != 1 {
		t.Errorf("users count = %d, expected 1", count)
	}
}

func TestMultipleUsersWithoutTelegramId(t *testing.T) {
	setup(t)
	defer cleanup()

	// telegram_id is unique only when present; several NULLs are fine.
	m := user.NewManager(dbA)
	for _, name := range []string{"Ann", "Ben"} {
		if _, err := m.Create(proto.CreateUserParams{
			DisplayName: name,
			HomeCity:    "Berlin",
			HomeCountry: "DE",
			Timezone:    "Europe/Berlin",
		}); err != nil {
			t.Fatal(err)
		}
	}
	if count := getCount(t, "users"); count != 2 {
		t.Errorf("users count = %d, expected 2", count)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	setup(t)
	defer cleanup()

	um := user.NewManager(dbA)
	u, err := um.Create(proto.CreateUserParams{
		DisplayName: "Ann",
		HomeCity:    "Berlin",
		HomeCountry: "DE",
		Timezone:    "Europe/Berlin",
	})
	if err != nil {
		t.Fatal(err)
	}

	rm := request.NewManager(request.NewDBAccessor(db), um)
	var requestIds []int64
	for i := 0; i < 2; i++ {
		req, err := rm.Create(proto.CreateRequestParams{
			UserId:  u.Id,
			RawText: "need a ride",
			Type:    "ride",
			City:    "Berlin",
			Country: "DE",
		})
		if err != nil {
			t.Fatal(err)
		}
		requestIds = append(requestIds, req.Id)
	}

	if err := um.Delete(u.Id); err != nil {
		t.Fatal(err)
	}

	// The user's requests are gone too.
	if count := getCount(t, "requests"); count != 0 {
		t.Errorf("requests count = %d, expected 0 after cascade delete", count)
	}
	for _, requestId := range requestIds {
		if _, err := rm.Get(requestId); err == nil {
			t.Errorf("request %d still retrievable after user delete", requestId)
		}
	}
}
