// Copyright 2024, CityPair, Inc.

// Package app provides the application context: the config, hooks, factories,
// and store handles that the server wires together on boot. There are no
// package-level singletons; everything is constructed explicitly and passed
// in.
package app

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/citypair/matching-service/config"
	"github.com/citypair/matching-service/request"
	"github.com/citypair/matching-service/user"
	"github.com/citypair/matching-service/util"
)

type Context struct {
	Hooks     Hooks
	Factories Factories

	Config config.MatchingService

	// Set by server.Boot.
	UM user.Manager
	RM request.Manager
}

type Factories struct {
	MakeDbConnPool func(Context) (*sql.DB, error)
}

type Hooks struct {
	LoadConfig func(Context) (config.MatchingService, error)
}

func Defaults() Context {
	return Context{
		Factories: Factories{
			MakeDbConnPool: MakeDbConnPool,
		},
		Hooks: Hooks{
			LoadConfig: LoadConfig,
		},
	}
}

func LoadConfig(ctx Context) (config.MatchingService, error) {
	var cfgFile string
	if len(os.Args) > 1 {
		cfgFile = os.Args[1]
	} else {
		switch os.Getenv("ENVIRONMENT") {
		case "staging":
			cfgFile = "config/staging.yaml"
		case "production":
			cfgFile = "config/production.yaml"
		default:
			cfgFile = "config/development.yaml"
		}
	}
	var cfg config.MatchingService
	err := config.Load(cfgFile, &cfg)
	return cfg, err
}

func MakeDbConnPool(ctx Context) (*sql.DB, error) {
	dbcfg := ctx.Config.Db
	dsn := dbcfg.ResolveDSN() + "?parseTime=true" // always needs to be set
	if dbcfg.TLS.CAFile != "" && dbcfg.TLS.CertFile != "" && dbcfg.TLS.KeyFile != "" {
		tlsConfig, err := util.NewTLSConfig(dbcfg.TLS.CAFile, dbcfg.TLS.CertFile, dbcfg.TLS.KeyFile)
		if err != nil {
			log.Fatalf("error loading database TLS config: %s", err)
		}
		mysql.RegisterTLSConfig("custom", tlsConfig)
		dsn += "&tls=custom"
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("error creating sql.DB: %s", err)
	}
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(100)
	db.SetConnMaxLifetime(12 * time.Hour)
	return db, nil
}
