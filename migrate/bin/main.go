// Copyright 2024, CityPair, Inc.

package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	_ "github.com/go-sql-driver/mysql"
	log "github.com/sirupsen/logrus"

	"github.com/citypair/matching-service/config"
	"github.com/citypair/matching-service/migrate"
)

// CommandLine represents the migration CLI: a command (upgrade, downgrade,
// plan), an optional target, and options.
type CommandLine struct {
	Command string `arg:"positional,required" help:"upgrade, downgrade, or plan"`
	Target  string `arg:"positional" help:"changeset id, head, base, or -1 (default: head for upgrade/plan, -1 for downgrade)"`
	Down    bool   `arg:"--down" help:"plan the reverse direction"`
	Config  string `arg:"--config,env:CONFIG" help:"config file (default: per ENVIRONMENT)"`
}

func main() {
	var c CommandLine
	p, err := arg.NewParser(arg.Config{Program: "matching-service-migrate"}, &c)
	if err != nil {
		fmt.Printf("arg.NewParser: %s", err)
		os.Exit(1)
	}
	if err := p.Parse(os.Args[1:]); err != nil {
		switch err {
		case arg.ErrHelp:
			p.WriteHelp(os.Stdout)
			os.Exit(0)
		default:
			fmt.Printf("Error parsing command line: %s\n", err)
			os.Exit(1)
		}
	}

	chain, err := migrate.NewChainFromChangesets()
	if err != nil {
		log.Fatalf("invalid changeset chain: %s", err)
	}

	switch c.Command {
	case "plan":
		// Offline mode: print the literal SQL, no database connection.
		var plan migrate.Plan
		if c.Down {
			target := c.Target
			if target == "" {
				target = migrate.TargetBase
			}
			plan, err = migrate.DowngradePlan(chain, chain.Head(), target)
		} else {
			plan, err = migrate.UpgradePlan(chain, "", c.Target)
		}
		if err != nil {
			log.Fatalf("error planning migration: %s", err)
		}
		if err := plan.Write(os.Stdout); err != nil {
			log.Fatalf("error writing plan: %s", err)
		}
	case "upgrade":
		runner := newRunner(chain, c)
		if _, err := runner.Upgrade(c.Target); err != nil {
			log.Fatalf("error upgrading: %s", err)
		}
	case "downgrade":
		target := c.Target
		if target == "" {
			target = migrate.TargetPrev
		}
		runner := newRunner(chain, c)
		if _, err := runner.Downgrade(target); err != nil {
			log.Fatalf("error downgrading: %s", err)
		}
	default:
		log.Fatalf("unknown command %s (expected upgrade, downgrade, or plan)", c.Command)
	}
}

func newRunner(chain *migrate.Chain, c CommandLine) *migrate.Runner {
	cfgFile := c.Config
	if cfgFile == "" {
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
	if err := config.Load(cfgFile, &cfg); err != nil {
		log.Fatalf("error loading config at %s: %s", cfgFile, err)
	}

	dsn := cfg.Db.ResolveDSN() + "?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatalf("error creating sql.DB: %s", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("error connecting to database: %s", err)
	}

	return migrate.NewRunner(chain, migrate.NewDBStore(db))
}
