// Copyright 2024, CityPair, Inc.

package config

import (
	"io/ioutil"
	"os"

	"gopkg.in/yaml.v2"
)

///////////////////////////////////////////////////////////////////////////////
// High-Level Config Structs
///////////////////////////////////////////////////////////////////////////////

// The config used by the Matching Service. This is read from in bin/main.go
// and migrate/bin/main.go.
type MatchingService struct {
	// The config that the web server will run with.
	Server `yaml:"server"`

	// The config that the service will use to connect to its database.
	Db SQLDb `yaml:"db"`
}

///////////////////////////////////////////////////////////////////////////////
// Config Components
///////////////////////////////////////////////////////////////////////////////

// Configuration for a web server.
type Server struct {
	// The address the server will listen on (ex: "127.0.0.1:8000").
	ListenAddress string `yaml:"listen_address"`

	// The TLS config used by the server.
	TLS `yaml:"tls_config"`
}

// Configuration for a SQL database.
type SQLDb struct {
	// The driverName that is passed to sql.Open() (ex: "mysql").
	Type string `yaml:"type"`

	// The full Data Source Name (DSN) of the sql database (see
	// https://github.com/go-sql-driver/mysql#dsn-data-source-name).
	// This is the lowest-priority DSN source; see ResolveDSN() for the
	// environment variables that override it.
	//
	// Note: "parseTime=true" is always appended to the DSN, so you
	// don't need to add that.
	DSN string `yaml:"dsn"`

	// The TLS config used to connect to the sql database.
	TLS `yaml:"tls_config"`
}

// TLS configuration.
type TLS struct {
	// The certificate file to use.
	CertFile string `yaml:"cert_file"`

	// The key file to use.
	KeyFile string `yaml:"key_file"`

	// The CA file to use.
	CAFile string `yaml:"ca_file"`
}

///////////////////////////////////////////////////////////////////////////////
// Loading Config
///////////////////////////////////////////////////////////////////////////////

// Load loads a configuration file into the struct pointed to by the
// configStruct argument.
func Load(configFile string, configStruct interface{}) error {
	// Make sure the file exists.
	_, err := os.Stat(configFile)
	if err != nil {
		return err
	}

	// Read the file.
	data, err := ioutil.ReadFile(configFile)
	if err != nil {
		return err
	}

	// Unmarshal the contents of the file into the provided struct.
	err = yaml.Unmarshal(data, configStruct)
	if err != nil {
		return err
	}

	return nil
}

///////////////////////////////////////////////////////////////////////////////
// Database DSN Resolution
///////////////////////////////////////////////////////////////////////////////

// Environment variables that configure the database connection. DATABASE_DSN
// is an explicit override and takes precedence over everything else. The
// MYSQL_* vars are assembled into a DSN when MYSQL_HOST is set. The DSN from
// the config file is used last.
const (
	ENV_DATABASE_DSN   = "DATABASE_DSN"
	ENV_MYSQL_USER     = "MYSQL_USER"
	ENV_MYSQL_PASSWORD = "MYSQL_PASSWORD"
	ENV_MYSQL_HOST     = "MYSQL_HOST"
	ENV_MYSQL_PORT     = "MYSQL_PORT"
	ENV_MYSQL_DB       = "MYSQL_DB"
)

// ResolveDSN returns the Data Source Name for the database, resolved in order
// of precedence: the DATABASE_DSN env var, a DSN assembled from the MYSQL_*
// env vars, the dsn value from the config file.
func (db SQLDb) ResolveDSN() string {
	if dsn := os.Getenv(ENV_DATABASE_DSN); dsn != "" {
		return dsn
	}
	if host := os.Getenv(ENV_MYSQL_HOST); host != "" {
		user := envOr(ENV_MYSQL_USER, "root")
		password := os.Getenv(ENV_MYSQL_PASSWORD)
		port := envOr(ENV_MYSQL_PORT, "3306")
		dbName := envOr(ENV_MYSQL_DB, "matching_service")
		dsn := user
		if password != "" {
			dsn += ":" + password
		}
		dsn += "@tcp(" + host + ":" + port + ")/" + dbName
		return dsn
	}
	return db.DSN
}

func envOr(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
