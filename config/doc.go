/*
Copyright 2024, CityPair, Inc.

Package config provides the ability to load config files into predefined
structures that are used by the Matching Service. The server uses the
MatchingService struct in bin/main.go, and the migration CLI uses it in
migrate/bin/main.go.

Types of config structs provided by this package:

* MatchingService: all of the config needed to run the service

* Server: the configuration for running a webserver (ex: the listen address the
  server should run on, the TLS config the server should run with, etc.)

* SQLDb: the configuration for connecting to a SQL database (ex: the type of
  the database, the DSN of the database server, the TLS config to use when
  connecting to the server, etc.)

* TLS: the configuration for constructing a Go tls.Config (ex: the CA cert file
  to use, the key file to use, etc.)

The database DSN can also come from the environment: DATABASE_DSN overrides
everything, and the MYSQL_USER, MYSQL_PASSWORD, MYSQL_HOST, MYSQL_PORT, and
MYSQL_DB vars are assembled into a DSN when MYSQL_HOST is set. See
SQLDb.ResolveDSN.
*/
package config
