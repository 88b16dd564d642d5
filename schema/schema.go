// Copyright 2024, CityPair, Inc.

// Package schema is the registry of the canonical database shape: every table,
// column, constraint, and index the Matching Service expects at runtime. It is
// purely descriptive; nothing in this package touches a database.
//
// The migration change-sets in the migrate package are hand-authored and must
// encode the same shape as imperative steps. The two are not auto-synchronized.
// TestChangesetsMatchRegistry guards against drift: the DDL rendered from this
// registry must equal the DDL produced by applying every change-set in order.
// When you change this package, add a new change-set that reflects the change.
package schema

import (
	"fmt"
	"strings"
)

// Column describes one table column.
type Column struct {
	Name          string
	Type          string // SQL type, ex: "VARCHAR(255)"
	Nullable      bool
	Default       string // literal SQL default expression, ex: "'active'"
	AutoIncrement bool
}

// UniqueKey describes a unique constraint rendered inside CREATE TABLE.
type UniqueKey struct {
	Name    string
	Columns []string
}

// ForeignKey describes a named foreign key constraint.
type ForeignKey struct {
	Name      string
	Column    string
	RefTable  string
	RefColumn string
	OnDelete  string // ex: "CASCADE"
}

// Index describes a secondary index, rendered as a separate CREATE INDEX
// statement so it can be created and dropped independently of the table.
type Index struct {
	Name    string
	Columns []string
}

// Table describes one table.
type Table struct {
	Name        string
	Columns     []Column
	PrimaryKey  []string
	UniqueKeys  []UniqueKey
	ForeignKeys []ForeignKey
	Indexes     []Index
}

// Users is the identity record table. A user owns zero or more requests;
// deleting a user cascades to its requests (see Requests.ForeignKeys).
//
// Nullability follows the migrations, not the application model: the app
// requires display_name, home_city, home_country, and timezone on create, but
// the original migration declared them NULL-able, so the columns stay NULL-able
// and the validation layer enforces presence. Do not "fix" this here without a
// change-set.
var Users = Table{
	Name: "users",
	Columns: []Column{
		{Name: "id", Type: "INT", AutoIncrement: true},
		{Name: "telegram_id", Type: "VARCHAR(64)", Nullable: true},
		{Name: "display_name", Type: "VARCHAR(255)", Nullable: true},
		{Name: "home_city", Type: "VARCHAR(255)", Nullable: true},
		{Name: "home_country", Type: "VARCHAR(64)", Nullable: true},
		{Name: "timezone", Type: "VARCHAR(64)", Nullable: true},
		{Name: "created_at", Type: "DATETIME", Nullable: true},
	},
	PrimaryKey: []string{"id"},
	UniqueKeys: []UniqueKey{
		{Name: "ix_users_telegram_id", Columns: []string{"telegram_id"}},
	},
}

// Requests is the demand/offer record table. Every request belongs to exactly
// one user.
var Requests = Table{
	Name: "requests",
	Columns: []Column{
		{Name: "id", Type: "INT", AutoIncrement: true},
		{Name: "user_id", Type: "INT"},
		{Name: "raw_text", Type: "TEXT"},
		{Name: "type", Type: "VARCHAR(64)", Nullable: true},
		{Name: "city", Type: "VARCHAR(255)", Nullable: true},
		{Name: "country", Type: "VARCHAR(64)", Nullable: true},
		{Name: "status", Type: "VARCHAR(32)", Default: "'active'"},
		{Name: "created_at", Type: "DATETIME"},
	},
	PrimaryKey: []string{"id"},
	ForeignKeys: []ForeignKey{
		{
			Name:      "fk_requests_user_id",
			Column:    "user_id",
			RefTable:  "users",
			RefColumn: "id",
			OnDelete:  "CASCADE",
		},
	},
	Indexes: []Index{
		{Name: "ix_requests_user_id", Columns: []string{"user_id"}},
		{Name: "ix_requests_status", Columns: []string{"status"}},
	},
}

// Tables lists every table in dependency order: a table only references
// tables that appear before it.
var Tables = []Table{Users, Requests}

// CreateTable renders the CREATE TABLE statement for the table.
func (t Table) CreateTable() string {
	lines := []string{}
	for _, col := range t.Columns {
		line := "  " + col.Name + " " + col.Type
		if col.Nullable {
			line += " NULL"
		} else {
			line += " NOT NULL"
		}
		if col.Default != "" {
			line += " DEFAULT " + col.Default
		}
		if col.AutoIncrement {
			line += " AUTO_INCREMENT"
		}
		lines = append(lines, line)
	}
	if len(t.PrimaryKey) > 0 {
		lines = append(lines, "  PRIMARY KEY ("+strings.Join(t.PrimaryKey, ", ")+")")
	}
	for _, uk := range t.UniqueKeys {
		lines = append(lines, "  UNIQUE KEY "+uk.Name+" ("+strings.Join(uk.Columns, ", ")+")")
	}
	for _, fk := range t.ForeignKeys {
		line := fmt.Sprintf("  CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
			fk.Name, fk.Column, fk.RefTable, fk.RefColumn)
		if fk.OnDelete != "" {
			line += " ON DELETE " + fk.OnDelete
		}
		lines = append(lines, line)
	}
	return "CREATE TABLE " + t.Name + " (\n" + strings.Join(lines, ",\n") + "\n) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"
}

// CreateIndexes renders one CREATE INDEX statement per secondary index.
func (t Table) CreateIndexes() []string {
	stmts := make([]string, 0, len(t.Indexes))
	for _, ix := range t.Indexes {
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
			ix.Name, t.Name, strings.Join(ix.Columns, ", ")))
	}
	return stmts
}

// DDL renders the full schema as an ordered list of statements: each table's
// CREATE TABLE followed by its CREATE INDEX statements, tables in dependency
// order.
func DDL() []string {
	var stmts []string
	for _, t := range Tables {
		stmts = append(stmts, t.CreateTable())
		stmts = append(stmts, t.CreateIndexes()...)
	}
	return stmts
}
