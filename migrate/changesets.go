// Copyright 2024, CityPair, Inc.

package migrate

// Changesets is the authored change-set chain for the Matching Service
// database. The chain, applied in order, must produce a schema identical to
// the one described by the schema package; TestChangesetsMatchRegistry
// enforces this. When updating the schema package, add a new change-set here
// that reflects the change.
//
// Do not edit a change-set after it has been applied to a shared database.
// Add a new change-set to fix any errors.
var Changesets = []Changeset{
	{
		ID:     "20240606000000",
		PrevID: "",
		Name:   "create_users",
		Up: []string{
			`CREATE TABLE users (
  id INT NOT NULL AUTO_INCREMENT,
  telegram_id VARCHAR(64) NULL,
  display_name VARCHAR(255) NULL,
  home_city VARCHAR(255) NULL,
  home_country VARCHAR(64) NULL,
  timezone VARCHAR(64) NULL,
  created_at DATETIME NULL,
  PRIMARY KEY (id),
  UNIQUE KEY ix_users_telegram_id (telegram_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		},
		Down: []string{
			"DROP TABLE users",
		},
	},
	{
		ID:     "20240606000001",
		PrevID: "20240606000000",
		Name:   "create_requests",
		Up: []string{
			`CREATE TABLE requests (
  id INT NOT NULL AUTO_INCREMENT,
  user_id INT NOT NULL,
  raw_text TEXT NOT NULL,
  type VARCHAR(64) NULL,
  city VARCHAR(255) NULL,
  country VARCHAR(64) NULL,
  status VARCHAR(32) NOT NULL DEFAULT 'active',
  created_at DATETIME NOT NULL,
  PRIMARY KEY (id),
  CONSTRAINT fk_requests_user_id FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			"CREATE INDEX ix_requests_user_id ON requests (user_id)",
		},
		Down: []string{
			"DROP INDEX ix_requests_user_id ON requests",
			"DROP TABLE requests",
		},
	},
	{
		ID:     "20240607000000",
		PrevID: "20240606000001",
		Name:   "add_request_status_index",
		Up: []string{
			"CREATE INDEX ix_requests_status ON requests (status)",
		},
		Down: []string{
			"DROP INDEX ix_requests_status ON requests",
		},
	},
}

// NewChainFromChangesets links the authored Changesets into a validated chain.
func NewChainFromChangesets() (*Chain, error) {
	return NewChain(Changesets)
}
