package user

import (
	"context"
	"database/sql"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		phone TEXT,
		age INT,
		gender TEXT,
		father_id INT REFERENCES users(id),
		mother_id INT REFERENCES users(id),
		CONSTRAINT users_phone_key UNIQUE (phone)
	)`,
	// one row per stored direction; the reverse direction is never written
	`CREATE TABLE IF NOT EXISTS user_siblings (
		user_id INT NOT NULL REFERENCES users(id),
		sibling_id INT NOT NULL REFERENCES users(id),
		PRIMARY KEY (user_id, sibling_id)
	)`,
	`CREATE INDEX IF NOT EXISTS user_siblings_sibling_id_idx ON user_siblings (sibling_id)`,
	`CREATE INDEX IF NOT EXISTS users_father_id_idx ON users (father_id)`,
	`CREATE INDEX IF NOT EXISTS users_mother_id_idx ON users (mother_id)`,
}

// EnsureSchema creates the tables the service reads and writes when they
// are missing. Existing tables are left untouched.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
